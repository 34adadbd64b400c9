package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/heartgame/internal/logger"
	"github.com/vytor/heartgame/internal/models"
)

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var input models.StartSessionInput
	if err := decodeJSON(w, r, &input); err != nil {
		handleError(w, r, err)
		return
	}
	fillCaller(r, &input.UserID, &input.Username)

	session, err := s.SessionService.Start(r.Context(), input)
	if err != nil {
		handleError(w, r, err)
		return
	}
	logger.FromContext(r.Context()).Info("session started: session_id=%s", session.SessionID)
	respond(w, r, http.StatusCreated, "Game session started", session, envelope{"sessionId": session.SessionID})
}

func (s *Server) handleUpdateSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")

	var update models.SessionUpdate
	if err := decodeJSON(w, r, &update); err != nil {
		handleError(w, r, err)
		return
	}

	session, err := s.SessionService.Update(r.Context(), sessionID, update)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, "Game session updated", session, nil)
}

func (s *Server) handleActiveSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.SessionService.ActiveSessions(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, "", sessions, nil)
}
