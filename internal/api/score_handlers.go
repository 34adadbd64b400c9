package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/heartgame/internal/auth"
	"github.com/vytor/heartgame/internal/logger"
	"github.com/vytor/heartgame/internal/models"
)

func (s *Server) handleSaveScore(w http.ResponseWriter, r *http.Request) {
	var input models.SaveScoreInput
	if err := decodeJSON(w, r, &input); err != nil {
		handleError(w, r, err)
		return
	}
	fillCaller(r, &input.UserID, &input.Username)

	rec, err := s.ScoreService.SaveScore(r.Context(), input)
	if err != nil {
		handleError(w, r, err)
		return
	}
	logger.FromContext(r.Context()).Info("score saved: id=%s, score=%d", rec.ID, rec.Score)
	respond(w, r, http.StatusCreated, "Score saved successfully", rec, nil)
}

func (s *Server) handleSaveMiniGame(w http.ResponseWriter, r *http.Request) {
	var input models.SaveScoreInput
	if err := decodeJSON(w, r, &input); err != nil {
		handleError(w, r, err)
		return
	}
	fillCaller(r, &input.UserID, &input.Username)

	rec, err := s.ScoreService.SaveMiniGameScore(r.Context(), input)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, "Mini-game score saved successfully", rec, nil)
}

func (s *Server) handleUserScores(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	limit := queryInt(r, "limit", 10)
	page := queryInt(r, "page", 1)

	logger.FromContext(r.Context()).Debug("listing scores: user_id=%s, limit=%d, page=%d", userID, limit, page)

	records, pagination, err := s.ScoreService.UserScores(r.Context(), userID, limit, page)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, "", records, envelope{"pagination": pagination})
}

// fillCaller defaults the user fields of a request body to the authenticated caller.
func fillCaller(r *http.Request, userID, username *string) {
	session, ok := auth.FromContext(r.Context())
	if !ok {
		return
	}
	if *userID == "" {
		*userID = session.UserID
	}
	if *username == "" {
		*username = session.Username
	}
}
