package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/heartgame/internal/logger"
	"github.com/vytor/heartgame/internal/models"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var input models.RegisterInput
	if err := decodeJSON(w, r, &input); err != nil {
		handleError(w, r, err)
		return
	}

	result, err := s.UserService.Register(r.Context(), input)
	if err != nil {
		handleError(w, r, err)
		return
	}
	logger.FromContext(r.Context()).Info("user registered: id=%s, username=%s", result.User.ID, result.User.Username)
	respond(w, r, http.StatusCreated, "User registered successfully", nil, envelope{
		"token": result.Token,
		"user":  result.User,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var input models.LoginInput
	if err := decodeJSON(w, r, &input); err != nil {
		handleError(w, r, err)
		return
	}

	result, err := s.UserService.Login(r.Context(), input)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, "Login successful", nil, envelope{
		"token": result.Token,
		"user":  result.User,
	})
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.UserService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, "", user, nil)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.UserService.List(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, "", users, nil)
}
