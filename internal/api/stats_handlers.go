package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/heartgame/internal/logger"
	"github.com/vytor/heartgame/internal/models"
)

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := models.LeaderboardQuery{
		Limit:      queryInt(r, "limit", 10),
		Difficulty: q.Get("difficulty"),
		TimeFrame:  models.TimeFrame(q.Get("timeFrame")),
	}

	log := logger.FromContext(r.Context())
	log.Debug("fetching leaderboard: limit=%d, difficulty=%s, time_frame=%s", query.Limit, query.Difficulty, query.TimeFrame)

	board, err := s.RankingService.Leaderboard(r.Context(), query)
	if err != nil {
		handleError(w, r, err)
		return
	}
	entries := board.Entries
	if entries == nil {
		entries = []models.LeaderboardEntry{}
	}
	respond(w, r, http.StatusOK, "", entries, envelope{
		"timeFrame":  board.TimeFrame,
		"difficulty": board.Difficulty,
		"updatedAt":  board.UpdatedAt,
	})
}

func (s *Server) handleUserStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.RankingService.UserStats(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, "", stats, nil)
}

func (s *Server) handleGlobalStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.RankingService.GlobalStats(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, "", stats, nil)
}
