package api

import (
	"github.com/vytor/heartgame/internal/auth"
	"github.com/vytor/heartgame/internal/db"
	"github.com/vytor/heartgame/internal/jobs"
	"github.com/vytor/heartgame/internal/services"
)

// TokenVerifier resolves a bearer token to the caller's session.
type TokenVerifier interface {
	Verify(token string) (*auth.Session, error)
}

type Server struct {
	DB             *db.DB
	ScoreService   services.ScoreService
	SessionService services.SessionService
	RankingService services.RankingService
	UserService    services.UserService
	Tokens         TokenVerifier
	Jobs           jobs.JobQueue
}
