package repository

import (
	"context"
	"errors"
	"time"

	"github.com/vytor/heartgame/internal/models"
)

var (
	// ErrNotFound is returned when no row matched the lookup.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique column already holds the value.
	ErrDuplicate = errors.New("duplicate")
)

// ScoreRepository handles score record data access
type ScoreRepository interface {
	// Save inserts the record and adds it to the owner's aggregates in one transaction.
	Save(ctx context.Context, record models.ScoreRecord) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.ScoreRecord, error)
	CountByUser(ctx context.Context, userID string) (int, error)
	Recent(ctx context.Context, limit int) ([]models.ScoreRecord, error)
}

// SessionRepository handles session record data access
type SessionRepository interface {
	Insert(ctx context.Context, session models.SessionRecord) error
	Update(ctx context.Context, sessionID string, update models.SessionUpdate, updatedAt time.Time) error
	Get(ctx context.Context, sessionID string) (*models.SessionRecord, error)
	ListActive(ctx context.Context, userID string) ([]models.SessionRecord, error)
}

// UserRepository handles user directory data access
type UserRepository interface {
	Create(ctx context.Context, user models.User) error
	Get(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
}
