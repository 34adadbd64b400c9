package repository

import (
	"context"
	"time"

	"github.com/vytor/heartgame/internal/models"
)

// StatsFilter narrows the completed records fed into a leaderboard.
type StatsFilter struct {
	Since      *time.Time
	Difficulty models.Difficulty
}

// StatsRepository handles ranking and statistics queries
type StatsRepository interface {
	// CompletedRows returns completed records ordered by creation time ascending.
	CompletedRows(ctx context.Context, filter StatsFilter) ([]models.ScoreRow, error)
	// UserRank returns nil when the user has no completed records.
	UserRank(ctx context.Context, userID string) (*int, error)
	OverallStats(ctx context.Context, userID string) (*models.OverallStats, error)
	DifficultyStats(ctx context.Context, userID string) ([]models.DifficultyStat, error)
	GlobalTotals(ctx context.Context) (games, players, score int, err error)
	GamesByDifficulty(ctx context.Context) ([]models.DifficultyCount, error)
	// RecomputeUserAggregates rewrites, in one transaction, the counters of
	// every user whose stored aggregates differ from the sums of all their
	// records, and returns those user ids.
	RecomputeUserAggregates(ctx context.Context) ([]string, error)
}
