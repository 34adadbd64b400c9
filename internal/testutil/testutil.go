package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vytor/heartgame/internal/db"
	"github.com/vytor/heartgame/internal/logger"
	"github.com/vytor/heartgame/internal/models"
)

func init() {
	logger.SetDefault(logger.Discard())
}

// NewTestDB opens an in-memory SQLite database with all migrations applied.
func NewTestDB(t *testing.T) *db.DB {
	database, err := db.Open(db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	return database
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}

// InsertUser stores a user row directly and returns it.
func InsertUser(t *testing.T, database *db.DB, id, username string) models.User {
	u := models.User{
		ID:           id,
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash",
		Achievements: []string{},
		CreatedAt:    time.Now().UTC(),
	}
	_, err := database.ExecContext(context.Background(), database.Rebind(
		`INSERT INTO users (id, username, email, password_hash, avatar, achievements, total_score, games_played, correct_answers, created_at)
VALUES (?, ?, ?, ?, '', '[]', 0, 0, 0, ?)`),
		u.ID, u.Username, u.Email, u.PasswordHash, db.Millis(u.CreatedAt))
	require.NoError(t, err)
	return u
}

// Score builds a completed main-game record for tests.
func Score(id, userID, username string, score int, difficulty models.Difficulty, createdAt time.Time) models.ScoreRecord {
	return models.ScoreRecord{
		ID:         id,
		UserID:     userID,
		Username:   username,
		Score:      score,
		FinalScore: score,
		Difficulty: difficulty,
		Status:     models.ScoreCompleted,
		GameType:   models.GameTypeMain,
		CreatedAt:  createdAt,
	}
}
