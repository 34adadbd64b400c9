package sqlite

import (
	"context"
	"database/sql"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/heartgame/internal/db"
	"github.com/vytor/heartgame/internal/logger"
	"github.com/vytor/heartgame/internal/models"
	"github.com/vytor/heartgame/internal/repository"
)

var scoreColumns = []string{
	"id", "user_id", "username", "score", "final_score", "difficulty", "status",
	"correct_answers", "total_questions", "game_type", "session_id", "time_spent", "created_at",
}

type scoreRepository struct {
	db *db.DB
}

// NewScoreRepository creates a new ScoreRepository implementation
func NewScoreRepository(db *db.DB) repository.ScoreRepository {
	return &scoreRepository{db: db}
}

func (r *scoreRepository) Save(ctx context.Context, rec models.ScoreRecord) error {
	log := logger.FromContext(ctx).WithPrefix("score_repo")
	log.Debug("saving score: user_id=%s, score=%d, difficulty=%s", rec.UserID, rec.Score, rec.Difficulty)

	insert, insertArgs, err := r.db.Builder().Insert("game_scores").
		Columns(scoreColumns...).
		Values(rec.ID, rec.UserID, rec.Username, rec.Score, rec.FinalScore, string(rec.Difficulty), string(rec.Status),
			rec.CorrectAnswers, rec.TotalQuestions, string(rec.GameType), nullString(rec.SessionID), rec.TimeSpent,
			db.Millis(rec.CreatedAt)).
		ToSql()
	if err != nil {
		log.Error("failed to build insert: %v", err)
		return err
	}

	update, updateArgs, err := r.db.Builder().Update("users").
		Set("total_score", squirrel.Expr("total_score + ?", rec.Score)).
		Set("games_played", squirrel.Expr("games_played + 1")).
		Set("correct_answers", squirrel.Expr("correct_answers + ?", rec.CorrectAnswers)).
		Where(squirrel.Eq{"id": rec.UserID}).
		ToSql()
	if err != nil {
		log.Error("failed to build aggregate update: %v", err)
		return err
	}

	return r.db.Tx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, insert, insertArgs...); err != nil {
			log.Error("failed to insert score: %v", err)
			return err
		}
		res, err := tx.ExecContext(ctx, update, updateArgs...)
		if err != nil {
			log.Error("failed to update user aggregates: %v", err)
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			log.Debug("no user row for user_id=%s, aggregates unchanged", rec.UserID)
		}
		return nil
	})
}

func (r *scoreRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.ScoreRecord, error) {
	log := logger.FromContext(ctx).WithPrefix("score_repo")
	log.Debug("listing scores: user_id=%s, limit=%d, offset=%d", userID, limit, offset)

	if offset < 0 {
		offset = 0
	}
	query := r.db.Builder().Select(scoreColumns...).
		From("game_scores").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset))
	return r.query(ctx, query)
}

func (r *scoreRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("score_repo")

	query, args, err := r.db.Builder().Select("COUNT(*)").
		From("game_scores").
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return 0, err
	}
	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		log.Error("failed to count scores: %v", err)
		return 0, err
	}
	log.Debug("user_id=%s has %d scores", userID, count)
	return count, nil
}

func (r *scoreRepository) Recent(ctx context.Context, limit int) ([]models.ScoreRecord, error) {
	query := r.db.Builder().Select(scoreColumns...).
		From("game_scores").
		OrderBy("created_at DESC").
		Limit(uint64(limit))
	return r.query(ctx, query)
}

func (r *scoreRepository) query(ctx context.Context, query squirrel.SelectBuilder) ([]models.ScoreRecord, error) {
	log := logger.FromContext(ctx).WithPrefix("score_repo")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to query scores: %v", err)
		return nil, err
	}
	defer rows.Close()

	records := []models.ScoreRecord{}
	for rows.Next() {
		rec, err := scanScore(rows)
		if err != nil {
			log.Error("failed to scan score row: %v", err)
			return nil, err
		}
		records = append(records, rec)
	}
	log.Debug("found %d scores", len(records))
	return records, rows.Err()
}

func scanScore(row rowScanner) (models.ScoreRecord, error) {
	var rec models.ScoreRecord
	var difficulty, status, gameType string
	var sessionID sql.NullString
	var createdAt int64
	err := row.Scan(&rec.ID, &rec.UserID, &rec.Username, &rec.Score, &rec.FinalScore, &difficulty, &status,
		&rec.CorrectAnswers, &rec.TotalQuestions, &gameType, &sessionID, &rec.TimeSpent, &createdAt)
	if err != nil {
		return rec, err
	}
	rec.Difficulty = models.Difficulty(difficulty)
	rec.Status = models.ScoreStatus(status)
	rec.GameType = models.GameType(gameType)
	rec.SessionID = stringPtr(sessionID)
	rec.CreatedAt = db.FromMillis(createdAt)
	return rec, nil
}
