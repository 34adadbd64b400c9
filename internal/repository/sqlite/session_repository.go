package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/heartgame/internal/db"
	"github.com/vytor/heartgame/internal/logger"
	"github.com/vytor/heartgame/internal/models"
	"github.com/vytor/heartgame/internal/repository"
)

var sessionColumns = []string{
	"session_id", "user_id", "username", "difficulty", "game_type", "start_time", "end_time", "status",
	"final_score", "correct_answers", "total_questions", "created_at", "updated_at",
}

type sessionRepository struct {
	db *db.DB
}

// NewSessionRepository creates a new SessionRepository implementation
func NewSessionRepository(db *db.DB) repository.SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Insert(ctx context.Context, s models.SessionRecord) error {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("inserting session: session_id=%s, user_id=%s", s.SessionID, s.UserID)

	query, args, err := r.db.Builder().Insert("game_sessions").
		Columns(sessionColumns...).
		Values(s.SessionID, s.UserID, s.Username, string(s.Difficulty), string(s.GameType), db.Millis(s.StartTime),
			nullTime(s.EndTime), string(s.Status), s.FinalScore, s.CorrectAnswers, s.TotalQuestions,
			db.Millis(s.CreatedAt), db.Millis(s.UpdatedAt)).
		ToSql()
	if err != nil {
		log.Error("failed to build insert: %v", err)
		return err
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to insert session: %v", err)
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *sessionRepository) Update(ctx context.Context, sessionID string, u models.SessionUpdate, updatedAt time.Time) error {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("updating session: session_id=%s", sessionID)

	query := r.db.Builder().Update("game_sessions").Set("updated_at", db.Millis(updatedAt))
	if u.EndTime != nil {
		query = query.Set("end_time", db.Millis(*u.EndTime))
	}
	if u.Status != nil {
		query = query.Set("status", string(*u.Status))
	}
	if u.FinalScore != nil {
		query = query.Set("final_score", *u.FinalScore)
	}
	if u.CorrectAnswers != nil {
		query = query.Set("correct_answers", *u.CorrectAnswers)
	}
	if u.TotalQuestions != nil {
		query = query.Set("total_questions", *u.TotalQuestions)
	}

	sqlStr, args, err := query.Where(squirrel.Eq{"session_id": sessionID}).ToSql()
	if err != nil {
		log.Error("failed to build update: %v", err)
		return err
	}
	res, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to update session: %v", err)
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		log.Debug("session not found: session_id=%s", sessionID)
		return repository.ErrNotFound
	}
	return nil
}

func (r *sessionRepository) Get(ctx context.Context, sessionID string) (*models.SessionRecord, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")

	query, args, err := r.db.Builder().Select(sessionColumns...).
		From("game_sessions").
		Where(squirrel.Eq{"session_id": sessionID}).
		ToSql()
	if err != nil {
		return nil, err
	}
	s, err := scanSession(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("session not found: session_id=%s", sessionID)
			return nil, repository.ErrNotFound
		}
		log.Error("failed to get session: %v", err)
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepository) ListActive(ctx context.Context, userID string) ([]models.SessionRecord, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("listing active sessions: user_id=%s", userID)

	query, args, err := r.db.Builder().Select(sessionColumns...).
		From("game_sessions").
		Where(squirrel.Eq{"user_id": userID, "status": string(models.SessionActive)}).
		OrderBy("start_time DESC").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list active sessions: %v", err)
		return nil, err
	}
	defer rows.Close()

	sessions := []models.SessionRecord{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			log.Error("failed to scan session row: %v", err)
			return nil, err
		}
		sessions = append(sessions, s)
	}
	log.Debug("found %d active sessions", len(sessions))
	return sessions, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (models.SessionRecord, error) {
	var s models.SessionRecord
	var difficulty, gameType, status string
	var startTime, createdAt, updatedAt int64
	var endTime sql.NullInt64
	err := row.Scan(&s.SessionID, &s.UserID, &s.Username, &difficulty, &gameType, &startTime, &endTime, &status,
		&s.FinalScore, &s.CorrectAnswers, &s.TotalQuestions, &createdAt, &updatedAt)
	if err != nil {
		return s, err
	}
	s.Difficulty = models.Difficulty(difficulty)
	s.GameType = models.GameType(gameType)
	s.Status = models.SessionStatus(status)
	s.StartTime = db.FromMillis(startTime)
	s.EndTime = timeFromNull(endTime)
	s.CreatedAt = db.FromMillis(createdAt)
	s.UpdatedAt = db.FromMillis(updatedAt)
	return s, nil
}
