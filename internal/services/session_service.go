package services

import (
	"context"
	stderrors "errors"

	"github.com/google/uuid"
	"github.com/vytor/heartgame/internal/clock"
	"github.com/vytor/heartgame/internal/errors"
	"github.com/vytor/heartgame/internal/logger"
	"github.com/vytor/heartgame/internal/models"
	"github.com/vytor/heartgame/internal/repository"
)

// SessionService tracks play sessions from start to end
type SessionService interface {
	Start(ctx context.Context, input models.StartSessionInput) (*models.SessionRecord, error)
	Update(ctx context.Context, sessionID string, update models.SessionUpdate) (*models.SessionRecord, error)
	ActiveSessions(ctx context.Context, userID string) ([]models.SessionRecord, error)
}

type sessionService struct {
	sessionRepo repository.SessionRepository
	clock       clock.Clock
	newID       func() string
}

// NewSessionService creates a new SessionService
func NewSessionService(sessionRepo repository.SessionRepository, clk clock.Clock) SessionService {
	return &sessionService{
		sessionRepo: sessionRepo,
		clock:       clk,
		newID:       func() string { return uuid.New().String() },
	}
}

func (s *sessionService) Start(ctx context.Context, in models.StartSessionInput) (*models.SessionRecord, error) {
	log := logger.FromContext(ctx)
	log.Debug("starting session: user_id=%s, difficulty=%s", in.UserID, in.Difficulty)

	if err := requireString("userId", in.UserID); err != nil {
		return nil, err
	}
	if err := requireString("username", in.Username); err != nil {
		return nil, err
	}
	difficulty, err := parseDifficulty(in.Difficulty)
	if err != nil {
		return nil, err
	}
	gameType, err := parseGameType(in.GameType)
	if err != nil {
		return nil, err
	}
	status := in.Status
	if status == "" {
		status = models.SessionActive
	}
	if !status.Valid() {
		return nil, errors.NewValidationError("status", "must be one of active, completed, abandoned, timeout")
	}

	now := s.clock.Now().UTC()
	start := now
	if in.StartTime != nil && !in.StartTime.IsZero() {
		start = in.StartTime.UTC()
	}

	session := models.SessionRecord{
		SessionID:  s.newID(),
		UserID:     in.UserID,
		Username:   in.Username,
		Difficulty: difficulty,
		GameType:   gameType,
		StartTime:  start,
		Status:     status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.sessionRepo.Insert(ctx, session); err != nil {
		log.Error("failed to insert session: %v", err)
		return nil, errors.NewStoreError("saving session", err)
	}

	log.Info("session started: session_id=%s, user_id=%s, difficulty=%s", session.SessionID, session.UserID, session.Difficulty)
	return &session, nil
}

func (s *sessionService) Update(ctx context.Context, sessionID string, u models.SessionUpdate) (*models.SessionRecord, error) {
	log := logger.FromContext(ctx)
	log.Debug("updating session: session_id=%s", sessionID)

	if err := requireString("sessionId", sessionID); err != nil {
		return nil, err
	}
	if u.Status != nil && !u.Status.Valid() {
		return nil, errors.NewValidationError("status", "must be one of active, completed, abandoned, timeout")
	}
	for field, v := range map[string]*int{
		"finalScore":     u.FinalScore,
		"correctAnswers": u.CorrectAnswers,
		"totalQuestions": u.TotalQuestions,
	} {
		if v != nil {
			if err := requireNonNegative(field, *v); err != nil {
				return nil, err
			}
		}
	}
	if u.CorrectAnswers != nil && u.TotalQuestions != nil && *u.CorrectAnswers > *u.TotalQuestions {
		return nil, errors.NewValidationError("correctAnswers", "cannot exceed totalQuestions")
	}
	if u.EndTime != nil {
		end := u.EndTime.UTC()
		u.EndTime = &end
	}

	if err := s.sessionRepo.Update(ctx, sessionID, u, s.clock.Now().UTC()); err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NewNotFoundError("game session", sessionID)
		}
		log.Error("failed to update session: %v", err)
		return nil, errors.NewStoreError("updating session", err)
	}

	session, err := s.sessionRepo.Get(ctx, sessionID)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NewNotFoundError("game session", sessionID)
		}
		log.Error("failed to reload session: %v", err)
		return nil, errors.NewStoreError("updating session", err)
	}
	log.Info("session updated: session_id=%s, status=%s", session.SessionID, session.Status)
	return session, nil
}

func (s *sessionService) ActiveSessions(ctx context.Context, userID string) ([]models.SessionRecord, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing active sessions: user_id=%s", userID)

	if err := requireString("userId", userID); err != nil {
		return nil, err
	}
	sessions, err := s.sessionRepo.ListActive(ctx, userID)
	if err != nil {
		log.Error("failed to list active sessions: %v", err)
		return nil, errors.NewStoreError("fetching active sessions", err)
	}
	if sessions == nil {
		sessions = []models.SessionRecord{}
	}
	return sessions, nil
}
