package services

import (
	"context"
	"math"

	"github.com/google/uuid"
	"github.com/vytor/heartgame/internal/clock"
	"github.com/vytor/heartgame/internal/errors"
	"github.com/vytor/heartgame/internal/logger"
	"github.com/vytor/heartgame/internal/models"
	"github.com/vytor/heartgame/internal/repository"
)

// ScoreService handles score record business logic
type ScoreService interface {
	SaveScore(ctx context.Context, input models.SaveScoreInput) (*models.ScoreRecord, error)
	SaveMiniGameScore(ctx context.Context, input models.SaveScoreInput) (*models.ScoreRecord, error)
	UserScores(ctx context.Context, userID string, limit, page int) ([]models.ScoreRecord, models.Pagination, error)
}

type scoreService struct {
	scoreRepo repository.ScoreRepository
	clock     clock.Clock
	newID     func() string
}

// NewScoreService creates a new ScoreService
func NewScoreService(scoreRepo repository.ScoreRepository, clk clock.Clock) ScoreService {
	return &scoreService{
		scoreRepo: scoreRepo,
		clock:     clk,
		newID:     uuid.NewString,
	}
}

func (s *scoreService) SaveScore(ctx context.Context, input models.SaveScoreInput) (*models.ScoreRecord, error) {
	log := logger.FromContext(ctx)
	log.Debug("saving score: user_id=%s", input.UserID)

	rec, err := s.buildRecord(input)
	if err != nil {
		log.Debug("rejected score: %v", err)
		return nil, err
	}
	return s.persist(ctx, rec)
}

func (s *scoreService) SaveMiniGameScore(ctx context.Context, input models.SaveScoreInput) (*models.ScoreRecord, error) {
	log := logger.FromContext(ctx)
	log.Debug("saving mini-game score: user_id=%s", input.UserID)

	input.Difficulty = models.DifficultyEasy
	input.Status = models.ScoreCompleted
	input.GameType = models.GameTypeMini
	rec, err := s.buildRecord(input)
	if err != nil {
		log.Debug("rejected mini-game score: %v", err)
		return nil, err
	}
	return s.persist(ctx, rec)
}

func (s *scoreService) buildRecord(in models.SaveScoreInput) (models.ScoreRecord, error) {
	if err := requireString("userId", in.UserID); err != nil {
		return models.ScoreRecord{}, err
	}
	if err := requireString("username", in.Username); err != nil {
		return models.ScoreRecord{}, err
	}
	if in.Score == nil {
		return models.ScoreRecord{}, errors.NewValidationError("score", "is required")
	}
	if err := requireNonNegative("score", *in.Score); err != nil {
		return models.ScoreRecord{}, err
	}
	if err := requireNonNegative("timeSpent", in.TimeSpent); err != nil {
		return models.ScoreRecord{}, err
	}
	if err := checkAnswerCounts(in.CorrectAnswers, in.TotalQuestions); err != nil {
		return models.ScoreRecord{}, err
	}
	difficulty, err := parseDifficulty(in.Difficulty)
	if err != nil {
		return models.ScoreRecord{}, err
	}
	gameType, err := parseGameType(in.GameType)
	if err != nil {
		return models.ScoreRecord{}, err
	}
	status := in.Status
	if status == "" {
		status = models.ScoreCompleted
	}
	if !status.Valid() {
		return models.ScoreRecord{}, errors.NewValidationError("status", "must be one of active, completed, abandoned")
	}

	var sessionID *string
	if in.SessionID != nil && *in.SessionID != "" {
		id := *in.SessionID
		sessionID = &id
	}

	return models.ScoreRecord{
		ID:             s.newID(),
		UserID:         in.UserID,
		Username:       in.Username,
		Score:          *in.Score,
		FinalScore:     *in.Score,
		Difficulty:     difficulty,
		Status:         status,
		CorrectAnswers: in.CorrectAnswers,
		TotalQuestions: in.TotalQuestions,
		GameType:       gameType,
		SessionID:      sessionID,
		TimeSpent:      in.TimeSpent,
		CreatedAt:      s.clock.Now().UTC(),
	}, nil
}

func (s *scoreService) persist(ctx context.Context, rec models.ScoreRecord) (*models.ScoreRecord, error) {
	log := logger.FromContext(ctx)
	if err := s.scoreRepo.Save(ctx, rec); err != nil {
		log.Error("failed to save score: %v", err)
		return nil, errors.NewStoreError("saving score", err)
	}
	log.Info("score saved: id=%s, user_id=%s, score=%d, game_type=%s", rec.ID, rec.UserID, rec.Score, rec.GameType)
	return &rec, nil
}

func (s *scoreService) UserScores(ctx context.Context, userID string, limit, page int) ([]models.ScoreRecord, models.Pagination, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting user scores: user_id=%s, limit=%d, page=%d", userID, limit, page)

	if err := requireString("userId", userID); err != nil {
		return nil, models.Pagination{}, err
	}
	limit = clampLimit(limit)
	if page < 1 {
		page = 1
	}

	var records []models.ScoreRecord
	// Pages whose offset does not fit in an int cannot hold any record.
	if page-1 < math.MaxInt/limit {
		var err error
		records, err = s.scoreRepo.ListByUser(ctx, userID, limit, (page-1)*limit)
		if err != nil {
			log.Error("failed to list user scores: %v", err)
			return nil, models.Pagination{}, errors.NewStoreError("fetching user scores", err)
		}
	} else {
		log.Debug("page %d is past any offset, returning empty page", page)
	}
	total, err := s.scoreRepo.CountByUser(ctx, userID)
	if err != nil {
		log.Error("failed to count user scores: %v", err)
		return nil, models.Pagination{}, errors.NewStoreError("fetching user scores", err)
	}
	if records == nil {
		records = []models.ScoreRecord{}
	}
	return records, models.NewPagination(page, limit, total), nil
}
