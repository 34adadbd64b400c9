package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/heartgame/internal/models"
)

// MockScoreRepository is a mock implementation of repository.ScoreRepository
type MockScoreRepository struct {
	mock.Mock
}

func (m *MockScoreRepository) Save(ctx context.Context, record models.ScoreRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockScoreRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.ScoreRecord, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ScoreRecord), args.Error(1)
}

func (m *MockScoreRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockScoreRepository) Recent(ctx context.Context, limit int) ([]models.ScoreRecord, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ScoreRecord), args.Error(1)
}
