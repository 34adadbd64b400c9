package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/heartgame/internal/models"
	"github.com/vytor/heartgame/internal/repository"
)

// MockStatsRepository is a mock implementation of repository.StatsRepository
type MockStatsRepository struct {
	mock.Mock
}

func (m *MockStatsRepository) CompletedRows(ctx context.Context, filter repository.StatsFilter) ([]models.ScoreRow, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ScoreRow), args.Error(1)
}

func (m *MockStatsRepository) UserRank(ctx context.Context, userID string) (*int, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*int), args.Error(1)
}

func (m *MockStatsRepository) OverallStats(ctx context.Context, userID string) (*models.OverallStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OverallStats), args.Error(1)
}

func (m *MockStatsRepository) DifficultyStats(ctx context.Context, userID string) ([]models.DifficultyStat, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.DifficultyStat), args.Error(1)
}

func (m *MockStatsRepository) GlobalTotals(ctx context.Context) (int, int, int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Int(1), args.Int(2), args.Error(3)
}

func (m *MockStatsRepository) GamesByDifficulty(ctx context.Context) ([]models.DifficultyCount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.DifficultyCount), args.Error(1)
}

func (m *MockStatsRepository) RecomputeUserAggregates(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
