package mocks

import (
	"time"

	"github.com/stretchr/testify/mock"
)

// MockJobQueue is a mock implementation of jobs.JobQueue
type MockJobQueue struct {
	mock.Mock
}

func (m *MockJobQueue) EnqueueReconcile() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockJobQueue) ScheduleReconcile(interval time.Duration) error {
	args := m.Called(interval)
	return args.Error(0)
}

func (m *MockJobQueue) Stop() {
	m.Called()
}
