package errors_test

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/heartgame/internal/errors"
)

func TestNewStoreError_IncludesCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := errors.NewStoreError("saving score", cause)

	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.Equal(t, errors.ErrCodeStore, err.Code)
	assert.Contains(t, err.Message, "saving score")
	assert.Contains(t, err.Message, "disk full")
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "disk full", err.Cause())
}

func TestAs_FindsWrappedAppError(t *testing.T) {
	inner := errors.NewNotFoundError("game session", "abc")
	wrapped := fmt.Errorf("update: %w", inner)

	appErr, ok := errors.As(wrapped)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, appErr.Status)
	assert.True(t, errors.IsNotFound(wrapped))
	assert.False(t, errors.IsValidation(wrapped))
}

func TestAs_PlainError(t *testing.T) {
	_, ok := errors.As(stderrors.New("boom"))
	assert.False(t, ok)
	assert.False(t, errors.IsNotFound(nil))
}

func TestStatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		err    *errors.AppError
		status int
	}{
		{"validation", errors.NewValidationError("userId", "is required"), http.StatusBadRequest},
		{"bad request", errors.NewBadRequestError("invalid json"), http.StatusBadRequest},
		{"unauthorized", errors.NewUnauthorizedError("missing token"), http.StatusUnauthorized},
		{"conflict", errors.NewConflictError("username taken"), http.StatusConflict},
		{"internal", errors.NewInternalError(stderrors.New("x")), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.Status)
		})
	}
}
