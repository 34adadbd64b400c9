package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/heartgame/internal/testutil/mocks"
)

func TestIssueAndVerify(t *testing.T) {
	clk := mocks.NewMockClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	m := NewTokenManager("token-test-secret-123", time.Hour, clk)

	token, err := m.Issue("u-1", "finn")
	require.NoError(t, err)

	s, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", s.UserID)
	assert.Equal(t, "finn", s.Username)
	assert.True(t, clk.Now().Add(time.Hour).Equal(s.ExpiresAt))

	clk.Advance(2 * time.Hour)
	_, err = m.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	clk := mocks.NewMockClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	token, err := NewTokenManager("secret-number-one-1", time.Hour, clk).Issue("u-1", "finn")
	require.NoError(t, err)

	_, err = NewTokenManager("secret-number-two-2", time.Hour, clk).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewTokenManager("secret-number-one-1", time.Hour, clk).Verify("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPeek(t *testing.T) {
	clk := mocks.NewMockClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	token, err := NewTokenManager("token-test-secret-123", time.Hour, clk).Issue("u-7", "jake")
	require.NoError(t, err)

	s, err := Peek(token)
	require.NoError(t, err)
	assert.Equal(t, "u-7", s.UserID)
	assert.Equal(t, "jake", s.Username)

	_, err = Peek("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSessionContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	ctx := NewContext(context.Background(), &Session{UserID: "u-1"})
	s, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "u-1", s.UserID)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", hash)

	assert.NoError(t, CheckPassword(hash, "secret123"))
	assert.ErrorIs(t, CheckPassword(hash, "secret124"), ErrInvalidCredentials)
}
