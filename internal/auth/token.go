package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/vytor/heartgame/internal/clock"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Session is the authenticated caller attached to a request.
type Session struct {
	UserID    string
	Username  string
	ExpiresAt time.Time
}

type claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
}

// TokenManager issues and verifies HS256 bearer tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	clock  clock.Clock
}

func NewTokenManager(secret string, ttl time.Duration, clk clock.Clock) *TokenManager {
	if clk == nil {
		clk = clock.New()
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, clock: clk}
}

func (m *TokenManager) Issue(userID, username string) (string, error) {
	now := m.clock.Now()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		Username: username,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

func (m *TokenManager) Verify(token string) (*Session, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.clock.Now),
		jwt.WithExpirationRequired(),
	)
	c := &claims{}
	parsed, err := parser.ParseWithClaims(token, c, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil || !parsed.Valid || c.Subject == "" {
		return nil, ErrInvalidToken
	}
	return &Session{
		UserID:    c.Subject,
		Username:  c.Username,
		ExpiresAt: c.ExpiresAt.Time,
	}, nil
}

// Peek reads the session out of a token without checking its signature.
// Clients use it to learn who they are logged in as.
func Peek(token string) (*Session, error) {
	c := &claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, c); err != nil || c.Subject == "" {
		return nil, ErrInvalidToken
	}
	s := &Session{UserID: c.Subject, Username: c.Username}
	if c.ExpiresAt != nil {
		s.ExpiresAt = c.ExpiresAt.Time
	}
	return s, nil
}

type ctxKey struct{}

func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok && s != nil
}
