package services

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/google/uuid"
	"github.com/vytor/heartgame/internal/auth"
	"github.com/vytor/heartgame/internal/clock"
	"github.com/vytor/heartgame/internal/errors"
	"github.com/vytor/heartgame/internal/logger"
	"github.com/vytor/heartgame/internal/models"
	"github.com/vytor/heartgame/internal/repository"
)

// TokenIssuer signs bearer tokens for authenticated users
type TokenIssuer interface {
	Issue(userID, username string) (string, error)
}

// UserService handles the user directory and credential checks
type UserService interface {
	Register(ctx context.Context, input models.RegisterInput) (*models.AuthResult, error)
	Login(ctx context.Context, input models.LoginInput) (*models.AuthResult, error)
	Get(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	// ReconcileAggregates rewrites every user's counters from the stored score records.
	ReconcileAggregates(ctx context.Context) (int, error)
}

type userService struct {
	userRepo  repository.UserRepository
	statsRepo repository.StatsRepository
	tokens    TokenIssuer
	clock     clock.Clock
	newID     func() string
}

// NewUserService creates a new UserService
func NewUserService(userRepo repository.UserRepository, statsRepo repository.StatsRepository, tokens TokenIssuer, clk clock.Clock) UserService {
	return &userService{
		userRepo:  userRepo,
		statsRepo: statsRepo,
		tokens:    tokens,
		clock:     clk,
		newID:     uuid.NewString,
	}
}

func (s *userService) Register(ctx context.Context, in models.RegisterInput) (*models.AuthResult, error) {
	log := logger.FromContext(ctx)
	log.Debug("registering user: username=%s", in.Username)

	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := requireString("username", in.Username); err != nil {
		return nil, err
	}
	if err := requireString("email", in.Email); err != nil {
		return nil, err
	}
	if !strings.Contains(in.Email, "@") {
		return nil, errors.NewValidationError("email", "must be a valid email address")
	}
	if len(in.Password) < auth.MinPasswordLength {
		return nil, errors.NewValidationError("password", "must be at least 6 characters")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		log.Error("failed to hash password: %v", err)
		return nil, errors.NewInternalError(err)
	}

	user := models.User{
		ID:           s.newID(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Avatar:       in.Avatar,
		Achievements: []string{},
		CreatedAt:    s.clock.Now().UTC(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if stderrors.Is(err, repository.ErrDuplicate) {
			return nil, errors.NewConflictError("username or email already registered")
		}
		log.Error("failed to create user: %v", err)
		return nil, errors.NewStoreError("registering user", err)
	}

	log.Info("user registered: id=%s, username=%s", user.ID, user.Username)
	return s.authResult(user)
}

func (s *userService) Login(ctx context.Context, in models.LoginInput) (*models.AuthResult, error) {
	log := logger.FromContext(ctx)

	if in.Password == "" || (strings.TrimSpace(in.Username) == "" && strings.TrimSpace(in.Email) == "") {
		return nil, errors.NewValidationError("credentials", "username or email and password are required")
	}

	var user *models.User
	var err error
	if in.Username != "" {
		user, err = s.userRepo.GetByUsername(ctx, strings.TrimSpace(in.Username))
	} else {
		user, err = s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(in.Email)))
	}
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			log.Debug("login for unknown user")
			return nil, errors.NewUnauthorizedError("invalid credentials")
		}
		log.Error("failed to look up user: %v", err)
		return nil, errors.NewStoreError("logging in", err)
	}
	if err := auth.CheckPassword(user.PasswordHash, in.Password); err != nil {
		log.Debug("bad password for user_id=%s", user.ID)
		return nil, errors.NewUnauthorizedError("invalid credentials")
	}

	log.Info("user logged in: id=%s", user.ID)
	return s.authResult(*user)
}

func (s *userService) authResult(user models.User) (*models.AuthResult, error) {
	token, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	return &models.AuthResult{Token: token, User: user}, nil
}

func (s *userService) Get(ctx context.Context, id string) (*models.User, error) {
	log := logger.FromContext(ctx)
	user, err := s.userRepo.Get(ctx, id)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NewNotFoundError("user", id)
		}
		log.Error("failed to get user: %v", err)
		return nil, errors.NewStoreError("fetching user", err)
	}
	return user, nil
}

func (s *userService) List(ctx context.Context) ([]models.User, error) {
	log := logger.FromContext(ctx)
	users, err := s.userRepo.List(ctx)
	if err != nil {
		log.Error("failed to list users: %v", err)
		return nil, errors.NewStoreError("fetching users", err)
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

func (s *userService) ReconcileAggregates(ctx context.Context) (int, error) {
	log := logger.FromContext(ctx)
	log.Debug("reconciling user aggregates")

	drifted, err := s.statsRepo.RecomputeUserAggregates(ctx)
	if err != nil {
		log.Error("failed to recompute aggregates: %v", err)
		return 0, errors.NewStoreError("reconciling aggregates", err)
	}
	if len(drifted) == 0 {
		log.Debug("user aggregates already consistent")
		return 0, nil
	}
	for _, id := range drifted {
		log.Warn("aggregate drift repaired for user_id=%s", id)
	}
	log.Info("reconciled aggregates for %d users", len(drifted))
	return len(drifted), nil
}
