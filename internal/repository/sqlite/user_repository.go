package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/heartgame/internal/db"
	"github.com/vytor/heartgame/internal/logger"
	"github.com/vytor/heartgame/internal/models"
	"github.com/vytor/heartgame/internal/repository"
)

var userColumns = []string{
	"id", "username", "email", "password_hash", "avatar", "achievements",
	"total_score", "games_played", "correct_answers", "created_at",
}

type userRepository struct {
	db *db.DB
}

// NewUserRepository creates a new UserRepository implementation
func NewUserRepository(db *db.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, u models.User) error {
	log := logger.FromContext(ctx).WithPrefix("user_repo")
	log.Debug("creating user: username=%s", u.Username)

	achievements := u.Achievements
	if achievements == nil {
		achievements = []string{}
	}
	encoded, err := json.Marshal(achievements)
	if err != nil {
		return err
	}

	query, args, err := r.db.Builder().Insert("users").
		Columns(userColumns...).
		Values(u.ID, u.Username, u.Email, u.PasswordHash, u.Avatar, string(encoded),
			u.TotalScore, u.GamesPlayed, u.CorrectAnswers, db.Millis(u.CreatedAt)).
		ToSql()
	if err != nil {
		log.Error("failed to build insert: %v", err)
		return err
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			log.Debug("user already exists: username=%s", u.Username)
			return repository.ErrDuplicate
		}
		log.Error("failed to create user: %v", err)
		return err
	}
	log.Debug("user created: id=%s", u.ID)
	return nil
}

func (r *userRepository) Get(ctx context.Context, id string) (*models.User, error) {
	return r.getBy(ctx, "id", id)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getBy(ctx, "username", username)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getBy(ctx, "email", email)
}

func (r *userRepository) getBy(ctx context.Context, column, value string) (*models.User, error) {
	log := logger.FromContext(ctx).WithPrefix("user_repo")
	log.Debug("getting user: %s=%s", column, value)

	query, args, err := r.db.Builder().Select(userColumns...).
		From("users").
		Where(squirrel.Eq{column: value}).
		ToSql()
	if err != nil {
		return nil, err
	}
	u, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("user not found: %s=%s", column, value)
			return nil, repository.ErrNotFound
		}
		log.Error("failed to get user: %v", err)
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) List(ctx context.Context) ([]models.User, error) {
	log := logger.FromContext(ctx).WithPrefix("user_repo")
	log.Debug("listing users")

	query, args, err := r.db.Builder().Select(userColumns...).
		From("users").
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list users: %v", err)
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			log.Error("failed to scan user row: %v", err)
			return nil, err
		}
		users = append(users, u)
	}
	log.Debug("found %d users", len(users))
	return users, rows.Err()
}

func scanUser(row rowScanner) (models.User, error) {
	var u models.User
	var achievements string
	var createdAt int64
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Avatar, &achievements,
		&u.TotalScore, &u.GamesPlayed, &u.CorrectAnswers, &createdAt)
	if err != nil {
		return u, err
	}
	u.Achievements = []string{}
	if achievements != "" {
		if err := json.Unmarshal([]byte(achievements), &u.Achievements); err != nil {
			return u, err
		}
	}
	u.CreatedAt = db.FromMillis(createdAt)
	return u, nil
}
