package client

import (
	"context"
	"net/url"
	"strconv"

	"github.com/vytor/heartgame/internal/game"
	"github.com/vytor/heartgame/internal/models"
)

var _ game.Reporter = (*Client)(nil)

type dataEnvelope[T any] struct {
	Data T `json:"data"`
}

func (c *Client) Register(ctx context.Context, in models.RegisterInput) (*models.AuthResult, error) {
	var out models.AuthResult
	if err := c.Post(ctx, "/api/auth/register", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, in models.LoginInput) (*models.AuthResult, error) {
	var out models.AuthResult
	if err := c.Post(ctx, "/api/auth/login", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) User(ctx context.Context, id string) (*models.User, error) {
	var out dataEnvelope[models.User]
	if err := c.Get(ctx, "/api/auth/user/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *Client) StartSession(ctx context.Context, in models.StartSessionInput) (*models.SessionRecord, error) {
	var out dataEnvelope[models.SessionRecord]
	if err := c.Post(ctx, "/api/games/save-session", in, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *Client) UpdateSession(ctx context.Context, sessionID string, update models.SessionUpdate) (*models.SessionRecord, error) {
	var out dataEnvelope[models.SessionRecord]
	if err := c.Put(ctx, "/api/games/session/"+url.PathEscape(sessionID), update, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *Client) ActiveSessions(ctx context.Context, userID string) ([]models.SessionRecord, error) {
	var out dataEnvelope[[]models.SessionRecord]
	if err := c.Get(ctx, "/api/games/active-sessions/"+url.PathEscape(userID), &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) SaveScore(ctx context.Context, in models.SaveScoreInput) (*models.ScoreRecord, error) {
	var out dataEnvelope[models.ScoreRecord]
	if err := c.Post(ctx, "/api/games/save-score", in, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *Client) SaveMiniGame(ctx context.Context, in models.SaveScoreInput) (*models.ScoreRecord, error) {
	var out dataEnvelope[models.ScoreRecord]
	if err := c.Post(ctx, "/api/games/save-mini-game", in, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *Client) UserScores(ctx context.Context, userID string, limit, page int) ([]models.ScoreRecord, models.Pagination, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	var out struct {
		Data       []models.ScoreRecord `json:"data"`
		Pagination models.Pagination    `json:"pagination"`
	}
	if err := c.Get(ctx, withQuery("/api/games/user-scores/"+url.PathEscape(userID), q), &out); err != nil {
		return nil, models.Pagination{}, err
	}
	return out.Data, out.Pagination, nil
}

func (c *Client) Leaderboard(ctx context.Context, query models.LeaderboardQuery) (*models.Leaderboard, error) {
	q := url.Values{}
	if query.Limit > 0 {
		q.Set("limit", strconv.Itoa(query.Limit))
	}
	if query.Difficulty != "" {
		q.Set("difficulty", query.Difficulty)
	}
	if query.TimeFrame != "" {
		q.Set("timeFrame", string(query.TimeFrame))
	}
	var out models.Leaderboard
	if err := c.Get(ctx, withQuery("/api/games/leaderboard", q), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UserStats(ctx context.Context, userID string) (*models.UserStats, error) {
	var out dataEnvelope[models.UserStats]
	if err := c.Get(ctx, "/api/games/user-stats/"+url.PathEscape(userID), &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *Client) GlobalStats(ctx context.Context) (*models.GlobalStats, error) {
	var out dataEnvelope[models.GlobalStats]
	if err := c.Get(ctx, "/api/games/stats", &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// Reconcile asks the server to recompute user aggregates in the background.
func (c *Client) Reconcile(ctx context.Context) error {
	return c.Post(ctx, "/api/games/reconcile", nil, nil)
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}
