package heartapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/vytor/heartgame/internal/logger"
)

// DefaultBaseURL is the public heart puzzle endpoint.
const DefaultBaseURL = "https://marcconrad.com/uob/heart/api.php"

// Puzzle is one "how many hearts" image and its answer.
type Puzzle struct {
	Question string `json:"question"`
	Solution int    `json:"solution"`
}

// Fetcher fetches puzzles from the heart API.
type Fetcher interface {
	FetchPuzzle(ctx context.Context) (*Puzzle, error)
}

var _ Fetcher = (*Client)(nil)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) FetchPuzzle(ctx context.Context) (*Puzzle, error) {
	log := logger.FromContext(ctx).WithPrefix("heartapi")

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse heart api url: %w", err)
	}
	q := u.Query()
	q.Set("out", "json")
	u.RawQuery = q.Encode()

	log.Debug("fetching puzzle from: %s", u.String())
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		log.Error("failed to create request: %v", err)
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("failed to fetch puzzle: %v", err)
		return nil, err
	}
	defer resp.Body.Close()

	log.Debug("puzzle response received in %v, status=%d", time.Since(start), resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Error("puzzle request failed: status=%d, body=%s", resp.StatusCode, string(body))
		return nil, fmt.Errorf("heart api status %d: %s", resp.StatusCode, string(body))
	}

	var p Puzzle
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		log.Error("failed to decode puzzle response: %v", err)
		return nil, err
	}
	if p.Question == "" {
		return nil, fmt.Errorf("heart api returned an empty question")
	}
	if p.Solution < 0 {
		return nil, fmt.Errorf("heart api returned negative solution %d", p.Solution)
	}

	log.Debug("fetched puzzle with solution=%d", p.Solution)
	return &p, nil
}
