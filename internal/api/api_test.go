package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/vytor/heartgame/internal/auth"
	"github.com/vytor/heartgame/internal/db"
	"github.com/vytor/heartgame/internal/logger"
	"github.com/vytor/heartgame/internal/repository/sqlite"
	"github.com/vytor/heartgame/internal/services"
	"github.com/vytor/heartgame/internal/testutil"
	"github.com/vytor/heartgame/internal/testutil/mocks"
	"github.com/vytor/heartgame/internal/worker"
)

type APITestSuite struct {
	suite.Suite
	db      *db.DB
	clock   *mocks.MockClock
	jobs    *mocks.MockJobQueue
	handler http.Handler
}

func TestAPITestSuite(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}

func (s *APITestSuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.clock = mocks.NewMockClock(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))

	scoreRepo := sqlite.NewScoreRepository(s.db)
	sessionRepo := sqlite.NewSessionRepository(s.db)
	userRepo := sqlite.NewUserRepository(s.db)
	statsRepo := sqlite.NewStatsRepository(s.db)
	tokens := auth.NewTokenManager("test-secret-0123456789", 365*24*time.Hour, s.clock)
	s.jobs = new(mocks.MockJobQueue)

	srv := &Server{
		DB:             s.db,
		ScoreService:   services.NewScoreService(scoreRepo, s.clock),
		SessionService: services.NewSessionService(sessionRepo, s.clock),
		RankingService: services.NewRankingService(statsRepo, scoreRepo, userRepo, s.clock),
		UserService:    services.NewUserService(userRepo, statsRepo, tokens, s.clock),
		Tokens:         tokens,
		Jobs:           s.jobs,
	}
	s.handler = srv.Routes()
}

func (s *APITestSuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *APITestSuite) do(method, path, token string, body any) (int, map[string]any) {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		s.Require().NoError(err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") == "application/json" {
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec.Code, out
}

// register creates a user and returns its token and id.
func (s *APITestSuite) register(username string) (string, string) {
	code, body := s.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "secret123",
	})
	s.Require().Equal(http.StatusCreated, code, body)
	user := body["user"].(map[string]any)
	return body["token"].(string), user["id"].(string)
}

func (s *APITestSuite) saveScore(token string, score int, difficulty string, correct, total int) map[string]any {
	code, body := s.do(http.MethodPost, "/api/games/save-score", token, map[string]any{
		"score":          score,
		"difficulty":     difficulty,
		"correctAnswers": correct,
		"totalQuestions": total,
	})
	s.Require().Equal(http.StatusCreated, code, body)
	return body["data"].(map[string]any)
}

func (s *APITestSuite) TestRegisterAndLogin() {
	token, id := s.register("finn")
	s.NotEmpty(token)
	s.NotEmpty(id)

	code, body := s.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "finn",
		"email":    "other@example.com",
		"password": "secret123",
	})
	s.Equal(http.StatusConflict, code)
	s.Equal(false, body["success"])
	s.Equal("CONFLICT", body["error"])

	code, body = s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"username": "finn", "password": "secret123"})
	s.Equal(http.StatusOK, code)
	s.Equal(true, body["success"])
	s.NotEmpty(body["token"])
	user := body["user"].(map[string]any)
	s.Equal("finn", user["username"])
	s.NotContains(user, "passwordHash")

	code, _ = s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "FINN@example.com", "password": "secret123"})
	s.Equal(http.StatusOK, code)

	code, body = s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"username": "finn", "password": "wrong-password"})
	s.Equal(http.StatusUnauthorized, code)
	s.Equal("UNAUTHORIZED", body["error"])
}

func (s *APITestSuite) TestRegisterValidation() {
	code, body := s.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "jake",
		"email":    "jake@example.com",
		"password": "short",
	})
	s.Equal(http.StatusBadRequest, code)
	s.Equal("VALIDATION_ERROR", body["error"])
}

func (s *APITestSuite) TestGetUser() {
	_, id := s.register("finn")

	code, body := s.do(http.MethodGet, "/api/auth/user/"+id, "", nil)
	s.Equal(http.StatusOK, code)
	s.Equal("finn", body["data"].(map[string]any)["username"])

	code, body = s.do(http.MethodGet, "/api/auth/user/missing", "", nil)
	s.Equal(http.StatusNotFound, code)
	s.Equal("NOT_FOUND", body["error"])

	code, body = s.do(http.MethodGet, "/api/auth/users", "", nil)
	s.Equal(http.StatusOK, code)
	s.Len(body["data"], 1)
}

func (s *APITestSuite) TestProtectedRoutesRequireToken() {
	code, body := s.do(http.MethodPost, "/api/games/save-score", "", map[string]any{"score": 10})
	s.Equal(http.StatusUnauthorized, code)
	s.Equal(false, body["success"])

	code, _ = s.do(http.MethodGet, "/api/games/stats", "not-a-token", nil)
	s.Equal(http.StatusUnauthorized, code)

	code, body = s.do(http.MethodGet, "/api/games/leaderboard", "", nil)
	s.Equal(http.StatusOK, code)
	s.Equal([]any{}, body["data"])
}

func (s *APITestSuite) TestSaveScoreUpdatesStats() {
	token, id := s.register("finn")

	rec := s.saveScore(token, 50, "Easy", 5, 5)
	s.Equal(id, rec["userId"])
	s.Equal("finn", rec["username"])
	s.Equal(float64(50), rec["score"])
	s.Equal("completed", rec["status"])
	s.Equal("main", rec["gameType"])

	code, body := s.do(http.MethodGet, "/api/games/user-stats/"+id, token, nil)
	s.Require().Equal(http.StatusOK, code)
	stats := body["data"].(map[string]any)
	overall := stats["overallStats"].(map[string]any)
	s.Equal(float64(50), overall["totalScore"])
	s.Equal(float64(1), overall["totalGames"])
	s.Equal(float64(100), overall["accuracy"])
	s.Equal(float64(1), stats["rank"])
	s.Equal("finn", stats["user"].(map[string]any)["username"])

	code, body = s.do(http.MethodGet, "/api/auth/user/"+id, "", nil)
	s.Require().Equal(http.StatusOK, code)
	user := body["data"].(map[string]any)
	s.Equal(float64(50), user["totalScore"])
	s.Equal(float64(1), user["gamesPlayed"])
	s.Equal(float64(5), user["correctAnswers"])
}

func (s *APITestSuite) TestSaveScoreValidation() {
	token, _ := s.register("finn")

	cases := []struct {
		name string
		body any
		code string
	}{
		{"negative score", map[string]any{"score": -1}, "VALIDATION_ERROR"},
		{"missing score", map[string]any{"difficulty": "Easy"}, "VALIDATION_ERROR"},
		{"bad difficulty", map[string]any{"score": 10, "difficulty": "Impossible"}, "VALIDATION_ERROR"},
		{"bad game type", map[string]any{"score": 10, "gameType": "bonus"}, "VALIDATION_ERROR"},
		{"too many correct", map[string]any{"score": 10, "correctAnswers": 3, "totalQuestions": 2}, "VALIDATION_ERROR"},
		{"malformed body", "{not json", "BAD_REQUEST"},
	}
	for _, tc := range cases {
		code, body := s.do(http.MethodPost, "/api/games/save-score", token, tc.body)
		s.Equal(http.StatusBadRequest, code, tc.name)
		s.Equal(tc.code, body["error"], tc.name)
		s.Equal(false, body["success"], tc.name)
		s.NotEmpty(body["message"], tc.name)
	}

	code, body := s.do(http.MethodGet, "/api/games/stats", token, nil)
	s.Require().Equal(http.StatusOK, code)
	s.Equal(float64(0), body["data"].(map[string]any)["totalGames"])
}

func (s *APITestSuite) TestSaveMiniGame() {
	token, _ := s.register("finn")

	code, body := s.do(http.MethodPost, "/api/games/save-mini-game", token, map[string]any{
		"score":      20,
		"difficulty": "Hard",
	})
	s.Require().Equal(http.StatusCreated, code, body)
	rec := body["data"].(map[string]any)
	s.Equal("mini", rec["gameType"])
	s.Equal("Easy", rec["difficulty"])
	s.Equal("completed", rec["status"])
}

func (s *APITestSuite) TestDailyLeaderboardExcludesOldRecords() {
	token, id := s.register("finn")
	s.saveScore(token, 30, "Easy", 3, 3)

	s.clock.Advance(48 * time.Hour)
	s.saveScore(token, 20, "Medium", 2, 2)

	code, body := s.do(http.MethodGet, "/api/games/leaderboard?timeFrame=daily", "", nil)
	s.Require().Equal(http.StatusOK, code)
	s.Equal("daily", body["timeFrame"])
	entries := body["data"].([]any)
	s.Require().Len(entries, 1)
	entry := entries[0].(map[string]any)
	s.Equal(id, entry["userId"])
	s.Equal(float64(20), entry["totalScore"])
	s.Equal(float64(1), entry["gamesPlayed"])

	code, body = s.do(http.MethodGet, "/api/games/leaderboard", "", nil)
	s.Require().Equal(http.StatusOK, code)
	s.Equal("all", body["timeFrame"])
	s.Equal("all", body["difficulty"])
	entry = body["data"].([]any)[0].(map[string]any)
	s.Equal(float64(50), entry["totalScore"])
	s.Equal(float64(2), entry["gamesPlayed"])
	s.Equal(float64(25), entry["avgScore"])
	s.Equal(float64(1), entry["rank"])

	code, body = s.do(http.MethodGet, "/api/games/leaderboard?difficulty=Medium", "", nil)
	s.Require().Equal(http.StatusOK, code)
	s.Equal(float64(20), body["data"].([]any)[0].(map[string]any)["totalScore"])
}

func (s *APITestSuite) TestLeaderboardRejectsBadFilters() {
	code, body := s.do(http.MethodGet, "/api/games/leaderboard?timeFrame=yearly", "", nil)
	s.Equal(http.StatusBadRequest, code)
	s.Equal("VALIDATION_ERROR", body["error"])

	code, _ = s.do(http.MethodGet, "/api/games/leaderboard?difficulty=Impossible", "", nil)
	s.Equal(http.StatusBadRequest, code)
}

func (s *APITestSuite) TestLeaderboardOrdersPlayers() {
	finn, _ := s.register("finn")
	jake, _ := s.register("jake")
	bubblegum, _ := s.register("bubblegum")
	s.saveScore(finn, 40, "Easy", 4, 4)
	s.saveScore(jake, 70, "Hard", 7, 7)
	s.saveScore(bubblegum, 10, "Easy", 1, 1)

	code, body := s.do(http.MethodGet, "/api/games/leaderboard?limit=2", "", nil)
	s.Require().Equal(http.StatusOK, code)
	entries := body["data"].([]any)
	s.Require().Len(entries, 2)
	s.Equal("jake", entries[0].(map[string]any)["username"])
	s.Equal(float64(1), entries[0].(map[string]any)["rank"])
	s.Equal("finn", entries[1].(map[string]any)["username"])
	s.Equal(float64(2), entries[1].(map[string]any)["rank"])
}

func (s *APITestSuite) TestUserScoresPagination() {
	token, id := s.register("finn")
	for i := 1; i <= 3; i++ {
		s.saveScore(token, i*10, "Easy", i, i)
		s.clock.Advance(time.Minute)
	}

	code, body := s.do(http.MethodGet, "/api/games/user-scores/"+id+"?limit=2&page=2", token, nil)
	s.Require().Equal(http.StatusOK, code)
	records := body["data"].([]any)
	s.Require().Len(records, 1)
	s.Equal(float64(10), records[0].(map[string]any)["score"])

	pagination := body["pagination"].(map[string]any)
	s.Equal(float64(2), pagination["page"])
	s.Equal(float64(2), pagination["limit"])
	s.Equal(float64(3), pagination["total"])
	s.Equal(float64(2), pagination["pages"])

	code, body = s.do(http.MethodGet, "/api/games/user-scores/nobody", token, nil)
	s.Require().Equal(http.StatusOK, code)
	s.Equal([]any{}, body["data"])
}

func (s *APITestSuite) TestSessionLifecycle() {
	token, id := s.register("finn")

	code, body := s.do(http.MethodPost, "/api/games/save-session", token, map[string]any{"difficulty": "Hard"})
	s.Require().Equal(http.StatusCreated, code, body)
	sessionID := body["sessionId"].(string)
	s.NotEmpty(sessionID)
	s.Equal("active", body["data"].(map[string]any)["status"])

	code, body = s.do(http.MethodGet, "/api/games/active-sessions/"+id, token, nil)
	s.Require().Equal(http.StatusOK, code)
	s.Len(body["data"], 1)

	code, body = s.do(http.MethodPut, "/api/games/session/"+sessionID, token, map[string]any{
		"status":         "completed",
		"finalScore":     40,
		"correctAnswers": 4,
		"totalQuestions": 5,
		"endTime":        s.clock.Now().Add(time.Minute),
	})
	s.Require().Equal(http.StatusOK, code, body)
	session := body["data"].(map[string]any)
	s.Equal("completed", session["status"])
	s.Equal(float64(40), session["finalScore"])
	s.NotNil(session["endTime"])

	code, body = s.do(http.MethodGet, "/api/games/active-sessions/"+id, token, nil)
	s.Require().Equal(http.StatusOK, code)
	s.Equal([]any{}, body["data"])

	code, body = s.do(http.MethodPut, "/api/games/session/missing", token, map[string]any{"status": "completed"})
	s.Equal(http.StatusNotFound, code)
	s.Equal("NOT_FOUND", body["error"])

	code, _ = s.do(http.MethodPut, "/api/games/session/"+sessionID, token, map[string]any{"status": "paused"})
	s.Equal(http.StatusBadRequest, code)
}

func (s *APITestSuite) TestGlobalStats() {
	finn, _ := s.register("finn")
	jake, _ := s.register("jake")
	s.saveScore(finn, 40, "Easy", 4, 4)
	s.clock.Advance(time.Second)
	s.saveScore(jake, 30, "Hard", 3, 4)

	code, body := s.do(http.MethodGet, "/api/games/stats", finn, nil)
	s.Require().Equal(http.StatusOK, code)
	stats := body["data"].(map[string]any)
	s.Equal(float64(2), stats["totalGames"])
	s.Equal(float64(2), stats["totalPlayers"])
	s.Equal(float64(70), stats["totalScore"])
	s.Len(stats["gamesByDifficulty"], 2)

	recent := stats["recentGames"].([]any)
	s.Require().Len(recent, 2)
	first := recent[0].(map[string]any)
	s.Equal("jake", first["username"])
	s.Equal("jake", first["user"].(map[string]any)["username"])
}

func (s *APITestSuite) TestReconcileEnqueuesJob() {
	token, _ := s.register("finn")

	code, _ := s.do(http.MethodPost, "/api/games/reconcile", "", nil)
	s.Equal(http.StatusUnauthorized, code)

	s.jobs.On("EnqueueReconcile").Return(nil).Once()
	code, body := s.do(http.MethodPost, "/api/games/reconcile", token, nil)
	s.Equal(http.StatusAccepted, code)
	s.Equal(true, body["success"])
	s.NotContains(body, "data")

	s.jobs.On("EnqueueReconcile").Return(worker.ErrQueueFull).Once()
	code, body = s.do(http.MethodPost, "/api/games/reconcile", token, nil)
	s.Equal(http.StatusInternalServerError, code)
	s.Equal("INTERNAL_ERROR", body["error"])
	s.jobs.AssertExpectations(s.T())
}

func (s *APITestSuite) TestHealthEndpoints() {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("OK", rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("Ready", rec.Body.String())
	s.NotEmpty(rec.Header().Get("X-Request-ID"))
}

// captureLog routes the default logger into a buffer for the rest of the test.
func (s *APITestSuite) captureLog() *bytes.Buffer {
	var buf bytes.Buffer
	prev := logger.Default()
	logger.SetDefault(logger.New(logger.WithOutput(&buf), logger.WithLevel(logger.DEBUG), logger.WithColors(false)))
	s.T().Cleanup(func() { logger.SetDefault(prev) })
	return &buf
}

func completionLine(out string) string {
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "request completed") {
			return line
		}
	}
	return ""
}

func (s *APITestSuite) TestRequestLogCarriesUserID() {
	token, userID := s.register("gwen")
	buf := s.captureLog()

	code, _ := s.do(http.MethodGet, "/api/games/stats", token, nil)
	s.Require().Equal(http.StatusOK, code)
	line := completionLine(buf.String())
	s.Require().NotEmpty(line, buf.String())
	s.Contains(line, "user_id="+userID)
	s.Contains(line, "status=200")

	buf.Reset()
	code, _ = s.do(http.MethodGet, "/api/games/leaderboard", "", nil)
	s.Require().Equal(http.StatusOK, code)
	line = completionLine(buf.String())
	s.Require().NotEmpty(line, buf.String())
	s.NotContains(line, "user_id=")
}

func (s *APITestSuite) TestRejectedTokenLogsError() {
	buf := s.captureLog()

	code, _ := s.do(http.MethodGet, "/api/games/stats", "not-a-token", nil)
	s.Require().Equal(http.StatusUnauthorized, code)
	s.Contains(buf.String(), "client error: code=UNAUTHORIZED")
	s.Contains(buf.String(), "error=")
	s.NotContains(completionLine(buf.String()), "user_id=")
}
