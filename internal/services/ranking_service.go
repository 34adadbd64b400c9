package services

import (
	"context"
	stderrors "errors"

	"github.com/vytor/heartgame/internal/clock"
	"github.com/vytor/heartgame/internal/errors"
	"github.com/vytor/heartgame/internal/logger"
	"github.com/vytor/heartgame/internal/models"
	"github.com/vytor/heartgame/internal/ranking"
	"github.com/vytor/heartgame/internal/repository"
)

const recentGamesLimit = 10

// RankingService computes leaderboards and statistics from completed score records
type RankingService interface {
	Leaderboard(ctx context.Context, query models.LeaderboardQuery) (*models.Leaderboard, error)
	UserRank(ctx context.Context, userID string) (*int, error)
	UserStats(ctx context.Context, userID string) (*models.UserStats, error)
	GlobalStats(ctx context.Context) (*models.GlobalStats, error)
}

type rankingService struct {
	statsRepo repository.StatsRepository
	scoreRepo repository.ScoreRepository
	userRepo  repository.UserRepository
	clock     clock.Clock
}

// NewRankingService creates a new RankingService
func NewRankingService(statsRepo repository.StatsRepository, scoreRepo repository.ScoreRepository, userRepo repository.UserRepository, clk clock.Clock) RankingService {
	return &rankingService{
		statsRepo: statsRepo,
		scoreRepo: scoreRepo,
		userRepo:  userRepo,
		clock:     clk,
	}
}

func (s *rankingService) Leaderboard(ctx context.Context, q models.LeaderboardQuery) (*models.Leaderboard, error) {
	log := logger.FromContext(ctx)
	log.Debug("building leaderboard: limit=%d, difficulty=%s, time_frame=%s", q.Limit, q.Difficulty, q.TimeFrame)

	frame := q.TimeFrame
	if frame == "" {
		frame = models.TimeFrameAll
	}
	now := s.clock.Now()
	window, err := ranking.Window(frame, now)
	if err != nil {
		return nil, err
	}

	filter := repository.StatsFilter{}
	if !window.Unbounded() {
		from := window.From
		filter.Since = &from
	}
	difficulty := q.Difficulty
	if difficulty == "" || difficulty == "all" {
		difficulty = "all"
	} else {
		d := models.Difficulty(difficulty)
		if !d.Valid() {
			return nil, errors.NewValidationError("difficulty", "must be one of all, Easy, Medium, Hard, Expert")
		}
		filter.Difficulty = d
	}

	rows, err := s.statsRepo.CompletedRows(ctx, filter)
	if err != nil {
		log.Error("failed to fetch completed rows: %v", err)
		return nil, errors.NewStoreError("fetching leaderboard", err)
	}

	entries := ranking.Rank(ranking.Aggregate(rows), clampLimit(q.Limit))
	log.Debug("leaderboard built: %d entries from %d rows", len(entries), len(rows))
	return &models.Leaderboard{
		Entries:    entries,
		TimeFrame:  frame,
		Difficulty: difficulty,
		UpdatedAt:  now.UTC(),
	}, nil
}

func (s *rankingService) UserRank(ctx context.Context, userID string) (*int, error) {
	log := logger.FromContext(ctx)
	if err := requireString("userId", userID); err != nil {
		return nil, err
	}
	rank, err := s.statsRepo.UserRank(ctx, userID)
	if err != nil {
		log.Error("failed to compute user rank: %v", err)
		return nil, errors.NewStoreError("computing user rank", err)
	}
	return rank, nil
}

func (s *rankingService) UserStats(ctx context.Context, userID string) (*models.UserStats, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting user stats: user_id=%s", userID)

	if err := requireString("userId", userID); err != nil {
		return nil, err
	}

	overall, err := s.statsRepo.OverallStats(ctx, userID)
	if err != nil {
		log.Error("failed to fetch overall stats: %v", err)
		return nil, errors.NewStoreError("fetching user stats", err)
	}
	if overall.TotalGames > 0 {
		overall.AvgScore = ranking.Round2(float64(overall.TotalScore) / float64(overall.TotalGames))
		overall.Accuracy = ranking.Accuracy(overall.TotalCorrectAnswers, overall.TotalQuestions)
	} else {
		*overall = models.OverallStats{}
	}

	perDifficulty, err := s.statsRepo.DifficultyStats(ctx, userID)
	if err != nil {
		log.Error("failed to fetch difficulty stats: %v", err)
		return nil, errors.NewStoreError("fetching user stats", err)
	}
	for i := range perDifficulty {
		d := &perDifficulty[i]
		if d.GamesPlayed > 0 {
			d.AvgScore = ranking.Round2(float64(d.TotalScore) / float64(d.GamesPlayed))
		}
	}
	if perDifficulty == nil {
		perDifficulty = []models.DifficultyStat{}
	}

	summary := models.UserSummary{Achievements: []string{}}
	user, err := s.userRepo.Get(ctx, userID)
	switch {
	case err == nil:
		summary = user.Summary()
	case stderrors.Is(err, repository.ErrNotFound):
		log.Debug("user stats requested for unknown user: user_id=%s", userID)
	default:
		log.Error("failed to fetch user: %v", err)
		return nil, errors.NewStoreError("fetching user stats", err)
	}

	rank, err := s.UserRank(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &models.UserStats{
		User:            summary,
		OverallStats:    *overall,
		DifficultyStats: perDifficulty,
		Rank:            rank,
	}, nil
}

func (s *rankingService) GlobalStats(ctx context.Context) (*models.GlobalStats, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting global stats")

	games, players, score, err := s.statsRepo.GlobalTotals(ctx)
	if err != nil {
		log.Error("failed to fetch global totals: %v", err)
		return nil, errors.NewStoreError("fetching game stats", err)
	}
	byDifficulty, err := s.statsRepo.GamesByDifficulty(ctx)
	if err != nil {
		log.Error("failed to fetch games by difficulty: %v", err)
		return nil, errors.NewStoreError("fetching game stats", err)
	}
	if byDifficulty == nil {
		byDifficulty = []models.DifficultyCount{}
	}
	records, err := s.scoreRepo.Recent(ctx, recentGamesLimit)
	if err != nil {
		log.Error("failed to fetch recent games: %v", err)
		return nil, errors.NewStoreError("fetching game stats", err)
	}

	owners := make(map[string]*models.UserSummary)
	recent := make([]models.RecentGame, 0, len(records))
	for _, rec := range records {
		summary, seen := owners[rec.UserID]
		if !seen {
			user, err := s.userRepo.Get(ctx, rec.UserID)
			switch {
			case err == nil:
				sum := user.Summary()
				summary = &sum
			case stderrors.Is(err, repository.ErrNotFound):
			default:
				log.Error("failed to fetch owner of recent game: %v", err)
				return nil, errors.NewStoreError("fetching game stats", err)
			}
			owners[rec.UserID] = summary
		}
		recent = append(recent, models.RecentGame{ScoreRecord: rec, User: summary})
	}

	return &models.GlobalStats{
		TotalGames:        games,
		TotalPlayers:      players,
		TotalScore:        score,
		GamesByDifficulty: byDifficulty,
		RecentGames:       recent,
	}, nil
}
