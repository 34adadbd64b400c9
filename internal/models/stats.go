package models

import "time"

// ScoreRow is the minimal projection the ranking aggregation works on.
type ScoreRow struct {
	UserID    string
	Username  string
	Score     int
	CreatedAt time.Time
}

type LeaderboardEntry struct {
	Rank        int       `json:"rank"`
	UserID      string    `json:"userId"`
	Username    string    `json:"username"`
	TotalScore  int       `json:"totalScore"`
	GamesPlayed int       `json:"gamesPlayed"`
	AvgScore    float64   `json:"avgScore"`
	LastPlayed  time.Time `json:"lastPlayed"`
}

type Leaderboard struct {
	Entries    []LeaderboardEntry `json:"data"`
	TimeFrame  TimeFrame          `json:"timeFrame"`
	Difficulty string             `json:"difficulty"`
	UpdatedAt  time.Time          `json:"updatedAt"`
}

// OverallStats aggregates a user's completed records.
type OverallStats struct {
	TotalScore          int     `json:"totalScore"`
	TotalGames          int     `json:"totalGames"`
	TotalCorrectAnswers int     `json:"totalCorrectAnswers"`
	TotalQuestions      int     `json:"totalQuestions"`
	AvgScore            float64 `json:"avgScore"`
	BestScore           int     `json:"bestScore"`
	Accuracy            int     `json:"accuracy"`
}

type DifficultyStat struct {
	Difficulty  Difficulty `json:"difficulty"`
	GamesPlayed int        `json:"gamesPlayed"`
	TotalScore  int        `json:"totalScore"`
	AvgScore    float64    `json:"avgScore"`
	BestScore   int        `json:"bestScore"`
}

type UserStats struct {
	User            UserSummary      `json:"user"`
	OverallStats    OverallStats     `json:"overallStats"`
	DifficultyStats []DifficultyStat `json:"difficultyStats"`
	Rank            *int             `json:"rank"`
}

type DifficultyCount struct {
	Difficulty Difficulty `json:"difficulty"`
	Count      int        `json:"count"`
}

type GlobalStats struct {
	TotalGames        int               `json:"totalGames"`
	TotalPlayers      int               `json:"totalPlayers"`
	TotalScore        int               `json:"totalScore"`
	GamesByDifficulty []DifficultyCount `json:"gamesByDifficulty"`
	RecentGames       []RecentGame      `json:"recentGames"`
}

type LeaderboardQuery struct {
	Limit      int
	Difficulty string
	TimeFrame  TimeFrame
}
