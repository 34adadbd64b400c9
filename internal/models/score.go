package models

import "time"

// ScoreRecord is one finished (or abandoned) play attempt. Never updated.
type ScoreRecord struct {
	ID             string      `json:"id"`
	UserID         string      `json:"userId"`
	Username       string      `json:"username"`
	Score          int         `json:"score"`
	FinalScore     int         `json:"finalScore"`
	Difficulty     Difficulty  `json:"difficulty"`
	Status         ScoreStatus `json:"status"`
	CorrectAnswers int         `json:"correctAnswers"`
	TotalQuestions int         `json:"totalQuestions"`
	GameType       GameType    `json:"gameType"`
	SessionID      *string     `json:"sessionId"`
	TimeSpent      int         `json:"timeSpent"`
	CreatedAt      time.Time   `json:"createdAt"`
}

// ScoreFilter narrows score record queries.
type ScoreFilter struct {
	UserID     string
	Status     ScoreStatus
	Difficulty Difficulty
	Since      *time.Time
	Limit      int
	Offset     int
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// NewPagination derives the page count from total and limit.
func NewPagination(page, limit, total int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}

// RecentGame is a score record joined with its owner's directory entry.
type RecentGame struct {
	ScoreRecord
	User *UserSummary `json:"user,omitempty"`
}

// SaveScoreInput is the body of a score save. Score is a pointer so that a
// missing score can be told apart from a score of zero.
type SaveScoreInput struct {
	UserID         string      `json:"userId"`
	Username       string      `json:"username"`
	Score          *int        `json:"score"`
	Difficulty     Difficulty  `json:"difficulty"`
	Status         ScoreStatus `json:"status"`
	CorrectAnswers int         `json:"correctAnswers"`
	TotalQuestions int         `json:"totalQuestions"`
	GameType       GameType    `json:"gameType"`
	SessionID      *string     `json:"sessionId"`
	TimeSpent      int         `json:"timeSpent"`
}
