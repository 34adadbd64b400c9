package models

import "time"

type SessionRecord struct {
	SessionID      string        `json:"sessionId"`
	UserID         string        `json:"userId"`
	Username       string        `json:"username"`
	Difficulty     Difficulty    `json:"difficulty"`
	GameType       GameType      `json:"gameType"`
	StartTime      time.Time     `json:"startTime"`
	EndTime        *time.Time    `json:"endTime"`
	Status         SessionStatus `json:"status"`
	FinalScore     int           `json:"finalScore"`
	CorrectAnswers int           `json:"correctAnswers"`
	TotalQuestions int           `json:"totalQuestions"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

// SessionUpdate carries the fields of an end-of-session update. Nil fields
// are left untouched.
type SessionUpdate struct {
	EndTime        *time.Time     `json:"endTime,omitempty"`
	Status         *SessionStatus `json:"status,omitempty"`
	FinalScore     *int           `json:"finalScore,omitempty"`
	CorrectAnswers *int           `json:"correctAnswers,omitempty"`
	TotalQuestions *int           `json:"totalQuestions,omitempty"`
}

// Empty reports whether the update would change nothing.
func (u SessionUpdate) Empty() bool {
	return u.EndTime == nil && u.Status == nil && u.FinalScore == nil &&
		u.CorrectAnswers == nil && u.TotalQuestions == nil
}

type StartSessionInput struct {
	UserID     string        `json:"userId"`
	Username   string        `json:"username"`
	Difficulty Difficulty    `json:"difficulty"`
	GameType   GameType      `json:"gameType"`
	StartTime  *time.Time    `json:"startTime,omitempty"`
	Status     SessionStatus `json:"status,omitempty"`
}
