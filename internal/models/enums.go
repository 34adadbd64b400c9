package models

import "time"

type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
	DifficultyExpert Difficulty = "Expert"
)

// Difficulties lists every difficulty in ascending order.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyExpert}

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyExpert:
		return true
	}
	return false
}

// QuestionTime is the countdown for one main-game question at this difficulty.
func (d Difficulty) QuestionTime() time.Duration {
	switch d {
	case DifficultyMedium:
		return 40 * time.Second
	case DifficultyHard:
		return 30 * time.Second
	case DifficultyExpert:
		return 15 * time.Second
	default:
		return 60 * time.Second
	}
}

// ScoreStatus is the lifecycle value stored on a score record.
type ScoreStatus string

const (
	ScoreActive    ScoreStatus = "active"
	ScoreCompleted ScoreStatus = "completed"
	ScoreAbandoned ScoreStatus = "abandoned"
)

func (s ScoreStatus) Valid() bool {
	switch s {
	case ScoreActive, ScoreCompleted, ScoreAbandoned:
		return true
	}
	return false
}

type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
	SessionAbandoned SessionStatus = "abandoned"
	SessionTimeout   SessionStatus = "timeout"
)

func (s SessionStatus) Valid() bool {
	switch s {
	case SessionActive, SessionCompleted, SessionAbandoned, SessionTimeout:
		return true
	}
	return false
}

// Terminal reports whether the session has ended.
func (s SessionStatus) Terminal() bool {
	return s.Valid() && s != SessionActive
}

type GameType string

const (
	GameTypeMain GameType = "main"
	GameTypeMini GameType = "mini"
)

func (g GameType) Valid() bool {
	return g == GameTypeMain || g == GameTypeMini
}

// TimeFrame selects the leaderboard window.
type TimeFrame string

const (
	TimeFrameAll     TimeFrame = "all"
	TimeFrameDaily   TimeFrame = "daily"
	TimeFrameWeekly  TimeFrame = "weekly"
	TimeFrameMonthly TimeFrame = "monthly"
)

func (t TimeFrame) Valid() bool {
	switch t {
	case TimeFrameAll, TimeFrameDaily, TimeFrameWeekly, TimeFrameMonthly:
		return true
	}
	return false
}
