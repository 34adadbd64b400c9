package models

import "time"

type User struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	Avatar         string    `json:"avatar"`
	Achievements   []string  `json:"achievements"`
	TotalScore     int       `json:"totalScore"`
	GamesPlayed    int       `json:"gamesPlayed"`
	CorrectAnswers int       `json:"correctAnswers"`
	CreatedAt      time.Time `json:"createdAt"`
}

// UserSummary is the public slice of a user shown next to stats and recent games.
type UserSummary struct {
	Username     string   `json:"username"`
	Avatar       string   `json:"avatar"`
	Achievements []string `json:"achievements"`
}

func (u *User) Summary() UserSummary {
	achievements := u.Achievements
	if achievements == nil {
		achievements = []string{}
	}
	return UserSummary{Username: u.Username, Avatar: u.Avatar, Achievements: achievements}
}

// UserAggregates are the additive counters kept on the user row.
type UserAggregates struct {
	TotalScore     int `json:"totalScore"`
	GamesPlayed    int `json:"gamesPlayed"`
	CorrectAnswers int `json:"correctAnswers"`
}

type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Avatar   string `json:"avatar,omitempty"`
}

// LoginInput accepts either a username or an email as the identifier.
type LoginInput struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

// AuthResult is returned by register and login.
type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
