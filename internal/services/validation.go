package services

import (
	"strings"

	"github.com/vytor/heartgame/internal/errors"
	"github.com/vytor/heartgame/internal/models"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultPageSize
	}
	if limit > maxPageSize {
		return maxPageSize
	}
	return limit
}

func requireString(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.NewValidationError(field, "is required")
	}
	return nil
}

func requireNonNegative(field string, value int) error {
	if value < 0 {
		return errors.NewValidationError(field, "must not be negative")
	}
	return nil
}

func checkAnswerCounts(correct, total int) error {
	if err := requireNonNegative("correctAnswers", correct); err != nil {
		return err
	}
	if err := requireNonNegative("totalQuestions", total); err != nil {
		return err
	}
	if correct > total {
		return errors.NewValidationError("correctAnswers", "cannot exceed totalQuestions")
	}
	return nil
}

func parseDifficulty(d models.Difficulty) (models.Difficulty, error) {
	if d == "" {
		return models.DifficultyEasy, nil
	}
	if !d.Valid() {
		return "", errors.NewValidationError("difficulty", "must be one of Easy, Medium, Hard, Expert")
	}
	return d, nil
}

func parseGameType(g models.GameType) (models.GameType, error) {
	if g == "" {
		return models.GameTypeMain, nil
	}
	if !g.Valid() {
		return "", errors.NewValidationError("gameType", "must be main or mini")
	}
	return g, nil
}
