// Package ranking holds the pure leaderboard arithmetic: time windows,
// per-user aggregation and rank assignment.
package ranking

import (
	"math"
	"sort"
	"time"

	apperrors "github.com/vytor/heartgame/internal/errors"
	"github.com/vytor/heartgame/internal/models"
)

// Interval is the open-ended time range starting at From. A zero From covers all time.
type Interval struct {
	From time.Time
}

func (i Interval) Unbounded() bool {
	return i.From.IsZero()
}

// Window returns the creation-time interval a leaderboard frame covers at now.
// An empty frame means all time.
func Window(frame models.TimeFrame, now time.Time) (Interval, error) {
	switch frame {
	case "", models.TimeFrameAll:
		return Interval{}, nil
	case models.TimeFrameDaily:
		y, m, d := now.Date()
		return Interval{From: time.Date(y, m, d, 0, 0, 0, 0, now.Location())}, nil
	case models.TimeFrameWeekly:
		return Interval{From: now.Add(-7 * 24 * time.Hour)}, nil
	case models.TimeFrameMonthly:
		y, m, d := now.Date()
		return Interval{From: time.Date(y, m-1, d, 0, 0, 0, 0, now.Location())}, nil
	default:
		return Interval{}, apperrors.NewValidationError("timeFrame", "must be one of all, daily, weekly, monthly")
	}
}

// Aggregate groups rows by user. Rows must arrive in creation order so the
// first username seen for a user wins.
func Aggregate(rows []models.ScoreRow) []models.LeaderboardEntry {
	index := make(map[string]int)
	var entries []models.LeaderboardEntry
	for _, row := range rows {
		i, ok := index[row.UserID]
		if !ok {
			i = len(entries)
			index[row.UserID] = i
			entries = append(entries, models.LeaderboardEntry{
				UserID:     row.UserID,
				Username:   row.Username,
				LastPlayed: row.CreatedAt,
			})
		}
		e := &entries[i]
		e.TotalScore += row.Score
		e.GamesPlayed++
		if row.CreatedAt.After(e.LastPlayed) {
			e.LastPlayed = row.CreatedAt
		}
	}
	for i := range entries {
		entries[i].AvgScore = Round2(float64(entries[i].TotalScore) / float64(entries[i].GamesPlayed))
	}
	return entries
}

// Rank orders entries by total score descending, keeps at most limit and
// numbers them 1..N. Equal totals keep their input order and still get
// distinct ranks.
func Rank(entries []models.LeaderboardEntry, limit int) []models.LeaderboardEntry {
	ranked := make([]models.LeaderboardEntry, len(entries))
	copy(ranked, entries)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalScore > ranked[j].TotalScore
	})
	if limit >= 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// Accuracy is the rounded percentage of correct answers, 0 when nothing was asked.
func Accuracy(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}

func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}
