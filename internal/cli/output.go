package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/vytor/heartgame/internal/auth"
	"github.com/vytor/heartgame/internal/models"
)

const timeLayout = "2006-01-02 15:04"

// History is one page of a player's score records.
type History struct {
	Records    []models.ScoreRecord `json:"data"`
	Pagination models.Pagination    `json:"pagination"`
}

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		o.printJSON(map[string]string{"message": msg})
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case *models.AuthResult:
		fmt.Fprintf(o.w, "Logged in as %s (%s)\n", v.User.Username, v.User.ID)
	case *auth.Session:
		o.printSession(v)
	case *models.Leaderboard:
		o.printLeaderboard(v)
	case *models.UserStats:
		o.printUserStats(v)
	case *models.GlobalStats:
		o.printGlobalStats(v)
	case *History:
		o.printHistory(v)
	case []models.SessionRecord:
		o.printSessions(v)
	default:
		o.printJSON(data)
	}
}

func (o *Output) printSession(s *auth.Session) {
	fmt.Fprintf(o.w, "User: %s (%s)\n", s.Username, s.UserID)
	if !s.ExpiresAt.IsZero() {
		fmt.Fprintf(o.w, "Token expires: %s\n", s.ExpiresAt.Local().Format(timeLayout))
	}
}

func (o *Output) printLeaderboard(b *models.Leaderboard) {
	difficulty := b.Difficulty
	if difficulty == "" {
		difficulty = "all"
	}
	fmt.Fprintf(o.w, "Leaderboard: %s, difficulty %s\n", b.TimeFrame, difficulty)
	if len(b.Entries) == 0 {
		fmt.Fprintln(o.w, "No games yet.")
		return
	}
	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tPLAYER\tSCORE\tGAMES\tAVG\tLAST PLAYED")
	for _, e := range b.Entries {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%.2f\t%s\n",
			e.Rank, e.Username, e.TotalScore, e.GamesPlayed, e.AvgScore, formatTime(e.LastPlayed))
	}
	_ = tw.Flush()
}

func (o *Output) printUserStats(s *models.UserStats) {
	fmt.Fprintf(o.w, "Player: %s\n", s.User.Username)
	if s.Rank != nil {
		fmt.Fprintf(o.w, "Rank: #%d\n", *s.Rank)
	} else {
		fmt.Fprintln(o.w, "Rank: unranked")
	}
	st := s.OverallStats
	fmt.Fprintf(o.w, "Games: %d  Total score: %d  Best: %d  Average: %.2f\n",
		st.TotalGames, st.TotalScore, st.BestScore, st.AvgScore)
	fmt.Fprintf(o.w, "Answers: %d/%d correct (%d%%)\n", st.TotalCorrectAnswers, st.TotalQuestions, st.Accuracy)

	if len(s.DifficultyStats) == 0 {
		return
	}
	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DIFFICULTY\tGAMES\tSCORE\tAVG\tBEST")
	for _, d := range s.DifficultyStats {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.2f\t%d\n", d.Difficulty, d.GamesPlayed, d.TotalScore, d.AvgScore, d.BestScore)
	}
	_ = tw.Flush()
}

func (o *Output) printGlobalStats(s *models.GlobalStats) {
	fmt.Fprintf(o.w, "Players: %d  Games: %d  Total score: %d\n", s.TotalPlayers, s.TotalGames, s.TotalScore)
	for _, d := range s.GamesByDifficulty {
		fmt.Fprintf(o.w, "  %s: %d\n", d.Difficulty, d.Count)
	}
	if len(s.RecentGames) == 0 {
		return
	}
	fmt.Fprintln(o.w, "Recent games:")
	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)
	for _, g := range s.RecentGames {
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%d\n", formatTime(g.CreatedAt), g.Username, g.Difficulty, g.Score)
	}
	_ = tw.Flush()
}

func (o *Output) printHistory(h *History) {
	if len(h.Records) == 0 {
		fmt.Fprintln(o.w, "No games yet.")
		return
	}
	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PLAYED\tDIFFICULTY\tTYPE\tSCORE\tCORRECT\tSTATUS")
	for _, r := range h.Records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d/%d\t%s\n",
			formatTime(r.CreatedAt), r.Difficulty, r.GameType, r.Score, r.CorrectAnswers, r.TotalQuestions, r.Status)
	}
	_ = tw.Flush()
	p := h.Pagination
	fmt.Fprintf(o.w, "Page %d of %d (%d games)\n", p.Page, p.Pages, p.Total)
}

func (o *Output) printSessions(sessions []models.SessionRecord) {
	if len(sessions) == 0 {
		fmt.Fprintln(o.w, "No active sessions.")
		return
	}
	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SESSION\tDIFFICULTY\tSTARTED\tSTATUS")
	for _, s := range sessions {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.SessionID, s.Difficulty, formatTime(s.StartTime), s.Status)
	}
	_ = tw.Flush()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(timeLayout)
}
