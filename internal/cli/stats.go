package cli

import (
	"github.com/spf13/cobra"
	"github.com/vytor/heartgame/internal/models"
)

func newLeaderboardCmd() *cobra.Command {
	var query models.LeaderboardQuery
	var timeFrame string

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the top players",
		RunE: func(cmd *cobra.Command, args []string) error {
			query.TimeFrame = models.TimeFrame(timeFrame)
			board, err := apiClient.Leaderboard(cmd.Context(), query)
			if err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(board)
			return nil
		},
	}

	cmd.Flags().IntVar(&query.Limit, "limit", 10, "Number of players")
	cmd.Flags().StringVar(&query.Difficulty, "difficulty", "", "Easy, Medium, Hard, Expert or all")
	cmd.Flags().StringVar(&timeFrame, "time-frame", string(models.TimeFrameAll), "daily, weekly, monthly or all")

	return cmd
}

func newStatsCmd() *cobra.Command {
	var userID string
	var global bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show player statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			if global {
				stats, err := apiClient.GlobalStats(cmd.Context())
				if err != nil {
					return err
				}
				out.Print(stats)
				return nil
			}

			id, err := resolveUser(userID)
			if err != nil {
				return err
			}
			stats, err := apiClient.UserStats(cmd.Context(), id)
			if err != nil {
				return err
			}
			out.Print(stats)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "User id (defaults to you)")
	cmd.Flags().BoolVar(&global, "global", false, "Show statistics across all players")

	return cmd
}

func newHistoryCmd() *cobra.Command {
	var userID string
	var limit, page int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past games, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveUser(userID)
			if err != nil {
				return err
			}
			records, pagination, err := apiClient.UserScores(cmd.Context(), id, limit, page)
			if err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(&History{Records: records, Pagination: pagination})
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "User id (defaults to you)")
	cmd.Flags().IntVar(&limit, "limit", 10, "Games per page")
	cmd.Flags().IntVar(&page, "page", 1, "Page number")

	return cmd
}

func newSessionsCmd() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List sessions that are still in progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveUser(userID)
			if err != nil {
				return err
			}
			sessions, err := apiClient.ActiveSessions(cmd.Context(), id)
			if err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(sessions)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "User id (defaults to you)")

	return cmd
}

func newReconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Ask the server to recompute player totals from stored games",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := apiClient.Reconcile(cmd.Context()); err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).PrintMessage("Reconcile queued")
			return nil
		},
	}
}

// resolveUser falls back to the logged in player when id is empty.
func resolveUser(id string) (string, error) {
	if id != "" {
		return id, nil
	}
	session, err := cfg.Session()
	if err != nil {
		return "", err
	}
	return session.UserID, nil
}
