package cli

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/vytor/heartgame/internal/client"
	"github.com/vytor/heartgame/internal/logger"
)

var (
	cfg       *Config
	apiClient *client.Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "heartctl",
		Short: "Play the heart counting game from a terminal",
		Long: `heartctl talks to a heartgame server.

Register or log in once, then play timed rounds, browse the leaderboard and
look at your stats and game history.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := logger.WARN
			if cfg.Verbose {
				level = logger.DEBUG
			}
			logger.SetDefault(logger.New(
				logger.WithOutput(cmd.ErrOrStderr()),
				logger.WithLevel(level),
				logger.WithColors(false),
			))

			if err := cfg.LoadToken(); err != nil {
				return err
			}
			apiClient = client.New(cfg.ServerURL, cfg.Token)
			return nil
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: HEARTCTL_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.Token, "token", cfg.Token, "Bearer token (env: HEARTCTL_TOKEN)")
	rootCmd.PersistentFlags().StringVar(&cfg.TokenFile, "token-file", cfg.TokenFile, "Token file path (env: HEARTCTL_TOKEN_FILE)")
	rootCmd.PersistentFlags().StringVar(&cfg.HeartAPIURL, "heart-api", cfg.HeartAPIURL, "Heart puzzle API URL (env: HEART_API_URL)")
	rootCmd.PersistentFlags().DurationVar(&cfg.HeartAPITimeout, "heart-timeout", cfg.HeartAPITimeout, "Heart puzzle API request timeout (env: HEART_API_TIMEOUT_SECONDS)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	rootCmd.AddCommand(newRegisterCmd())
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newWhoamiCmd())
	rootCmd.AddCommand(newPlayCmd())
	rootCmd.AddCommand(newLeaderboardCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newSessionsCmd())
	rootCmd.AddCommand(newReconcileCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
