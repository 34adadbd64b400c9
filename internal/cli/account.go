package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vytor/heartgame/internal/models"
)

func newRegisterCmd() *cobra.Command {
	var in models.RegisterInput

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := apiClient.Register(cmd.Context(), in)
			if err != nil {
				return err
			}
			if err := cfg.SaveToken(result.Token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Username, "username", "", "Username (required)")
	cmd.Flags().StringVar(&in.Email, "email", "", "Email address (required)")
	cmd.Flags().StringVar(&in.Password, "password", "", "Password, at least 6 characters (required)")
	cmd.Flags().StringVar(&in.Avatar, "avatar", "", "Avatar URL")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func newLoginCmd() *cobra.Command {
	var in models.LoginInput

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with a username or email",
		RunE: func(cmd *cobra.Command, args []string) error {
			if in.Username == "" && in.Email == "" {
				return fmt.Errorf("--username or --email is required")
			}
			result, err := apiClient.Login(cmd.Context(), in)
			if err != nil {
				return err
			}
			if err := cfg.SaveToken(result.Token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Username, "username", "", "Username")
	cmd.Flags().StringVar(&in.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&in.Password, "password", "", "Password (required)")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in player",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := cfg.Session()
			if err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(session)
			return nil
		},
	}
}
