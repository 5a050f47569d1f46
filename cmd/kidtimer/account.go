package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"kidtimer/internal/client"
	"kidtimer/internal/timer"
)

func newLoginCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the timer server and save the token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := loadSettings(v)
			if s.Server == "" {
				return fmt.Errorf("no server configured; pass --server or set KIDTIMER_SERVER")
			}
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			if password == "" {
				password = v.GetString("password")
			}
			register, _ := cmd.Flags().GetBool("register")
			if email == "" || password == "" {
				return fmt.Errorf("--email and --password (or KIDTIMER_PASSWORD) are required")
			}

			backend, err := s.backend()
			if err != nil {
				return err
			}

			api := client.New(s.Server)
			authenticate := api.Login
			if register {
				authenticate = api.Register
			}
			result, err := authenticate(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			if err := backend.Set(cmd.Context(), tokenKey, result.Token); err != nil {
				return fmt.Errorf("save token: %w", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", result.User.Email)
			return err
		},
	}
	cmd.Flags().String("email", "", "account email")
	cmd.Flags().String("password", "", "account password")
	cmd.Flags().Bool("register", false, "create the account first")
	return cmd
}

func newLogoutCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := loadSettings(v).backend()
			if err != nil {
				return err
			}
			return backend.Set(cmd.Context(), tokenKey, "")
		},
	}
}

func newHistoryCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent timer sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := loadSettings(v)
			backend, err := s.backend()
			if err != nil {
				return err
			}
			api, err := s.apiClient(cmd.Context(), backend)
			if err != nil {
				return err
			}

			limit, _ := cmd.Flags().GetInt("limit")
			sessions, err := api.ListSessions(cmd.Context(), limit)
			if err != nil {
				return err
			}
			summary, err := api.Summary(cmd.Context())
			if err != nil {
				return err
			}

			t := newTable("Started", "Timer", "Length", "Used", "Done")
			for _, session := range sessions {
				done := "no"
				if session.Completed == 1 {
					done = "yes"
				}
				t.Row(
					session.StartedAt.Local().Format(time.DateTime),
					session.PresetLabel,
					timer.FormatClock(session.TotalDuration),
					timer.FormatClock(session.TimeSpent),
					done,
				)
			}

			out := cmd.OutOrStdout()
			if _, err := fmt.Fprintln(out, t.Render()); err != nil {
				return err
			}
			_, err = fmt.Fprintf(out, "%d sessions, %d completed, %s total\n",
				summary.Sessions, summary.Completed, timer.FormatClock(summary.TimeSpent))
			return err
		},
	}
	cmd.Flags().Int("limit", 20, "number of sessions to show")
	return cmd
}
