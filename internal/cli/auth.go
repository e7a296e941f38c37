package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/freezers/internal/client"
	"github.com/idilsaglam/freezers/internal/config"
	"github.com/idilsaglam/freezers/internal/ui"
)

func (c *command) authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the saved login profile",
		Args:  usageArgs(cobra.NoArgs),
	}
	cmd.AddCommand(c.authLoginCmd(), c.authLogoutCmd(), c.authStatusCmd())
	return cmd
}

func (c *command) authLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login [login]",
		Short: "Log in and remember the host and login",
		Args:  usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			login := c.settings.Login
			if len(args) == 1 {
				login = strings.TrimSpace(args[0])
			}
			if login == "" {
				return usagef(errors.New("Login cannot be empty"))
			}

			s := c.settings
			cl := client.New(s.Host, nil, s.Timeout, c.log)
			if err := cl.Login(cmd.Context(), login); err != nil {
				return err
			}
			if err := config.SaveProfile(cl.API(), login); err != nil {
				return fmt.Errorf("save profile: %w", err)
			}
			c.log.Info().Str("host", cl.API()).Str("login", login).Msg("profile saved")
			ui.OK(c.stdout, fmt.Sprintf("logged in as %s at %s", login, cl.API()))
			return nil
		},
	}
}

func (c *command) authLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved profile",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.DeleteProfile(); err != nil {
				return fmt.Errorf("remove profile: %w", err)
			}
			ui.OK(c.stdout, "logged out")
			return nil
		},
	}
}

func (c *command) authStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the saved profile",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := config.LoadProfile()
			if err != nil {
				return err
			}
			if p == nil || p.Login == "" {
				ui.Warn(c.stdout, "not logged in")
				ui.Hint(c.stdout, "log in with `freezers auth login <login>`")
				return nil
			}
			fields := []ui.Field{
				{Label: "host", Value: p.Host},
				{Label: "login", Value: p.Login},
				{Label: "source", Value: p.Source},
			}
			if !p.SavedAt.IsZero() {
				fields = append(fields, ui.Field{Label: "saved", Value: p.SavedAt.Local().Format(time.DateTime)})
			}
			ui.Panel(c.stdout, "Profile", ui.Fields(fields))
			return nil
		},
	}
}
