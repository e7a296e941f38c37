package cli

import (
	"context"
	"errors"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/idilsaglam/freezers/internal/client"
	"github.com/idilsaglam/freezers/internal/config"
	"github.com/idilsaglam/freezers/internal/logger"
	"github.com/idilsaglam/freezers/internal/tui"
	"github.com/idilsaglam/freezers/internal/ui"
)

// Exit codes.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

const unauthorized = "unauthorized access - try login with high privileges"

// usageError marks a mistake in the command line rather than a failure
// while running it.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }

func (e usageError) Unwrap() error { return e.err }

func usagef(err error) error {
	if err == nil {
		return nil
	}
	return usageError{err: err}
}

// usageArgs turns positional argument errors into usage errors.
func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		return usagef(check(cmd, args))
	}
}

// command carries what every subcommand shares once the root flags are
// resolved.
type command struct {
	flags    config.Flags
	settings config.Settings
	log      zerolog.Logger

	stdout, stderr io.Writer

	// runTUI starts the interactive client; replaced in tests.
	runTUI func(ctx context.Context, opts tui.Options) error
}

func newCommand(stdout, stderr io.Writer) *command {
	return &command{
		stdout: stdout,
		stderr: stderr,
		log:    zerolog.Nop(),
		runTUI: tui.Run,
	}
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	return newCommand(stdout, stderr).run(ctx, args)
}

func (c *command) run(ctx context.Context, args []string) int {
	root := c.root()
	root.SetArgs(args)
	root.SetOut(c.stdout)
	root.SetErr(c.stderr)

	cmd, err := root.ExecuteContextC(ctx)
	if err == nil {
		return ExitOK
	}
	ui.Fail(c.stderr, err.Error())

	var u usageError
	if errors.As(err, &u) {
		ui.Hint(c.stderr, "Run `"+cmd.CommandPath()+" --help` for usage.")
		return ExitUsage
	}
	return ExitError
}

func (c *command) root() *cobra.Command {
	root := &cobra.Command{
		Use:   "freezers",
		Short: "Browse and edit the freezer inventory",
		Long: `freezers - a client for the freezer inventory service

Without a subcommand it opens the interactive client: the freezer list on
the left, the selected freezer on the right, the log at the bottom.`,
		Args:          usageArgs(cobra.NoArgs),
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			s, err := config.Resolve(c.flags)
			if err != nil {
				return usagef(err)
			}
			c.settings = s
			theme := s.Theme
			if s.NoColor {
				theme = "mono"
			}
			ui.SetTheme(theme)
			c.log = logger.New(c.stderr, s.LogLevel, !s.NoColor)
			return nil
		},
		RunE: c.interactive,
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error { return usagef(err) })

	pf := root.PersistentFlags()
	pf.StringVar(&c.flags.Host, "host", "", "API base URL (default "+client.DefaultAPI+")")
	pf.StringVar(&c.flags.Login, "login", "", "login to authenticate with")
	pf.IntVar(&c.flags.PageSize, "page-size", 0, "freezer ids fetched per page (default 30)")
	pf.DurationVar(&c.flags.Timeout, "timeout", 0, "HTTP request timeout (default 30s)")
	pf.StringVar(&c.flags.LogFile, "log-file", "", "interactive client log file (default ~/.freezers/freezers.log)")
	pf.StringVar(&c.flags.LogLevel, "log-level", "", "trace|debug|info|warn|error (default info)")
	pf.StringVar(&c.flags.Theme, "theme", "", "classic|neon|mono")
	pf.BoolVar(&c.flags.NoColor, "no-color", false, "disable colours")

	root.AddCommand(
		c.lsCmd(),
		c.showCmd(),
		c.imageCmd(),
		c.setCmd(),
		c.rmCmd(),
		c.productCmd(),
		c.authCmd(),
	)
	return root
}

// interactive runs the terminal UI, logging to a file since the UI owns
// the screen.
func (c *command) interactive(cmd *cobra.Command, _ []string) error {
	s := c.settings
	log, closer, err := logger.NewFile(s.LogFile, s.LogLevel)
	if err != nil {
		return err
	}
	defer closer.Close()
	log.Info().Str("host", s.Host).Msg("starting")

	return c.runTUI(cmd.Context(), tui.Options{
		Host:      s.Host,
		Login:     s.Login,
		PageSize:  s.PageSize,
		Timeout:   s.Timeout,
		AutoLogin: s.Login != "",
		Logger:    log,
		OnLogin:   config.SaveProfile,
	})
}

// connect builds a client and, when a login is known, opens a session
// with it.
func (c *command) connect(ctx context.Context) (*client.Client, error) {
	s := c.settings
	cl := client.New(s.Host, nil, s.Timeout, c.log)
	if s.Login == "" {
		c.log.Debug().Msg("no login configured, continuing anonymously")
		return cl, nil
	}
	if err := cl.Login(ctx, s.Login); err != nil {
		return nil, err
	}
	c.log.Debug().Str("login", s.Login).Msg("logged in")
	return cl, nil
}
