package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/onboard/internal/adapters/http/client"
	"github.com/okian/onboard/internal/adapters/session"
	"github.com/okian/onboard/internal/app"
	"github.com/okian/onboard/internal/config"
	"github.com/okian/onboard/internal/domain/upload"
	"github.com/okian/onboard/pkg/logger"
	"github.com/spf13/cobra"
)

// Process exit codes.
const (
	exitOK         = 0
	exitFailure    = 1
	exitUsage      = 2
	exitConfig     = 3
	exitAuth       = 4
	exitValidation = 5
)

// version is stamped at build time with -ldflags "-X main.version=...".
var version = "dev"

// errUsage marks bad flags or arguments.
var errUsage = errors.New("usage")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one command line and returns the exit code.
func run(args []string, stdout, stderr io.Writer) int {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := &cli{stdout: stdout, stderr: stderr}
	defer func() {
		if err := c.close(); err != nil {
			fmt.Fprintln(stderr, "close session store:", err)
		}
	}()

	root := c.rootCmd()
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}
	fmt.Fprintln(stderr, "Error:", describe(err))
	return exitCode(err)
}

// cli holds what every command shares once the root command bootstrapped.
type cli struct {
	stdout io.Writer
	stderr io.Writer

	logLevel string

	cfg        *config.Config
	log        logger.Logger
	sessions   session.Store
	closeStore func() error
	client     *client.Client
	portal     *app.Portal
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "onboard",
		Short: "Candidate onboarding portal client",
		Long: `onboard signs a candidate in to the onboarding backend and works through
what the organization expects of them: documents to upload, tasks to finish
and training modules to complete.

Configuration is read from defaults, then the YAML file named by
ONBOARD_CONFIG, then ONBOARD_* environment variables.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.bootstrap(cmd.Context())
		},
	}
	root.SetOut(c.stdout)
	root.SetErr(c.stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", errUsage, err)
	})
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "Override log_level (debug, info, warn, error)")

	root.AddCommand(
		c.loginCmd(),
		c.logoutCmd(),
		c.whoamiCmd(),
		c.dashboardCmd(),
		c.documentsCmd(),
		c.tasksCmd(),
		c.trainingCmd(),
		c.watchCmd(),
	)
	return root
}

// bootstrap loads configuration and builds the logger, session store,
// backend client and portal.
func (c *cli) bootstrap(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if c.logLevel != "" {
		cfg.LogLevel = c.logLevel
	}
	c.cfg = cfg

	if err := logger.InitWithWriter(c.stderr, cfg.LogFormat); err != nil {
		return err
	}
	c.log = logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		c.log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	if cfg.BaseURLDefaulted() {
		c.log.Warn(ctx, "no base_url configured; using default", logger.String("base_url", cfg.BaseURL))
	}

	store, closeStore, err := session.Open(ctx, session.Settings{
		Backend:   cfg.SessionBackend,
		File:      cfg.SessionFile,
		RedisURL:  cfg.RedisURL,
		KeyPrefix: cfg.RedisKeyPrefix,
		TTL:       cfg.SessionTTL,
	})
	if err != nil {
		return err
	}
	c.sessions, c.closeStore = store, closeStore

	c.client, err = client.New(cfg.BaseURL,
		client.WithTimeout(cfg.RequestTimeout),
		client.WithTokenSource(session.NewTokenSource(store)),
		client.WithLogger(c.log.Named("client")),
		client.WithUserAgent("onboard-cli/"+version),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}

	c.portal = app.New(c.client, store,
		app.WithLogger(c.log),
		app.WithLoginRedirect(c.redirect),
		app.WithMaxUploadBytes(cfg.MaxUploadBytes),
		app.WithUploadConcurrency(cfg.UploadConcurrency),
	)
	return nil
}

func (c *cli) close() error {
	if c.closeStore == nil {
		return nil
	}
	err := c.closeStore()
	c.closeStore = nil
	return err
}

// redirect is the CLI's login entry point: it tells the candidate to sign in again.
func (c *cli) redirect(context.Context) {
	fmt.Fprintln(c.stderr, "Your session has expired. Run `onboard login` to sign in again.")
}

// requireSession fails fast when no tokens are stored.
func (c *cli) requireSession(ctx context.Context) error {
	if _, err := c.sessions.Load(ctx); err != nil {
		if errors.Is(err, session.ErrNoSession) {
			return app.ErrNotLoggedIn
		}
		return err
	}
	return nil
}

// shownError carries the message a store recorded for a failed action.
type shownError struct {
	msg string
	err error
}

func (e *shownError) Error() string { return e.msg }
func (e *shownError) Unwrap() error { return e.err }

// shown pairs err with the store's user-facing message.
func shown(err error, msg string) error {
	if err == nil || msg == "" || errors.Is(err, app.ErrNotLoggedIn) {
		return err
	}
	return &shownError{msg: msg, err: err}
}

func describe(err error) string {
	var se *shownError
	if errors.As(err, &se) {
		return se.msg
	}
	if errors.Is(err, app.ErrNotLoggedIn) {
		return "not logged in; run `onboard login` first"
	}
	return app.UserMessage(err, err.Error())
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errUsage):
		return exitUsage
	case errors.Is(err, config.ErrLoadConfig), errors.Is(err, config.ErrInvalidConfig), errors.Is(err, session.ErrUnknownBackend):
		return exitConfig
	case errors.Is(err, app.ErrNotLoggedIn), errors.Is(err, client.ErrUnauthorized):
		return exitAuth
	case errors.Is(err, upload.ErrValidation):
		return exitValidation
	}
	return exitFailure
}

// exactArgs is cobra.ExactArgs reporting a usage error.
func exactArgs(n int) cobra.PositionalArgs {
	return usageArgs(cobra.ExactArgs(n))
}

func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return fmt.Errorf("%w: %w", errUsage, err)
		}
		return nil
	}
}
