package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/satjeet/ClinePythonDividis/internal/app"
	"github.com/satjeet/ClinePythonDividis/internal/config"
	"github.com/satjeet/ClinePythonDividis/internal/credential"
	"github.com/satjeet/ClinePythonDividis/internal/workspace"
	apperrors "github.com/satjeet/ClinePythonDividis/pkg/errors"
	pkgconfig "github.com/satjeet/ClinePythonDividis/pkg/config"
	"github.com/satjeet/ClinePythonDividis/pkg/logger"
)

type cli struct {
	out    io.Writer
	errOut io.Writer

	apiURL   string
	dbPath   string
	logLevel string
	asJSON   bool

	logger     *slog.Logger
	components *app.Components
	ws         *workspace.Workspace
}

// Execute runs the CLI with os.Args.
func Execute(ctx context.Context) error {
	c := &cli{out: os.Stdout, errOut: os.Stderr}
	defer c.close()
	if err := c.rootCmd().ExecuteContext(ctx); err != nil {
		report(c.errOut, err)
		return err
	}
	return nil
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "dividis",
		Short:         "Dividis personal growth dashboard from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.open(cmd.Context())
		},
	}
	root.SetOut(c.out)
	root.SetErr(c.errOut)

	root.PersistentFlags().StringVar(&c.apiURL, "api", "", "backend base URL (default $API_BASE_URL)")
	root.PersistentFlags().StringVar(&c.dbPath, "db", "", "SQLite credential file (default $DIVIDIS_SQLITE_PATH)")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "log level (default $LOG_LEVEL)")
	root.PersistentFlags().BoolVar(&c.asJSON, "json", false, "print JSON instead of tables")

	root.AddCommand(
		c.loginCmd(),
		c.registerCmd(),
		c.logoutCmd(),
		c.whoamiCmd(),
		c.modulesCmd(),
		c.unlockCmd(),
		c.missionsCmd(),
		c.completeCmd(),
		c.progressCmd(),
		c.habitsCmd(),
		c.surveyCmd(),
		c.radarCmd(),
	)
	return root
}

// open loads the configuration and restores the persisted session.
func (c *cli) open(ctx context.Context) error {
	if err := pkgconfig.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if c.apiURL != "" {
		cfg.APIBaseURL = c.apiURL
	}
	if c.dbPath != "" {
		cfg.SQLitePath = c.dbPath
	}
	if c.logLevel != "" {
		cfg.LogLevel = c.logLevel
	}
	// A terminal keeps its token in a local file, whatever the server uses.
	cfg.CredentialBackend = config.BackendSQLite

	c.logger = logger.NewText(cfg.LogLevel, c.errOut)

	components, err := app.Build(ctx, cfg, "cli", c.logger)
	if err != nil {
		return err
	}
	c.components = components

	c.ws = workspace.New(components.WorkspaceDeps(), credential.DefaultKey)
	if err := c.ws.Init(ctx); err != nil {
		c.logger.Warn("restore session failed", slog.String("error", err.Error()))
	}
	return nil
}

func (c *cli) close() {
	if c.ws != nil {
		c.ws.Close()
	}
	if c.components != nil {
		if err := c.components.Close(); err != nil && c.logger != nil {
			c.logger.Warn("close failed", slog.String("error", err.Error()))
		}
	}
}

// requireSession stands in for the route guard: commands on protected data
// refuse to run signed out.
func (c *cli) requireSession() error {
	if !c.ws.Session.IsAuthenticated() {
		return fmt.Errorf("%w: run `dividis login` first", apperrors.NoToken())
	}
	return nil
}

// displayError carries the message a store recorded for a failed operation.
type displayError struct {
	msg string
	err error
}

func (e *displayError) Error() string { return e.msg }
func (e *displayError) Unwrap() error { return e.err }

func failed(err error, msg string) error {
	if msg == "" {
		return err
	}
	return &displayError{msg: msg, err: err}
}

func (c *cli) printJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (c *cli) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

func report(w io.Writer, err error) {
	fmt.Fprintln(w, "Error:", err)
}
