// Package commands implements the sitebuilder subcommands.
package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/TotalLag/developer-docs/internal/config"
	foundation "github.com/TotalLag/developer-docs/internal/foundation/errors"
	"github.com/TotalLag/developer-docs/internal/state"
)

// LogLevelEnv overrides the configured log level.
const LogLevelEnv = "SITEBUILDER_LOG_LEVEL"

// Global carries state shared by subcommands.
type Global struct {
	Logger *slog.Logger
	Ctx    context.Context
}

// CLI is the root command and its global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"sitebuilder.yaml" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Env     string           `short:"e" help:"Build environment (development|production). Overrides SITEBUILDER_ENV."`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build   BuildCmd   `cmd:"" help:"Build the site into the output directory"`
	Serve   ServeCmd   `cmd:"" help:"Build, watch for changes and serve the output directory"`
	Init    InitCmd    `cmd:"" help:"Write an example configuration file"`
	Publish PublishCmd `cmd:"" help:"Upload the output directory to S3-compatible storage"`
	History HistoryCmd `cmd:"" help:"Show recent builds recorded in the state database"`

	logOut io.Writer
}

// AfterApply runs after flag parsing; it sets up logging from flags and the
// environment. loadConfig refines it once the file is read.
func (c *CLI) AfterApply() error {
	slog.SetDefault(c.newLogger(config.LoggingConfig{}))
	return nil
}

func (c *CLI) newLogger(lc config.LoggingConfig) *slog.Logger {
	out := c.logOut
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: resolveLevel(c.Verbose, lc.Level)}
	if lc.Format == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(out, opts))
	}
	return slog.New(slog.NewTextHandler(out, opts))
}

// resolveLevel applies --verbose, then SITEBUILDER_LOG_LEVEL, then the file.
func resolveLevel(verbose bool, configured config.LogLevel) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	raw := string(configured)
	if env := strings.TrimSpace(os.Getenv(LogLevelEnv)); env != "" {
		raw = env
	}
	switch config.NormalizeLogLevel(raw) {
	case config.LogLevelDebug:
		return slog.LevelDebug
	case config.LogLevelWarn:
		return slog.LevelWarn
	case config.LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c *CLI) loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(c.Config, config.LoadOptions{Env: c.Env})
	if err != nil {
		return nil, slog.Default(), err
	}
	logger := c.newLogger(cfg.Logging)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func openState(cfg *config.Config) (*state.Store, error) {
	st, err := state.Open(cfg.State.Path)
	if err != nil {
		return nil, foundation.FileSystemError("open state database").
			WithCause(err).
			WithContext("path", cfg.State.Path).
			Build()
	}
	return st, nil
}

// Execute runs the selected command and maps its error to an exit code.
func Execute(kctx *kong.Context, cli *CLI) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g := &Global{Logger: slog.Default(), Ctx: ctx}
	err := kctx.Run(g, cli)
	return foundation.NewCLIErrorAdapter(cli.Verbose, slog.Default()).Handle(err)
}
