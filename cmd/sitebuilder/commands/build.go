package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/TotalLag/developer-docs/internal/config"
	"github.com/TotalLag/developer-docs/internal/site"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output  string `short:"o" help:"Override the output directory"`
	NoState bool   `name:"no-state" help:"Do not read or write the state database"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, logger, err := root.loadConfig()
	if err != nil {
		return err
	}
	if b.Output != "" {
		cfg.Dir.Output = b.Output
	}
	report, err := runBuild(g.Ctx, cfg, logger, !b.NoState)
	if report != nil {
		fmt.Println(report.Summary())
	}
	return err
}

func runBuild(ctx context.Context, cfg *config.Config, logger *slog.Logger, useState bool) (*site.BuildReport, error) {
	opts := []site.Option{site.WithLogger(logger)}
	if useState {
		st, err := openState(cfg)
		if err != nil {
			return nil, err
		}
		defer func() { _ = st.Close() }()
		opts = append(opts, site.WithStateStore(st))
	}
	return site.NewGenerator(cfg, opts...).Build(ctx)
}
