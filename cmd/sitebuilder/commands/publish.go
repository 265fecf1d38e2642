package commands

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/TotalLag/developer-docs/internal/publish"
)

// PublishCmd implements the 'publish' command.
type PublishCmd struct {
	SkipBuild bool   `name:"skip-build" help:"Upload the existing output directory without rebuilding"`
	Bucket    string `help:"Override the destination bucket"`
	Prefix    string `help:"Override the key prefix"`
}

func (p *PublishCmd) Run(g *Global, root *CLI) error {
	cfg, logger, err := root.loadConfig()
	if err != nil {
		return err
	}
	if p.Bucket != "" {
		cfg.Publish.Bucket = p.Bucket
	}
	if p.Prefix != "" {
		cfg.Publish.Prefix = p.Prefix
	}

	pub, err := publish.New(cfg.Publish, publish.WithLogger(logger))
	if err != nil {
		return err
	}
	if !p.SkipBuild {
		report, err := runBuild(g.Ctx, cfg, logger, true)
		if err != nil {
			return err
		}
		fmt.Println(report.Summary())
	}

	res, err := pub.Publish(g.Ctx, cfg.Dir.Output)
	if err != nil {
		return err
	}
	fmt.Printf("published %s objects (%s) to s3://%s\n",
		humanize.Comma(int64(res.Objects)), humanize.Bytes(uint64(res.Bytes)), cfg.Publish.Bucket)
	return nil
}
