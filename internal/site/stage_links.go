package site

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	foundation "github.com/TotalLag/developer-docs/internal/foundation/errors"
	"github.com/TotalLag/developer-docs/internal/linkverify"
	"github.com/TotalLag/developer-docs/internal/logfields"
)

// stageVerifyLinks checks internal links of the written HTML pages against the
// output tree. Broken links are warnings unless link_check.fail_on_broken is set.
func stageVerifyLinks(ctx context.Context, bs *buildState) error {
	written := bs.writtenPages()
	generated := make([]string, 0, len(written)+2)
	var pages []linkverify.Page
	for _, p := range written {
		generated = append(generated, p.OutputPath)
		if filepath.Ext(p.OutputPath) != ".html" {
			continue
		}
		pages = append(pages, linkverify.Page{URL: p.URL, Source: p.InputPath, HTML: bs.output[p]})
	}
	if bs.cfg.Markdown.Highlight.IsEnabled() {
		generated = append(generated, HighlightCSSFile)
	}
	if bs.cfg.Sitemap.IsEnabled() {
		generated = append(generated, bs.cfg.Sitemap.Filename)
	}

	siteURL := bs.cfg.Site.BaseURL
	if siteURL == "" {
		siteURL = bs.cfg.Sitemap.Hostname
	}
	broken := linkverify.NewChecker(bs.cfg.Dir.Output, siteURL, generated).Verify(pages)
	bs.report.BrokenLinks = len(broken)
	if len(broken) == 0 {
		return nil
	}

	errs := make([]error, 0, len(broken)+1)
	for _, b := range broken {
		eb := foundation.ValidationError("broken internal link").
			WithContext("url", b.URL).
			WithContext("tag", b.Tag).
			WithContext("page", b.Source)
		if !bs.cfg.LinkCheck.FailOnBroken {
			eb = eb.Warning()
		}
		bs.logger.Warn("Broken internal link", logfields.Page(b.Source), logfields.URL(b.URL))
		errs = append(errs, eb.Build())
	}
	if err := bs.publishBrokenLinks(ctx, broken); err != nil {
		bs.logger.Warn("Broken link events not published", logfields.Error(err))
		errs = append(errs, foundation.PublishError("publish broken link events").WithCause(err).Warning().Build())
	}

	joined := errors.Join(errs...)
	if bs.cfg.LinkCheck.FailOnBroken {
		return NewFatalStageError(StageVerifyLinks, joined)
	}
	return NewWarnStageError(StageVerifyLinks, joined)
}

func (bs *buildState) publishBrokenLinks(ctx context.Context, broken []linkverify.BrokenLink) error {
	pub := bs.g.links
	if pub == nil {
		if bs.cfg.LinkCheck.NATSURL == "" {
			return nil
		}
		np, err := linkverify.ConnectNATS(bs.cfg.LinkCheck.NATSURL, bs.cfg.LinkCheck.Subject)
		if err != nil {
			return err
		}
		defer func() { _ = np.Close() }()
		pub = np
	}
	now := time.Now().UTC()
	events := make([]linkverify.BrokenLinkEvent, 0, len(broken))
	for _, b := range broken {
		events = append(events, linkverify.NewEvent(b, bs.report.BuildID, now))
	}
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return pub.Publish(pctx, events)
}
