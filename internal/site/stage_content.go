package site

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/TotalLag/developer-docs/internal/config"
	"github.com/TotalLag/developer-docs/internal/content"
	foundation "github.com/TotalLag/developer-docs/internal/foundation/errors"
	"github.com/TotalLag/developer-docs/internal/logfields"
	"github.com/TotalLag/developer-docs/internal/plugin"
	"github.com/TotalLag/developer-docs/internal/state"
	"github.com/TotalLag/developer-docs/internal/templates"
)

// stagePrepareOutput empties the output directory, keeping generated images so
// unchanged variants are reused.
func stagePrepareOutput(_ context.Context, bs *buildState) error {
	out := bs.cfg.Dir.Output
	if err := os.MkdirAll(out, 0o750); err != nil {
		return foundation.FileSystemError("create output directory").WithCause(err).WithContext("path", out).Build()
	}
	entries, err := os.ReadDir(out)
	if err != nil {
		return foundation.FileSystemError("read output directory").WithCause(err).WithContext("path", out).Build()
	}
	keep := filepath.Clean(bs.cfg.Images.OutputDir)
	for _, e := range entries {
		if e.Name() == keep && bs.cfg.Images.IsEnabled() {
			continue
		}
		if err := os.RemoveAll(filepath.Join(out, e.Name())); err != nil {
			return foundation.FileSystemError("clean output directory").WithCause(err).WithContext("path", e.Name()).Build()
		}
	}
	return nil
}

func stageLoadContent(ctx context.Context, bs *buildState) error {
	cfg := bs.cfg
	opts := content.LoaderOptions{
		InputDir:          cfg.Dir.Input,
		DataDir:           cfg.Dir.Data,
		SkipDrafts:        cfg.IsProduction(),
		LastModifiedField: cfg.Sitemap.LastModifiedProperty,
		Logger:            bs.logger,
	}
	if hist, err := content.OpenGitHistory(cfg.Dir.Input); err == nil {
		opts.Dates = hist
	} else {
		bs.logger.Debug("Git dates unavailable", logfields.Error(err))
	}

	cat, err := content.Load(ctx, opts)
	if err != nil {
		return err
	}
	bs.catalog = cat
	bs.report.Pages = len(cat.Pages)
	bs.report.Drafts = len(cat.Drafts)
	bs.report.Changed = bs.countChanged(ctx)

	if err := plugin.RegisterBuiltins(ctx, bs.registry, plugin.Deps{
		Config:       cfg,
		FeatureImage: bs.g.feature,
		Images:       bs.images,
		Logger:       bs.logger,
	}); err != nil {
		return foundation.InternalError("register template functions").WithCause(err).Build()
	}

	engine, err := templates.New(filepath.Join(cfg.Dir.Input, cfg.Dir.Includes), bs.registry.FuncMap())
	if err != nil {
		return err
	}
	bs.engine = engine
	return nil
}

// countChanged compares page fingerprints with the previous build. Without a store
// every page counts as changed.
func (bs *buildState) countChanged(ctx context.Context) int {
	current := make(map[string]string, len(bs.catalog.Pages))
	for _, p := range bs.catalog.Pages {
		current[p.InputPath] = p.Fingerprint
	}
	if bs.g.store == nil {
		return len(current)
	}
	previous, err := bs.g.store.Fingerprints(ctx)
	if err != nil {
		bs.logger.Warn("Failed to read previous fingerprints", logfields.Error(err))
		return len(current)
	}
	return len(state.Changed(previous, current))
}

func (bs *buildState) templateData(p *content.Page) templates.Data {
	return templates.Data{
		Page:        p,
		Site:        bs.cfg.Site,
		Env:         bs.cfg.Env,
		Collections: bs.catalog.Collections,
		Data:        bs.catalog.Data,
		Headings:    bs.headings[p],
	}
}

// stageRenderPages renders every body first so layouts of any page can read the
// Content of others, then applies layouts.
func stageRenderPages(ctx context.Context, bs *buildState) error {
	written := 0
	for _, p := range bs.catalog.Pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		body, err := bs.renderBody(p)
		if err != nil {
			return err
		}
		p.Content = string(body)
	}

	for _, p := range bs.catalog.Pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !p.IsWritten() {
			continue
		}
		html := []byte(p.Content)
		if layout := p.Layout(); layout != "" {
			var err error
			html, err = bs.engine.ApplyLayouts(layout, html, bs.templateData(p))
			if err != nil {
				return withPage(err, p)
			}
		}
		bs.output[p] = html
		written++
	}
	bs.g.recorder.AddPagesRendered(written)
	return nil
}

func (bs *buildState) renderBody(p *content.Page) ([]byte, error) {
	data := bs.templateData(p)
	switch p.Kind {
	case content.KindHTML:
		out, err := bs.engine.RenderHTML(p.InputPath, p.RawContent, data)
		return out, withPage(err, p)
	default:
		src := p.RawContent
		if bs.cfg.Markdown.TemplateEngine != config.TemplateEngineNone {
			var err error
			if src, err = bs.engine.RenderText(p.InputPath, src, data); err != nil {
				return nil, withPage(err, p)
			}
		}
		res, err := bs.g.markdown.Render(src)
		if err != nil {
			return nil, withPage(err, p)
		}
		bs.headings[p] = res.Headings
		return res.HTML, nil
	}
}

func withPage(err error, p *content.Page) error {
	if err == nil {
		return nil
	}
	var ce *foundation.ClassifiedError
	if errors.As(err, &ce) {
		return ce.WithContext("page", p.InputPath)
	}
	return foundation.ContentError("render page").WithCause(err).WithContext("page", p.InputPath).Build()
}
