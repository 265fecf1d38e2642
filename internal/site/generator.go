// Package site orchestrates a build: it loads content, renders it through the
// templates and Markdown engine, applies output transforms and writes the site.
package site

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/TotalLag/developer-docs/internal/config"
	"github.com/TotalLag/developer-docs/internal/content"
	"github.com/TotalLag/developer-docs/internal/featureimage"
	"github.com/TotalLag/developer-docs/internal/images"
	"github.com/TotalLag/developer-docs/internal/linkverify"
	"github.com/TotalLag/developer-docs/internal/logfields"
	"github.com/TotalLag/developer-docs/internal/markdown"
	"github.com/TotalLag/developer-docs/internal/metrics"
	"github.com/TotalLag/developer-docs/internal/plugin"
	"github.com/TotalLag/developer-docs/internal/state"
	"github.com/TotalLag/developer-docs/internal/templates"
)

// HighlightCSSFile is the output-relative stylesheet of the highlighter classes.
const HighlightCSSFile = "css/highlight.css"

// Generator builds one configured site. Builds on one Generator are serialized.
type Generator struct {
	cfg      *config.Config
	recorder metrics.Recorder
	logger   *slog.Logger
	store    *state.Store
	client   *http.Client
	markdown *markdown.Engine
	feature  *featureimage.Client
	links    linkverify.Publisher

	mu sync.Mutex
}

// Option configures a Generator.
type Option func(*Generator)

func WithRecorder(r metrics.Recorder) Option { return func(g *Generator) { g.recorder = metrics.OrNoop(r) } }

func WithLogger(l *slog.Logger) Option { return func(g *Generator) { g.logger = l } }

// WithStateStore enables fingerprint tracking, the remote image cache index and build history.
func WithStateStore(s *state.Store) Option { return func(g *Generator) { g.store = s } }

// WithHTTPClient replaces the client used for remote lookups.
func WithHTTPClient(c *http.Client) Option { return func(g *Generator) { g.client = c } }

// WithLinkPublisher receives broken-link events instead of a NATS connection
// built from link_check.nats_url.
func WithLinkPublisher(p linkverify.Publisher) Option { return func(g *Generator) { g.links = p } }

func NewGenerator(cfg *config.Config, opts ...Option) *Generator {
	g := &Generator{
		cfg:      cfg,
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
	}
	for _, o := range opts {
		o(g)
	}
	g.markdown = markdown.New(markdown.OptionsFromConfig(cfg.Markdown))

	fopts := []featureimage.Option{featureimage.WithRecorder(g.recorder), featureimage.WithLogger(g.logger)}
	if g.client != nil {
		fopts = append(fopts, featureimage.WithHTTPClient(g.client))
	}
	if cfg.FeatureImage.Endpoint != "" {
		g.feature = featureimage.New(cfg.FeatureImage, fopts...)
	}
	return g
}

// Config returns the configuration the generator was built with.
func (g *Generator) Config() *config.Config { return g.cfg }

// buildState carries everything stages share within one build.
type buildState struct {
	g        *Generator
	cfg      *config.Config
	report   *BuildReport
	logger   *slog.Logger
	catalog  *content.Catalog
	engine   *templates.Engine
	registry *plugin.Registry
	images   *images.Processor
	output   map[*content.Page][]byte
	headings map[*content.Page][]markdown.Heading
}

// Build runs the full pipeline. The report is returned even when err is non-nil.
func (g *Generator) Build(ctx context.Context) (*BuildReport, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := uuid.NewString()
	logger := g.logger.With(logfields.BuildID(id), logfields.Env(string(g.cfg.Env)))
	bs := &buildState{
		g:        g,
		cfg:      g.cfg,
		report:   newBuildReport(id, g.cfg.Env),
		logger:   logger,
		registry: plugin.NewRegistry(),
		output:   make(map[*content.Page][]byte),
		headings: make(map[*content.Page][]markdown.Heading),
	}
	if g.cfg.Images.IsEnabled() {
		iopts := []images.Option{images.WithRecorder(g.recorder), images.WithLogger(logger)}
		if g.store != nil {
			iopts = append(iopts, images.WithCacheIndex(g.store))
		}
		if g.client != nil {
			iopts = append(iopts, images.WithHTTPClient(g.client))
		}
		bs.images = images.New(images.OptionsFromConfig(g.cfg), iopts...)
	}

	logger.Info("Build started")
	err := runStages(ctx, bs, g.pipeline().Defs)
	if bs.images != nil {
		bs.report.Images = bs.images.Generated()
	}
	bs.report.finish(g.recorder)
	g.persist(bs)

	if err != nil {
		logger.Error("Build failed", logfields.Error(err), logfields.Duration(bs.report.Duration()))
		return bs.report, err
	}
	logger.Info("Build finished", slog.String("summary", bs.report.Summary()), logfields.Duration(bs.report.Duration()))
	return bs.report, nil
}

func (g *Generator) pipeline() *Pipeline {
	return NewPipeline().
		Add(StagePrepareOutput, stagePrepareOutput).
		Add(StageLoadContent, stageLoadContent).
		Add(StageRenderPages, stageRenderPages).
		Add(StageTransformOutput, stageTransformOutput).
		Add(StageWritePages, stageWritePages).
		AddIf(len(g.cfg.Passthrough) > 0, StagePassthroughCopy, stagePassthroughCopy).
		AddIf(g.cfg.Sitemap.IsEnabled(), StageWriteSitemap, stageWriteSitemap).
		AddIf(g.cfg.LinkCheck.IsEnabled(), StageVerifyLinks, stageVerifyLinks)
}

// persist stores fingerprints and the build record. Failures only log.
func (g *Generator) persist(bs *buildState) {
	if g.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if bs.report.Outcome == OutcomeSuccess || bs.report.Outcome == OutcomeWarning {
		fps := make(map[string]string)
		if bs.catalog != nil {
			for _, p := range bs.catalog.Pages {
				fps[p.InputPath] = p.Fingerprint
			}
		}
		if err := g.store.ReplaceFingerprints(ctx, fps); err != nil {
			bs.logger.Warn("Failed to store page fingerprints", logfields.Error(err))
		}
	}
	rec := state.BuildRecord{
		ID:        bs.report.BuildID,
		StartedAt: bs.report.Start,
		Duration:  bs.report.Duration(),
		Outcome:   string(bs.report.Outcome),
		Pages:     bs.report.Written,
		Warnings:  len(bs.report.Warnings),
	}
	if err := g.store.RecordBuild(ctx, rec); err != nil {
		bs.logger.Warn("Failed to record build", logfields.Error(err))
	}
}
