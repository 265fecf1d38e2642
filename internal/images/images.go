// Package images rewrites <img> elements into responsive <picture> elements and
// generates the resized variants they reference.
package images

import (
	"context"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/TotalLag/developer-docs/internal/config"
	"github.com/TotalLag/developer-docs/internal/fetch"
	"github.com/TotalLag/developer-docs/internal/metrics"
	"github.com/TotalLag/developer-docs/internal/state"
)

// Options controls which images are rewritten and how variants are produced.
type Options struct {
	InputDir      string // resolves site-absolute and page-relative src values
	ImagesDir     string // filesystem directory receiving variants
	URLPath       string // URL prefix of ImagesDir
	Extensions    []string
	Formats       []string
	MinWidth      int
	MaxWidth      int
	WidthStep     int
	Quality       int
	FetchRemote   bool
	CacheDir      string
	CacheDuration time.Duration
	Concurrency   int
}

// OptionsFromConfig resolves image options against the configured directories.
func OptionsFromConfig(cfg *config.Config) Options {
	im := cfg.Images
	return Options{
		InputDir:      cfg.Dir.Input,
		ImagesDir:     filepath.Join(cfg.Dir.Output, im.OutputDir),
		URLPath:       im.URLPath,
		Extensions:    im.Extensions,
		Formats:       im.Formats,
		MinWidth:      im.MinWidth,
		MaxWidth:      im.MaxWidth,
		WidthStep:     im.WidthStep,
		Quality:       im.Quality,
		FetchRemote:   im.FetchRemote,
		CacheDir:      im.CacheDir,
		CacheDuration: im.CacheDuration.Std(),
		Concurrency:   im.Concurrency,
	}
}

// Widths lists candidate widths for an image origWidth pixels wide: min to max by
// step, never wider than the original. Images narrower than min keep their width.
func (o Options) Widths(origWidth int) []int {
	var out []int
	step := max(o.WidthStep, 1)
	for w := o.MinWidth; w <= o.MaxWidth && w <= origWidth; w += step {
		out = append(out, w)
	}
	if len(out) == 0 {
		out = []int{min(origWidth, max(o.MaxWidth, 1))}
	}
	return out
}

func (o Options) handles(src string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(stripQuery(src))), ".")
	for _, e := range o.Extensions {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}

// CacheIndex records remote downloads. *state.Store satisfies it.
type CacheIndex interface {
	CacheEntry(ctx context.Context, url string) (state.CacheEntry, bool, error)
	PutCacheEntry(ctx context.Context, e state.CacheEntry) error
}

// Processor generates variants and rewrites pages. Safe for concurrent use; one
// Processor is shared by every page of a build.
type Processor struct {
	opts     Options
	index    CacheIndex
	client   *http.Client
	recorder metrics.Recorder
	logger   *slog.Logger
	now      func() time.Time

	fetches  singleflight.Group
	variants singleflight.Group

	mu        sync.Mutex
	generated int
}

type Option func(*Processor)

func WithCacheIndex(idx CacheIndex) Option { return func(p *Processor) { p.index = idx } }

func WithHTTPClient(c *http.Client) Option { return func(p *Processor) { p.client = c } }

func WithRecorder(r metrics.Recorder) Option { return func(p *Processor) { p.recorder = metrics.OrNoop(r) } }

func WithLogger(l *slog.Logger) Option { return func(p *Processor) { p.logger = l } }

func New(opts Options, options ...Option) *Processor {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	if opts.Quality <= 0 {
		opts.Quality = 80
	}
	p := &Processor{
		opts:     opts,
		client:   fetch.NewClient(30 * time.Second),
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, o := range options {
		o(p)
	}
	return p
}

// Generated returns the number of variant files written so far.
func (p *Processor) Generated() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.generated
}

func (p *Processor) addGenerated(n int) {
	if n == 0 {
		return
	}
	p.mu.Lock()
	p.generated += n
	p.mu.Unlock()
	p.recorder.AddImagesGenerated(n)
}

func stripQuery(src string) string {
	if i := strings.IndexAny(src, "?#"); i >= 0 {
		return src[:i]
	}
	return src
}
