// Package featureimage resolves a post's feature image URL from the content API.
package featureimage

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/TotalLag/developer-docs/internal/config"
	"github.com/TotalLag/developer-docs/internal/fetch"
	foundation "github.com/TotalLag/developer-docs/internal/foundation/errors"
	"github.com/TotalLag/developer-docs/internal/logfields"
	"github.com/TotalLag/developer-docs/internal/metrics"
	"github.com/TotalLag/developer-docs/internal/retry"
)

const maxResponseBytes = 1 << 20

// Client looks up media records of the form {"source_url": "..."}. Successful
// results are memoized for the lifetime of the client; concurrent lookups of the
// same src share one request.
type Client struct {
	endpoint string
	headers  map[string]string
	timeout  time.Duration
	policy   retry.Policy
	http     *http.Client
	limiter  *rate.Limiter
	recorder metrics.Recorder
	logger   *slog.Logger

	group singleflight.Group
	mu    sync.Mutex
	cache map[string]string
}

// Option customizes a Client.
type Option func(*Client)

func WithHTTPClient(c *http.Client) Option { return func(cl *Client) { cl.http = c } }

func WithRecorder(r metrics.Recorder) Option {
	return func(cl *Client) { cl.recorder = metrics.OrNoop(r) }
}

func WithLogger(l *slog.Logger) Option { return func(cl *Client) { cl.logger = l } }

// New builds a client from a defaulted FeatureImageConfig.
func New(cfg config.FeatureImageConfig, opts ...Option) *Client {
	c := &Client{
		endpoint: cfg.Endpoint,
		headers:  cfg.Headers,
		timeout:  cfg.Timeout.Std(),
		policy:   retry.FromConfig(cfg.Retry),
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
		cache:    make(map[string]string),
	}
	if c.timeout <= 0 {
		c.timeout = 10 * time.Second
	}
	if cfg.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}
	for _, o := range opts {
		o(c)
	}
	if c.http == nil {
		c.http = fetch.NewClient(c.timeout)
	}
	return c
}

type mediaRecord struct {
	SourceURL string `json:"source_url"`
}

// Lookup returns the source_url for src. Empty src returns "" without a request.
// Every failure is a network-category classified error.
func (c *Client) Lookup(ctx context.Context, src string) (string, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return "", nil
	}
	target := joinEndpoint(c.endpoint, src)

	c.mu.Lock()
	cached, ok := c.cache[target]
	c.mu.Unlock()
	if ok {
		return cached, nil
	}

	v, err, _ := c.group.Do(target, func() (any, error) {
		u, err := c.lookup(ctx, target)
		if err == nil {
			c.mu.Lock()
			c.cache[target] = u
			c.mu.Unlock()
		}
		return u, err
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *Client) lookup(ctx context.Context, target string) (string, error) {
	var out string
	start := time.Now()
	err := c.policy.Do(ctx, isTransient, func(ctx context.Context, attempt int) error {
		if attempt > 0 {
			c.recorder.IncFetchRetry(metrics.FetchFeatureImage)
			c.logger.Debug("Retrying feature image lookup", logfields.URL(target), logfields.Attempt(attempt))
		}
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return err
			}
		}
		v, err := c.once(ctx, target)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	c.recorder.ObserveFetchDuration(metrics.FetchFeatureImage, time.Since(start), err == nil)
	if err != nil {
		return "", classify(err, target)
	}
	return out, nil
}

func (c *Client) once(ctx context.Context, target string) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := fetch.Get(attemptCtx, c.http, target, c.headers, maxResponseBytes)
	if err != nil {
		return "", err
	}
	var rec mediaRecord
	if err := json.Unmarshal(body, &rec); err != nil {
		return "", &decodeError{err: err}
	}
	if rec.SourceURL == "" {
		return "", errMissingSourceURL
	}
	return rec.SourceURL, nil
}

// Shortcode is the template form: failures are logged and render as "".
func (c *Client) Shortcode(ctx context.Context) func(src string) string {
	return func(src string) string {
		u, err := c.Lookup(ctx, src)
		if err != nil {
			c.logger.Warn("Feature image omitted", logfields.Asset(src), logfields.Error(err))
			return ""
		}
		return u
	}
}

func joinEndpoint(endpoint, src string) string {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		return src
	}
	return strings.TrimRight(endpoint, "/") + "/" + strings.TrimLeft(src, "/")
}

type decodeError struct{ err error }

func (e *decodeError) Error() string { return "decode media record: " + e.err.Error() }
func (e *decodeError) Unwrap() error { return e.err }

type missingFieldError struct{}

func (missingFieldError) Error() string { return "media record has no source_url" }

var errMissingSourceURL error = missingFieldError{}

func isTransient(err error) bool { return fetch.IsTransient(err) }

func classify(err error, target string) error {
	b := foundation.FetchError("feature image lookup failed").WithCause(err).WithContext("url", target)
	if !isTransient(err) {
		b = b.WithRetry(foundation.RetryNever)
	}
	return b.Build()
}
