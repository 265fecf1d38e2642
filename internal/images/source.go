package images

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/TotalLag/developer-docs/internal/fetch"
	foundation "github.com/TotalLag/developer-docs/internal/foundation/errors"
	"github.com/TotalLag/developer-docs/internal/logfields"
	"github.com/TotalLag/developer-docs/internal/metrics"
	"github.com/TotalLag/developer-docs/internal/state"
)

const maxImageBytes = 20 << 20

func isRemote(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// localPath maps src on the page at pageInputPath to a file under the input dir.
// Rooted cleaning drops any ".." that would climb above it.
func (p *Processor) localPath(src, pageInputPath string) (string, error) {
	clean := stripQuery(src)
	var rel string
	if strings.HasPrefix(clean, "/") {
		rel = path.Clean(clean)
	} else {
		rel = path.Join("/", path.Dir(pageInputPath), clean)
	}
	rel = strings.TrimPrefix(rel, "/")
	if rel == "" {
		return "", foundation.ImageError("image outside input directory").WithContext("src", src).Build()
	}
	return filepath.Join(p.opts.InputDir, filepath.FromSlash(rel)), nil
}

// load returns the bytes behind src, downloading remote images through the disk cache.
func (p *Processor) load(ctx context.Context, src, pageInputPath string) ([]byte, error) {
	if isRemote(src) {
		return p.loadRemote(ctx, src)
	}
	file, err := p.localPath(src, pageInputPath)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(file) // #nosec G304 -- path is confined to the input dir
	if err != nil {
		return nil, foundation.ImageError("read image").WithCause(err).WithContext("path", file).Build()
	}
	return data, nil
}

func cacheKey(s string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(s))
}

func (p *Processor) loadRemote(ctx context.Context, url string) ([]byte, error) {
	v, err, _ := p.fetches.Do(url, func() (any, error) {
		return p.fetchCached(ctx, url)
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (p *Processor) fetchCached(ctx context.Context, url string) ([]byte, error) {
	file := filepath.Join(p.opts.CacheDir, cacheKey(url))
	if data, ok := p.cached(ctx, url, file); ok {
		return data, nil
	}

	start := time.Now()
	data, err := fetch.Get(ctx, p.client, url, map[string]string{"Accept": "image/*"}, maxImageBytes)
	p.recorder.ObserveFetchDuration(metrics.FetchRemoteImage, time.Since(start), err == nil)
	if err != nil {
		return nil, foundation.ImageError("fetch remote image").WithCause(err).WithContext("url", url).Build()
	}

	if err := os.MkdirAll(p.opts.CacheDir, 0o750); err != nil {
		return nil, foundation.FileSystemError("create image cache").WithCause(err).WithContext("path", p.opts.CacheDir).Build()
	}
	if err := os.WriteFile(file, data, 0o600); err != nil {
		return nil, foundation.FileSystemError("write image cache").WithCause(err).WithContext("path", file).Build()
	}
	if p.index != nil {
		entry := state.CacheEntry{
			URL:         url,
			Path:        file,
			ContentType: http.DetectContentType(data),
			Size:        int64(len(data)),
			FetchedAt:   p.now(),
		}
		if err := p.index.PutCacheEntry(ctx, entry); err != nil {
			p.logger.Warn("Failed to index cached image", logfields.URL(url), logfields.Error(err))
		}
	}
	p.logger.Debug("Fetched remote image", logfields.URL(url), slog.Int("bytes", len(data)))
	return data, nil
}

// cached returns the cached copy of url when it is younger than the cache duration.
// Without an index the file modification time decides.
func (p *Processor) cached(ctx context.Context, url, file string) ([]byte, bool) {
	var fetchedAt time.Time
	if p.index != nil {
		e, ok, err := p.index.CacheEntry(ctx, url)
		if err != nil {
			p.logger.Warn("Image cache index lookup failed", logfields.URL(url), logfields.Error(err))
		}
		if !ok {
			return nil, false
		}
		file, fetchedAt = e.Path, e.FetchedAt
	} else {
		info, err := os.Stat(file)
		if err != nil {
			return nil, false
		}
		fetchedAt = info.ModTime()
	}
	if p.now().Sub(fetchedAt) >= p.opts.CacheDuration {
		return nil, false
	}
	data, err := os.ReadFile(file) // #nosec G304 -- cache paths are generated
	if err != nil {
		return nil, false
	}
	return data, true
}
