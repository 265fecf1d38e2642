package images

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TotalLag/developer-docs/internal/state"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := range w {
		img.Set(x, x%h, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func testOptions(t *testing.T) Options {
	t.Helper()
	root := t.TempDir()
	return Options{
		InputDir:      filepath.Join(root, "src"),
		ImagesDir:     filepath.Join(root, "dist", "img"),
		URLPath:       "/img/",
		Extensions:    []string{"jpg", "png", "jpeg"},
		Formats:       []string{"avif", "webp", "jpeg"},
		MinWidth:      200,
		MaxWidth:      1500,
		WidthStep:     150,
		Quality:       70,
		CacheDir:      filepath.Join(root, ".cache"),
		CacheDuration: 14 * 24 * time.Hour,
		Concurrency:   2,
	}
}

func writeImage(t *testing.T, opts Options, rel string, data []byte) {
	t.Helper()
	p := filepath.Join(opts.InputDir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, data, 0o644))
}

func TestWidths(t *testing.T) {
	o := Options{MinWidth: 200, MaxWidth: 1500, WidthStep: 150}
	assert.Equal(t, []int{100}, o.Widths(100))
	assert.Equal(t, []int{200, 350, 500}, o.Widths(500))
	assert.Equal(t, []int{200, 350, 500, 650, 800, 950, 1100, 1250, 1400}, o.Widths(4000))
}

func TestTransformRewritesLocalImage(t *testing.T) {
	opts := testOptions(t)
	writeImage(t, opts, "img/photo.png", pngBytes(t, 800, 400))
	p := New(opts)

	out, err := p.Transform(t.Context(), []byte(`<p><img src="/img/photo.png" alt="A photo"></p>`), "docs/index.md")
	require.NoError(t, err)

	html := string(out)
	assert.True(t, strings.HasPrefix(html, "<p><picture>"), html)
	assert.Contains(t, html, `<source type="image/jpeg" srcset="/img/`)
	assert.Contains(t, html, `-200.jpeg 200w, `)
	assert.Contains(t, html, `-800.jpeg 800w"`)
	assert.Contains(t, html, `sizes="100vw"`)
	assert.Contains(t, html, `width="800" height="400" loading="lazy" decoding="async"`)
	assert.Contains(t, html, `alt="A photo"`)
	assert.NotContains(t, html, "avif")
	assert.NotContains(t, html, "<body>")
	assert.Equal(t, 5, p.Generated())

	entries, err := os.ReadDir(opts.ImagesDir)
	require.NoError(t, err)
	assert.Len(t, entries, 5)

	// Same source on another page reuses the files.
	_, err = p.Transform(t.Context(), []byte(`<img src="../img/photo.png">`), "docs/other.md")
	require.NoError(t, err)
	assert.Equal(t, 5, p.Generated())
}

func TestTransformLeavesOthersAlone(t *testing.T) {
	opts := testOptions(t)
	writeImage(t, opts, "a.png", pngBytes(t, 300, 300))
	p := New(opts)

	cases := []string{
		`<p>no images</p>`,
		`<img src="/anim.gif">`,
		`<picture><img src="/a.png"></picture>`,
		`<img src="/missing.png">`,
		`<img src="https://example.com/remote.png">`,
	}
	for _, in := range cases {
		out, err := p.Transform(t.Context(), []byte(in), "index.md")
		require.NoError(t, err)
		assert.Equal(t, in, string(out))
	}
	assert.Zero(t, p.Generated())
}

func TestTransformFullDocument(t *testing.T) {
	opts := testOptions(t)
	writeImage(t, opts, "a.png", pngBytes(t, 250, 100))
	p := New(opts)

	out, err := p.Transform(t.Context(), []byte(`<!DOCTYPE html><html><head></head><body><img src="a.png"></body></html>`), "index.md")
	require.NoError(t, err)
	assert.Contains(t, string(out), "<!DOCTYPE html>")
	assert.Contains(t, string(out), "<picture>")
	assert.Equal(t, 1, p.Generated())
}

func TestTransformRemoteImageCached(t *testing.T) {
	data := pngBytes(t, 400, 200)
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	store, err := state.Open(state.MemoryPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	opts := testOptions(t)
	opts.FetchRemote = true
	opts.Formats = []string{"png"}
	page := []byte(`<img src="` + srv.URL + `/remote.png">`)

	for range 2 {
		p := New(opts, WithCacheIndex(store), WithHTTPClient(srv.Client()))
		out, err := p.Transform(t.Context(), page, "index.md")
		require.NoError(t, err)
		assert.Contains(t, string(out), `type="image/png"`)
	}
	assert.Equal(t, int32(1), hits.Load())

	e, ok, err := store.CacheEntry(t.Context(), srv.URL+"/remote.png")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "image/png", e.ContentType)
	assert.Equal(t, int64(len(data)), e.Size)
}

func TestLocalPathStaysInInputDir(t *testing.T) {
	opts := testOptions(t)
	p := New(opts)

	got, err := p.localPath("../../etc/passwd.png?v=1", "docs/index.md")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(opts.InputDir, "etc", "passwd.png"), got)

	_, err = p.localPath("/", "index.md")
	require.Error(t, err)
}

func TestTransformSourcesPerFormat(t *testing.T) {
	opts := testOptions(t)
	opts.Formats = []string{"avif", "png", "jpeg"}
	writeImage(t, opts, "img/wide.jpg", pngBytes(t, 400, 100))
	p := New(opts)

	in := `<p><img src="/img/wide.jpg" sizes="50vw" width="10" loading="eager"><img src="/img/wide.jpg?v=2" class="x"></p>`
	out, err := p.Transform(t.Context(), []byte(in), "index.md")
	require.NoError(t, err)

	html := string(out)
	assert.Equal(t, 2, strings.Count(html, "<picture>"))
	assert.Less(t, strings.Index(html, `type="image/png"`), strings.Index(html, `type="image/jpeg"`))
	assert.Contains(t, html, `-200.png 200w, /img/`)
	assert.Contains(t, html, `sizes="50vw"`)
	assert.Contains(t, html, `sizes="100vw"`)
	assert.Equal(t, 2, strings.Count(html, `width="400" height="100" loading="lazy" decoding="async"`))
	assert.NotContains(t, html, `width="10"`)
	assert.NotContains(t, html, "eager")
	assert.Contains(t, html, `class="x"`)
	assert.Equal(t, 4, p.Generated())
}
