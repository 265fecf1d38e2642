package linkverify

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractLinks(t *testing.T) {
	links, err := ExtractLinks([]byte(`<html><head><link rel="stylesheet" href="/css/site.css"></head>` +
		`<body><a href="/docs/">Docs</a><img src="/img/a.png" alt=""><a>empty</a><script src="/js/app.js"></script></body></html>`))
	require.NoError(t, err)
	require.Len(t, links, 4)
	assert.Equal(t, Link{URL: "/css/site.css", Tag: "link", Attribute: "href"}, links[0])
	assert.Equal(t, "img", links[2].Tag)
}

func TestShouldVerify(t *testing.T) {
	c := NewChecker("", "https://docs.example.org", nil)
	for _, raw := range []string{"#top", "mailto:a@b.c", "tel:123", "javascript:void(0)", "data:image/png;base64,AA", "https://other.org/x", "//cdn.example.net/x.js", "?q=1"} {
		_, ok := shouldVerify(raw, c.site)
		assert.False(t, ok, raw)
	}
	_, ok := shouldVerify("https://docs.example.org/docs/", c.site)
	assert.True(t, ok)
}

func TestResolve(t *testing.T) {
	c := NewChecker("", "", nil)
	tests := []struct{ page, href, want string }{
		{"/docs/intro/", "../next/", "docs/next/"},
		{"/docs/intro/", "setup", "docs/intro/setup"},
		{"/docs/intro.html", "setup.html#x", "docs/setup.html"},
		{"/", "/", ""},
		{"/a/", "/../../etc/passwd", "etc/passwd"},
	}
	for _, tt := range tests {
		got, ok := c.resolve(tt.page, tt.href)
		require.True(t, ok, tt.href)
		assert.Equal(t, tt.want, got, tt.href)
	}
}

func TestVerifyFindsBrokenLinks(t *testing.T) {
	out := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(out, "img"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(out, "img", "logo.png"), []byte("png"), 0o644))

	c := NewChecker(out, "https://docs.example.org", []string{"index.html", "docs/intro/index.html", "about.html"})
	page := Page{
		URL:    "/docs/intro/",
		Source: "src/docs/intro.md",
		HTML: []byte(`<a href="/">home</a><a href="/about">about</a><a href="/docs/missing/">gone</a>` +
			`<a href="/docs/missing/">again</a><img src="/img/logo.png"><img src="/img/nope.png">` +
			`<a href="https://docs.example.org/docs/intro/">self</a><a href="https://github.com/x">ext</a>`),
	}
	broken := c.Verify([]Page{page})
	require.Len(t, broken, 2)
	assert.Equal(t, "/docs/missing/", broken[0].URL)
	assert.Equal(t, "docs/missing/", broken[0].Target)
	assert.Equal(t, "src/docs/intro.md", broken[0].Source)
	assert.Equal(t, "/img/nope.png", broken[1].URL)
}

func TestNewEvent(t *testing.T) {
	at := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	ev := NewEvent(BrokenLink{Link: Link{URL: "/x", Tag: "a"}, PageURL: "/", Target: "x"}, "b1", at)
	assert.Equal(t, "b1", ev.BuildID)
	assert.Equal(t, "/x", ev.URL)
	assert.Equal(t, at, ev.Timestamp)
}
