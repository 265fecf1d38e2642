package site

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TotalLag/developer-docs/internal/config"
	foundation "github.com/TotalLag/developer-docs/internal/foundation/errors"
	"github.com/TotalLag/developer-docs/internal/linkverify"
	"github.com/TotalLag/developer-docs/internal/metrics"
	"github.com/TotalLag/developer-docs/internal/state"
)

const baseLayout = `<!DOCTYPE html><html><head><title>{{ .Page.Title }} | {{ .Site.Title }}</title>{{ metagen (dict "title" .Page.Title) }}</head>` +
	`<body>{{ .Content }}{{ with nextPage .Page.URL .Collections.docs }}<a class="next" href="{{ .URL }}">next</a>{{ end }}</body></html>`

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, body := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}
}

func siteFixture(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	t.Chdir(root)
	writeTree(t, root, map[string]string{
		"src/_includes/base.html": baseLayout,
		"src/docs/intro.md":       "---\ntitle: Intro\nlayout: base\ntags: [docs]\ndate: 2024-01-01\n---\n## Getting Started\n\n{{ codeSnippet \"console.log(1)\" \"js\" }}\n",
		"src/docs/next.md":        "---\ntitle: Next\nlayout: base.html\ntags: [docs]\ndate: 2024-02-01\n---\n# Next\n",
		"src/index.html":          "---\ntitle: Home\n---\n<h1>{{ .Site.Title }}</h1>",
		"src/draft.md":            "---\ndraft: true\n---\nhidden",
		"public/robots.txt":       "User-agent: *\n",
	})

	cfg := &config.Config{Env: config.EnvProduction}
	cfg.Site.Title = "Docs"
	cfg.Sitemap.Hostname = "https://docs.example.org"
	config.ApplyDefaults(cfg)
	return cfg
}

func readOutput(t *testing.T, cfg *config.Config, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(cfg.Dir.Output, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

func TestBuildWritesSite(t *testing.T) {
	cfg := siteFixture(t)

	report, err := NewGenerator(cfg).Build(t.Context())
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, report.Outcome)
	assert.Equal(t, 3, report.Pages)
	assert.Equal(t, 3, report.Written)
	assert.Equal(t, 1, report.Drafts)
	assert.Equal(t, 1, report.Assets)
	assert.NotEmpty(t, report.BuildID)
	assert.Contains(t, report.Summary(), "success: 3 pages")

	intro := readOutput(t, cfg, "docs/intro/index.html")
	assert.Contains(t, intro, "<title>Intro | Docs</title>")
	assert.Contains(t, intro, `<h2 id="getting-started" tabindex="-1">`)
	assert.Contains(t, intro, `class="chroma"`)
	assert.Contains(t, intro, `<a class="next" href="/docs/next/">next</a>`)
	assert.Contains(t, intro, "og:title")

	next := readOutput(t, cfg, "docs/next/index.html")
	assert.NotContains(t, next, `class="next"`)

	assert.Equal(t, "<h1>Docs</h1>", readOutput(t, cfg, "index.html"))
	assert.Equal(t, "User-agent: *\n", readOutput(t, cfg, "robots.txt"))
	assert.Contains(t, readOutput(t, cfg, "sitemap.xml"), "<loc>https://docs.example.org/docs/intro/</loc>")
	assert.Contains(t, readOutput(t, cfg, HighlightCSSFile), ".chroma")

	_, err = os.Stat(filepath.Join(cfg.Dir.Output, "draft", "index.html"))
	assert.True(t, os.IsNotExist(err))

	for _, stage := range []StageName{StagePrepareOutput, StageLoadContent, StageRenderPages, StageTransformOutput, StageWritePages, StagePassthroughCopy, StageWriteSitemap, StageVerifyLinks} {
		assert.Equal(t, 1, report.StageCounts[stage].Success, stage)
	}
}

func TestBuildCleansStaleOutput(t *testing.T) {
	cfg := siteFixture(t)
	writeTree(t, ".", map[string]string{"dist/stale.html": "old", "dist/img/keep.jpeg": "x"})

	_, err := NewGenerator(cfg).Build(t.Context())
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join("dist", "stale.html"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join("dist", "img", "keep.jpeg"))
	assert.NoError(t, err)
}

func TestBuildTracksChangesWithStore(t *testing.T) {
	cfg := siteFixture(t)
	store, err := state.Open(state.MemoryPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	g := NewGenerator(cfg, WithStateStore(store))
	first, err := g.Build(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 3, first.Changed)

	second, err := g.Build(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 0, second.Changed)

	builds, err := store.RecentBuilds(t.Context(), 10)
	require.NoError(t, err)
	assert.Len(t, builds, 2)
}

func TestBuildTemplateErrorIsFatal(t *testing.T) {
	cfg := siteFixture(t)
	writeTree(t, ".", map[string]string{"src/broken.md": "{{ nope }}"})

	report, err := NewGenerator(cfg).Build(t.Context())
	require.Error(t, err)
	assert.Equal(t, OutcomeFailed, report.Outcome)
	assert.True(t, foundation.HasCategory(err, foundation.CategoryTemplate))

	var se *StageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, StageRenderPages, se.Stage)
	assert.Equal(t, StageErrorFatal, se.Kind)
}

func TestBuildCanceled(t *testing.T) {
	cfg := siteFixture(t)
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	report, err := NewGenerator(cfg).Build(ctx)
	require.Error(t, err)
	assert.Equal(t, OutcomeCanceled, report.Outcome)

	var se *StageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, StageErrorCanceled, se.Kind)
	assert.Equal(t, StagePrepareOutput, se.Stage)
}

func TestClassifyStageError(t *testing.T) {
	assert.Nil(t, classifyStageError(StageWritePages, nil))

	warn := classifyStageError(StageTransformOutput, foundation.ImageError("decode").Build())
	assert.Equal(t, StageErrorWarning, warn.Kind)

	fatal := classifyStageError(StageWritePages, errors.New("disk full"))
	assert.Equal(t, StageErrorFatal, fatal.Kind)
	assert.False(t, fatal.Transient())

	transient := classifyStageError(StageRenderPages, foundation.FetchError("timeout").Build())
	assert.True(t, transient.Transient())

	canceled := classifyStageError(StageRenderPages, context.Canceled)
	assert.Equal(t, StageErrorCanceled, canceled.Kind)
}

func TestReportJoinedWarnings(t *testing.T) {
	r := newBuildReport("b", config.EnvDevelopment)
	se := NewWarnStageError(StageTransformOutput, errors.Join(errors.New("a"), errors.New("b")))
	r.recordStage(StageTransformOutput, 0, se, metrics.NoopRecorder{})
	r.deriveOutcome()
	assert.Len(t, r.Warnings, 2)
	assert.Equal(t, OutcomeWarning, r.Outcome)
}

type recordingPublisher struct {
	events []linkverify.BrokenLinkEvent
}

func (r *recordingPublisher) Publish(_ context.Context, events []linkverify.BrokenLinkEvent) error {
	r.events = append(r.events, events...)
	return nil
}

func (r *recordingPublisher) Close() error { return nil }

func TestBuildReportsBrokenLinks(t *testing.T) {
	cfg := siteFixture(t)
	writeTree(t, ".", map[string]string{
		"src/links.html": "<a href=\"/docs/intro/\">ok</a><a href=\"/docs/gone/\">gone</a><a href=\"/robots.txt\">robots</a>",
	})

	pub := &recordingPublisher{}
	report, err := NewGenerator(cfg, WithLinkPublisher(pub)).Build(t.Context())
	require.NoError(t, err)
	assert.Equal(t, OutcomeWarning, report.Outcome)
	assert.Equal(t, 1, report.BrokenLinks)
	require.Len(t, pub.events, 1)
	assert.Equal(t, "/docs/gone/", pub.events[0].URL)
	assert.Equal(t, report.BuildID, pub.events[0].BuildID)
	assert.Equal(t, 1, report.StageCounts[StageVerifyLinks].Warning)
}

func TestBuildFailsOnBrokenLinksWhenConfigured(t *testing.T) {
	cfg := siteFixture(t)
	cfg.LinkCheck.FailOnBroken = true
	writeTree(t, ".", map[string]string{"src/links.html": "<a href=\"/nowhere\">x</a>"})

	report, err := NewGenerator(cfg).Build(t.Context())
	require.Error(t, err)
	assert.Equal(t, OutcomeFailed, report.Outcome)
	assert.True(t, foundation.HasCategory(err, foundation.CategoryValidation))
}
