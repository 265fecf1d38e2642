package markdown

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TotalLag/developer-docs/internal/config"
)

func testEngine(placement config.PermalinkPlacement) *Engine {
	return New(Options{
		AllowHTML: true,
		Anchors: AnchorOptions{
			Levels:    []int{2, 3},
			Symbol:    "#",
			Class:     "header-anchor",
			Placement: placement,
		},
	})
}

func render(t *testing.T, e *Engine, src string) Result {
	t.Helper()
	res, err := e.Render([]byte(src))
	require.NoError(t, err)
	return res
}

func TestRender_AnchorsBefore(t *testing.T) {
	res := render(t, testEngine(config.PlacementBefore), "## Getting Started\n")
	assert.Equal(t,
		`<h2 id="getting-started" tabindex="-1"><a class="header-anchor" href="#getting-started">#</a> Getting Started</h2>`+"\n",
		string(res.HTML))
	require.Len(t, res.Headings, 1)
	assert.Equal(t, Heading{Level: 2, Text: "Getting Started", ID: "getting-started"}, res.Headings[0])
}

func TestRender_AnchorsAfter(t *testing.T) {
	res := render(t, testEngine(config.PlacementAfter), "### Install\n")
	assert.Equal(t,
		`<h3 id="install" tabindex="-1">Install <a class="header-anchor" href="#install">#</a></h3>`+"\n",
		string(res.HTML))
}

func TestRender_OnlyConfiguredLevels(t *testing.T) {
	res := render(t, testEngine(config.PlacementBefore), "# Title\n\n#### Deep\n\n## Kept\n")
	html := string(res.HTML)
	assert.Contains(t, html, "<h1>Title</h1>")
	assert.Contains(t, html, "<h4>Deep</h4>")
	assert.Contains(t, html, `<h2 id="kept"`)
	require.Len(t, res.Headings, 1)
}

func TestRender_DuplicateHeadings(t *testing.T) {
	res := render(t, testEngine(config.PlacementBefore), "## Example\n\n## Example\n\n### Example\n\n## !!!\n")
	ids := make([]string, 0, len(res.Headings))
	for _, h := range res.Headings {
		ids = append(ids, h.ID)
	}
	assert.Equal(t, []string{"example", "example-1", "example-2", "section"}, ids)
}

func TestRender_RegistryIsPerDocument(t *testing.T) {
	e := testEngine(config.PlacementBefore)
	first := render(t, e, "## Usage\n")
	second := render(t, e, "## Usage\n")
	assert.Equal(t, first.Headings[0].ID, second.Headings[0].ID)
}

func TestRender_HeadingTextFromInlines(t *testing.T) {
	res := render(t, testEngine(config.PlacementBefore), "## The `co2` *API*\n")
	require.Len(t, res.Headings, 1)
	assert.Equal(t, "The co2 API", res.Headings[0].Text)
	assert.Equal(t, "the-co2-api", res.Headings[0].ID)
}

func TestRender_RawHTML(t *testing.T) {
	on := New(Options{AllowHTML: true})
	off := New(Options{AllowHTML: false})

	src := "<div class=\"note\">hi</div>\n"
	assert.Contains(t, string(render(t, on, src).HTML), `<div class="note">hi</div>`)
	assert.NotContains(t, string(render(t, off, src).HTML), `<div class="note">`)
}

func TestRender_TablesAndStrikethrough(t *testing.T) {
	res := render(t, New(Options{}), "| a | b |\n|---|---|\n| 1 | 2 |\n\n~~old~~\n")
	assert.Contains(t, string(res.HTML), "<table>")
	assert.Contains(t, string(res.HTML), "<del>old</del>")
}

func TestRender_Highlighting(t *testing.T) {
	e := New(Options{Highlight: true, HighlightStyle: "github"})
	res := render(t, e, "```go\nfunc main() {}\n```\n")
	assert.Contains(t, string(res.HTML), `class="chroma"`)

	var css bytes.Buffer
	require.NoError(t, e.WriteHighlightCSS(&css))
	assert.True(t, strings.Contains(css.String(), ".chroma"))
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Example()
	opts := OptionsFromConfig(cfg.Markdown)
	assert.True(t, opts.AllowHTML)
	assert.Equal(t, []int{2, 3}, opts.Anchors.Levels)
	assert.Equal(t, config.PlacementBefore, opts.Anchors.Placement)
	assert.Contains(t, opts.Anchors.Symbol, "<svg")
}
