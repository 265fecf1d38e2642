package navigation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TotalLag/developer-docs/internal/content"
)

func navPage(url string, nav map[string]any) *content.Page {
	return &content.Page{URL: url, Data: map[string]any{"navigation": nav}}
}

func fixture() []*content.Page {
	return []*content.Page{
		navPage("/docs/", map[string]any{"key": "docs", "title": "Docs", "order": 1}),
		navPage("/docs/co2js/", map[string]any{"key": "co2js", "parent": "docs", "title": "CO2.js", "order": 2}),
		navPage("/docs/api/", map[string]any{"key": "api", "parent": "docs", "title": "Greencheck API", "order": 1}),
		navPage("/docs/co2js/methods/", map[string]any{"key": "methods", "parent": "co2js", "title": "Methods"}),
		{URL: "/blog/", Data: map[string]any{"eleventyNavigation": map[string]any{"key": "blog", "order": 0}}},
		{URL: "/no-nav/", Data: map[string]any{}},
	}
}

func TestBuild(t *testing.T) {
	top := Build(fixture(), "")
	require.Len(t, top, 2)
	assert.Equal(t, "blog", top[0].Key)
	assert.Equal(t, "blog", top[0].Title, "title defaults to key")
	assert.Equal(t, "docs", top[1].Key)

	docs := top[1]
	require.Len(t, docs.Children, 2)
	assert.Equal(t, "api", docs.Children[0].Key, "sorted by order")
	assert.Equal(t, "co2js", docs.Children[1].Key)
	require.Len(t, docs.Children[1].Children, 1)
	assert.Equal(t, "/docs/co2js/methods/", docs.Children[1].Children[0].URL)
}

func TestBuild_Subtree(t *testing.T) {
	sub := Build(fixture(), "co2js")
	require.Len(t, sub, 1)
	assert.Equal(t, "methods", sub[0].Key)
}

func TestBuild_CycleTerminates(t *testing.T) {
	pages := []*content.Page{
		navPage("/a/", map[string]any{"key": "a", "parent": "b"}),
		navPage("/b/", map[string]any{"key": "b", "parent": "a"}),
	}
	assert.NotPanics(t, func() { Build(pages, "a") })
	assert.NotPanics(t, func() { Breadcrumb(pages, "a", true) })
}

func TestBreadcrumb(t *testing.T) {
	chain := Breadcrumb(fixture(), "methods", true)
	keys := make([]string, 0, len(chain))
	for _, e := range chain {
		keys = append(keys, e.Key)
	}
	assert.Equal(t, []string{"docs", "co2js", "methods"}, keys)

	chain = Breadcrumb(fixture(), "methods", false)
	assert.Len(t, chain, 2)
	assert.Empty(t, Breadcrumb(fixture(), "unknown", true))
}

func TestToHTML(t *testing.T) {
	entries := Build(fixture(), "docs")
	out := string(ToHTML(entries, HTMLOptions{ActiveURL: "/docs/api/", ListClass: "menu"}))
	assert.Equal(t,
		`<ul class="menu"><li class="active"><a href="/docs/api/" aria-current="page">Greencheck API</a></li>`+
			`<li><a href="/docs/co2js/">CO2.js</a><ul class="menu"><li><a href="/docs/co2js/methods/">Methods</a></li></ul></li></ul>`,
		out)

	assert.Empty(t, string(ToHTML(nil, HTMLOptions{})))
}

func TestToHTML_Escapes(t *testing.T) {
	pages := []*content.Page{navPage("/x/", map[string]any{"key": "x", "title": `<script>"`})}
	out := string(ToHTML(Build(pages, ""), HTMLOptions{}))
	assert.Contains(t, out, "&lt;script&gt;&#34;")
}
