package plugin

import (
	"bytes"
	"context"
	"html/template"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TotalLag/developer-docs/internal/config"
	"github.com/TotalLag/developer-docs/internal/content"
)

func TestRegistryRegister(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Register(Func{Name: "upper", Kind: KindFilter, Fn: func(s string) string { return s }}))
	assert.True(t, r.Has("upper"))

	err := r.Register(Func{Name: "upper", Kind: KindFilter, Fn: func(s string) string { return s }})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestRegistryRejectsInvalid(t *testing.T) {
	r := NewRegistry()

	assert.Error(t, r.Register(Func{Name: "bad-name", Kind: KindHelper, Fn: func() {}}))
	assert.Error(t, r.Register(Func{Name: "ok", Kind: "widget", Fn: func() {}}))
	assert.Error(t, r.Register(Func{Name: "ok", Kind: KindHelper, Fn: "not a func"}))
	assert.Error(t, r.RegisterTransform(nil))
}

func TestRegistryListAndTransforms(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Func{Name: "b", Kind: KindShortcode, Fn: func() {}}))
	require.NoError(t, r.Register(Func{Name: "a", Kind: KindShortcode, Fn: func() {}}))
	require.NoError(t, r.Register(Func{Name: "c", Kind: KindFilter, Fn: func() {}}))

	shortcodes := r.List(KindShortcode)
	require.Len(t, shortcodes, 2)
	assert.Equal(t, "a", shortcodes[0].Name)
	assert.Len(t, r.List(""), 3)
	assert.Len(t, r.FuncMap(), 3)

	noop := func(_ context.Context, _ *content.Page, html []byte) ([]byte, error) { return html, nil }
	require.NoError(t, r.RegisterTransform(TransformFunc{ID: "one", Fn: noop}))
	require.NoError(t, r.RegisterTransform(TransformFunc{ID: "two", Fn: noop}))
	assert.Error(t, r.RegisterTransform(TransformFunc{ID: "one", Fn: noop}))

	names := []string{}
	for _, tr := range r.Transforms() {
		names = append(names, tr.Name())
	}
	assert.Equal(t, []string{"one", "two"}, names)
}

func builtinRegistry(t *testing.T, env config.Environment) *Registry {
	t.Helper()
	cfg := &config.Config{Env: env}
	config.ApplyDefaults(cfg)
	cfg.Site.BaseURL = "https://developers.example.org/"
	r := NewRegistry()
	require.NoError(t, RegisterBuiltins(t.Context(), r, Deps{Config: cfg}))
	return r
}

func TestBuiltinsInTemplates(t *testing.T) {
	r := builtinRegistry(t, config.EnvProduction)
	pages := []*content.Page{
		{URL: "/a/", Data: map[string]any{"repo": "co2js"}},
		{URL: "/b/", Data: map[string]any{"repo": "grid"}},
		{URL: "/c/", Data: map[string]any{"repo": "co2js"}},
	}

	src := `{{ with nextPage "/a/" .Pages }}{{ .URL }}{{ end }}|` +
		`{{ with previousPage "/a/" .Pages }}{{ .URL }}{{ else }}none{{ end }}|` +
		`{{ range getDocumentsFromCollection "co2js" .Pages }}{{ .URL }}{{ end }}|` +
		`{{ "Hello, World!" | slugify }}|` +
		`{{ absoluteURL "/docs/" }}|` +
		`{{ getPrNumber "https://github.com/org/repo/pull/42 " }}|` +
		`{{ generateDocsPath "/docs/co2js/" }}|` +
		`{{ analytics }}`
	tpl, err := template.New("t").Funcs(r.FuncMap()).Parse(src)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, tpl.Execute(&buf, map[string]any{"Pages": pages}))
	assert.Equal(t,
		`/b/|none|/a//c/|hello-world|https://developers.example.org/docs/|42|/co2js/|`+
			`<script async defer src="https://scripts.withcabin.com/hello.js"></script>`,
		buf.String())
}

func TestBuiltinsDevelopmentAndPostcss(t *testing.T) {
	r := builtinRegistry(t, config.EnvDevelopment)
	fm := r.FuncMap()

	analytics := fm["analytics"].(func() template.HTML)
	assert.Empty(t, analytics())

	postcss := fm["postcss"].(func(string) (template.CSS, error))
	out, err := postcss("a{user-select:none}")
	require.NoError(t, err)
	assert.Contains(t, string(out), "-webkit-user-select:none;")

	feature := fm["postFeatureImage"].(func(string) string)
	assert.Empty(t, feature("image.png"))

	assert.Empty(t, r.Transforms())
}

func TestDict(t *testing.T) {
	m, err := dict("title", "Intro", "n", 2)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"title": "Intro", "n": 2}, m)

	_, err = dict("odd")
	assert.Error(t, err)
	_, err = dict(1, 2)
	assert.Error(t, err)
}

func TestRegisterBuiltinsRequiresConfig(t *testing.T) {
	assert.Error(t, RegisterBuiltins(t.Context(), NewRegistry(), Deps{}))
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Getting Started With Libraries", titleCase("en", "getting started with libraries"))
	assert.Equal(t, "Istanbul", titleCase("not a tag", "istanbul"))
}
