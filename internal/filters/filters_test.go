package filters

import (
	"html/template"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TotalLag/developer-docs/internal/config"
	"github.com/TotalLag/developer-docs/internal/content"
	foundation "github.com/TotalLag/developer-docs/internal/foundation/errors"
)

func pages(urls ...string) []*content.Page {
	out := make([]*content.Page, 0, len(urls))
	for _, u := range urls {
		out = append(out, &content.Page{URL: u, Data: map[string]any{}})
	}
	return out
}

func TestNextPage(t *testing.T) {
	ps := pages("/a", "/b", "/c")

	next, err := NextPage(ps, "/b")
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "/c", next.URL)

	next, err = NextPage(ps, "/c")
	require.NoError(t, err)
	assert.Nil(t, next, "last page has no next")
}

func TestPreviousPage(t *testing.T) {
	ps := pages("/a", "/b", "/c")

	prev, err := PreviousPage(ps, "/a")
	require.NoError(t, err)
	assert.Nil(t, prev, "first page has no previous")

	prev, err = PreviousPage(ps, "/c")
	require.NoError(t, err)
	assert.Equal(t, "/b", prev.URL)
}

func TestPagination_MissingURL(t *testing.T) {
	ps := pages("/a", "/b", "/c")
	for name, fn := range map[string]func([]*content.Page, string) (*content.Page, error){
		"next":     NextPage,
		"previous": PreviousPage,
	} {
		t.Run(name, func(t *testing.T) {
			p, err := fn(ps, "/missing")
			require.Error(t, err)
			assert.Nil(t, p, "no wraparound")
			assert.True(t, foundation.HasCategory(err, foundation.CategoryNotFound))
		})
	}

	_, err := NextPage(nil, "/a")
	assert.True(t, foundation.HasCategory(err, foundation.CategoryNotFound))
}

func TestDocumentsFromCollection(t *testing.T) {
	ps := pages("/1", "/2", "/3", "/4", "/5")
	ps[0].Data["repo"] = "x"
	ps[1].Data["repo"] = "X"
	ps[2].Data["repo"] = "x"
	ps[3].Data["repo"] = "xy"
	// ps[4] has no repo

	got := DocumentsFromCollection(ps, "x")
	require.Len(t, got, 2)
	assert.Same(t, ps[0], got[0])
	assert.Same(t, ps[2], got[1])

	none := DocumentsFromCollection(ps, "nothing")
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestCodeSnippet(t *testing.T) {
	tests := []struct {
		code, lang, want string
	}{
		{" console.log(1) ", "js", "```javascript\nconsole.log(1)\n```"},
		{"\ncurl https://api.example.org\n", "curl", "```shell\ncurl https://api.example.org\n```"},
		{"print(1)", "python", "```python\nprint(1)\n```"},
		{"plain", "", "```\nplain\n```"},
		{"x", " js", "``` js\nx\n```"},
	}
	for _, tt := range tests {
		t.Run(tt.lang, func(t *testing.T) {
			assert.Equal(t, tt.want, CodeSnippet(tt.code, tt.lang))
		})
	}
}

func TestCodeSnippetStrict(t *testing.T) {
	out, err := CodeSnippetStrict("x", "js")
	require.NoError(t, err)
	assert.Equal(t, "```javascript\nx\n```", out)

	_, err = CodeSnippetStrict("x", "definitely-not-a-language")
	require.Error(t, err)
	assert.True(t, foundation.HasCategory(err, foundation.CategoryValidation))
}

func TestGenerateDocsPath(t *testing.T) {
	assert.Equal(t, "/co2js/overview/", GenerateDocsPath("/docs/co2js/overview/"))
	assert.Equal(t, "/a/docs/b", GenerateDocsPath("/docs/a/docs/b"), "only the first occurrence")
	assert.Equal(t, "/guides/", GenerateDocsPath("/guides/"))
}

func TestPrNumber(t *testing.T) {
	assert.Equal(t, "123", PrNumber("https://github.com/thegreenwebfoundation/co2.js/pull/123 "))
	assert.Equal(t, "", PrNumber("https://github.com/org/repo/pull/"))
	assert.Equal(t, "42", PrNumber("42"))
}

func TestAnalytics(t *testing.T) {
	const src = "https://scripts.withcabin.com/hello.js"
	assert.Equal(t, template.HTML(""), Analytics(config.EnvDevelopment, src))
	assert.Equal(t,
		template.HTML(`<script async defer src="https://scripts.withcabin.com/hello.js"></script>`),
		Analytics(config.EnvProduction, src))
}
