package filters

import (
	"html"
	"html/template"
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"

	"github.com/TotalLag/developer-docs/internal/config"
	foundation "github.com/TotalLag/developer-docs/internal/foundation/errors"
)

var fenceAliases = map[string]string{
	"curl": "shell",
	"js":   "javascript",
}

// CodeSnippet trims code and wraps it in a Markdown fence. curl and js map to
// shell and javascript; other tags are used as given and an empty tag leaves the
// fence unlabeled.
func CodeSnippet(code, lang string) string {
	if alias, ok := fenceAliases[lang]; ok {
		lang = alias
	}
	return "```" + lang + "\n" + strings.TrimSpace(code) + "\n```"
}

// CodeSnippetStrict is CodeSnippet for callers that reject tags the highlighter
// has no lexer for. Empty tags are allowed.
func CodeSnippetStrict(code, lang string) (string, error) {
	label := lang
	if alias, ok := fenceAliases[label]; ok {
		label = alias
	}
	if label != "" && lexers.Get(label) == nil {
		return "", foundation.UnsupportedLanguage(lang).Build()
	}
	return CodeSnippet(code, lang), nil
}

// GenerateDocsPath drops the first "/docs" from a slug.
func GenerateDocsPath(slug string) string {
	return strings.Replace(slug, "/docs", "", 1)
}

// PrNumber returns the last "/" segment of a pull request URL, trimmed.
func PrNumber(url string) string {
	i := strings.LastIndex(url, "/")
	return strings.TrimSpace(url[i+1:])
}

// Analytics returns the analytics script tag in production and nothing otherwise.
func Analytics(env config.Environment, scriptURL string) template.HTML {
	if env != config.EnvProduction || scriptURL == "" {
		return ""
	}
	// #nosec G203 -- scriptURL is attribute-escaped and comes from configuration
	return template.HTML(`<script async defer src="` + html.EscapeString(scriptURL) + `"></script>`)
}
