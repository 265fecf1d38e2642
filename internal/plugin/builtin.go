package plugin

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/TotalLag/developer-docs/internal/config"
	"github.com/TotalLag/developer-docs/internal/content"
	"github.com/TotalLag/developer-docs/internal/css"
	"github.com/TotalLag/developer-docs/internal/featureimage"
	"github.com/TotalLag/developer-docs/internal/filters"
	"github.com/TotalLag/developer-docs/internal/images"
	"github.com/TotalLag/developer-docs/internal/metagen"
	"github.com/TotalLag/developer-docs/internal/navigation"
	"github.com/TotalLag/developer-docs/internal/slug"
)

// Deps are the services the built-in functions close over.
type Deps struct {
	Config       *config.Config
	FeatureImage *featureimage.Client // nil disables postFeatureImage lookups
	CSS          *css.Processor
	Images       *images.Processor // nil disables the picture transform
	Logger       *slog.Logger
}

// RegisterBuiltins registers every site function and transform on r. ctx bounds
// the remote lookups made while templates execute.
func RegisterBuiltins(ctx context.Context, r *Registry, deps Deps) error {
	cfg := deps.Config
	if cfg == nil {
		return fmt.Errorf("plugin: config is required")
	}
	cssProc := deps.CSS
	if cssProc == nil {
		cssProc = css.FromConfig(cfg.CSS, cfg.Env)
	}
	featureImage := func(string) string { return "" }
	if deps.FeatureImage != nil {
		featureImage = deps.FeatureImage.Shortcode(ctx)
	}

	funcs := []Func{
		{Name: "nextPage", Kind: KindFilter, Description: "page after url in a collection", Fn: func(url string, pages []*content.Page) (*content.Page, error) {
			return filters.NextPage(pages, url)
		}},
		{Name: "previousPage", Kind: KindFilter, Description: "page before url in a collection", Fn: func(url string, pages []*content.Page) (*content.Page, error) {
			return filters.PreviousPage(pages, url)
		}},
		{Name: "getDocumentsFromCollection", Kind: KindFilter, Description: "pages whose repo front matter equals value", Fn: func(value string, pages []*content.Page) []*content.Page {
			return filters.DocumentsFromCollection(pages, value)
		}},
		{Name: "postcss", Kind: KindFilter, Description: "theme, prefix and minify a stylesheet", Fn: func(src string) (template.CSS, error) {
			out, err := cssProc.Process(src)
			// #nosec G203 -- stylesheet authored in the repository
			return template.CSS(out), err
		}},
		{Name: "slugify", Kind: KindFilter, Fn: slug.Slugify},
		{Name: "titlecase", Kind: KindFilter, Description: "title-case text for the site language", Fn: func(s string) string {
			return titleCase(cfg.Site.Language, s)
		}},
		{Name: "absoluteURL", Kind: KindFilter, Description: "resolve a path against the site base URL", Fn: func(path string) string {
			return absoluteURL(cfg.Site.BaseURL, path)
		}},
		{Name: "date", Kind: KindFilter, Description: "format a time with a Go layout", Fn: func(layout string, t time.Time) string {
			return t.Format(layout)
		}},
		{Name: "navigation", Kind: KindFilter, Description: "navigation tree under root", Fn: func(root string, pages []*content.Page) []*navigation.Entry {
			return navigation.Build(pages, root)
		}},
		{Name: "navigationBreadcrumb", Kind: KindFilter, Description: "ancestor chain of key", Fn: func(key string, pages []*content.Page) []*navigation.Entry {
			return navigation.Breadcrumb(pages, key, false)
		}},
		{Name: "navigationToHtml", Kind: KindFilter, Description: "nested list markup with the active url marked", Fn: func(activeURL string, entries []*navigation.Entry) template.HTML {
			return navigation.ToHTML(entries, navigation.HTMLOptions{ActiveURL: activeURL})
		}},

		{Name: "codeSnippet", Kind: KindShortcode, Description: "wrap code in a Markdown fence", Fn: filters.CodeSnippet},
		{Name: "codeSnippetStrict", Kind: KindShortcode, Description: "codeSnippet that rejects unknown languages", Fn: filters.CodeSnippetStrict},
		{Name: "postFeatureImage", Kind: KindShortcode, Description: "remote feature image URL", Fn: featureImage},
		{Name: "generateDocsPath", Kind: KindShortcode, Fn: filters.GenerateDocsPath},
		{Name: "getPrNumber", Kind: KindShortcode, Fn: filters.PrNumber},
		{Name: "analytics", Kind: KindShortcode, Description: "analytics script in production", Fn: func() template.HTML {
			return filters.Analytics(cfg.Env, cfg.Analytics.ScriptURL)
		}},
		{Name: "metagen", Kind: KindShortcode, Description: "head meta tags", Fn: func(args map[string]any) template.HTML {
			m := metagen.FromMap(args)
			if m.Generator == "" {
				m.Generator = cfg.Site.Generator
			}
			return metagen.Render(m)
		}},

		{Name: "dict", Kind: KindHelper, Description: "build a map from key/value pairs", Fn: dict},
		{Name: "safeHTML", Kind: KindHelper, Fn: func(s string) template.HTML {
			return template.HTML(s) // #nosec G203 -- explicit opt-in from a template author
		}},
	}
	for _, f := range funcs {
		if err := r.Register(f); err != nil {
			return err
		}
	}

	if deps.Images != nil {
		proc := deps.Images
		return r.RegisterTransform(TransformFunc{
			ID: "img2picture",
			Fn: func(ctx context.Context, page *content.Page, html []byte) ([]byte, error) {
				return proc.Transform(ctx, html, page.InputPath)
			},
		})
	}
	return nil
}

func dict(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 != 0 {
		return nil, fmt.Errorf("dict: odd number of arguments")
	}
	m := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict: key %v is not a string", pairs[i])
		}
		m[key] = pairs[i+1]
	}
	return m, nil
}

// titleCase upper-cases the first letter of each word using lang's rules.
// Unknown languages fall back to the root locale.
func titleCase(lang, s string) string {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.Und
	}
	return cases.Title(tag).String(s)
}

func absoluteURL(base, path string) string {
	if base == "" {
		return path
	}
	if u, err := url.Parse(path); err == nil && u.IsAbs() {
		return path
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
