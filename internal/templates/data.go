package templates

import (
	"html/template"

	"github.com/TotalLag/developer-docs/internal/config"
	"github.com/TotalLag/developer-docs/internal/content"
	"github.com/TotalLag/developer-docs/internal/markdown"
)

// Data is the dot value of every page body and layout.
type Data struct {
	Page        *content.Page
	Site        config.SiteConfig
	Env         config.Environment
	Collections content.Collections
	Data        map[string]any // global data files
	Content     template.HTML  // rendered inner content; empty while rendering a body
	Layout      map[string]any // front matter of the layout being executed
	Headings    []markdown.Heading
}

// IsProduction is a template convenience.
func (d Data) IsProduction() bool { return d.Env == config.EnvProduction }

// withContent returns a copy carrying the output of the previous render step.
func (d Data) withContent(html string, layout map[string]any) Data {
	d.Content = template.HTML(html) // #nosec G203 -- content is our own rendered output
	d.Layout = layout
	return d
}
