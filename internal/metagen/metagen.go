// Package metagen renders the document head meta tags (charset, Open Graph,
// Twitter card, canonical link) for a page.
package metagen

import (
	"html"
	"html/template"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/TotalLag/developer-docs/internal/frontmatter"
)

// Meta holds the values rendered into tags. Empty fields are omitted.
type Meta struct {
	Title           string
	Description     string
	URL             string
	Image           string
	ImageAlt        string
	Author          string
	TwitterHandle   string
	TwitterCardType string // default summary_large_image
	Type            string // og:type, default website
	Locale          string // og:locale, default en_US
	Generator       string
	CSS             []string
	JS              []string
	Preconnect      []string
}

var (
	stripPolicy *bluemonday.Policy
	policyOnce  sync.Once
)

// plain strips every tag and returns unescaped text.
func plain(s string) string {
	policyOnce.Do(func() { stripPolicy = bluemonday.StrictPolicy() })
	return strings.TrimSpace(html.UnescapeString(stripPolicy.Sanitize(s)))
}

// FromMap reads template arguments: title, desc, url, img, img_alt, name,
// twitter_handle, twitter_card_type, type, locale, generator, css, js, preconnect.
func FromMap(m map[string]any) Meta {
	return Meta{
		Title:           frontmatter.String(m, "title"),
		Description:     firstNonEmpty(frontmatter.String(m, "desc"), frontmatter.String(m, "description")),
		URL:             frontmatter.String(m, "url"),
		Image:           frontmatter.String(m, "img"),
		ImageAlt:        frontmatter.String(m, "img_alt"),
		Author:          frontmatter.String(m, "name"),
		TwitterHandle:   frontmatter.String(m, "twitter_handle"),
		TwitterCardType: frontmatter.String(m, "twitter_card_type"),
		Type:            frontmatter.String(m, "type"),
		Locale:          frontmatter.String(m, "locale"),
		Generator:       frontmatter.String(m, "generator"),
		CSS:             frontmatter.Strings(m, "css"),
		JS:              frontmatter.Strings(m, "js"),
		Preconnect:      frontmatter.Strings(m, "preconnect"),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

type tagWriter struct {
	b strings.Builder
}

func (w *tagWriter) meta(attr, name, content string) {
	content = plain(content)
	if content == "" {
		return
	}
	w.b.WriteString(`<meta ` + attr + `="` + name + `" content="` + html.EscapeString(content) + `">` + "\n")
}

func (w *tagWriter) link(rel, href string, extra string) {
	if href == "" {
		return
	}
	w.b.WriteString(`<link rel="` + rel + `" href="` + html.EscapeString(href) + `"` + extra + `>` + "\n")
}

// Render returns the tags for m, one per line.
func Render(m Meta) template.HTML {
	w := &tagWriter{}
	w.b.WriteString(`<meta charset="utf-8">` + "\n")
	w.b.WriteString(`<meta http-equiv="X-UA-Compatible" content="IE=edge">` + "\n")
	w.b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">` + "\n")
	if title := plain(m.Title); title != "" {
		w.b.WriteString("<title>" + html.EscapeString(title) + "</title>\n")
	}
	for _, origin := range m.Preconnect {
		w.link("preconnect", origin, "")
	}
	w.meta("name", "author", m.Author)
	w.meta("name", "title", m.Title)
	w.meta("name", "description", m.Description)

	w.meta("property", "og:type", firstNonEmpty(m.Type, "website"))
	w.meta("property", "og:url", m.URL)
	w.meta("property", "og:locale", firstNonEmpty(m.Locale, "en_US"))
	w.meta("property", "og:title", m.Title)
	w.meta("property", "og:description", m.Description)
	w.meta("property", "og:image", m.Image)
	w.meta("property", "og:image:alt", m.ImageAlt)

	w.meta("name", "twitter:card", firstNonEmpty(m.TwitterCardType, "summary_large_image"))
	if handle := strings.TrimPrefix(plain(m.TwitterHandle), "@"); handle != "" {
		w.meta("name", "twitter:site", "@"+handle)
		w.meta("name", "twitter:creator", "@"+handle)
	}
	w.meta("name", "twitter:url", m.URL)
	w.meta("name", "twitter:title", m.Title)
	w.meta("name", "twitter:description", m.Description)
	w.meta("name", "twitter:image", m.Image)
	w.meta("name", "twitter:image:alt", m.ImageAlt)

	w.link("canonical", m.URL, "")
	w.meta("name", "generator", m.Generator)
	for _, href := range m.CSS {
		w.link("stylesheet", href, "")
	}
	for _, src := range m.JS {
		if src != "" {
			w.b.WriteString(`<script src="` + html.EscapeString(src) + `" defer></script>` + "\n")
		}
	}
	// #nosec G203 -- all interpolated values are sanitized and escaped above
	return template.HTML(strings.TrimSuffix(w.b.String(), "\n"))
}
