// Package sitemap writes sitemap.xml for the built pages.
package sitemap

import (
	"encoding/xml"
	"io"
	"strings"
	"time"

	"github.com/TotalLag/developer-docs/internal/content"
	"github.com/TotalLag/developer-docs/internal/frontmatter"
)

const xmlns = "http://www.sitemaps.org/schemas/sitemap/0.9"

// Options configures Generate.
type Options struct {
	Hostname             string
	LastModifiedProperty string // front matter key, default "modified"
}

type urlSet struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	URLs    []URLEntry  `xml:"url"`
}

// URLEntry is one <url> element.
type URLEntry struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

// Entries returns the sitemap rows for pages, in page order. Pages that are not
// written, are not HTML, or set sitemap.ignore are skipped.
func Entries(pages []*content.Page, opts Options) []URLEntry {
	prop := opts.LastModifiedProperty
	if prop == "" {
		prop = "modified"
	}
	host := strings.TrimRight(opts.Hostname, "/")

	out := make([]URLEntry, 0, len(pages))
	for _, p := range pages {
		if p == nil || !p.IsWritten() || !strings.HasSuffix(p.OutputPath, ".html") {
			continue
		}
		settings := frontmatter.Map(p.Data, "sitemap")
		if frontmatter.Bool(settings, "ignore") {
			continue
		}
		e := URLEntry{
			Loc:        host + p.URL,
			LastMod:    lastModified(p, prop).UTC().Format(time.RFC3339),
			ChangeFreq: frontmatter.String(settings, "changefreq"),
			Priority:   frontmatter.String(settings, "priority"),
		}
		out = append(out, e)
	}
	return out
}

func lastModified(p *content.Page, prop string) time.Time {
	if prop == "modified" && !p.Modified.IsZero() {
		return p.Modified
	}
	if t, ok := frontmatter.Time(p.Data, prop); ok {
		return t
	}
	return p.Date
}

// Generate writes the sitemap document to w.
func Generate(w io.Writer, pages []*content.Page, opts Options) error {
	set := urlSet{Xmlns: xmlns, URLs: Entries(pages, opts)}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}
