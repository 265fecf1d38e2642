// Package navigation builds a site navigation tree from page front matter.
//
// A page joins the tree with a navigation (or eleventyNavigation) mapping:
//
//	navigation:
//	  key: co2js
//	  parent: libraries
//	  title: CO2.js
//	  order: 2
package navigation

import (
	"html"
	"html/template"
	"sort"
	"strings"

	"github.com/TotalLag/developer-docs/internal/content"
	"github.com/TotalLag/developer-docs/internal/frontmatter"
)

var frontMatterKeys = []string{"navigation", "eleventyNavigation"}

// Entry is a node of the navigation tree.
type Entry struct {
	Key      string
	Parent   string
	Title    string
	URL      string
	Excerpt  string
	Order    int
	Page     *content.Page
	Children []*Entry
}

// HasChildren is a template convenience.
func (e *Entry) HasChildren() bool { return len(e.Children) > 0 }

func entryFor(p *content.Page) (*Entry, bool) {
	var nav map[string]any
	for _, k := range frontMatterKeys {
		if nav = frontmatter.Map(p.Data, k); nav != nil {
			break
		}
	}
	if nav == nil {
		return nil, false
	}
	key := frontmatter.String(nav, "key")
	if key == "" {
		return nil, false
	}
	e := &Entry{
		Key:     key,
		Parent:  frontmatter.String(nav, "parent"),
		Title:   frontmatter.String(nav, "title"),
		URL:     frontmatter.String(nav, "url"),
		Excerpt: frontmatter.String(nav, "excerpt"),
		Page:    p,
	}
	if e.Title == "" {
		e.Title = key
	}
	if e.URL == "" {
		e.URL = p.URL
	}
	if order, ok := frontmatter.Int(nav, "order"); ok {
		e.Order = order
	}
	return e, true
}

func collect(pages []*content.Page) []*Entry {
	entries := make([]*Entry, 0, len(pages))
	for _, p := range pages {
		if p == nil {
			continue
		}
		if e, ok := entryFor(p); ok {
			entries = append(entries, e)
		}
	}
	return entries
}

// Build returns the entries whose parent is root ("" for top level) with their
// descendants nested, each level sorted by order. Ties keep collection order.
func Build(pages []*content.Page, root string) []*Entry {
	entries := collect(pages)
	byParent := make(map[string][]*Entry)
	for _, e := range entries {
		byParent[e.Parent] = append(byParent[e.Parent], e)
	}

	visited := make(map[string]bool)
	var nest func(parent string) []*Entry
	nest = func(parent string) []*Entry {
		if visited[parent] {
			return nil
		}
		visited[parent] = true
		level := byParent[parent]
		sort.SliceStable(level, func(i, j int) bool { return level[i].Order < level[j].Order })
		for _, e := range level {
			e.Children = nest(e.Key)
		}
		return level
	}
	return nest(root)
}

// Breadcrumb returns the chain from the top-level ancestor down to key.
// includeSelf controls whether the entry for key ends the chain.
func Breadcrumb(pages []*content.Page, key string, includeSelf bool) []*Entry {
	byKey := make(map[string]*Entry)
	for _, e := range collect(pages) {
		if _, dup := byKey[e.Key]; !dup {
			byKey[e.Key] = e
		}
	}

	var chain []*Entry
	seen := make(map[string]bool)
	cur, ok := byKey[key]
	if ok && !includeSelf {
		cur, ok = byKey[cur.Parent]
	}
	for ok && !seen[cur.Key] {
		seen[cur.Key] = true
		chain = append(chain, cur)
		cur, ok = byKey[cur.Parent]
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// HTMLOptions controls ToHTML markup.
type HTMLOptions struct {
	ActiveURL     string
	ListClass     string
	ListItemClass string
	AnchorClass   string
	ActiveClass   string // default "active"
	ShowExcerpt   bool
}

// ToHTML renders entries as nested unordered lists.
func ToHTML(entries []*Entry, opts HTMLOptions) template.HTML {
	if len(entries) == 0 {
		return ""
	}
	if opts.ActiveClass == "" {
		opts.ActiveClass = "active"
	}
	var b strings.Builder
	writeList(&b, entries, opts)
	// #nosec G203 -- every interpolated value is escaped in writeList
	return template.HTML(b.String())
}

func writeList(b *strings.Builder, entries []*Entry, opts HTMLOptions) {
	b.WriteString("<ul")
	writeClass(b, opts.ListClass)
	b.WriteString(">")
	for _, e := range entries {
		classes := []string{}
		if opts.ListItemClass != "" {
			classes = append(classes, opts.ListItemClass)
		}
		active := opts.ActiveURL != "" && e.URL == opts.ActiveURL
		if active {
			classes = append(classes, opts.ActiveClass)
		}
		b.WriteString("<li")
		writeClass(b, strings.Join(classes, " "))
		b.WriteString(`><a href="`)
		b.WriteString(html.EscapeString(e.URL))
		b.WriteString(`"`)
		writeClass(b, opts.AnchorClass)
		if active {
			b.WriteString(` aria-current="page"`)
		}
		b.WriteString(">")
		b.WriteString(html.EscapeString(e.Title))
		b.WriteString("</a>")
		if opts.ShowExcerpt && e.Excerpt != "" {
			b.WriteString("<p>")
			b.WriteString(html.EscapeString(e.Excerpt))
			b.WriteString("</p>")
		}
		if len(e.Children) > 0 {
			writeList(b, e.Children, opts)
		}
		b.WriteString("</li>")
	}
	b.WriteString("</ul>")
}

func writeClass(b *strings.Builder, class string) {
	if class == "" {
		return
	}
	b.WriteString(` class="`)
	b.WriteString(html.EscapeString(class))
	b.WriteString(`"`)
}
