// Package content discovers pages under the input directory and groups them into collections.
package content

import (
	"time"

	"github.com/TotalLag/developer-docs/internal/frontmatter"
)

// Kind distinguishes template languages of page sources.
type Kind string

const (
	KindMarkdown Kind = "markdown"
	KindHTML     Kind = "html"
)

// Page is one input document. Everything except Content is read-only once loading finishes.
type Page struct {
	URL         string // "" when permalink is false
	InputPath   string // slash-separated, relative to the input dir
	SourcePath  string // filesystem path
	OutputPath  string // slash-separated, relative to the output dir; "" when not written
	FileSlug    string
	Kind        Kind
	Date        time.Time
	Modified    time.Time
	Data        map[string]any
	Tags        []string
	RawContent  []byte
	Content     string // rendered HTML, set by the build
	Fingerprint string
}

// Title returns the title front matter value.
func (p *Page) Title() string { return frontmatter.String(p.Data, "title") }

// Layout returns the layout front matter value.
func (p *Page) Layout() string { return frontmatter.String(p.Data, "layout") }

// Draft reports draft: true.
func (p *Page) Draft() bool { return frontmatter.Bool(p.Data, "draft") }

// IsWritten reports whether the page produces an output file.
func (p *Page) IsWritten() bool { return p.OutputPath != "" }

// Get returns a front matter value; templates use it for keys that are not fields.
func (p *Page) Get(key string) any { return p.Data[key] }
