package markdown

import (
	"bytes"
	"slices"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/TotalLag/developer-docs/internal/config"
	"github.com/TotalLag/developer-docs/internal/slug"
)

// AnchorOptions controls which headings get ids and how the permalink is drawn.
type AnchorOptions struct {
	Levels    []int
	Symbol    string // raw HTML
	Class     string
	Placement config.PermalinkPlacement
}

// KindPermalink is the node kind of Permalink.
var KindPermalink = ast.NewNodeKind("Permalink")

// Permalink is the link to its parent heading's id.
type Permalink struct {
	ast.BaseInline
	ID []byte
}

func (n *Permalink) Kind() ast.NodeKind { return KindPermalink }

func (n *Permalink) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"ID": string(n.ID)}, nil)
}

var headingsKey = parser.NewContextKey()

func headingsFrom(pc parser.Context) []Heading {
	if v, ok := pc.Get(headingsKey).([]Heading); ok {
		return v
	}
	return nil
}

// anchorTransformer assigns unique slugs to headings of the configured levels.
type anchorTransformer struct {
	opts AnchorOptions
}

func (t *anchorTransformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	src := reader.Source()
	seen := slug.NewRegistry()
	var headings []Heading

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		if !slices.Contains(t.opts.Levels, h.Level) {
			return ast.WalkSkipChildren, nil
		}

		label := headingText(h, src)
		id := seen.Unique(slug.Slugify(label))
		h.SetAttributeString("id", []byte(id))
		h.SetAttributeString("tabindex", []byte("-1"))

		link := &Permalink{ID: []byte(id)}
		if first := h.FirstChild(); first != nil && t.opts.Placement != config.PlacementAfter {
			h.InsertBefore(h, first, link)
		} else {
			h.AppendChild(h, link)
		}
		headings = append(headings, Heading{Level: h.Level, Text: label, ID: id})
		return ast.WalkSkipChildren, nil
	})

	pc.Set(headingsKey, headings)
}

// headingText concatenates the literal text under n, ignoring inline HTML.
func headingText(n ast.Node, src []byte) string {
	var b bytes.Buffer
	var walk func(ast.Node)
	walk = func(parent ast.Node) {
		for c := parent.FirstChild(); c != nil; c = c.NextSibling() {
			switch v := c.(type) {
			case *ast.Text:
				b.Write(v.Segment.Value(src))
				if v.SoftLineBreak() || v.HardLineBreak() {
					b.WriteByte(' ')
				}
			case *ast.String:
				b.Write(v.Value)
			case *ast.RawHTML, *Permalink:
			default:
				walk(c)
			}
		}
	}
	walk(n)
	return b.String()
}

type permalinkRenderer struct {
	opts AnchorOptions
}

func (r *permalinkRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindPermalink, r.render)
}

func (r *permalinkRenderer) render(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*Permalink)
	after := r.opts.Placement == config.PlacementAfter

	if after {
		_ = w.WriteByte(' ')
	}
	_, _ = w.WriteString(`<a class="`)
	_, _ = w.Write(util.EscapeHTML([]byte(r.opts.Class)))
	_, _ = w.WriteString(`" href="#`)
	_, _ = w.Write(util.EscapeHTML(n.ID))
	_, _ = w.WriteString(`">`)
	_, _ = w.WriteString(r.opts.Symbol)
	_, _ = w.WriteString(`</a>`)
	if !after && n.NextSibling() != nil {
		_ = w.WriteByte(' ')
	}
	return ast.WalkSkipChildren, nil
}

// AnchorExtension adds heading ids and permalinks.
type AnchorExtension struct {
	opts AnchorOptions
}

// NewAnchorExtension returns a goldmark extension for heading anchors.
func NewAnchorExtension(opts AnchorOptions) goldmark.Extender {
	return &AnchorExtension{opts: opts}
}

func (e *AnchorExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithASTTransformers(
		util.Prioritized(&anchorTransformer{opts: e.opts}, 100),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&permalinkRenderer{opts: e.opts}, 100),
	))
}
