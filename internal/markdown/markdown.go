// Package markdown renders Markdown bodies to HTML with goldmark, heading
// anchors and chroma syntax highlighting.
package markdown

import (
	"bytes"
	"fmt"
	"io"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"

	"github.com/TotalLag/developer-docs/internal/config"
	foundation "github.com/TotalLag/developer-docs/internal/foundation/errors"
)

// Options configures an Engine.
type Options struct {
	AllowHTML      bool
	Anchors        AnchorOptions
	Highlight      bool
	HighlightStyle string
}

// OptionsFromConfig maps a defaulted MarkdownConfig onto engine options.
func OptionsFromConfig(c config.MarkdownConfig) Options {
	return Options{
		AllowHTML: c.AllowHTML(),
		Anchors: AnchorOptions{
			Levels:    c.Anchors.Levels,
			Symbol:    c.Anchors.Symbol,
			Class:     c.Anchors.Class,
			Placement: c.Anchors.Placement,
		},
		Highlight:      c.Highlight.IsEnabled(),
		HighlightStyle: c.Highlight.Style,
	}
}

// Heading is an anchored heading of a rendered document.
type Heading struct {
	Level int
	Text  string
	ID    string
}

// Result is one rendered document.
type Result struct {
	HTML     []byte
	Headings []Heading
}

// Engine converts Markdown to HTML. Safe for concurrent use.
type Engine struct {
	md   goldmark.Markdown
	opts Options
}

// New builds an engine with tables, strikethrough, heading anchors and optional highlighting.
func New(opts Options) *Engine {
	exts := []goldmark.Extender{
		extension.Table,
		extension.Strikethrough,
		NewAnchorExtension(opts.Anchors),
	}
	if opts.Highlight {
		exts = append(exts, highlighting.NewHighlighting(
			highlighting.WithStyle(styleOrDefault(opts.HighlightStyle)),
			highlighting.WithFormatOptions(chromahtml.WithClasses(true)),
		))
	}

	engineOptions := []goldmark.Option{goldmark.WithExtensions(exts...)}
	if opts.AllowHTML {
		engineOptions = append(engineOptions, goldmark.WithRendererOptions(html.WithUnsafe()))
	}
	return &Engine{md: goldmark.New(engineOptions...), opts: opts}
}

// Render converts src and reports the anchored headings in document order.
func (e *Engine) Render(src []byte) (Result, error) {
	ctx := parser.NewContext()
	doc := e.md.Parser().Parse(text.NewReader(src), parser.WithContext(ctx))

	var buf bytes.Buffer
	if err := e.md.Renderer().Render(&buf, src, doc); err != nil {
		return Result{}, foundation.MarkdownError("markdown render failed").WithCause(err).Build()
	}
	return Result{HTML: buf.Bytes(), Headings: headingsFrom(ctx)}, nil
}

// WriteHighlightCSS writes the chroma stylesheet matching the class-based highlighting output.
func (e *Engine) WriteHighlightCSS(w io.Writer) error {
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	if err := formatter.WriteCSS(w, styles.Get(styleOrDefault(e.opts.HighlightStyle))); err != nil {
		return fmt.Errorf("write highlight css: %w", err)
	}
	return nil
}

func styleOrDefault(name string) string {
	if name == "" {
		return config.DefaultHighlightStyle
	}
	return name
}
