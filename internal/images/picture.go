package images

import (
	"bytes"
	"context"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/sync/errgroup"

	foundation "github.com/TotalLag/developer-docs/internal/foundation/errors"
	"github.com/TotalLag/developer-docs/internal/logfields"
)

const defaultSizes = "100vw"

type candidate struct {
	node *html.Node
	src  string
	set  Set
	ok   bool
}

// Transform rewrites every eligible <img> in page into a <picture>. Images that
// cannot be processed are logged and left untouched; only markup errors fail.
func (p *Processor) Transform(ctx context.Context, page []byte, pageInputPath string) ([]byte, error) {
	if !bytes.Contains(page, []byte("<img")) {
		return page, nil
	}
	doc, err := parse(page)
	if err != nil {
		return nil, foundation.ContentError("parse rendered page").WithCause(err).WithContext("page", pageInputPath).Build()
	}

	cands := p.collect(doc)
	if len(cands) == 0 {
		return page, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Concurrency)
	for _, c := range cands {
		g.Go(func() error {
			data, err := p.load(gctx, c.src, pageInputPath)
			if err == nil {
				c.set, err = p.generate(data)
			}
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				p.logger.Warn("Skipping image", logfields.Page(pageInputPath), logfields.Asset(c.src), logfields.Error(err))
				return nil
			}
			c.ok = len(c.set.Variants) > 0
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	changed := false
	for _, c := range cands {
		if c.ok {
			wrapPicture(c.node, c.set)
			changed = true
		}
	}
	if !changed {
		return page, nil
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return nil, foundation.ContentError("render rewritten page").WithCause(err).WithContext("page", pageInputPath).Build()
	}
	return buf.Bytes(), nil
}

// collect returns the <img> elements worth rewriting, in document order.
// Images already inside a <picture>, without src, or with an unhandled
// extension are skipped. Remote images need FetchRemote.
func (p *Processor) collect(doc *html.Node) []*candidate {
	var out []*candidate
	var walk func(n *html.Node, inPicture bool)
	walk = func(n *html.Node, inPicture bool) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Picture:
				inPicture = true
			case atom.Img:
				if src := strings.TrimSpace(attr(n, "src")); !inPicture && p.eligible(src) {
					out = append(out, &candidate{node: n, src: src})
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, inPicture)
		}
	}
	walk(doc, false)
	return out
}

func (p *Processor) eligible(src string) bool {
	if src == "" || strings.HasPrefix(src, "data:") || strings.HasPrefix(src, "//") {
		return false
	}
	if isRemote(src) && !p.opts.FetchRemote {
		return false
	}
	return p.opts.handles(src)
}

// wrapPicture replaces img with a <picture> holding one <source> per format and
// img itself, pointed at the smallest variant, as the fallback.
func wrapPicture(img *html.Node, set Set) {
	sizes := attr(img, "sizes")
	if sizes == "" {
		sizes = defaultSizes
	}

	picture := &html.Node{Type: html.ElementNode, Data: "picture", DataAtom: atom.Picture}
	formats, groups := set.ByFormat()
	for _, f := range formats {
		entries := make([]string, 0, len(groups[f]))
		for _, v := range groups[f] {
			entries = append(entries, v.URL+" "+strconv.Itoa(v.Width)+"w")
		}
		picture.AppendChild(&html.Node{
			Type:     html.ElementNode,
			Data:     "source",
			DataAtom: atom.Source,
			Attr: []html.Attribute{
				{Key: "type", Val: mimeType(f)},
				{Key: "srcset", Val: strings.Join(entries, ", ")},
				{Key: "sizes", Val: sizes},
			},
		})
	}

	if parent := img.Parent; parent != nil {
		parent.InsertBefore(picture, img)
		parent.RemoveChild(img)
	}
	setAttr(img, "src", set.Smallest().URL)
	for _, k := range []string{"srcset", "sizes", "width", "height", "loading", "decoding"} {
		removeAttr(img, k)
	}
	img.Attr = append(img.Attr,
		html.Attribute{Key: "width", Val: strconv.Itoa(set.Width)},
		html.Attribute{Key: "height", Val: strconv.Itoa(set.Height)},
		html.Attribute{Key: "loading", Val: "lazy"},
		html.Attribute{Key: "decoding", Val: "async"},
	)
	picture.AppendChild(img)
}

// parse reads whole documents as documents and anything else as a body fragment
// held under a detached root, so fragments render back without html/head/body.
func parse(page []byte) (*html.Node, error) {
	lower := bytes.ToLower(page)
	if bytes.Contains(lower, []byte("<html")) || bytes.Contains(lower, []byte("<!doctype")) {
		return html.Parse(bytes.NewReader(page))
	}
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(bytes.NewReader(page), body)
	if err != nil {
		return nil, err
	}
	root := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return root, nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, key string) {
	out := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Key != key {
			out = append(out, a)
		}
	}
	n.Attr = out
}
