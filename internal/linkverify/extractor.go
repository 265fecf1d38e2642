// Package linkverify checks that internal links in rendered pages resolve to
// files in the output tree.
package linkverify

import (
	"bytes"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	foundation "github.com/TotalLag/developer-docs/internal/foundation/errors"
)

// Link is a URL-bearing attribute found in a page.
type Link struct {
	URL       string
	Tag       string
	Attribute string
}

var linkAttrs = map[string]string{
	"a":      "href",
	"link":   "href",
	"img":    "src",
	"script": "src",
	"video":  "src",
	"audio":  "src",
	"source": "src",
	"iframe": "src",
}

// ExtractLinks returns the links of a rendered page in document order.
func ExtractLinks(page []byte) ([]Link, error) {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return nil, foundation.WrapError(err, foundation.CategoryValidation, "failed to parse HTML").Build()
	}
	var links []Link
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if attr, ok := linkAttrs[n.Data]; ok {
				if v := strings.TrimSpace(getAttr(n, attr)); v != "" {
					links = append(links, Link{URL: v, Tag: n.Data, Attribute: attr})
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links, nil
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// shouldVerify skips fragments, non-navigational schemes and external hosts.
func shouldVerify(raw string, site *url.URL) (*url.URL, bool) {
	if raw == "" || strings.HasPrefix(raw, "#") {
		return nil, false
	}
	for _, p := range []string{"mailto:", "tel:", "javascript:", "data:"} {
		if strings.HasPrefix(raw, p) {
			return nil, false
		}
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, false
	}
	if u.Scheme != "" || u.Host != "" {
		if site == nil || u.Host != site.Host {
			return nil, false
		}
	}
	if u.Path == "" {
		return nil, false
	}
	return u, true
}
