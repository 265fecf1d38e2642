package linkverify

import (
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Page is one rendered HTML page.
type Page struct {
	URL    string // site-relative URL, e.g. /docs/intro/
	Source string // input path, for reporting
	HTML   []byte
}

// BrokenLink is a link whose target is not in the output tree.
type BrokenLink struct {
	Link
	PageURL string
	Source  string
	Target  string // output-relative path that was looked up
}

// Checker resolves links against the output directory and the set of files
// written by the current build.
type Checker struct {
	outputDir string
	site      *url.URL
	known     map[string]bool
}

// NewChecker builds a checker. generated holds output-relative, slash-separated
// paths; anything else is looked up on disk. siteURL may be empty.
func NewChecker(outputDir, siteURL string, generated []string) *Checker {
	c := &Checker{outputDir: outputDir, known: make(map[string]bool, len(generated))}
	if u, err := url.Parse(siteURL); err == nil && u.Host != "" {
		c.site = u
	}
	for _, g := range generated {
		c.known[strings.TrimPrefix(path.Clean("/"+g), "/")] = true
	}
	return c
}

// Verify returns the broken links of pages in page order. A page that fails
// to parse is skipped; each distinct URL is reported once per page.
func (c *Checker) Verify(pages []Page) []BrokenLink {
	var broken []BrokenLink
	for _, p := range pages {
		links, err := ExtractLinks(p.HTML)
		if err != nil {
			continue
		}
		seen := make(map[string]bool)
		for _, l := range links {
			if seen[l.URL] {
				continue
			}
			seen[l.URL] = true
			target, ok := c.resolve(p.URL, l.URL)
			if !ok || c.exists(target) {
				continue
			}
			broken = append(broken, BrokenLink{Link: l, PageURL: p.URL, Source: p.Source, Target: target})
		}
	}
	return broken
}

// resolve maps href on pageURL to an output-relative path.
func (c *Checker) resolve(pageURL, href string) (string, bool) {
	u, ok := shouldVerify(href, c.site)
	if !ok {
		return "", false
	}
	p := u.Path
	if !strings.HasPrefix(p, "/") {
		base := pageURL
		if !strings.HasSuffix(base, "/") {
			base = path.Dir(base) + "/"
		}
		p = base + p
	}
	trailing := strings.HasSuffix(p, "/")
	p = strings.TrimPrefix(path.Clean("/"+p), "/")
	if trailing && p != "" {
		p += "/"
	}
	return p, true
}

func (c *Checker) exists(target string) bool {
	for _, cand := range candidates(target) {
		if c.known[cand] {
			return true
		}
		if fi, err := os.Stat(filepath.Join(c.outputDir, filepath.FromSlash(cand))); err == nil && !fi.IsDir() {
			return true
		}
	}
	return false
}

// candidates lists the files a URL path may be served from.
func candidates(target string) []string {
	if target == "" || strings.HasSuffix(target, "/") {
		return []string{target + "index.html"}
	}
	if path.Ext(target) != "" {
		return []string{target}
	}
	return []string{target + ".html", target + "/index.html"}
}
