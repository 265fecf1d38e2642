package content

import (
	"path"
	"strings"

	foundation "github.com/TotalLag/developer-docs/internal/foundation/errors"
)

// DefaultPermalink maps an input path to its pretty URL:
// docs/intro.md -> /docs/intro/, docs/index.md -> /docs/, index.md -> /.
func DefaultPermalink(inputPath string) string {
	dir, file := path.Split(inputPath)
	stem := strings.TrimSuffix(file, path.Ext(file))
	if stem == "index" {
		return "/" + dir
	}
	return "/" + dir + stem + "/"
}

// FileSlug is the stem of the input file, or its directory name for index files.
func FileSlug(inputPath string) string {
	dir, file := path.Split(inputPath)
	stem := strings.TrimSuffix(file, path.Ext(file))
	if stem == "index" {
		if dir == "" {
			return ""
		}
		return path.Base(strings.TrimSuffix(dir, "/"))
	}
	return stem
}

// ResolvePermalink returns the URL and output path for a page. A permalink value of
// false (bool or string) yields empty strings: the page is collected but not written.
func ResolvePermalink(inputPath string, permalink any) (url, outputPath string, err error) {
	switch v := permalink.(type) {
	case nil:
		url = DefaultPermalink(inputPath)
	case bool:
		if !v {
			return "", "", nil
		}
		url = DefaultPermalink(inputPath)
	case string:
		v = strings.TrimSpace(v)
		switch v {
		case "", "true":
			url = DefaultPermalink(inputPath)
		case "false":
			return "", "", nil
		default:
			url = v
		}
	default:
		return "", "", foundation.ContentError("permalink must be a string or false").
			WithContext("input", inputPath).Build()
	}

	if !strings.HasPrefix(url, "/") {
		url = "/" + url
	}
	for _, seg := range strings.Split(url, "/") {
		if seg == ".." {
			return "", "", foundation.ContentError("permalink contains a parent segment").
				WithContext("input", inputPath).WithContext("permalink", url).Build()
		}
	}
	trailing := strings.HasSuffix(url, "/")
	clean := path.Clean(url)
	if trailing && clean != "/" {
		clean += "/"
	}
	return clean, OutputPathFor(clean), nil
}

// OutputPathFor maps a URL to the file written for it.
func OutputPathFor(url string) string {
	rel := strings.TrimPrefix(url, "/")
	if rel == "" || strings.HasSuffix(rel, "/") {
		return rel + "index.html"
	}
	if path.Ext(rel) == "" {
		return rel + "/index.html"
	}
	return rel
}
