// Package slug derives URL-fragment tokens from free text and keeps them unique per document.
package slug

import (
	"net/url"
	"strconv"
	"strings"
)

// Fallback replaces an empty slug when a unique id is required.
const Fallback = "section"

// Slugify trims and lowercases s, drops every character outside [a-z0-9 -],
// turns each run of spaces and hyphens into one hyphen and percent-encodes the
// result. It is total: input without allowed characters yields "".
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	var b strings.Builder
	b.Grow(len(s))
	sep := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if sep {
				b.WriteByte('-')
				sep = false
			}
			b.WriteRune(r)
		case r == ' ', r == '-':
			sep = true
		}
	}
	if sep {
		b.WriteByte('-')
	}
	return escapeComponent(b.String())
}

// escapeComponent applies URI component encoding (spaces as %20).
func escapeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// Registry tracks slugs already issued within one document. Not safe for concurrent use.
type Registry struct {
	seen map[string]int
}

func NewRegistry() *Registry { return &Registry{seen: make(map[string]int)} }

// Unique returns s the first time it is seen and s-1, s-2, ... afterwards,
// skipping suffixed forms that were issued earlier. Empty s uses Fallback.
func (r *Registry) Unique(s string) string {
	if s == "" {
		s = Fallback
	}
	n, ok := r.seen[s]
	if !ok {
		r.seen[s] = 0
		return s
	}
	for {
		n++
		candidate := s + "-" + strconv.Itoa(n)
		if _, taken := r.seen[candidate]; !taken {
			r.seen[s] = n
			r.seen[candidate] = 0
			return candidate
		}
	}
}

// Reset forgets all issued slugs.
func (r *Registry) Reset() { clear(r.seen) }
