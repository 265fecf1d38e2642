package content

import (
	"sort"

	"github.com/TotalLag/developer-docs/internal/frontmatter"
)

// AllCollection names the collection holding every page.
const AllCollection = "all"

// Collections maps a collection name to its pages in date order.
type Collections map[string][]*Page

// All returns the "all" collection.
func (c Collections) All() []*Page { return c[AllCollection] }

// BuildCollections groups pages by tag. Pages with excludeFromCollections: true are
// left out. Every collection is sorted by date, then input path.
func BuildCollections(pages []*Page) Collections {
	cols := Collections{AllCollection: make([]*Page, 0, len(pages))}
	for _, p := range pages {
		if frontmatter.Bool(p.Data, "excludeFromCollections") {
			continue
		}
		cols[AllCollection] = append(cols[AllCollection], p)
		for _, tag := range p.Tags {
			if tag == AllCollection {
				continue
			}
			cols[tag] = append(cols[tag], p)
		}
	}
	for _, list := range cols {
		SortByDate(list)
	}
	return cols
}

// SortByDate orders pages by date, then input path. Stable.
func SortByDate(pages []*Page) {
	sort.SliceStable(pages, func(i, j int) bool {
		a, b := pages[i], pages[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.InputPath < b.InputPath
	})
}
