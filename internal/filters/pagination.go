// Package filters holds the template filters and shortcodes. All functions are pure.
package filters

import (
	"github.com/TotalLag/developer-docs/internal/content"
	foundation "github.com/TotalLag/developer-docs/internal/foundation/errors"
)

// NextPage returns the page after the one whose URL is url, or nil when it is last.
func NextPage(pages []*content.Page, url string) (*content.Page, error) {
	i, err := indexOf(pages, url)
	if err != nil {
		return nil, err
	}
	if i+1 >= len(pages) {
		return nil, nil
	}
	return pages[i+1], nil
}

// PreviousPage returns the page before the one whose URL is url, or nil when it is first.
func PreviousPage(pages []*content.Page, url string) (*content.Page, error) {
	i, err := indexOf(pages, url)
	if err != nil {
		return nil, err
	}
	if i == 0 {
		return nil, nil
	}
	return pages[i-1], nil
}

func indexOf(pages []*content.Page, url string) (int, error) {
	for i, p := range pages {
		if p != nil && p.URL == url {
			return i, nil
		}
	}
	return -1, foundation.NotFound("page not found in collection").
		WithContext("url", url).
		WithContext("collection_size", len(pages)).
		Build()
}

// DocumentsFromCollection returns the pages whose repo front matter equals value
// exactly, in their original order. The result is never nil.
func DocumentsFromCollection(pages []*content.Page, value string) []*content.Page {
	out := make([]*content.Page, 0)
	for _, p := range pages {
		if p == nil {
			continue
		}
		if repo, ok := p.Data["repo"].(string); ok && repo == value {
			out = append(out, p)
		}
	}
	return out
}
