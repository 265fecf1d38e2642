package sitemap

import (
	"bytes"
	"encoding/xml"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TotalLag/developer-docs/internal/content"
)

func page(url string, data map[string]any) *content.Page {
	if data == nil {
		data = map[string]any{}
	}
	return &content.Page{
		URL:        url,
		OutputPath: content.OutputPathFor(url),
		Date:       time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC),
		Data:       data,
	}
}

func TestGenerate(t *testing.T) {
	modified := page("/docs/", nil)
	modified.Modified = time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)

	pages := []*content.Page{
		page("/", map[string]any{"sitemap": map[string]any{"changefreq": "weekly", "priority": 1.0}}),
		modified,
		page("/drafts/", map[string]any{"sitemap": map[string]any{"ignore": true}}),
		page("/feed.xml", nil),
		{URL: "", Data: map[string]any{}},
	}

	var buf bytes.Buffer
	require.NoError(t, Generate(&buf, pages, Options{Hostname: "https://developers.example.org/"}))

	var parsed urlSet
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &parsed))
	assert.Equal(t, xmlns, parsed.Xmlns)
	require.Len(t, parsed.URLs, 2)

	assert.Equal(t, "https://developers.example.org/", parsed.URLs[0].Loc)
	assert.Equal(t, "weekly", parsed.URLs[0].ChangeFreq)
	assert.Equal(t, "1", parsed.URLs[0].Priority)
	assert.Equal(t, "2023-01-02T00:00:00Z", parsed.URLs[0].LastMod, "falls back to date")

	assert.Equal(t, "https://developers.example.org/docs/", parsed.URLs[1].Loc)
	assert.Equal(t, "2024-02-03T04:05:06Z", parsed.URLs[1].LastMod)
	assert.Contains(t, buf.String(), `<?xml version="1.0" encoding="UTF-8"?>`)
}

func TestEntries_CustomProperty(t *testing.T) {
	p := page("/a/", map[string]any{"updated": "2022-12-31"})
	got := Entries([]*content.Page{p}, Options{Hostname: "https://x.org", LastModifiedProperty: "updated"})
	require.Len(t, got, 1)
	assert.Equal(t, "2022-12-31T00:00:00Z", got[0].LastMod)
}
