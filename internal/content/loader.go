package content

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/TotalLag/developer-docs/internal/frontmatter"
	foundation "github.com/TotalLag/developer-docs/internal/foundation/errors"
	"github.com/TotalLag/developer-docs/internal/logfields"
)

// Date values resolved from the environment instead of parsed.
const (
	DateGitLastModified = "git Last Modified"
	DateGitCreated      = "git Created"
	DateLastModified    = "Last Modified"
)

// LoaderOptions configures a content walk.
type LoaderOptions struct {
	InputDir          string
	DataDir           string // relative to InputDir
	SkipDrafts        bool
	Dates             DateResolver // nil disables git dates
	LastModifiedField string       // front matter key for Page.Modified; default "modified"
	Logger            *slog.Logger
}

// Catalog is the result of loading an input tree.
type Catalog struct {
	Pages       []*Page
	Collections Collections
	Data        map[string]any
	Drafts      []string // input paths skipped as drafts
}

// Load walks opts.InputDir. Directories and files beginning with "_" or "." are not pages.
func Load(ctx context.Context, opts LoaderOptions) (*Catalog, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.LastModifiedField == "" {
		opts.LastModifiedField = "modified"
	}

	cat := &Catalog{}
	err := filepath.WalkDir(opts.InputDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		name := d.Name()
		if p != opts.InputDir && (strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		kind, ok := kindFor(name)
		if !ok {
			return nil
		}
		rel, err := filepath.Rel(opts.InputDir, p)
		if err != nil {
			return err
		}
		page, err := loadPage(p, filepath.ToSlash(rel), kind, opts)
		if err != nil {
			return err
		}
		if opts.SkipDrafts && page.Draft() {
			logger.Debug("Skipping draft", logfields.Page(page.InputPath))
			cat.Drafts = append(cat.Drafts, page.InputPath)
			return nil
		}
		cat.Pages = append(cat.Pages, page)
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}

	data, err := LoadData(filepath.Join(opts.InputDir, opts.DataDir))
	if err != nil {
		return nil, err
	}
	cat.Data = data
	cat.Collections = BuildCollections(cat.Pages)
	return cat, nil
}

func kindFor(name string) (Kind, bool) {
	switch strings.ToLower(path.Ext(name)) {
	case ".md", ".markdown":
		return KindMarkdown, true
	case ".html", ".htm":
		return KindHTML, true
	}
	return "", false
}

func loadPage(sourcePath, inputPath string, kind Kind, opts LoaderOptions) (*Page, error) {
	raw, err := os.ReadFile(sourcePath)
	if err != nil {
		return nil, foundation.FileSystemError("read page").WithCause(err).WithContext("path", sourcePath).Build()
	}
	info, err := os.Stat(sourcePath)
	if err != nil {
		return nil, foundation.FileSystemError("stat page").WithCause(err).WithContext("path", sourcePath).Build()
	}

	doc, err := frontmatter.Parse(raw)
	if err != nil {
		return nil, foundation.ContentError("invalid front matter").WithCause(err).WithContext("input", inputPath).Build()
	}

	url, outputPath, err := ResolvePermalink(inputPath, doc.Fields["permalink"])
	if err != nil {
		return nil, err
	}

	fp, err := Fingerprint(doc.Fields, doc.Body)
	if err != nil {
		return nil, foundation.ContentError("fingerprint").WithCause(err).WithContext("input", inputPath).Build()
	}

	modTime := info.ModTime()
	date := resolveDate(doc.Fields, "date", sourcePath, modTime, opts.Dates)
	modified := resolveDate(doc.Fields, opts.LastModifiedField, sourcePath, date, opts.Dates)

	return &Page{
		URL:         url,
		InputPath:   inputPath,
		SourcePath:  sourcePath,
		OutputPath:  outputPath,
		FileSlug:    FileSlug(inputPath),
		Kind:        kind,
		Date:        date,
		Modified:    modified,
		Data:        doc.Fields,
		Tags:        frontmatter.Strings(doc.Fields, "tags"),
		RawContent:  doc.Body,
		Fingerprint: fp,
	}, nil
}

// resolveDate reads key from fields, expanding the special git/file values.
// Missing or unparseable values fall back to fallback.
func resolveDate(fields map[string]any, key, sourcePath string, fallback time.Time, dates DateResolver) time.Time {
	if s, ok := fields[key].(string); ok {
		switch strings.TrimSpace(s) {
		case DateGitLastModified:
			if dates != nil {
				if t, ok := dates.LastModified(sourcePath); ok {
					return t
				}
			}
			return fallback
		case DateGitCreated:
			if dates != nil {
				if t, ok := dates.Created(sourcePath); ok {
					return t
				}
			}
			return fallback
		case DateLastModified:
			if info, err := os.Stat(sourcePath); err == nil {
				return info.ModTime()
			}
			return fallback
		}
	}
	if t, ok := frontmatter.Time(fields, key); ok {
		return t
	}
	return fallback
}

// LoadData reads global data files (*.yaml, *.yml, *.json) keyed by file stem.
// A missing directory yields an empty map.
func LoadData(dir string) (map[string]any, error) {
	data := map[string]any{}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return data, nil
		}
		return nil, foundation.FileSystemError("read data dir").WithCause(err).WithContext("path", dir).Build()
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		stem := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		raw, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, foundation.FileSystemError("read data file").WithCause(err).WithContext("path", e.Name()).Build()
		}
		var v any
		switch ext {
		case ".yaml", ".yml":
			err = yaml.Unmarshal(raw, &v)
		case ".json":
			err = json.Unmarshal(raw, &v)
		default:
			continue
		}
		if err != nil {
			return nil, foundation.ContentError(fmt.Sprintf("invalid data file %s", e.Name())).WithCause(err).Build()
		}
		data[stem] = v
	}
	return data, nil
}
