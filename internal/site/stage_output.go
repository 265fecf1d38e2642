package site

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/TotalLag/developer-docs/internal/content"
	foundation "github.com/TotalLag/developer-docs/internal/foundation/errors"
	"github.com/TotalLag/developer-docs/internal/logfields"
	"github.com/TotalLag/developer-docs/internal/sitemap"
)

// writtenPages returns rendered pages in input path order.
func (bs *buildState) writtenPages() []*content.Page {
	pages := make([]*content.Page, 0, len(bs.output))
	for p := range bs.output {
		pages = append(pages, p)
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].InputPath < pages[j].InputPath })
	return pages
}

// stageTransformOutput runs output transforms on .html outputs. A failing
// transform leaves that page as it was and becomes a warning.
func stageTransformOutput(ctx context.Context, bs *buildState) error {
	transforms := bs.registry.Transforms()
	if len(transforms) == 0 {
		return nil
	}
	var warnings []error
	for _, p := range bs.writtenPages() {
		if filepath.Ext(p.OutputPath) != ".html" {
			continue
		}
		for _, t := range transforms {
			if err := ctx.Err(); err != nil {
				return err
			}
			out, err := t.Transform(ctx, p, bs.output[p])
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				bs.logger.Warn("Output transform failed", logfields.Plugin(t.Name()), logfields.Page(p.InputPath), logfields.Error(err))
				warnings = append(warnings, withPage(err, p))
				continue
			}
			bs.output[p] = out
		}
	}
	if len(warnings) > 0 {
		return NewWarnStageError(StageTransformOutput, errors.Join(warnings...))
	}
	return nil
}

func stageWritePages(ctx context.Context, bs *buildState) error {
	out := bs.cfg.Dir.Output
	for _, p := range bs.writtenPages() {
		if err := ctx.Err(); err != nil {
			return err
		}
		target := filepath.Join(out, filepath.FromSlash(p.OutputPath))
		n, err := writeFile(target, bs.output[p])
		if err != nil {
			return withPage(err, p)
		}
		bs.report.Written++
		bs.report.Bytes += n
	}

	if bs.cfg.Markdown.Highlight.IsEnabled() {
		var buf bytes.Buffer
		if err := bs.g.markdown.WriteHighlightCSS(&buf); err != nil {
			return foundation.InternalError("render highlight stylesheet").WithCause(err).Build()
		}
		n, err := writeFile(filepath.Join(out, filepath.FromSlash(HighlightCSSFile)), buf.Bytes())
		if err != nil {
			return err
		}
		bs.report.Bytes += n
	}
	return nil
}

func writeFile(path string, data []byte) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return 0, foundation.FileSystemError("create directory").WithCause(err).WithContext("path", filepath.Dir(path)).Build()
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { // #nosec G306 -- published site output
		return 0, foundation.FileSystemError("write file").WithCause(err).WithContext("path", path).Build()
	}
	return int64(len(data)), nil
}

// stagePassthroughCopy copies each configured source (file or directory) to its
// output-relative target. Missing sources are skipped.
func stagePassthroughCopy(ctx context.Context, bs *buildState) error {
	keys := make([]string, 0, len(bs.cfg.Passthrough))
	for k := range bs.cfg.Passthrough {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, src := range keys {
		dst := filepath.Join(bs.cfg.Dir.Output, filepath.FromSlash(bs.cfg.Passthrough[src]))
		info, err := os.Stat(src)
		if err != nil {
			bs.logger.Debug("Passthrough source missing", logfields.Path(src))
			continue
		}
		if !info.IsDir() {
			if info.Mode().IsRegular() && filepath.Ext(dst) == "" {
				dst = filepath.Join(dst, filepath.Base(src))
			}
			if err := bs.copyAsset(src, dst); err != nil {
				return err
			}
			continue
		}
		err = filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if d.IsDir() || !d.Type().IsRegular() {
				return nil
			}
			rel, err := filepath.Rel(src, path)
			if err != nil {
				return err
			}
			return bs.copyAsset(path, filepath.Join(dst, rel))
		})
		if err != nil {
			if _, ok := foundation.AsClassified(err); ok || errors.Is(err, context.Canceled) {
				return err
			}
			return foundation.FileSystemError("walk passthrough source").WithCause(err).WithContext("path", src).Build()
		}
	}
	return nil
}

func (bs *buildState) copyAsset(src, dst string) error {
	in, err := os.Open(src) // #nosec G304 -- configured passthrough source
	if err != nil {
		return foundation.FileSystemError("open asset").WithCause(err).WithContext("path", src).Build()
	}
	defer func() { _ = in.Close() }()

	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return foundation.FileSystemError("create directory").WithCause(err).WithContext("path", filepath.Dir(dst)).Build()
	}
	out, err := os.Create(dst) // #nosec G304 -- target under the output dir
	if err != nil {
		return foundation.FileSystemError("create asset").WithCause(err).WithContext("path", dst).Build()
	}
	n, err := io.Copy(out, in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return foundation.FileSystemError("copy asset").WithCause(err).WithContext("path", dst).Build()
	}
	bs.report.Assets++
	bs.report.Bytes += n
	return nil
}

func stageWriteSitemap(_ context.Context, bs *buildState) error {
	var buf bytes.Buffer
	err := sitemap.Generate(&buf, bs.writtenPages(), sitemap.Options{
		Hostname:             bs.cfg.Sitemap.Hostname,
		LastModifiedProperty: bs.cfg.Sitemap.LastModifiedProperty,
	})
	if err != nil {
		return foundation.BuildError("generate sitemap").WithCause(err).Build()
	}
	n, err := writeFile(filepath.Join(bs.cfg.Dir.Output, bs.cfg.Sitemap.Filename), buf.Bytes())
	if err != nil {
		return err
	}
	bs.report.Bytes += n
	return nil
}
