package images

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/image/draw"

	foundation "github.com/TotalLag/developer-docs/internal/foundation/errors"
)

// Variant is one generated file.
type Variant struct {
	Format string
	Width  int
	Height int
	Path   string
	URL    string
}

// Set holds every variant of one source image plus its original size.
type Set struct {
	Width    int
	Height   int
	Variants []Variant
}

// Smallest returns the narrowest variant of the last format, used as the <img> fallback.
func (s Set) Smallest() Variant {
	var out Variant
	for _, v := range s.Variants {
		if out.Format != v.Format || v.Width < out.Width {
			out = v
		}
	}
	return out
}

// ByFormat groups variants in the order their formats first appear.
func (s Set) ByFormat() ([]string, map[string][]Variant) {
	var order []string
	groups := make(map[string][]Variant)
	for _, v := range s.Variants {
		if _, ok := groups[v.Format]; !ok {
			order = append(order, v.Format)
		}
		groups[v.Format] = append(groups[v.Format], v)
	}
	return order, groups
}

func mimeType(format string) string { return "image/" + format }

// encodable normalizes format names and reports whether a Go encoder exists.
func encodable(format string) (string, bool) {
	switch strings.ToLower(format) {
	case "jpeg", "jpg":
		return "jpeg", true
	case "png":
		return "png", true
	}
	return "", false
}

// generate decodes data and writes every configured format and width. Files that
// already exist are reused, so a hash collision across builds costs nothing.
func (p *Processor) generate(data []byte) (Set, error) {
	key := fmt.Sprintf("%016x", xxhash.Sum64(data))
	v, err, _ := p.variants.Do(key, func() (any, error) {
		return p.generateKey(key, data)
	})
	if err != nil {
		return Set{}, err
	}
	return v.(Set), nil
}

func (p *Processor) generateKey(key string, data []byte) (Set, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Set{}, foundation.ImageError("decode image").WithCause(err).Build()
	}
	bounds := src.Bounds()
	set := Set{Width: bounds.Dx(), Height: bounds.Dy()}
	if set.Width == 0 || set.Height == 0 {
		return Set{}, foundation.ImageError("empty image").Build()
	}

	if err := os.MkdirAll(p.opts.ImagesDir, 0o750); err != nil {
		return Set{}, foundation.FileSystemError("create images directory").WithCause(err).WithContext("path", p.opts.ImagesDir).Build()
	}

	written := 0
	for _, f := range p.opts.Formats {
		format, ok := encodable(f)
		if !ok {
			p.logger.Debug("Skipping image format without encoder", slog.String("format", f))
			continue
		}
		for _, w := range p.opts.Widths(set.Width) {
			h := max(1, set.Height*w/set.Width)
			name := fmt.Sprintf("%s-%d.%s", key, w, format)
			variant := Variant{
				Format: format,
				Width:  w,
				Height: h,
				Path:   filepath.Join(p.opts.ImagesDir, name),
				URL:    path.Join(p.opts.URLPath, name),
			}
			if _, err := os.Stat(variant.Path); err != nil {
				if err := p.encode(src, variant); err != nil {
					return Set{}, err
				}
				written++
			}
			set.Variants = append(set.Variants, variant)
		}
	}
	p.addGenerated(written)
	return set, nil
}

func (p *Processor) encode(src image.Image, v Variant) error {
	var img image.Image = src
	if v.Width != src.Bounds().Dx() {
		dst := image.NewRGBA(image.Rect(0, 0, v.Width, v.Height))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	var err error
	switch v.Format {
	case "jpeg":
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: p.opts.Quality})
	case "png":
		err = png.Encode(&buf, img)
	}
	if err != nil {
		return foundation.ImageError("encode image").WithCause(err).WithContext("format", v.Format).Build()
	}
	if err := os.WriteFile(v.Path, buf.Bytes(), 0o644); err != nil { // #nosec G306 -- published asset
		return foundation.FileSystemError("write image").WithCause(err).WithContext("path", v.Path).Build()
	}
	return nil
}
