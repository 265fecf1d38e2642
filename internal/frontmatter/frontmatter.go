// Package frontmatter splits page sources into front matter fields and body.
//
// YAML (---), TOML (+++) and JSON (;;;) blocks are recognised. Nested maps are
// always map[string]any regardless of the source format.
package frontmatter

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"
)

// Format names the syntax a block was written in.
type Format string

const (
	FormatNone Format = ""
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// Document is a parsed page source.
type Document struct {
	Fields map[string]any
	Body   []byte
	Format Format
}

// HasFrontMatter reports whether the source started with a recognised block.
func (d Document) HasFrontMatter() bool { return d.Format != FormatNone }

type formatSpec struct {
	format Format
	start  string
	end    string
	decode frontmatter.UnmarshalFunc
}

var specs = []formatSpec{
	{FormatYAML, "---", "---", yaml.Unmarshal},
	{FormatTOML, "+++", "+++", toml.Unmarshal},
	{FormatJSON, ";;;", ";;;", json.Unmarshal},
}

// Parse splits content. A source without front matter yields empty Fields and the full body.
func Parse(content []byte) (Document, error) {
	content = bytes.TrimPrefix(content, bom)
	spec, ok := detect(content)
	if !ok {
		return Document{Fields: map[string]any{}, Body: content}, nil
	}

	fields := map[string]any{}
	body, err := frontmatter.Parse(bytes.NewReader(content), &fields,
		frontmatter.NewFormat(spec.start, spec.end, spec.decode))
	if err != nil {
		return Document{}, fmt.Errorf("parse %s front matter: %w", spec.format, err)
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return Document{Fields: fields, Body: body, Format: spec.format}, nil
}

var bom = []byte("\ufeff")

func detect(content []byte) (formatSpec, bool) {
	for _, s := range specs {
		if bytes.HasPrefix(content, []byte(s.start+"\n")) || bytes.HasPrefix(content, []byte(s.start+"\r\n")) {
			return s, true
		}
	}
	return formatSpec{}, false
}
