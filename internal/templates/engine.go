// Package templates renders page bodies and layouts with Go templates.
//
// Markdown bodies run through text/template before conversion so shortcodes can
// emit Markdown. HTML pages and every layout run through html/template. Files
// under the includes directory are parsed once into a shared set and can be
// referenced by name from pages and layouts: {{ template "partials/nav.html" . }}.
package templates

import (
	"bytes"
	htmltemplate "html/template"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	texttemplate "text/template"

	foundation "github.com/TotalLag/developer-docs/internal/foundation/errors"
	"github.com/TotalLag/developer-docs/internal/frontmatter"
)

// MaxLayoutDepth bounds layout chains.
const MaxLayoutDepth = 10

type include struct {
	name   string
	fields map[string]any
	body   string
}

// Engine holds the parsed includes and the function map.
type Engine struct {
	funcs    map[string]any
	includes map[string]include
	set      *htmltemplate.Template // never executed, cloned per render
}

// New parses every file under includesDir. A missing directory yields an engine
// without layouts.
func New(includesDir string, funcs map[string]any) (*Engine, error) {
	e := &Engine{
		funcs:    funcs,
		includes: make(map[string]include),
		set:      htmltemplate.New("").Funcs(funcs),
	}
	if includesDir == "" {
		return e, nil
	}
	if _, err := os.Stat(includesDir); os.IsNotExist(err) {
		return e, nil
	}

	err := filepath.WalkDir(includesDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(includesDir, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		raw, err := os.ReadFile(path) // #nosec G304 -- walking the includes dir
		if err != nil {
			return err
		}
		doc, err := frontmatter.Parse(raw)
		if err != nil {
			return foundation.TemplateError("parse layout front matter").WithCause(err).WithContext("layout", name).Build()
		}
		inc := include{name: name, fields: doc.Fields, body: string(doc.Body)}
		if _, err := e.set.New(name).Parse(inc.body); err != nil {
			return foundation.TemplateError("parse layout").WithCause(err).WithContext("layout", name).Build()
		}
		e.includes[name] = inc
		return nil
	})
	if err != nil {
		if _, ok := foundation.AsClassified(err); ok {
			return nil, err
		}
		return nil, foundation.FileSystemError("read includes").WithCause(err).WithContext("path", includesDir).Build()
	}
	return e, nil
}

// HasLayout reports whether name resolves to an include.
func (e *Engine) HasLayout(name string) bool {
	_, ok := e.resolve(name)
	return ok
}

// resolve accepts "base", "base.html" and "layouts/base.html".
func (e *Engine) resolve(name string) (include, bool) {
	name = strings.TrimPrefix(filepath.ToSlash(name), "/")
	for _, candidate := range []string{name, name + ".html", "layouts/" + name, "layouts/" + name + ".html"} {
		if inc, ok := e.includes[candidate]; ok {
			return inc, true
		}
	}
	return include{}, false
}

// RenderText executes a Markdown body as text/template.
func (e *Engine) RenderText(name string, body []byte, data Data) ([]byte, error) {
	tpl, err := texttemplate.New(name).Funcs(texttemplate.FuncMap(e.funcs)).Parse(string(body))
	if err != nil {
		return nil, foundation.TemplateError("parse page").WithCause(err).WithContext("page", name).Build()
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return nil, foundation.TemplateError("execute page").WithCause(err).WithContext("page", name).Build()
	}
	return buf.Bytes(), nil
}

// RenderHTML executes an HTML page body as html/template with the includes available.
func (e *Engine) RenderHTML(name string, body []byte, data Data) ([]byte, error) {
	set, err := e.set.Clone()
	if err != nil {
		return nil, foundation.InternalError("clone template set").WithCause(err).Build()
	}
	tpl, err := set.New("page:" + name).Parse(string(body))
	if err != nil {
		return nil, foundation.TemplateError("parse page").WithCause(err).WithContext("page", name).Build()
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return nil, foundation.TemplateError("execute page").WithCause(err).WithContext("page", name).Build()
	}
	return buf.Bytes(), nil
}

// ApplyLayouts wraps html in the named layout and then in each layout that one
// names, until a layout has no layout of its own.
func (e *Engine) ApplyLayouts(layout string, html []byte, data Data) ([]byte, error) {
	seen := make(map[string]bool)
	out := html
	for depth := 0; layout != ""; depth++ {
		inc, ok := e.resolve(layout)
		if !ok {
			return nil, foundation.TemplateError("layout not found").WithContext("layout", layout).Build()
		}
		if seen[inc.name] || depth >= MaxLayoutDepth {
			return nil, foundation.TemplateError("layout cycle").WithContext("layout", inc.name).Build()
		}
		seen[inc.name] = true

		set, err := e.set.Clone()
		if err != nil {
			return nil, foundation.InternalError("clone template set").WithCause(err).Build()
		}
		var buf bytes.Buffer
		if err := set.ExecuteTemplate(&buf, inc.name, data.withContent(string(out), inc.fields)); err != nil {
			return nil, foundation.TemplateError("execute layout").WithCause(err).WithContext("layout", inc.name).Build()
		}
		out = buf.Bytes()
		layout = frontmatter.String(inc.fields, "layout")
	}
	return out, nil
}
