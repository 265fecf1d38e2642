// Package plugin holds the template functions and output transforms of one generator.
//
// A Registry is built explicitly by its owner; nothing registers itself at init time.
package plugin

import (
	"context"
	"fmt"
	"reflect"
	"regexp"

	"github.com/TotalLag/developer-docs/internal/content"
)

// Kind identifies how a template function is meant to be used.
type Kind string

const (
	// KindFilter receives the piped value as its last argument.
	KindFilter Kind = "filter"
	// KindShortcode produces markup or Markdown from explicit arguments.
	KindShortcode Kind = "shortcode"
	// KindHelper is a general template helper.
	KindHelper Kind = "helper"
)

// IsValid returns true if the kind is recognized.
func (k Kind) IsValid() bool {
	switch k {
	case KindFilter, KindShortcode, KindHelper:
		return true
	}
	return false
}

var namePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// Func is one registered template function.
type Func struct {
	Name        string
	Kind        Kind
	Description string
	Fn          any
}

// Validate checks the name is a template identifier and Fn is a function.
func (f Func) Validate() error {
	if !namePattern.MatchString(f.Name) {
		return fmt.Errorf("invalid function name %q", f.Name)
	}
	if !f.Kind.IsValid() {
		return fmt.Errorf("invalid kind %q for %s", f.Kind, f.Name)
	}
	if f.Fn == nil || reflect.TypeOf(f.Fn).Kind() != reflect.Func {
		return fmt.Errorf("%s is not a function", f.Name)
	}
	return nil
}

// Transform rewrites the final HTML of a written page.
type Transform interface {
	Name() string
	Transform(ctx context.Context, page *content.Page, html []byte) ([]byte, error)
}

// TransformFunc adapts a function to Transform.
type TransformFunc struct {
	ID string
	Fn func(ctx context.Context, page *content.Page, html []byte) ([]byte, error)
}

func (t TransformFunc) Name() string { return t.ID }

func (t TransformFunc) Transform(ctx context.Context, page *content.Page, html []byte) ([]byte, error) {
	return t.Fn(ctx, page, html)
}
