// Package css implements the stylesheet pipeline behind the postcss template filter.
package css

import (
	"fmt"
	"strings"

	"github.com/gorilla/css/scanner"

	"github.com/TotalLag/developer-docs/internal/config"
	foundation "github.com/TotalLag/developer-docs/internal/foundation/errors"
)

// Plugin transforms a stylesheet.
type Plugin interface {
	Name() string
	Process(tokens []*scanner.Token) ([]*scanner.Token, error)
}

// Processor runs plugins in order over one token stream.
type Processor struct {
	plugins []Plugin
}

func NewProcessor(plugins ...Plugin) *Processor {
	return &Processor{plugins: plugins}
}

// FromConfig builds the site pipeline: themes, then prefixing, then minification
// when the environment asks for it.
func FromConfig(cfg config.CSSConfig, env config.Environment) *Processor {
	plugins := []Plugin{NewThemePlugin(cfg.Themes, cfg.ThemeAttr, cfg.DefaultTheme)}
	if cfg.ShouldAutoprefix() {
		plugins = append(plugins, NewPrefixPlugin(nil))
	}
	if cfg.ShouldMinify(env) {
		plugins = append(plugins, MinifyPlugin{})
	}
	return NewProcessor(plugins...)
}

// Process tokenizes src and applies every plugin. Failures are css-category errors.
func (p *Processor) Process(src string) (string, error) {
	tokens, err := Tokenize(src)
	if err != nil {
		return "", err
	}
	for _, plugin := range p.plugins {
		tokens, err = plugin.Process(tokens)
		if err != nil {
			if _, ok := foundation.AsClassified(err); ok {
				return "", err
			}
			return "", foundation.CSSError("css plugin failed").WithCause(err).WithContext("plugin", plugin.Name()).Build()
		}
	}
	return Join(tokens), nil
}

// Tokenize scans src up to EOF. A scanner error token becomes a css error with its position.
func Tokenize(src string) ([]*scanner.Token, error) {
	s := scanner.New(src)
	var out []*scanner.Token
	for {
		tok := s.Next()
		switch tok.Type {
		case scanner.TokenEOF:
			return out, nil
		case scanner.TokenError:
			return nil, foundation.CSSError("invalid stylesheet").
				WithContext("line", tok.Line).
				WithContext("column", tok.Column).
				WithCause(fmt.Errorf("%s", tok.Value)).
				Build()
		}
		out = append(out, tok)
	}
}

// Join concatenates token text.
func Join(tokens []*scanner.Token) string {
	var b strings.Builder
	for _, t := range tokens {
		b.WriteString(t.Value)
	}
	return b.String()
}

func isChar(t *scanner.Token, c string) bool {
	return t.Type == scanner.TokenChar && t.Value == c
}
