package css

import (
	"sort"
	"strings"

	"github.com/gorilla/css/scanner"

	"github.com/TotalLag/developer-docs/internal/config"
	foundation "github.com/TotalLag/developer-docs/internal/foundation/errors"
)

// ThemePlugin expands "@theme;" and "@theme name;" into custom property blocks
// and drops "@tailwind ...;" directives.
//
// "@theme;" emits every configured theme: the default one on :root and each one
// on [attr="name"]. Colors become --color-<token> properties.
type ThemePlugin struct {
	themes      map[string]config.ThemeConfig
	order       []string
	attr        string
	defaultName string
}

func NewThemePlugin(themes []config.ThemeConfig, attr, defaultName string) *ThemePlugin {
	p := &ThemePlugin{themes: make(map[string]config.ThemeConfig), attr: attr, defaultName: defaultName}
	if p.attr == "" {
		p.attr = config.DefaultThemeAttribute
	}
	for _, t := range themes {
		p.themes[t.Name] = t
		p.order = append(p.order, t.Name)
	}
	if p.defaultName == "" && len(p.order) > 0 {
		p.defaultName = p.order[0]
	}
	return p
}

func (*ThemePlugin) Name() string { return "theme" }

func (p *ThemePlugin) Process(tokens []*scanner.Token) ([]*scanner.Token, error) {
	out := make([]*scanner.Token, 0, len(tokens))
	for i := 0; i < len(tokens); i++ {
		t := tokens[i]
		if t.Type != scanner.TokenAtKeyword || (t.Value != "@theme" && t.Value != "@tailwind") {
			out = append(out, t)
			continue
		}

		var args []string
		j := i + 1
		for ; j < len(tokens) && !isChar(tokens[j], ";"); j++ {
			if tokens[j].Type == scanner.TokenIdent {
				args = append(args, tokens[j].Value)
			}
		}
		i = j // skips the terminating ";"

		if t.Value == "@tailwind" {
			continue
		}
		block, err := p.expand(args, t)
		if err != nil {
			return nil, err
		}
		out = append(out, &scanner.Token{Type: scanner.TokenIdent, Value: block})
	}
	return out, nil
}

func (p *ThemePlugin) expand(args []string, at *scanner.Token) (string, error) {
	names := args
	if len(names) == 0 {
		names = p.order
	}
	var b strings.Builder
	for _, name := range names {
		theme, ok := p.themes[name]
		if !ok {
			return "", foundation.CSSError("unknown theme").
				WithContext("theme", name).
				WithContext("line", at.Line).
				Build()
		}
		selector := `[` + p.attr + `="` + name + `"]`
		if name == p.defaultName {
			selector = ":root," + selector
		}
		b.WriteString(selector)
		b.WriteString("{")
		b.WriteString(customProperties(theme.Colors))
		b.WriteString("}\n")
	}
	return b.String(), nil
}

func customProperties(colors map[string]string) string {
	keys := make([]string, 0, len(colors))
	for k := range colors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		b.WriteString("--color-" + k + ":" + colors[k] + ";")
	}
	return b.String()
}
