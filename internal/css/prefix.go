package css

import (
	"github.com/gorilla/css/scanner"
)

// DefaultPrefixes lists properties that still need vendor-prefixed duplicates.
var DefaultPrefixes = map[string][]string{
	"appearance":         {"-webkit-", "-moz-"},
	"user-select":        {"-webkit-", "-moz-"},
	"backdrop-filter":    {"-webkit-"},
	"text-size-adjust":   {"-webkit-", "-moz-"},
	"hyphens":            {"-webkit-", "-ms-"},
	"mask-image":         {"-webkit-"},
	"print-color-adjust": {"-webkit-"},
	"tab-size":           {"-moz-"},
}

// PrefixPlugin inserts prefixed declarations ahead of each matching declaration.
type PrefixPlugin struct {
	table map[string][]string
}

// NewPrefixPlugin uses table, or DefaultPrefixes when nil.
func NewPrefixPlugin(table map[string][]string) *PrefixPlugin {
	if table == nil {
		table = DefaultPrefixes
	}
	return &PrefixPlugin{table: table}
}

func (*PrefixPlugin) Name() string { return "autoprefix" }

func (p *PrefixPlugin) Process(tokens []*scanner.Token) ([]*scanner.Token, error) {
	out := make([]*scanner.Token, 0, len(tokens))
	depth := 0
	for i := 0; i < len(tokens); i++ {
		t := tokens[i]
		switch {
		case isChar(t, "{"):
			depth++
		case isChar(t, "}"):
			depth--
		}

		prefixes, ok := p.table[t.Value]
		if depth == 0 || t.Type != scanner.TokenIdent || !ok || !startsDeclaration(tokens, i) {
			out = append(out, t)
			continue
		}

		end := declarationEnd(tokens, i)
		rest := tokens[i+1 : end]
		for _, prefix := range prefixes {
			out = append(out, &scanner.Token{Type: scanner.TokenIdent, Value: prefix + t.Value})
			out = append(out, rest...)
			out = append(out, &scanner.Token{Type: scanner.TokenChar, Value: ";"})
		}
		out = append(out, t)
	}
	return out, nil
}

// startsDeclaration reports whether tokens[i] is followed by optional whitespace and ':'
// and preceded (ignoring whitespace and comments) by '{' or ';'.
func startsDeclaration(tokens []*scanner.Token, i int) bool {
	j := i + 1
	for j < len(tokens) && tokens[j].Type == scanner.TokenS {
		j++
	}
	if j >= len(tokens) || !isChar(tokens[j], ":") {
		return false
	}
	for k := i - 1; k >= 0; k-- {
		switch tokens[k].Type {
		case scanner.TokenS, scanner.TokenComment:
			continue
		}
		return isChar(tokens[k], "{") || isChar(tokens[k], ";")
	}
	return false
}

// declarationEnd returns the index of the ';' or '}' closing the declaration at i.
func declarationEnd(tokens []*scanner.Token, i int) int {
	parens := 0
	for j := i + 1; j < len(tokens); j++ {
		t := tokens[j]
		switch {
		case t.Type == scanner.TokenFunction, isChar(t, "("):
			parens++
		case isChar(t, ")"):
			parens--
		case parens == 0 && (isChar(t, ";") || isChar(t, "}")):
			return j
		}
	}
	return len(tokens)
}
