package css

import (
	"strings"

	"github.com/gorilla/css/scanner"
)

// MinifyPlugin drops comments (except /*! ... */), collapses whitespace and removes
// the last semicolon of each block.
type MinifyPlugin struct{}

func (MinifyPlugin) Name() string { return "minify" }

// Whitespace next to these characters is never significant.
var tight = map[string]bool{"{": true, "}": true, ";": true, ",": true, ">": true}

func (MinifyPlugin) Process(tokens []*scanner.Token) ([]*scanner.Token, error) {
	kept := make([]*scanner.Token, 0, len(tokens))
	for _, t := range tokens {
		if t.Type == scanner.TokenComment && !strings.HasPrefix(t.Value, "/*!") {
			continue
		}
		if t.Type == scanner.TokenBOM {
			continue
		}
		kept = append(kept, t)
	}

	out := make([]*scanner.Token, 0, len(kept))
	for i, t := range kept {
		if t.Type == scanner.TokenS {
			if len(out) == 0 || i+1 >= len(kept) {
				continue
			}
			prev, next := out[len(out)-1], kept[i+1]
			if isTight(prev) || isTight(next) || isChar(prev, ":") || next.Type == scanner.TokenS {
				continue
			}
			out = append(out, &scanner.Token{Type: scanner.TokenS, Value: " "})
			continue
		}
		if isChar(t, "}") && len(out) > 0 && isChar(out[len(out)-1], ";") {
			out = out[:len(out)-1]
		}
		// Generated blocks from other plugins arrive as a single token.
		if t.Type == scanner.TokenIdent && strings.ContainsAny(t.Value, "{\n") {
			t = &scanner.Token{Type: scanner.TokenIdent, Value: strings.ReplaceAll(t.Value, "\n", "")}
		}
		out = append(out, t)
	}
	return out, nil
}

func isTight(t *scanner.Token) bool {
	return t.Type == scanner.TokenChar && tight[t.Value]
}
