package logfields

import (
	"errors"
	"log/slog"
	"testing"
	"time"
)

func TestHelpers(t *testing.T) {
	cases := []struct {
		attr slog.Attr
		key  string
		want string
	}{
		{Stage("render_pages"), KeyStage, "render_pages"},
		{URL("/docs/"), KeyURL, "/docs/"},
		{Page("src/index.md"), KeyPage, "src/index.md"},
		{BuildID("b1"), KeyBuildID, "b1"},
	}
	for _, c := range cases {
		if c.attr.Key != c.key || c.attr.Value.String() != c.want {
			t.Fatalf("expected %s=%s got %s=%s", c.key, c.want, c.attr.Key, c.attr.Value.String())
		}
	}
	if got := Duration(1500 * time.Millisecond).Value.Int64(); got != 1500 {
		t.Fatalf("expected 1500ms got %d", got)
	}
	if got := Error(nil).Value.String(); got != "" {
		t.Fatalf("expected empty error value got %q", got)
	}
	if got := Error(errors.New("boom")).Value.String(); got != "boom" {
		t.Fatalf("expected boom got %q", got)
	}
}
