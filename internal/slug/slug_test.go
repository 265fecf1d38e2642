package slug

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Hello, World!", "hello-world"},
		{"  multiple   spaces  ", "multiple-spaces"},
		{"", ""},
		{"!!!", ""},
		{"   ", ""},
		{"Already-slugged", "already-slugged"},
		{"a -- b", "a-b"},
		{"Café au lait", "caf-au-lait"},
		{"Step 2: Configure", "step-2-configure"},
		{"tabs\tare\tdropped", "tabsaredropped"},
		{"trailing !", "trailing-"},
		{"- leading", "-leading"},
		{"API v1.2 (beta)", "api-v12-beta"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

var slugShape = regexp.MustCompile(`^[a-z0-9-]*$`)

func FuzzSlugifyIdempotent(f *testing.F) {
	for _, seed := range []string{"Hello, World!", "  multiple   spaces  ", "", "ÄÖÜ", "a--b", "x y", "- -"} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, s string) {
		once := Slugify(s)
		if !slugShape.MatchString(once) {
			t.Fatalf("Slugify(%q) = %q contains characters outside [a-z0-9-]", s, once)
		}
		if twice := Slugify(once); twice != once {
			t.Fatalf("not idempotent: %q -> %q -> %q", s, once, twice)
		}
	})
}

func TestRegistry_Unique(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, "intro", r.Unique("intro"))
	assert.Equal(t, "intro-1", r.Unique("intro"))
	assert.Equal(t, "intro-2", r.Unique("intro"))
	assert.Equal(t, "setup", r.Unique("setup"))
}

func TestRegistry_SkipsIssuedSuffix(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, "faq-1", r.Unique("faq-1"))
	assert.Equal(t, "faq", r.Unique("faq"))
	assert.Equal(t, "faq-2", r.Unique("faq"), "faq-1 already taken by a literal heading")
}

func TestRegistry_EmptyFallback(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, Fallback, r.Unique(""))
	assert.Equal(t, Fallback+"-1", r.Unique(""))

	r.Reset()
	assert.Equal(t, Fallback, r.Unique(""))
}
