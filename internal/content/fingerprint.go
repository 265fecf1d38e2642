package content

import (
	"strings"

	"github.com/inful/mdfp"

	"github.com/TotalLag/developer-docs/internal/frontmatter"
)

// Fingerprint hashes front matter and body with mdfp. A stored fingerprint field
// is excluded, so the value is stable whether or not a page carries one.
func Fingerprint(fields map[string]any, body []byte) (string, error) {
	hashed := make(map[string]any, len(fields))
	for k, v := range fields {
		if k == mdfp.FingerprintField {
			continue
		}
		hashed[k] = v
	}

	serialized, err := frontmatter.SerializeYAML(hashed)
	if err != nil {
		return "", err
	}
	fm := strings.TrimSuffix(string(serialized), "\n")
	return mdfp.CalculateFingerprintFromParts(fm, string(body)), nil
}
