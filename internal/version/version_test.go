package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	assert.Equal(t, "unknown", String())

	Version, GitCommit, BuildTime = "v1.0.0", "abc123", "2024-05-01"
	t.Cleanup(func() { Version, GitCommit, BuildTime = "unknown", "unknown", "unknown" })
	assert.Equal(t, "v1.0.0 (commit abc123, built 2024-05-01)", String())
}
