// Package version holds build metadata set via ldflags:
//
//	go build -ldflags "-X github.com/TotalLag/developer-docs/internal/version.Version=v1.2.0"
package version

import "fmt"

var Version = "unknown"

var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String is the --version output.
func String() string {
	if GitCommit == "unknown" && BuildTime == "unknown" {
		return Version
	}
	return fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildTime)
}
