// FILE: logward/src/internal/version/version.go
// Package version exposes the build metadata stamped into the logward
// binary at link time.
package version

import "fmt"

var (
	// Set via -ldflags at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// String renders the full build identity for --version output.
func String() string {
	if Version == "dev" {
		return fmt.Sprintf("dev (commit: %s, built: %s)", GitCommit, BuildTime)
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime)
}

// Short returns just the version tag.
func Short() string {
	return Version
}

// UserAgent identifies logward in outbound HTTP requests.
func UserAgent() string {
	return "logward/" + Version
}
