// Package version exposes build metadata set through -ldflags.
package version

import "fmt"

// Set at build time:
//
//	go build -ldflags "-X github.com/pegada/calcpc/pkg/version.version=v1.2.0 \
//	  -X github.com/pegada/calcpc/pkg/version.commit=$(git rev-parse --short HEAD)"
//
//nolint:gochecknoglobals // Link-time variables.
var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

// GetVersion returns the release version.
func GetVersion() string {
	return version
}

// GetCommit returns the source commit.
func GetCommit() string {
	return commit
}

// GetBuildDate returns the build timestamp.
func GetBuildDate() string {
	return buildDate
}

// String returns version, commit and build date on one line.
func String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", version, commit, buildDate)
}
