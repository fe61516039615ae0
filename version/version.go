// Package version provides information about the build version of the binary.
package version

import "runtime"

// Set via -ldflags "-X 'github.com/cogc-planning/bulletin/version.GitRelease=v0.1.0'
// -X 'github.com/cogc-planning/bulletin/version.GitCommit=abcd'
// -X 'github.com/cogc-planning/bulletin/version.GitCommitDate=2026-08-28'".
var (
	GitRelease    = "dev"
	GitCommit     = "none"
	GitCommitDate = "unknown"
)

// GoInfo is the Go runtime the binary was built with.
var GoInfo = runtime.Version()
