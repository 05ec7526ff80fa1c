// Package version holds the build information of the glazecat binary.
package version

import (
	"fmt"
	"runtime"
)

// Set at build time, e.g.
//
//	-ldflags "-X github.com/jmylchreest/glazecat/internal/version.Version=1.2.0"
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String describes the build for `glazecat version`. The commit and build
// date are included only for release builds.
func String() string {
	platform := runtime.GOOS + "/" + runtime.GOARCH
	if len(Commit) >= 8 && Date != "unknown" {
		return fmt.Sprintf("glazecat version %s (commit: %s, built: %s, %s, %s)",
			Version, Commit[:8], Date, runtime.Version(), platform)
	}
	return fmt.Sprintf("glazecat version %s (%s, %s)", Version, runtime.Version(), platform)
}

// Short returns the bare version used by --version.
func Short() string {
	return Version
}
