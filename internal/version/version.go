// Package version reports build information for the streamio binary.
// The variables are overridden with -ldflags at build time, for example:
//
//	go build -ldflags "-X github.com/spin-stack/streamio/internal/version.Version=v0.3.0" ./cmd/streamio
package version

import (
	"fmt"
	"runtime"
)

var (
	// Version is the release tag, or "dev" for local builds.
	Version = "dev"

	// GitCommit is the commit the binary was built from.
	GitCommit = "unknown"
)

// Info returns the version line printed by streamio --version.
func Info() string {
	return fmt.Sprintf("%s (commit %s, %s %s/%s)", Version, GitCommit, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
