// Package version exposes build metadata injected with -ldflags.
package version

var (
	// Version is the release tag, e.g. v0.3.1.
	Version = "dev"
	Commit  = ""
	// BuildDate is RFC3339.
	BuildDate = ""
)
