// Package version holds build metadata set with -ldflags, e.g.
//
//	go build -ldflags "-X github.com/mj1618/a11y-audit/internal/version.Version=v0.3.0"
package version

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)
