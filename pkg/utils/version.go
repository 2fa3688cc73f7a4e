// Package utils provides bespoke, one off utils that don't make sense to be
// their own package
package utils

import "fmt"

// Build metadata, stamped at release time with
// -ldflags "-X github.com/papercomputeco/aiterm/pkg/utils.Version=...".
var (
	Version   = "dev"
	Sha       = "HEAD"
	Buildtime = "dev"
)

// BuildInfo renders the build metadata on one line, e.g.
// "v0.3.0 (1a2b3c4, built 2026-01-02)".
func BuildInfo() string {
	return fmt.Sprintf("%s (%s, built %s)", Version, Sha, Buildtime)
}
