package version

import "fmt"

// Build-time variables set by ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// String returns a one-line version description for the CLI.
func String() string {
	return fmt.Sprintf("kspace version %s (commit %s, built %s)", Version, GitCommit, BuildDate)
}
