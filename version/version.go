// Package version holds build details set with -ldflags.
package version

import "fmt"

// Build and version details
var (
	GitCommit = ""
	BuildDate = ""
	Version   = "unknown"
)

// String formats a string with version details.
func String() string {
	return fmt.Sprintf("sweep %s (commit %s, built %s)", Version, GitCommit, BuildDate)
}

// LogFields returns the build details as logger key/value pairs.
func LogFields() []interface{} {
	return []interface{}{
		"Version", Version,
		"GitCommit", GitCommit,
		"BuildDate", BuildDate,
	}
}
