// Package buildinfo carries the version stamped into the chaingraph binary.
//
// Release builds overwrite the variables with ldflags:
//
//	go build -ldflags "-X github.com/Rishikoli/chaingraph/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/Rishikoli/chaingraph/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/Rishikoli/chaingraph/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package buildinfo

import "fmt"

var (
	// Version is the semantic version, "dev" outside release builds.
	Version = "dev"

	// Commit is the git commit SHA the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// String formats the build information for `chaingraph version` style output.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Template returns the cobra version template.
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}
