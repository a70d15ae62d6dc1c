// Package version holds build information stamped in at release time
package version

// Build information set by ldflags
var (
	Version = "dev"     // -X github.com/arthur-debert/deployrev/internal/version.Version={{.Version}}
	Commit  = "unknown" // -X github.com/arthur-debert/deployrev/internal/version.Commit={{.Commit}}
	Date    = "unknown" // -X github.com/arthur-debert/deployrev/internal/version.Date={{.Date}}
)

// Short is the version shown by --version and in the man page: the release
// version, followed by the abbreviated commit when one was stamped in
func Short() string {
	if Commit == "" || Commit == "unknown" {
		return Version
	}
	commit := Commit
	if len(commit) > 7 {
		commit = commit[:7]
	}
	return Version + " (" + commit + ")"
}
