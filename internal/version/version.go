// Package version holds build information for radar.
package version

// Overridden at build time:
// go build -ldflags "-X radar/internal/version.Version=1.0.0 -X radar/internal/version.Commit=abc123"
var (
	// Version is the semantic version of radar
	Version = "0.3.0"

	// Commit is the git commit hash (set at build time)
	Commit = "unknown"

	// BuildDate is the build timestamp (set at build time)
	BuildDate = "unknown"
)

// Info returns the version, with a short commit hash when one is known.
func Info() string {
	if Commit != "unknown" && len(Commit) > 7 {
		return Version + " (" + Commit[:7] + ")"
	}
	return Version
}

// Full returns complete version information
func Full() string {
	return "radar version " + Version + "\n" +
		"Commit: " + Commit + "\n" +
		"Built: " + BuildDate
}
