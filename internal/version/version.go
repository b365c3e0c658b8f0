// Package version carries the build fingerprints stamped into the
// flowtrace binary via -ldflags.
package version

import (
	"strings"

	"github.com/fatih/color"
)

var (
	// Version is the semantic version of the CLI.
	Version = "0.1.0-dev"

	// GitCommit is the git commit hash the binary was built from.
	GitCommit = ""

	// BuildDate is the build date in ISO-8601.
	BuildDate = ""
)

var segmentColors = []*color.Color{
	color.New(color.FgYellow, color.Bold),
	color.New(color.FgGreen, color.Bold),
	color.New(color.FgBlue, color.Bold),
}

// Pretty renders Version with each numeric segment colored. A pre-release
// suffix after "-" stays uncolored.
func Pretty() string {
	core, suffix, hasSuffix := strings.Cut(Version, "-")
	parts := strings.Split(core, ".")
	for i := range parts {
		if i < len(segmentColors) {
			parts[i] = segmentColors[i].Sprint(parts[i])
		}
	}
	out := strings.Join(parts, ".")
	if hasSuffix {
		out += "-" + suffix
	}
	return out
}

// Commit returns GitCommit, or "unknown" when the build did not stamp one.
func Commit() string { return orUnknown(GitCommit) }

// Built returns BuildDate, or "unknown" when the build did not stamp one.
func Built() string { return orUnknown(BuildDate) }

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
