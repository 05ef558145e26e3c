// Package version holds build metadata, set at link time with -ldflags -X.
package version

import (
	"strings"

	"github.com/fatih/color"
)

var (
	// Version is the semantic version of ember.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// GitMessage is an optional git commit message.
	GitMessage = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

var componentColors = []*color.Color{
	color.New(color.FgYellow, color.Bold),
	color.New(color.FgGreen, color.Bold),
	color.New(color.FgBlue, color.Bold),
}

// Colored renders v with the major, minor and patch numbers in distinct
// colours. A pre-release suffix is left plain. Colours follow color.NoColor.
func Colored(v string) string {
	core, suffix, hasSuffix := strings.Cut(v, "-")
	parts := strings.SplitN(core, ".", len(componentColors))
	for i, p := range parts {
		parts[i] = componentColors[i].Sprint(p)
	}
	out := strings.Join(parts, ".")
	if hasSuffix {
		out += "-" + suffix
	}
	return out
}
