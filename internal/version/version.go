package version

import (
	"strings"

	"github.com/fatih/color"

	"c2c/internal/ast"
)

// Version information for the c2c CLI.
// These variables can be overridden at build time via -ldflags.
var (
	// Version is the semantic version of the CLI.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

var (
	majorColor = color.New(color.FgYellow, color.Bold)
	minorColor = color.New(color.FgGreen, color.Bold)
	patchColor = color.New(color.FgBlue, color.Bold)
)

// Banner is the `c2c version` line: version, optional commit and date, and
// the syntax-tree format the build reads.
func Banner(colorize bool) string {
	v := Version
	if colorize {
		v = paint(v)
	}
	var sb strings.Builder
	sb.WriteString("c2c " + v)
	if GitCommit != "" {
		commit := GitCommit
		if len(commit) > 12 {
			commit = commit[:12]
		}
		sb.WriteString(" (" + commit + ")")
	}
	if BuildDate != "" {
		sb.WriteString(" built " + BuildDate)
	}
	sb.WriteString(", tree format " + ast.FormatVersion + " (" + ast.SupportedFormats + ")")
	return sb.String()
}

// paint colours major, minor and patch separately; the pre-release suffix
// stays plain.
func paint(v string) string {
	core, suffix, _ := strings.Cut(v, "-")
	parts := strings.SplitN(core, ".", 3)
	if len(parts) != 3 {
		return v
	}
	out := majorColor.Sprint(parts[0]) + "." + minorColor.Sprint(parts[1]) + "." + patchColor.Sprint(parts[2])
	if suffix != "" {
		out += "-" + suffix
	}
	return out
}
