package version

import (
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestBannerPlain(t *testing.T) {
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	defer func() { Version, GitCommit, BuildDate = origVersion, origCommit, origDate }()

	Version = "1.2.3"
	GitCommit = "abc123def4567890"
	BuildDate = "2026-01-15"
	got := Banner(false)
	if !strings.HasPrefix(got, "c2c 1.2.3 (abc123def456) built 2026-01-15, tree format ") {
		t.Fatalf("banner = %q", got)
	}
}

func TestBannerOptionalFields(t *testing.T) {
	origCommit, origDate := GitCommit, BuildDate
	defer func() { GitCommit, BuildDate = origCommit, origDate }()

	GitCommit, BuildDate = "", ""
	got := Banner(false)
	if strings.Contains(got, "(") && strings.Index(got, "(") < strings.Index(got, "tree format") {
		t.Fatalf("empty commit rendered: %q", got)
	}
	if strings.Contains(got, "built") {
		t.Fatalf("empty date rendered: %q", got)
	}
}

func TestPaintKeepsText(t *testing.T) {
	orig := color.NoColor
	defer func() { color.NoColor = orig }()
	color.NoColor = true

	if got := paint("0.1.0-dev"); got != "0.1.0-dev" {
		t.Fatalf("paint = %q", got)
	}
	if got := paint("weird"); got != "weird" {
		t.Fatalf("paint = %q", got)
	}
}
