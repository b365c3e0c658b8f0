package version

import (
	"testing"

	"github.com/fatih/color"
)

func TestPretty(t *testing.T) {
	prevColor := color.NoColor
	color.NoColor = true
	origVersion := Version
	defer func() {
		color.NoColor = prevColor
		Version = origVersion
	}()

	tests := []struct {
		version string
		want    string
	}{
		{"0.1.0-dev", "0.1.0-dev"},
		{"1.2.3", "1.2.3"},
		{"2.0.0-rc.1", "2.0.0-rc.1"},
	}
	for _, tt := range tests {
		Version = tt.version
		if got := Pretty(); got != tt.want {
			t.Errorf("Pretty() with Version=%q = %q, want %q", tt.version, got, tt.want)
		}
	}
}

func TestCommitAndBuilt(t *testing.T) {
	origCommit, origDate := GitCommit, BuildDate
	defer func() {
		GitCommit, BuildDate = origCommit, origDate
	}()

	GitCommit, BuildDate = "", ""
	if got := Commit(); got != "unknown" {
		t.Errorf("Commit() without a stamp = %q, want %q", got, "unknown")
	}
	if got := Built(); got != "unknown" {
		t.Errorf("Built() without a stamp = %q, want %q", got, "unknown")
	}

	// Simulate build-time ldflags.
	GitCommit = "abc123def456"
	BuildDate = "2026-01-15T10:30:00Z"
	if got := Commit(); got != "abc123def456" {
		t.Errorf("Commit() = %q, want %q", got, "abc123def456")
	}
	if got := Built(); got != "2026-01-15T10:30:00Z" {
		t.Errorf("Built() = %q, want %q", got, "2026-01-15T10:30:00Z")
	}
}
