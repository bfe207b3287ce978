package version

import (
	"runtime/debug"
	"strings"
	"testing"
	"time"
)

func saveAndRestore() func() {
	origVersion, origCommit, origBranch, origBuildTime := Version, GitCommit, GitBranch, BuildTime
	return func() {
		Version = origVersion
		GitCommit = origCommit
		GitBranch = origBranch
		BuildTime = origBuildTime
	}
}

func TestGetLdflags(t *testing.T) {
	defer saveAndRestore()()
	Version = "1.0.0"
	GitCommit = "abc1234def"
	GitBranch = "main"
	BuildTime = "2024-01-15T10:30:00Z"

	info := Get()
	if info.Version != "1.0.0" {
		t.Errorf("expected '1.0.0', got %q", info.Version)
	}
	if info.GitCommit != "abc1234" {
		t.Errorf("expected commit truncated to 'abc1234', got %q", info.GitCommit)
	}
	if info.BuildDate.Year() != 2024 {
		t.Errorf("expected build year 2024, got %d", info.BuildDate.Year())
	}
}

func TestApplySettings(t *testing.T) {
	info := Info{Version: "dev"}
	applySettings(&info, []debug.BuildSetting{
		{Key: "vcs.revision", Value: "0123456789"},
		{Key: "vcs.modified", Value: "true"},
		{Key: "vcs.time", Value: "2025-03-01T00:00:00Z"},
	})
	if info.GitCommit != "0123456789" {
		t.Errorf("expected revision, got %q", info.GitCommit)
	}
	if !info.IsDirty {
		t.Error("expected dirty")
	}
	if info.BuildDate.Month() != time.March {
		t.Errorf("expected March build date, got %v", info.BuildDate)
	}

	// ldflags values win over VCS settings
	info = Info{GitCommit: "fixed"}
	applySettings(&info, []debug.BuildSetting{{Key: "vcs.revision", Value: "other"}})
	if info.GitCommit != "fixed" {
		t.Errorf("expected ldflags commit to win, got %q", info.GitCommit)
	}
}

func TestInfoStrings(t *testing.T) {
	built := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	tests := []struct {
		name    string
		info    Info
		short   string
		full    string
		release bool
	}{
		{
			name:  "dev",
			info:  Info{Version: "dev"},
			short: "dev",
			full:  "dev",
		},
		{
			name:    "release on main",
			info:    Info{Version: "1.0.0", GitCommit: "abc1234", GitBranch: "main", BuildDate: built},
			short:   "1.0.0-abc1234",
			full:    "1.0.0-abc1234 (built 2024-01-15T10:30:00Z)",
			release: true,
		},
		{
			name:  "dirty feature branch",
			info:  Info{Version: "1.0.0", GitCommit: "abc1234", GitBranch: "feature/x", IsDirty: true},
			short: "1.0.0-abc1234-dirty",
			full:  "1.0.0-abc1234-dirty feature/x",
		},
		{
			name:  "dirty version string",
			info:  Info{Version: "1.0.0-dirty"},
			short: "1.0.0-dirty",
			full:  "1.0.0-dirty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.info.Short(); got != tt.short {
				t.Errorf("Short() = %q, want %q", got, tt.short)
			}
			if got := tt.info.String(); got != tt.full {
				t.Errorf("String() = %q, want %q", got, tt.full)
			}
			if got := tt.info.IsRelease(); got != tt.release {
				t.Errorf("IsRelease() = %v, want %v", got, tt.release)
			}
		})
	}
}

func TestFields(t *testing.T) {
	f := Info{Version: "1.0.0", GoVersion: "go1.26.0"}.Fields()
	if f["version"] != "1.0.0" || f["go_version"] != "go1.26.0" {
		t.Fatalf("unexpected fields %v", f)
	}
	if _, ok := f["git_commit"]; ok {
		t.Fatal("empty commit should be omitted")
	}
	if !strings.HasPrefix(Info{Version: "dev"}.String(), "dev") {
		t.Fatal("expected dev prefix")
	}
}
