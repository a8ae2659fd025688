package version

import (
	"strings"
	"testing"
	"time"
)

func restore(t *testing.T) {
	t.Helper()
	v, c, b := Version, GitCommit, BuildTime
	t.Cleanup(func() { Version, GitCommit, BuildTime = v, c, b })
}

func TestGetUsesLinkerValues(t *testing.T) {
	restore(t)
	Version = "1.4.0"
	GitCommit = "abcdef123456"
	BuildTime = "2026-01-15T10:30:00Z"

	info := Get()
	if info.Version != "1.4.0" {
		t.Errorf("expected version 1.4.0, got %q", info.Version)
	}
	if info.GitCommit != "abcdef1" {
		t.Errorf("expected commit truncated to abcdef1, got %q", info.GitCommit)
	}
	want := time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)
	if !info.BuildDate.Equal(want) {
		t.Errorf("expected build date %v, got %v", want, info.BuildDate)
	}
}

func TestGetInvalidBuildTime(t *testing.T) {
	restore(t)
	BuildTime = "yesterday"
	GitCommit = "abc"
	info := Get()
	if info.GitCommit != "abc" {
		t.Errorf("expected commit abc, got %q", info.GitCommit)
	}
}

func TestInfoShort(t *testing.T) {
	tests := []struct {
		info Info
		want string
	}{
		{Info{Version: "dev"}, "dev"},
		{Info{Version: "1.0.0", GitCommit: "abc1234"}, "1.0.0-abc1234"},
		{Info{Version: "1.0.0", GitCommit: "abc1234", Dirty: true}, "1.0.0-abc1234-dirty"},
	}
	for _, tc := range tests {
		if got := tc.info.Short(); got != tc.want {
			t.Errorf("Short() = %q, want %q", got, tc.want)
		}
	}
}

func TestInfoString(t *testing.T) {
	info := Info{
		Version:   "1.0.0",
		GoVersion: "go1.26.0",
		BuildDate: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	want := "1.0.0 go1.26.0 (built 2026-02-01T00:00:00Z)"
	if got := info.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestUserAgent(t *testing.T) {
	restore(t)
	Version = "2.0.0"
	ua := UserAgent("netfoundation")
	if !strings.HasPrefix(ua, "netfoundation/2.0.0") {
		t.Errorf("unexpected user agent %q", ua)
	}
}
