package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVersion(t *testing.T) {
	require.NotNil(t, ParseVersion("0.8.0"))
	require.NotNil(t, ParseVersion("v0.8.0"))
	require.NotNil(t, ParseVersion(" 0.7.0-trynet.x "))
	assert.Nil(t, ParseVersion("not-a-version"))
	assert.Nil(t, ParseVersion(""))
}

func TestSortVersionsDesc(t *testing.T) {
	in := []string{"0.5.1", "0.7.0-trynet.x", "0.6.0"}

	got := SortVersionsDesc(in)
	assert.Equal(t, []string{"0.7.0-trynet.x", "0.6.0", "0.5.1"}, got)

	// Input untouched, output stable under a second pass.
	assert.Equal(t, []string{"0.5.1", "0.7.0-trynet.x", "0.6.0"}, in)
	assert.Equal(t, got, SortVersionsDesc(got))
}

func TestSortVersionsDescStableAbovePrereleaseOfSameBase(t *testing.T) {
	got := SortVersionsDesc([]string{"0.7.0-trynet.x", "0.7.0"})
	assert.Equal(t, []string{"0.7.0", "0.7.0-trynet.x"}, got)
}

func TestSortVersionsDescUnparsableLast(t *testing.T) {
	got := SortVersionsDesc([]string{"garbage", "0.6.0", "???", "0.8.0"})
	assert.Equal(t, []string{"0.8.0", "0.6.0", "???", "garbage"}, got)
}

func TestLatestVersion(t *testing.T) {
	assert.Equal(t, "0.8.0", LatestVersion([]string{"0.6.0", "0.8.0", "0.7.3"}))
	assert.Equal(t, "", LatestVersion(nil))
	assert.Equal(t, "", LatestVersion([]string{"junk"}))
	assert.Equal(t, "0.6.0", LatestVersion([]string{"junk", "0.6.0"}))
}

func TestVersionDistance(t *testing.T) {
	tests := []struct {
		have, want string
		dist       int
	}{
		{"0.8.0", "0.8.0", 0},
		{"0.9.0", "0.8.0", 0}, // ahead counts as current
		{"0.7.9", "0.7.12", 3},
		{"0.7.3", "0.8.0", 10},
		{"0.6.2", "0.8.0", 20},
		{"1.0.0", "2.0.0", 100},
		{"0.7.0-trynet.x", "0.7.0", 1},
		{"0.7", "0.8.0", 10},
		{"junk", "0.8.0", -1},
		{"0.8.0", "junk", -1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.dist, VersionDistance(tt.have, tt.want), "%s -> %s", tt.have, tt.want)
	}
}

func TestCheckVersionStatus(t *testing.T) {
	cfg := &VersionConfig{CurrentStable: "0.8.0", MinSupported: "0.7.3", Deprecated: "0.7.2"}

	tests := []struct {
		version  string
		status   string
		upgrade  bool
		severity string
	}{
		{"0.8.0", "current", false, "none"},
		{"0.9.0", "current", false, "none"},
		{"0.7.5", "outdated", true, "info"},
		{"0.7.2", "outdated", true, "warning"},
		{"0.7.1", "deprecated", true, "critical"},
		{"??", "unknown", false, "info"},
	}
	for _, tt := range tests {
		status, upgrade, severity := CheckVersionStatus(tt.version, cfg)
		assert.Equal(t, tt.status, status, tt.version)
		assert.Equal(t, tt.upgrade, upgrade, tt.version)
		assert.Equal(t, tt.severity, severity, tt.version)
	}
}

func TestGetUpgradeMessage(t *testing.T) {
	assert.Empty(t, GetUpgradeMessage("0.8.0", nil))
	assert.Contains(t, GetUpgradeMessage("0.7.1", nil), "deprecated")
	assert.Contains(t, GetUpgradeMessage("0.7.5", nil), "0.8.0")
}
