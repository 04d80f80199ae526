package utils

import (
	"sort"
	"strings"

	"github.com/hashicorp/go-version"
)

// VersionConfig holds current version requirements
type VersionConfig struct {
	CurrentStable string
	MinSupported  string
	Deprecated    string
}

var DefaultVersionConfig = VersionConfig{
	CurrentStable: "0.8.0",
	MinSupported:  "0.7.3",
	Deprecated:    "0.7.2",
}

// ParseVersion parses a node-reported version string, tolerating a leading
// 'v'. Returns nil for unparsable strings.
func ParseVersion(raw string) *version.Version {
	v, err := version.NewVersion(strings.TrimPrefix(strings.TrimSpace(raw), "v"))
	if err != nil {
		return nil
	}
	return v
}

// SortVersionsDesc returns a new slice sorted newest-first. Semver ordering:
// a stable release ranks above any pre-release of the same base version,
// while a pre-release of a higher base (e.g. "0.7.0-trynet.x") still ranks
// above a lower stable ("0.6.0"). Unparsable strings sort last, lexically.
// The input slice is never mutated and the sort is idempotent.
func SortVersionsDesc(versions []string) []string {
	out := make([]string, len(versions))
	copy(out, versions)

	sort.SliceStable(out, func(i, j int) bool {
		vi := ParseVersion(out[i])
		vj := ParseVersion(out[j])
		switch {
		case vi == nil && vj == nil:
			return out[i] < out[j]
		case vi == nil:
			return false
		case vj == nil:
			return true
		default:
			return vi.GreaterThan(vj)
		}
	})
	return out
}

// LatestVersion returns the highest version in the list, "" for an empty or
// fully unparsable list.
func LatestVersion(versions []string) string {
	var best *version.Version
	var bestRaw string
	for _, raw := range versions {
		v := ParseVersion(raw)
		if v == nil {
			continue
		}
		if best == nil || v.GreaterThan(best) {
			best = v
			bestRaw = raw
		}
	}
	return bestRaw
}

// VersionDistance reports how far behind `have` is from `want` in released
// segments: 0 when equal or newer, 1 for a patch behind, 10 per minor and
// 100 per major. Either side unparsable returns -1.
func VersionDistance(have, want string) int {
	hv := ParseVersion(have)
	wv := ParseVersion(want)
	if hv == nil || wv == nil {
		return -1
	}
	if hv.GreaterThanOrEqual(wv) {
		return 0
	}

	seg := func(v *version.Version, i int) int {
		s := v.Segments()
		if i >= len(s) {
			return 0
		}
		return s[i]
	}
	dist := 0
	if d := seg(wv, 0) - seg(hv, 0); d > 0 {
		dist += d * 100
	}
	if d := seg(wv, 1) - seg(hv, 1); d > 0 {
		dist += d * 10
	}
	if d := seg(wv, 2) - seg(hv, 2); d > 0 {
		dist += d
	}
	if dist == 0 {
		// Same base, node is on a pre-release of the stable.
		dist = 1
	}
	return dist
}

// CheckVersionStatus determines if a node version needs upgrading
func CheckVersionStatus(nodeVersion string, config *VersionConfig) (status string, needsUpgrade bool, severity string) {
	if config == nil {
		config = &DefaultVersionConfig
	}

	nodeVer := ParseVersion(nodeVersion)
	if nodeVer == nil {
		return "unknown", false, "info"
	}

	current, _ := version.NewVersion(config.CurrentStable)
	minSupported, _ := version.NewVersion(config.MinSupported)
	deprecated, _ := version.NewVersion(config.Deprecated)

	// Check if deprecated (critical)
	if nodeVer.LessThan(deprecated) {
		return "deprecated", true, "critical"
	}

	// Check if below minimum supported (warning)
	if nodeVer.LessThan(minSupported) {
		return "outdated", true, "warning"
	}

	// Check if not on latest stable (info)
	if nodeVer.LessThan(current) {
		return "outdated", true, "info"
	}

	// On latest or newer
	return "current", false, "none"
}

// GetUpgradeMessage returns a human-readable upgrade message
func GetUpgradeMessage(nodeVersion string, config *VersionConfig) string {
	if config == nil {
		config = &DefaultVersionConfig
	}

	_, needsUpgrade, severity := CheckVersionStatus(nodeVersion, config)

	if !needsUpgrade {
		return ""
	}

	switch severity {
	case "critical":
		return "CRITICAL: This version is deprecated and no longer supported. Upgrade to " + config.CurrentStable + " immediately."
	case "warning":
		return "WARNING: This version is outdated. Please upgrade to " + config.CurrentStable + " soon."
	case "info":
		return "INFO: A newer version " + config.CurrentStable + " is available."
	}

	return ""
}
