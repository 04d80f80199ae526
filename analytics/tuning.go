package analytics

import (
	"fmt"

	"pulse/models"
	"pulse/utils"
)

const (
	PriorityCritical = "critical"
	PriorityHigh     = "high"
	PriorityMedium   = "medium"
	PriorityLow      = "low"
)

// tuningRule is one row of the recommendation table.
type tuningRule struct {
	name     string
	priority string
	applies  func(in models.TuningInput) bool
	message  func(in models.TuningInput) string
}

// The table is evaluated top to bottom and rules fire independently, so the
// output ordering is stable for identical input.
var tuningRules = []tuningRule{
	{
		name:     "cpu_saturated",
		priority: PriorityCritical,
		applies:  func(in models.TuningInput) bool { return in.CPUPercent >= 95 },
		message: func(in models.TuningInput) string {
			return fmt.Sprintf("CPU at %.0f%% is saturated; move workloads off this host or add cores", in.CPUPercent)
		},
	},
	{
		name:     "cpu_high",
		priority: PriorityHigh,
		applies:  func(in models.TuningInput) bool { return in.CPUPercent >= 80 && in.CPUPercent < 95 },
		message: func(in models.TuningInput) string {
			return fmt.Sprintf("CPU at %.0f%% is sustained high; investigate before it throttles storage ops", in.CPUPercent)
		},
	},
	{
		name:     "ram_saturated",
		priority: PriorityCritical,
		applies:  func(in models.TuningInput) bool { return in.RAMPercent >= 95 },
		message: func(in models.TuningInput) string {
			return fmt.Sprintf("RAM at %.0f%%; the node is at risk of OOM kills", in.RAMPercent)
		},
	},
	{
		name:     "ram_high",
		priority: PriorityHigh,
		applies:  func(in models.TuningInput) bool { return in.RAMPercent >= 85 && in.RAMPercent < 95 },
		message: func(in models.TuningInput) string {
			return fmt.Sprintf("RAM at %.0f%%; add memory or reduce cache sizes", in.RAMPercent)
		},
	},
	{
		name:     "recent_restart",
		priority: PriorityMedium,
		applies:  func(in models.TuningInput) bool { return in.UptimeSeconds > 0 && in.UptimeSeconds < 3600 },
		message: func(in models.TuningInput) string {
			return fmt.Sprintf("node restarted %d minutes ago; check logs for the cause", in.UptimeSeconds/60)
		},
	},
	{
		name:     "version_behind",
		priority: PriorityHigh,
		applies: func(in models.TuningInput) bool {
			return in.LatestVersion != "" && utils.VersionDistance(in.Version, in.LatestVersion) >= 10
		},
		message: func(in models.TuningInput) string {
			return fmt.Sprintf("version %s is behind the network's %s; upgrade", in.Version, in.LatestVersion)
		},
	},
	{
		name:     "patch_available",
		priority: PriorityLow,
		applies: func(in models.TuningInput) bool {
			if in.LatestVersion == "" {
				return false
			}
			d := utils.VersionDistance(in.Version, in.LatestVersion)
			return d > 0 && d < 10
		},
		message: func(in models.TuningInput) string {
			return fmt.Sprintf("patch release %s is available", in.LatestVersion)
		},
	},
	{
		name:     "peers_very_low",
		priority: PriorityHigh,
		applies:  func(in models.TuningInput) bool { return in.PeerCount >= 0 && in.PeerCount < 5 },
		message: func(in models.TuningInput) string {
			return fmt.Sprintf("only %d peers; the node is barely connected to the network", in.PeerCount)
		},
	},
	{
		name:     "peers_low",
		priority: PriorityMedium,
		applies:  func(in models.TuningInput) bool { return in.PeerCount >= 5 && in.PeerCount < 10 },
		message: func(in models.TuningInput) string {
			return fmt.Sprintf("%d peers is below a comfortable margin; allow more inbound connections", in.PeerCount)
		},
	},
	{
		name:     "no_storage",
		priority: PriorityMedium,
		applies:  func(in models.TuningInput) bool { return in.StorageBytes == 0 },
		message: func(in models.TuningInput) string {
			return "no storage committed; the node earns nothing until it stores data"
		},
	},
	{
		name:     "underutilized",
		priority: PriorityLow,
		applies: func(in models.TuningInput) bool {
			return in.StorageBytes > 0 && in.CPUPercent > 0 && in.CPUPercent <= 10 && in.RAMPercent > 0 && in.RAMPercent <= 30
		},
		message: func(in models.TuningInput) string {
			return "host is underutilized; it can likely commit more storage"
		},
	},
}

// Recommend evaluates the rule table against a node snapshot. A node can
// collect multiple recommendations; zero hits returns an empty slice.
func Recommend(in models.TuningInput) []models.Recommendation {
	recs := []models.Recommendation{}
	for _, rule := range tuningRules {
		if rule.applies(in) {
			recs = append(recs, models.Recommendation{
				Rule:     rule.name,
				Priority: rule.priority,
				Message:  rule.message(in),
			})
		}
	}
	return recs
}
