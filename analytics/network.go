package analytics

import (
	"sort"
	"time"

	"pulse/models"
	"pulse/utils"
)

// BuildNetworkBaseline computes the shared baseline for one scoring pass
// from the active nodes' latest samples. The result is passed by value to
// per-node computations and never mutated afterwards.
func BuildNetworkBaseline(nodes []*models.Node) models.NetworkBaseline {
	var cpus, rams, uptimes []float64
	var versions []string

	for _, n := range nodes {
		if !n.IsActive {
			continue
		}
		if n.Version != "" {
			versions = append(versions, n.Version)
		}
		m := n.Metrics
		if m == nil {
			continue
		}
		if m.CPUPercent != nil {
			cpus = append(cpus, *m.CPUPercent)
		}
		if m.RAMTotalBytes > 0 {
			rams = append(rams, m.RAMPercent())
		}
		if m.UptimeSeconds != nil {
			uptimes = append(uptimes, float64(*m.UptimeSeconds))
		}
	}

	count := len(cpus)
	if len(rams) > count {
		count = len(rams)
	}
	if len(uptimes) > count {
		count = len(uptimes)
	}

	return models.NetworkBaseline{
		LatestVersion: utils.LatestVersion(versions),
		AvgCPU:        Mean(cpus),
		AvgRAM:        Mean(rams),
		AvgUptime:     Mean(uptimes),
		CPUStdDev:     StdDev(cpus),
		RAMStdDev:     StdDev(rams),
		UptimeStdDev:  StdDev(uptimes),
		SampleCount:   count,
	}
}

// BuildNetworkOverview condenses the fleet into node counts, the version
// distribution and aggregate gauges.
func BuildNetworkOverview(nodes []*models.Node, now time.Time) models.NetworkOverview {
	overview := models.NetworkOverview{
		Versions: []models.VersionCount{},
	}

	versionCounts := map[string]int{}
	var cpus, rams []float64
	var uptimeSum, uptimeN int64
	var storageTotal int64

	for _, n := range nodes {
		overview.Nodes.Total++
		if n.IsActive {
			overview.Nodes.Active++
		} else {
			overview.Nodes.Inactive++
		}
		if n.Version != "" {
			versionCounts[n.Version]++
		}
		m := n.Metrics
		if m == nil {
			continue
		}
		storageTotal += m.StorageBytes
		if m.CPUPercent != nil {
			cpus = append(cpus, *m.CPUPercent)
		}
		if m.RAMTotalBytes > 0 {
			rams = append(rams, m.RAMPercent())
		}
		if m.UptimeSeconds != nil {
			uptimeSum += *m.UptimeSeconds
			uptimeN++
		}
	}

	for _, v := range utils.SortVersionsDesc(keys(versionCounts)) {
		overview.Versions = append(overview.Versions, models.VersionCount{Version: v, Count: versionCounts[v]})
	}

	overview.Metrics = models.NetworkMetrics{
		TotalStorageBytes: storageTotal,
		AvgCPUPercent:     Mean(cpus),
		AvgRAMPercent:     Mean(rams),
		Timestamp:         now,
	}
	if uptimeN > 0 {
		overview.Metrics.AvgUptimeSeconds = uptimeSum / uptimeN
	}
	return overview
}

// BuildNetworkStats computes the detailed percentile breakdown served by the
// stats endpoint.
func BuildNetworkStats(nodes []*models.Node) models.NetworkStats {
	var cpus, rams []float64
	var storageTotal, uptimeSum, uptimeN int64
	withMetrics := 0

	for _, n := range nodes {
		m := n.Metrics
		if m == nil {
			continue
		}
		withMetrics++
		storageTotal += m.StorageBytes
		if m.CPUPercent != nil {
			cpus = append(cpus, *m.CPUPercent)
		}
		if m.RAMTotalBytes > 0 {
			rams = append(rams, m.RAMPercent())
		}
		if m.UptimeSeconds != nil {
			uptimeSum += *m.UptimeSeconds
			uptimeN++
		}
	}

	cpuSummary := CalculateSummary(cpus)
	ramSummary := CalculateSummary(rams)

	stats := models.NetworkStats{
		CPU: models.CPUStats{
			Avg: cpuSummary.Mean,
			Min: cpuSummary.Min,
			Max: cpuSummary.Max,
			P50: Percentile(cpus, 50),
			P90: Percentile(cpus, 90),
			P99: Percentile(cpus, 99),
		},
		RAM: models.RAMStats{
			AvgPercent: ramSummary.Mean,
			MinPercent: ramSummary.Min,
			MaxPercent: ramSummary.Max,
			P50:        Percentile(rams, 50),
			P90:        Percentile(rams, 90),
			P99:        Percentile(rams, 99),
		},
		Storage:   models.StorageStats{Total: storageTotal},
		NodeCount: len(nodes),
	}
	if withMetrics > 0 {
		stats.Storage.Avg = storageTotal / int64(withMetrics)
	}
	if uptimeN > 0 {
		stats.Uptime.AvgSeconds = uptimeSum / uptimeN
	}
	return stats
}

// Metrics and orders accepted by the metric leaderboard.
const (
	RankUptime  = "uptime"
	RankCPU     = "cpu"
	RankRAM     = "ram"
	RankStorage = "storage"

	OrderTop    = "top"
	OrderBottom = "bottom"
)

// ValidRankMetric reports whether the leaderboard can rank on this metric.
func ValidRankMetric(metric string) bool {
	switch metric {
	case RankUptime, RankCPU, RankRAM, RankStorage:
		return true
	}
	return false
}

// ValidRankOrder reports whether the leaderboard accepts this sort order.
func ValidRankOrder(order string) bool {
	return order == OrderTop || order == OrderBottom
}

// RankNodes orders the fleet by a single raw metric taken from each node's
// latest sample. Nodes that never reported the metric are skipped. Top sorts
// descending, bottom ascending; ties break on node ID so the ordering is
// stable across calls.
func RankNodes(nodes []*models.Node, metric, order string, limit int) []models.NodeRank {
	ranks := make([]models.NodeRank, 0, len(nodes))
	for _, n := range nodes {
		m := n.Metrics
		if m == nil {
			continue
		}
		var value float64
		switch metric {
		case RankUptime:
			if m.UptimeSeconds == nil {
				continue
			}
			value = float64(*m.UptimeSeconds)
		case RankCPU:
			if m.CPUPercent == nil {
				continue
			}
			value = *m.CPUPercent
		case RankRAM:
			if m.RAMTotalBytes <= 0 {
				continue
			}
			value = m.RAMPercent()
		case RankStorage:
			value = float64(m.StorageBytes)
		default:
			return nil
		}
		ranks = append(ranks, models.NodeRank{NodeID: n.ID, Metric: metric, Value: value})
	}

	sort.Slice(ranks, func(i, j int) bool {
		if ranks[i].Value != ranks[j].Value {
			if order == OrderBottom {
				return ranks[i].Value < ranks[j].Value
			}
			return ranks[i].Value > ranks[j].Value
		}
		return ranks[i].NodeID < ranks[j].NodeID
	})

	if limit > 0 && len(ranks) > limit {
		ranks = ranks[:limit]
	}
	for i := range ranks {
		ranks[i].Rank = i + 1
	}
	return ranks
}

func keys(m map[string]int) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
