package analytics

import (
	"fmt"
	"math"

	"pulse/models"
	"pulse/utils"
)

// Component weights. Uptime dominates because liveness is the primary SLA
// signal. They must sum to exactly 1.0.
const (
	WeightUptime       = 0.35
	WeightCPU          = 0.20
	WeightRAM          = 0.20
	WeightConnectivity = 0.15
	WeightVersion      = 0.10
)

// neutralScore is used when a signal is unknown rather than bad.
const neutralScore = 50.0

// ScoreNode computes the composite health score for one node against the
// shared network baseline. An inactive node scores 0 across the board no
// matter what its last stored metrics say.
func ScoreNode(node *models.Node, baseline models.NetworkBaseline) models.HealthScore {
	score := models.HealthScore{
		NodeID: node.ID,
		Outliers: models.MetricOutliers{
			CPU:    CategoryNormal,
			RAM:    CategoryNormal,
			Uptime: CategoryNormal,
		},
	}

	if !node.IsActive {
		score.Overall = 0
		score.Grade = "F"
		score.Details = []string{"node is offline"}
		return score
	}

	c := models.HealthComponents{
		Uptime:       neutralScore,
		CPU:          neutralScore,
		RAM:          neutralScore,
		Connectivity: scoreConnectivity(node.PeerCount, node.PeerCountKnown),
		Version:      scoreVersion(node.Version, baseline.LatestVersion),
	}

	m := node.Metrics
	if m == nil {
		score.Details = append(score.Details, "no metrics reported")
	} else {
		if m.UptimeSeconds != nil {
			c.Uptime = scoreUptime(float64(*m.UptimeSeconds))
			score.Outliers.Uptime = CategorizeValue(float64(*m.UptimeSeconds), baseline.AvgUptime, baseline.UptimeStdDev)
		} else {
			score.Details = append(score.Details, "uptime not reported")
		}
		if m.CPUPercent != nil {
			c.CPU = scoreCPU(*m.CPUPercent)
			score.Outliers.CPU = CategorizeValue(*m.CPUPercent, baseline.AvgCPU, baseline.CPUStdDev)
		} else {
			score.Details = append(score.Details, "cpu not reported")
		}
		if m.RAMTotalBytes > 0 {
			ramPct := m.RAMPercent()
			c.RAM = scoreRAM(ramPct)
			score.Outliers.RAM = CategorizeValue(ramPct, baseline.AvgRAM, baseline.RAMStdDev)
		} else {
			score.Details = append(score.Details, "ram not reported")
		}
	}

	score.Components = c
	weighted := c.Uptime*WeightUptime +
		c.CPU*WeightCPU +
		c.RAM*WeightRAM +
		c.Connectivity*WeightConnectivity +
		c.Version*WeightVersion
	score.Overall = clampScore(int(math.Round(weighted)))
	score.Grade = GradeFor(score.Overall)

	score.Details = append(score.Details, fmt.Sprintf("grade %s (%d/100)", score.Grade, score.Overall))
	return score
}

// GradeFor maps an overall score to its letter grade.
func GradeFor(overall int) string {
	switch {
	case overall >= 90:
		return "A"
	case overall >= 80:
		return "B"
	case overall >= 70:
		return "C"
	case overall >= 60:
		return "D"
	default:
		return "F"
	}
}

// NetworkHealth aggregates per-node scores into a fleet summary. An empty
// input yields the degenerate zero summary with grade F.
func NetworkHealth(scores []models.HealthScore) models.NetworkHealthSummary {
	summary := models.NetworkHealthSummary{
		Grade:        "F",
		Distribution: map[string]int{"A": 0, "B": 0, "C": 0, "D": 0, "F": 0},
	}
	if len(scores) == 0 {
		return summary
	}

	total := 0
	healthy := 0
	for _, s := range scores {
		total += s.Overall
		summary.Distribution[s.Grade]++
		switch s.Grade {
		case "A", "B", "C":
			healthy++
		}
	}

	summary.NodeCount = len(scores)
	summary.AvgScore = float64(total) / float64(len(scores))
	summary.Grade = GradeFor(int(math.Round(summary.AvgScore)))
	summary.HealthyPercentage = float64(healthy) / float64(len(scores)) * 100
	return summary
}

// scoreUptime: a week of continuous uptime is excellent; under an hour is
// scaled straight down to 0.
func scoreUptime(seconds float64) float64 {
	const (
		hour = 3600.0
		day  = 24 * hour
		week = 7 * day
	)
	switch {
	case seconds >= week:
		return 100
	case seconds >= day:
		days := seconds / day
		return 75 + (days-1)/6*24 // 75..99
	case seconds >= hour:
		hours := seconds / hour
		return 50 + (hours-1)/23*24 // 50..74
	case seconds > 0:
		return seconds / hour * 50
	default:
		return 0
	}
}

// scoreCPU: lower is better. <=20% is excellent, >80% degrades toward 0.
func scoreCPU(pct float64) float64 {
	switch {
	case pct <= 20:
		return 100
	case pct <= 50:
		return 100 - (pct-20)/30*25 // 75..100
	case pct <= 80:
		return 75 - (pct-50)/30*25 // 50..75
	default:
		return clampComponent(50 - (pct-80)/20*50)
	}
}

// scoreRAM: lower is better, with more headroom than CPU.
func scoreRAM(pct float64) float64 {
	switch {
	case pct <= 40:
		return 100
	case pct <= 70:
		return 100 - (pct-40)/30*25 // 75..100
	case pct <= 90:
		return 75 - (pct-70)/20*25 // 50..75
	default:
		return clampComponent(50 - (pct-90)/10*50)
	}
}

// scoreConnectivity: 20 peers is a well-connected node. Unknown peer count
// is a missing signal, not a bad one.
func scoreConnectivity(peerCount int, known bool) float64 {
	if !known {
		return neutralScore
	}
	c := float64(peerCount)
	switch {
	case c >= 20:
		return 100
	case c >= 10:
		return 75 + (c-10)/10*25
	case c >= 5:
		return 50 + (c-5)/5*25
	default:
		return c / 5 * 50
	}
}

// scoreVersion degrades with distance behind the network's latest version.
func scoreVersion(nodeVersion, latestVersion string) float64 {
	if latestVersion == "" {
		return neutralScore
	}
	dist := utils.VersionDistance(nodeVersion, latestVersion)
	switch {
	case dist < 0:
		return neutralScore
	case dist == 0:
		return 100
	case dist < 10: // patch releases behind
		return 85
	case dist < 20: // one minor behind
		return 70
	case dist < 100:
		return 55
	default:
		return 30
	}
}

func clampComponent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
