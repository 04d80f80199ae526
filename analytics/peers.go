package analytics

import (
	"fmt"
	"sort"
	"time"

	"pulse/models"
)

// StalePeerThreshold is the freshness window after which a peer counts as
// stale.
const StalePeerThreshold = 10 * time.Minute

const (
	PeerStatusGood     = "good"
	PeerStatusWarning  = "warning"
	PeerStatusCritical = "critical"
)

// AnalyzePeers turns a node's peer list into a connectivity assessment.
// The reference time is injected so results are reproducible.
func AnalyzePeers(nodeID string, peers []models.PeerInfo, now time.Time) models.PeerAnalysis {
	analysis := models.PeerAnalysis{
		NodeID:          nodeID,
		TotalPeers:      len(peers),
		Recommendations: []string{},
	}

	versions := map[string]struct{}{}
	for _, p := range peers {
		if p.IsActive {
			analysis.ActivePeers++
		}
		if now.Sub(p.LastSeen) > StalePeerThreshold {
			analysis.StalePeers++
		}
		if p.Version != "" {
			versions[p.Version] = struct{}{}
		}
	}
	analysis.VersionDiversity = len(versions)

	staleFraction := 0.0
	if len(peers) > 0 {
		staleFraction = float64(analysis.StalePeers) / float64(len(peers))
	}

	switch {
	case analysis.ActivePeers < 10 || staleFraction > 0.25:
		analysis.Status = PeerStatusCritical
	case analysis.ActivePeers < 20 || staleFraction > 0.10:
		analysis.Status = PeerStatusWarning
	default:
		analysis.Status = PeerStatusGood
	}

	analysis.HealthScore = clampComponent(
		scoreConnectivity(analysis.ActivePeers, true) - staleFraction*30)

	if analysis.ActivePeers < 10 {
		analysis.Recommendations = append(analysis.Recommendations,
			"active peer count is low; check network reachability and firewall rules")
	}
	if staleFraction > 0.10 {
		analysis.Recommendations = append(analysis.Recommendations,
			fmt.Sprintf("%d of %d peers are stale; gossip may not be propagating", analysis.StalePeers, analysis.TotalPeers))
	}
	if analysis.VersionDiversity == 1 && analysis.TotalPeers >= 5 {
		analysis.Recommendations = append(analysis.Recommendations,
			"all peers run a single version; a bad release could partition this node")
	}

	return analysis
}

// AnalyzeNetworkPeers aggregates per-node peer counts and flags nodes whose
// count sits below half the network average as optimization candidates,
// worst first.
func AnalyzeNetworkPeers(peerCounts map[string]int) models.NetworkPeerReport {
	report := models.NetworkPeerReport{
		NodesAnalyzed: len(peerCounts),
		Candidates:    []models.PeerOptimizationCandidate{},
	}
	if len(peerCounts) == 0 {
		return report
	}

	total := 0
	for _, c := range peerCounts {
		total += c
	}
	report.AvgPeerCount = float64(total) / float64(len(peerCounts))

	for nodeID, count := range peerCounts {
		if float64(count) >= report.AvgPeerCount/2 {
			continue
		}
		report.Candidates = append(report.Candidates, models.PeerOptimizationCandidate{
			NodeID:    nodeID,
			PeerCount: count,
			Deficit:   report.AvgPeerCount - float64(count),
			Severity:  peerSeverity(float64(count), report.AvgPeerCount),
		})
	}

	sort.SliceStable(report.Candidates, func(i, j int) bool {
		a, b := report.Candidates[i], report.Candidates[j]
		if ra, rb := severityRank(a.Severity), severityRank(b.Severity); ra != rb {
			return ra < rb
		}
		if a.Deficit != b.Deficit {
			return a.Deficit > b.Deficit
		}
		return a.NodeID < b.NodeID
	})

	return report
}

// peerSeverity grades how far below the network average a node sits. All
// candidates are already below half the average.
func peerSeverity(count, avg float64) string {
	if avg == 0 {
		return "low"
	}
	ratio := count / avg
	switch {
	case ratio <= 0.10:
		return "critical"
	case ratio <= 0.25:
		return "high"
	case ratio <= 0.40:
		return "medium"
	default:
		return "low"
	}
}

func severityRank(s string) int {
	switch s {
	case "critical":
		return 0
	case "high":
		return 1
	case "medium":
		return 2
	default:
		return 3
	}
}
