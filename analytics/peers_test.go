package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulse/models"
)

func makePeers(now time.Time, active, stale int, version string) []models.PeerInfo {
	peers := make([]models.PeerInfo, 0, active+stale)
	for i := 0; i < active; i++ {
		peers = append(peers, models.PeerInfo{
			Address:  "10.0.0.1:6000",
			Version:  version,
			IsActive: true,
			LastSeen: now.Add(-time.Minute),
		})
	}
	for i := 0; i < stale; i++ {
		peers = append(peers, models.PeerInfo{
			Address:  "10.0.0.2:6000",
			Version:  version,
			IsActive: false,
			LastSeen: now.Add(-time.Hour),
		})
	}
	return peers
}

func TestAnalyzePeersCounts(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	peers := makePeers(now, 25, 2, "0.8.0")
	peers[0].Version = "0.7.3"

	a := AnalyzePeers("n1", peers, now)
	assert.Equal(t, 27, a.TotalPeers)
	assert.Equal(t, 25, a.ActivePeers)
	assert.Equal(t, 2, a.StalePeers)
	assert.Equal(t, 2, a.VersionDiversity)
}

func TestAnalyzePeersStaleThreshold(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	peers := []models.PeerInfo{
		{Address: "a", IsActive: true, LastSeen: now.Add(-9 * time.Minute)},
		{Address: "b", IsActive: true, LastSeen: now.Add(-11 * time.Minute)},
	}

	a := AnalyzePeers("n1", peers, now)
	assert.Equal(t, 1, a.StalePeers, "staleness cuts over at 10 minutes")
}

func TestAnalyzePeersStatusRules(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		peers  []models.PeerInfo
		status string
	}{
		{"well connected", makePeers(now, 25, 0, "0.8.0"), PeerStatusGood},
		{"few active", makePeers(now, 15, 0, "0.8.0"), PeerStatusWarning},
		{"critically few", makePeers(now, 5, 0, "0.8.0"), PeerStatusCritical},
		{"no peers at all", nil, PeerStatusCritical},
		{"high stale fraction", makePeers(now, 24, 9, "0.8.0"), PeerStatusCritical}, // 9/33 > 25%
		{"mild stale fraction", makePeers(now, 27, 4, "0.8.0"), PeerStatusWarning},  // 4/31 > 10%
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := AnalyzePeers("n1", tt.peers, now)
			assert.Equal(t, tt.status, a.Status)
		})
	}
}

func TestAnalyzePeersRecommendations(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

	healthy := AnalyzePeers("n1", makePeers(now, 30, 0, "0.8.0"), now)
	// A single-version peer set is still worth a note.
	require.Len(t, healthy.Recommendations, 1)

	starved := AnalyzePeers("n2", makePeers(now, 3, 2, "0.8.0"), now)
	assert.NotEmpty(t, starved.Recommendations)
	assert.Less(t, starved.HealthScore, healthy.HealthScore)
}

func TestAnalyzeNetworkPeersEmpty(t *testing.T) {
	report := AnalyzeNetworkPeers(nil)
	assert.Equal(t, 0, report.NodesAnalyzed)
	assert.Empty(t, report.Candidates)
}

func TestAnalyzeNetworkPeersCandidates(t *testing.T) {
	counts := map[string]int{
		"n1": 40,
		"n2": 40,
		"n3": 40,
		"n4": 10, // below half of avg
		"n5": 2,  // far below
	}

	report := AnalyzeNetworkPeers(counts)
	require.Equal(t, 5, report.NodesAnalyzed)
	assert.InDelta(t, 26.4, report.AvgPeerCount, 1e-9)

	require.Len(t, report.Candidates, 2)
	// Worst first: n5 sits at under 10% of the average.
	assert.Equal(t, "n5", report.Candidates[0].NodeID)
	assert.Equal(t, "critical", report.Candidates[0].Severity)
	assert.Equal(t, "n4", report.Candidates[1].NodeID)
	assert.InDelta(t, 16.4, report.Candidates[1].Deficit, 1e-9)
}

func TestAnalyzeNetworkPeersDeterministicOrder(t *testing.T) {
	counts := map[string]int{"a": 1, "b": 1, "c": 1, "d": 100, "e": 100}

	first := AnalyzeNetworkPeers(counts)
	for i := 0; i < 5; i++ {
		again := AnalyzeNetworkPeers(counts)
		assert.Equal(t, first.Candidates, again.Candidates)
	}
}
