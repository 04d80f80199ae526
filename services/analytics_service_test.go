package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulse/analytics"
	"pulse/config"
	"pulse/models"
)

func f64(v float64) *float64 { return &v }
func i64(v int64) *int64     { return &v }

func seedNode(c *Collector, n *models.Node) {
	c.mu.Lock()
	c.nodes[n.ID] = n
	c.mu.Unlock()
}

func testAnalytics(t *testing.T) *AnalyticsService {
	t.Helper()
	c := testCollector(t)

	seedNode(c, &models.Node{
		ID: "node-a", Address: "node-a", IsActive: true, Version: "0.8.0",
		LastSeen: time.Now(),
		Metrics: &models.MetricSample{
			CPUPercent:    f64(20),
			RAMUsedBytes:  30,
			RAMTotalBytes: 100,
			UptimeSeconds: i64(800000),
			StorageBytes:  4000,
		},
	})
	seedNode(c, &models.Node{
		ID: "node-b", Address: "node-b", IsActive: true, Version: "0.8.0",
		LastSeen: time.Now(),
		Metrics: &models.MetricSample{
			CPUPercent:    f64(95),
			RAMUsedBytes:  98,
			RAMTotalBytes: 100,
			UptimeSeconds: i64(600),
			StorageBytes:  1000,
		},
	})
	seedNode(c, &models.Node{ID: "node-dark", Address: "node-dark"})

	svc := NewAnalyticsService(&config.Config{}, c, NewDisabledMongoDBService(), nil)
	return svc
}

func TestScoreAllCoversEveryNode(t *testing.T) {
	svc := testAnalytics(t)

	scores, summary := svc.ScoreAll()
	assert.Len(t, scores, 3)
	assert.Equal(t, 3, summary.NodeCount)
}

func TestLeaderboardTopOrdering(t *testing.T) {
	svc := testAnalytics(t)

	scores := svc.Leaderboard(analytics.OrderTop, 0)
	require.Len(t, scores, 3)
	for i := 1; i < len(scores); i++ {
		assert.GreaterOrEqual(t, scores[i-1].Overall, scores[i].Overall)
	}
}

func TestLeaderboardBottomOrdering(t *testing.T) {
	svc := testAnalytics(t)

	top := svc.Leaderboard(analytics.OrderTop, 0)
	bottom := svc.Leaderboard(analytics.OrderBottom, 0)
	require.Len(t, bottom, 3)
	for i := 1; i < len(bottom); i++ {
		assert.LessOrEqual(t, bottom[i-1].Overall, bottom[i].Overall)
	}
	assert.Equal(t, top[0].Overall, bottom[len(bottom)-1].Overall)
}

func TestLeaderboardLimit(t *testing.T) {
	svc := testAnalytics(t)
	assert.Len(t, svc.Leaderboard(analytics.OrderTop, 2), 2)
}

func TestMetricLeaderboardUptime(t *testing.T) {
	svc := testAnalytics(t)

	ranks := svc.MetricLeaderboard(analytics.RankUptime, analytics.OrderTop, 0)
	require.Len(t, ranks, 2)
	assert.Equal(t, "node-a", ranks[0].NodeID)
	assert.Equal(t, 800000.0, ranks[0].Value)
	assert.Equal(t, "node-b", ranks[1].NodeID)
}

func TestMetricLeaderboardBottomStorage(t *testing.T) {
	svc := testAnalytics(t)

	ranks := svc.MetricLeaderboard(analytics.RankStorage, analytics.OrderBottom, 0)
	require.Len(t, ranks, 2)
	assert.Equal(t, "node-b", ranks[0].NodeID)
	assert.Equal(t, 1000.0, ranks[0].Value)
}

func TestNodeHealthUnknownNode(t *testing.T) {
	svc := testAnalytics(t)

	_, err := svc.NodeHealth("no-such-node")
	assert.Error(t, err)
}
