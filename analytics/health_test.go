package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulse/models"
)

func f64(v float64) *float64 { return &v }
func i64(v int64) *int64     { return &v }

func activeNode(id string, cpu float64, ramUsed, ramTotal, uptime int64, peers int) *models.Node {
	return &models.Node{
		ID:             id,
		IsActive:       true,
		Version:        "0.8.0",
		PeerCount:      peers,
		PeerCountKnown: true,
		Metrics: &models.MetricSample{
			Timestamp:     time.Now(),
			CPUPercent:    f64(cpu),
			RAMUsedBytes:  ramUsed,
			RAMTotalBytes: ramTotal,
			UptimeSeconds: i64(uptime),
			StorageBytes:  1 << 40,
		},
	}
}

func TestWeightsSumToOne(t *testing.T) {
	sum := WeightUptime + WeightCPU + WeightRAM + WeightConnectivity + WeightVersion
	assert.Equal(t, 1.0, sum)
}

func TestScoreNodeExcellent(t *testing.T) {
	node := activeNode("n1", 5, 4<<30, 16<<30, 30*24*3600, 50)
	baseline := models.NetworkBaseline{LatestVersion: "0.8.0"}

	score := ScoreNode(node, baseline)
	assert.GreaterOrEqual(t, score.Overall, 90)
	assert.LessOrEqual(t, score.Overall, 100)
	assert.Equal(t, "A", score.Grade)
	assert.Equal(t, 100.0, score.Components.Uptime)
	assert.Equal(t, 100.0, score.Components.Version)
}

func TestScoreNodeInactiveDominates(t *testing.T) {
	// Excellent stored metrics must not rescue an offline node.
	node := activeNode("n1", 5, 2<<30, 32<<30, 30*24*3600, 50)
	node.IsActive = false

	score := ScoreNode(node, models.NetworkBaseline{LatestVersion: "0.8.0"})
	assert.Equal(t, 0, score.Overall)
	assert.Equal(t, "F", score.Grade)
	assert.Equal(t, models.HealthComponents{}, score.Components)
}

func TestScoreNodeBounded(t *testing.T) {
	tests := []struct {
		name string
		node *models.Node
	}{
		{"pegged", activeNode("n1", 100, 1<<40, 1<<40, 10, 0)},
		{"no metrics", &models.Node{ID: "n2", IsActive: true}},
		{"mid", activeNode("n3", 55, 8<<30, 16<<30, 90000, 12)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := ScoreNode(tt.node, models.NetworkBaseline{})
			assert.GreaterOrEqual(t, score.Overall, 0)
			assert.LessOrEqual(t, score.Overall, 100)
		})
	}
}

func TestScoreNodeNeutralDefaults(t *testing.T) {
	node := &models.Node{ID: "n1", IsActive: true}

	score := ScoreNode(node, models.NetworkBaseline{})
	// No metrics, unknown peers, unknown version: everything neutral.
	assert.Equal(t, neutralScore, score.Components.Uptime)
	assert.Equal(t, neutralScore, score.Components.CPU)
	assert.Equal(t, neutralScore, score.Components.RAM)
	assert.Equal(t, neutralScore, score.Components.Connectivity)
	assert.Equal(t, neutralScore, score.Components.Version)
	assert.Equal(t, 50, score.Overall)
}

func TestScoreNodeOutlierTags(t *testing.T) {
	node := activeNode("n1", 90, 8<<30, 16<<30, 24*3600, 20)
	baseline := models.NetworkBaseline{
		LatestVersion: "0.8.0",
		AvgCPU:        30, CPUStdDev: 10,
		AvgRAM: 50, RAMStdDev: 20,
		AvgUptime: 100000, UptimeStdDev: 50000,
	}

	score := ScoreNode(node, baseline)
	assert.Equal(t, CategoryVeryHigh, score.Outliers.CPU) // z = 6
	assert.Equal(t, CategoryNormal, score.Outliers.RAM)
}

func TestGradeBands(t *testing.T) {
	assert.Equal(t, "A", GradeFor(90))
	assert.Equal(t, "B", GradeFor(89))
	assert.Equal(t, "B", GradeFor(80))
	assert.Equal(t, "C", GradeFor(79))
	assert.Equal(t, "D", GradeFor(60))
	assert.Equal(t, "F", GradeFor(59))
	assert.Equal(t, "F", GradeFor(0))
}

func TestNetworkHealthEmpty(t *testing.T) {
	summary := NetworkHealth(nil)
	assert.Equal(t, 0.0, summary.AvgScore)
	assert.Equal(t, "F", summary.Grade)
	assert.Equal(t, 0.0, summary.HealthyPercentage)
}

func TestNetworkHealthAggregation(t *testing.T) {
	scores := []models.HealthScore{
		{Overall: 95, Grade: "A"},
		{Overall: 85, Grade: "B"},
		{Overall: 75, Grade: "C"},
		{Overall: 40, Grade: "F"},
	}

	summary := NetworkHealth(scores)
	require.Equal(t, 4, summary.NodeCount)
	assert.InDelta(t, 73.75, summary.AvgScore, 1e-9)
	assert.Equal(t, "C", summary.Grade)
	assert.Equal(t, 75.0, summary.HealthyPercentage)
	assert.Equal(t, 1, summary.Distribution["A"])
	assert.Equal(t, 1, summary.Distribution["F"])
}

func TestScoreUptimeCurve(t *testing.T) {
	assert.Equal(t, 100.0, scoreUptime(7*24*3600))
	assert.Equal(t, 100.0, scoreUptime(30*24*3600))
	assert.InDelta(t, 75.0, scoreUptime(24*3600), 0.01)
	assert.InDelta(t, 50.0, scoreUptime(3600), 0.01)
	assert.Equal(t, 0.0, scoreUptime(0))
	assert.Less(t, scoreUptime(1800), 50.0)
}

func TestScoreConnectivityUnknown(t *testing.T) {
	assert.Equal(t, neutralScore, scoreConnectivity(0, false))
	assert.Equal(t, 100.0, scoreConnectivity(25, true))
	assert.Equal(t, 0.0, scoreConnectivity(0, true))
}

func TestScoreVersionDistance(t *testing.T) {
	assert.Equal(t, 100.0, scoreVersion("0.8.0", "0.8.0"))
	assert.Equal(t, 85.0, scoreVersion("0.8.0", "0.8.2"))
	assert.Equal(t, 70.0, scoreVersion("0.7.9", "0.8.0"))
	assert.Equal(t, neutralScore, scoreVersion("garbage", "0.8.0"))
	assert.Equal(t, neutralScore, scoreVersion("0.8.0", ""))
}
