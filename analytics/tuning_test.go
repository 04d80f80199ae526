package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulse/models"
)

func healthyInput() models.TuningInput {
	return models.TuningInput{
		CPUPercent:    35,
		RAMPercent:    55,
		UptimeSeconds: 14 * 24 * 3600,
		Version:       "0.8.0",
		LatestVersion: "0.8.0",
		PeerCount:     30,
		StorageBytes:  5 << 40,
	}
}

func ruleNames(recs []models.Recommendation) []string {
	names := make([]string, len(recs))
	for i, r := range recs {
		names[i] = r.Rule
	}
	return names
}

func TestRecommendHealthyNodeIsQuiet(t *testing.T) {
	recs := Recommend(healthyInput())
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
}

func TestRecommendSingleRules(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*models.TuningInput)
		rule     string
		priority string
	}{
		{"cpu saturated", func(in *models.TuningInput) { in.CPUPercent = 97 }, "cpu_saturated", PriorityCritical},
		{"cpu high", func(in *models.TuningInput) { in.CPUPercent = 85 }, "cpu_high", PriorityHigh},
		{"ram saturated", func(in *models.TuningInput) { in.RAMPercent = 96 }, "ram_saturated", PriorityCritical},
		{"ram high", func(in *models.TuningInput) { in.RAMPercent = 90 }, "ram_high", PriorityHigh},
		{"recent restart", func(in *models.TuningInput) { in.UptimeSeconds = 900 }, "recent_restart", PriorityMedium},
		{"major version behind", func(in *models.TuningInput) { in.Version = "0.7.3" }, "version_behind", PriorityHigh},
		{"patch behind", func(in *models.TuningInput) { in.Version = "0.7.9"; in.LatestVersion = "0.7.12" }, "patch_available", PriorityLow},
		{"peers very low", func(in *models.TuningInput) { in.PeerCount = 3 }, "peers_very_low", PriorityHigh},
		{"peers low", func(in *models.TuningInput) { in.PeerCount = 7 }, "peers_low", PriorityMedium},
		{"no storage", func(in *models.TuningInput) { in.StorageBytes = 0 }, "no_storage", PriorityMedium},
		{"underutilized", func(in *models.TuningInput) { in.CPUPercent = 5; in.RAMPercent = 20 }, "underutilized", PriorityLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := healthyInput()
			tt.mutate(&in)
			recs := Recommend(in)
			require.Len(t, recs, 1)
			assert.Equal(t, tt.rule, recs[0].Rule)
			assert.Equal(t, tt.priority, recs[0].Priority)
			assert.NotEmpty(t, recs[0].Message)
		})
	}
}

func TestRecommendBandsAreExclusive(t *testing.T) {
	in := healthyInput()
	in.CPUPercent = 95
	recs := Recommend(in)
	require.Len(t, recs, 1)
	assert.Equal(t, "cpu_saturated", recs[0].Rule, "95%% belongs to the saturated band, not the high band")
}

func TestRecommendMultipleRulesFireInTableOrder(t *testing.T) {
	in := models.TuningInput{
		CPUPercent:    96,
		RAMPercent:    88,
		UptimeSeconds: 600,
		Version:       "0.7.3",
		LatestVersion: "0.8.0",
		PeerCount:     2,
		StorageBytes:  0,
	}

	recs := Recommend(in)
	assert.Equal(t,
		[]string{"cpu_saturated", "ram_high", "recent_restart", "version_behind", "peers_very_low", "no_storage"},
		ruleNames(recs))
}

func TestRecommendUnknownPeerCountSkipsPeerRules(t *testing.T) {
	in := healthyInput()
	in.PeerCount = -1

	recs := Recommend(in)
	assert.Empty(t, recs)
}

func TestRecommendUnknownLatestVersionSkipsVersionRules(t *testing.T) {
	in := healthyInput()
	in.Version = "0.7.3"
	in.LatestVersion = ""

	recs := Recommend(in)
	assert.Empty(t, recs)
}

func TestRecommendZeroUptimeIsNotARestart(t *testing.T) {
	in := healthyInput()
	in.UptimeSeconds = 0

	assert.Empty(t, Recommend(in))
}
