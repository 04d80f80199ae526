package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulse/models"
)

func dailySnapshots(start time.Time, days int, nodesPerDay int, storagePerDay float64) []models.DailySnapshot {
	snaps := make([]models.DailySnapshot, days)
	for i := range snaps {
		snaps[i] = models.DailySnapshot{
			Date:              start.AddDate(0, 0, i),
			TotalNodes:        100 + i*nodesPerDay,
			ActiveNodes:       90 + i*nodesPerDay,
			TotalStorageBytes: 1e12 + float64(i)*storagePerDay,
		}
	}
	return snaps
}

func TestBuildGrowthReportInsufficientData(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := BuildGrowthReport("30d", nil, start)
	assert.ErrorIs(t, err, ErrInsufficientData)

	_, err = BuildGrowthReport("30d", dailySnapshots(start, 2, 1, 1e9), start)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestBuildGrowthReportScenarios(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	now := start.AddDate(0, 0, 14)
	snaps := dailySnapshots(start, 14, 2, 1e10)

	report, err := BuildGrowthReport("14d", snaps, now)
	require.NoError(t, err)

	require.Len(t, report.Scenarios, 3)
	assert.Equal(t, "optimistic", report.Scenarios[0].Name)
	assert.Equal(t, "realistic", report.Scenarios[1].Name)
	assert.Equal(t, "pessimistic", report.Scenarios[2].Name)

	realistic := report.Scenarios[1]
	assert.InDelta(t, 2.0, realistic.NodesPerDay, 1e-9)
	assert.InDelta(t, 1e10, realistic.StoragePerDay, 1)

	require.Len(t, realistic.Projections, 3)
	assert.Equal(t, 30, realistic.Projections[0].Days)
	assert.Equal(t, now.AddDate(0, 0, 90), realistic.Projections[2].Date)

	// Day-30 from the last snapshot (126 nodes) at 2 nodes/day.
	assert.InDelta(t, 126+60, realistic.Projections[0].Nodes, 1e-6)

	optimistic := report.Scenarios[0]
	assert.InDelta(t, 3.0, optimistic.NodesPerDay, 1e-9)
	assert.Greater(t, optimistic.Projections[2].Storage, realistic.Projections[2].Storage)
}

func TestBuildGrowthReportMilestones(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	now := start.AddDate(0, 0, 14)
	snaps := dailySnapshots(start, 14, 2, 1e10)

	report, err := BuildGrowthReport("14d", snaps, now)
	require.NoError(t, err)

	for _, sc := range report.Scenarios {
		require.Len(t, sc.Milestones, 2)
		for _, m := range sc.Milestones {
			require.NotNil(t, m.EstimatedDate, "growing fleet must date its milestones (%s)", sc.Name)
			assert.True(t, m.EstimatedDate.After(now))
			assert.Greater(t, m.Threshold, 0.0)
		}
	}
}

func TestBuildGrowthReportStalledFleetNilMilestones(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	now := start.AddDate(0, 0, 7)
	// Zero growth: milestones are unreachable, never a crash.
	snaps := dailySnapshots(start, 7, 0, 0)

	report, err := BuildGrowthReport("7d", snaps, now)
	require.NoError(t, err)

	for _, sc := range report.Scenarios {
		for _, m := range sc.Milestones {
			assert.Nil(t, m.EstimatedDate)
		}
	}
}

func TestCompareScenarios(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	now := start.AddDate(0, 0, 14)
	snaps := dailySnapshots(start, 14, 2, 1e10)

	report, err := BuildGrowthReport("14d", snaps, now)
	require.NoError(t, err)

	cmp := CompareScenarios(report)
	assert.Equal(t, []string{"optimistic", "realistic", "pessimistic"}, cmp.Ranked)
	// Spread = (1.5x - 0.5x) * rate * 90 days.
	assert.InDelta(t, 1e10*90, cmp.SpreadStorage, 1e6)
	assert.InDelta(t, 2.0*90, cmp.SpreadNodes, 1e-6)
}

func TestCompareScenariosEmpty(t *testing.T) {
	cmp := CompareScenarios(models.GrowthReport{})
	assert.Empty(t, cmp.Ranked)
	assert.Equal(t, 0.0, cmp.SpreadStorage)
}

func TestNextRound(t *testing.T) {
	assert.Equal(t, 1.0, nextRound(0))
	assert.Equal(t, 2.0, nextRound(1.5))
	assert.Equal(t, 5.0, nextRound(3))
	assert.Equal(t, 10.0, nextRound(7))
	assert.Equal(t, 2e12, nextRound(1.2e12))
}
