package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulse/models"
)

func TestValidAggregation(t *testing.T) {
	assert.True(t, ValidAggregation(AggregationRaw))
	assert.True(t, ValidAggregation(AggregationHourly))
	assert.True(t, ValidAggregation(AggregationDaily))
	assert.False(t, ValidAggregation(""))
	assert.False(t, ValidAggregation("weekly"))
}

func TestAggregatePointsRawPassthrough(t *testing.T) {
	points := []models.MetricPoint{
		{Time: time.Date(2026, 8, 1, 10, 5, 0, 0, time.UTC), CPUPercent: 50},
		{Time: time.Date(2026, 8, 1, 10, 25, 0, 0, time.UTC), CPUPercent: 70},
	}

	out := AggregatePoints(points, AggregationRaw)
	assert.Equal(t, points, out)
}

func TestAggregatePointsHourly(t *testing.T) {
	points := []models.MetricPoint{
		{Time: time.Date(2026, 8, 1, 10, 5, 0, 0, time.UTC), CPUPercent: 50, RAMPercent: 40, StorageBytes: 1000, UptimeSeconds: 100},
		{Time: time.Date(2026, 8, 1, 10, 45, 0, 0, time.UTC), CPUPercent: 70, RAMPercent: 60, StorageBytes: 3000, UptimeSeconds: 300},
		{Time: time.Date(2026, 8, 1, 11, 10, 0, 0, time.UTC), CPUPercent: 30, RAMPercent: 20, StorageBytes: 2000, UptimeSeconds: 500},
	}

	out := AggregatePoints(points, AggregationHourly)
	require.Len(t, out, 2)

	assert.Equal(t, time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC), out[0].Time)
	assert.InDelta(t, 60.0, out[0].CPUPercent, 1e-9)
	assert.InDelta(t, 50.0, out[0].RAMPercent, 1e-9)
	assert.Equal(t, int64(2000), out[0].StorageBytes)
	assert.Equal(t, int64(200), out[0].UptimeSeconds)

	assert.Equal(t, time.Date(2026, 8, 1, 11, 0, 0, 0, time.UTC), out[1].Time)
	assert.InDelta(t, 30.0, out[1].CPUPercent, 1e-9)
}

func TestAggregatePointsDaily(t *testing.T) {
	points := []models.MetricPoint{
		{Time: time.Date(2026, 8, 1, 2, 0, 0, 0, time.UTC), CPUPercent: 20},
		{Time: time.Date(2026, 8, 1, 22, 0, 0, 0, time.UTC), CPUPercent: 40},
		{Time: time.Date(2026, 8, 2, 1, 0, 0, 0, time.UTC), CPUPercent: 80},
	}

	out := AggregatePoints(points, AggregationDaily)
	require.Len(t, out, 2)
	assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), out[0].Time)
	assert.InDelta(t, 30.0, out[0].CPUPercent, 1e-9)
	assert.Equal(t, time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC), out[1].Time)
	assert.InDelta(t, 80.0, out[1].CPUPercent, 1e-9)
}

func TestAggregatePointsSortedOutput(t *testing.T) {
	points := []models.MetricPoint{
		{Time: time.Date(2026, 8, 3, 9, 0, 0, 0, time.UTC), CPUPercent: 10},
		{Time: time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC), CPUPercent: 20},
		{Time: time.Date(2026, 8, 2, 9, 0, 0, 0, time.UTC), CPUPercent: 30},
	}

	out := AggregatePoints(points, AggregationDaily)
	require.Len(t, out, 3)
	assert.True(t, out[0].Time.Before(out[1].Time))
	assert.True(t, out[1].Time.Before(out[2].Time))
}

func TestAggregatePointsEmpty(t *testing.T) {
	assert.Empty(t, AggregatePoints(nil, AggregationHourly))
}
