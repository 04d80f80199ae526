package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hourlyPoints generates count points, one per hour starting at start, with
// values from the given generator.
func hourlyPoints(start time.Time, count int, value func(i int) float64) []SeriesPoint {
	points := make([]SeriesPoint, count)
	for i := range points {
		points[i] = SeriesPoint{
			Timestamp: start.Add(time.Duration(i) * time.Hour),
			Value:     value(i),
		}
	}
	return points
}

func TestBuildBaselineBuckets(t *testing.T) {
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC) // a Monday
	points := hourlyPoints(start, 48, func(i int) float64 { return float64(i % 24) })

	b := BuildBaseline("n1", "cpu_percent", "48h", points)

	assert.Equal(t, "n1", b.NodeID)
	assert.Equal(t, 48, b.Count)
	// Each hour bucket saw the same value twice.
	for h := 0; h < 24; h++ {
		assert.Equal(t, 2, b.HourlyPattern[h].Count)
		assert.InDelta(t, float64(h), b.HourlyPattern[h].Mean, 1e-9)
	}
	// Monday and Tuesday each carry 24 points.
	assert.Equal(t, 24, b.DayOfWeek[int(time.Monday)].Count)
	assert.Equal(t, 24, b.DayOfWeek[int(time.Tuesday)].Count)
	assert.Equal(t, 0, b.DayOfWeek[int(time.Friday)].Count)
}

func TestBuildBaselineEmpty(t *testing.T) {
	b := BuildBaseline("n1", "cpu_percent", "24h", nil)
	assert.Equal(t, 0, b.Count)
	assert.Equal(t, 0.0, b.Mean)
}

func TestDetectDeviationInsufficientWindow(t *testing.T) {
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	points := hourlyPoints(start, 9, func(i int) float64 { return 50 })

	b := BuildBaseline("n1", "cpu_percent", "24h", points)
	dev := DetectDeviation(b, 500, start.Add(9*time.Hour))
	assert.Nil(t, dev, "fewer than 10 points must never produce a deviation")
}

func TestDetectDeviationWithinBand(t *testing.T) {
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	points := hourlyPoints(start, 48, func(i int) float64 { return 50 + float64(i%5) })

	b := BuildBaseline("n1", "cpu_percent", "48h", points)
	dev := DetectDeviation(b, b.HourlyPattern[3].Mean, start.Add(51*time.Hour))
	assert.Nil(t, dev)
}

func TestDetectDeviationFlagsSpike(t *testing.T) {
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	points := hourlyPoints(start, 48, func(i int) float64 { return 50 + float64(i%5) })

	b := BuildBaseline("n1", "cpu_percent", "48h", points)
	ts := start.Add(51 * time.Hour) // hour bucket 3
	dev := DetectDeviation(b, 95, ts)

	require.NotNil(t, dev)
	assert.Equal(t, "n1", dev.NodeID)
	assert.Equal(t, 95.0, dev.CurrentValue)
	assert.InDelta(t, b.HourlyPattern[3].Mean, dev.ExpectedValue, 1e-9)
	assert.Greater(t, dev.ZScore, 2.0)
	assert.Equal(t, "critical", dev.Severity)
	assert.Equal(t, ts, dev.Timestamp)
}

func TestDetectDeviationSeverityBands(t *testing.T) {
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	// Values alternate 40/60: mean 50, population stddev 10.
	points := hourlyPoints(start, 24, func(i int) float64 {
		if i%2 == 0 {
			return 40
		}
		return 60
	})

	b := BuildBaseline("n1", "ram_percent", "24h", points)
	require.InDelta(t, 10.0, b.StdDev, 1e-9)

	// Hour 0 bucket mean is 40; z = (65-40)/10 = 2.5 -> warning.
	warn := DetectDeviation(b, 65, start.Add(24*time.Hour))
	require.NotNil(t, warn)
	assert.Equal(t, "warning", warn.Severity)

	// z = (75-40)/10 = 3.5 -> critical.
	crit := DetectDeviation(b, 75, start.Add(24*time.Hour))
	require.NotNil(t, crit)
	assert.Equal(t, "critical", crit.Severity)
}

func TestDetectDeviationZeroVariance(t *testing.T) {
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	points := hourlyPoints(start, 24, func(i int) float64 { return 50 })

	b := BuildBaseline("n1", "cpu_percent", "24h", points)
	// Zero spread: z-score is defined as 0, so nothing is flagged.
	assert.Nil(t, DetectDeviation(b, 99, start.Add(25*time.Hour)))
}
