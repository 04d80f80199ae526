package analytics

import (
	"math"
	"time"

	"pulse/models"
)

// SeriesPoint is one timestamped observation of a metric.
type SeriesPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// Deviation detection needs a minimally populated profile; below this the
// hour/day buckets are too sparse to judge anything.
const minPatternSamples = 10

const (
	deviationThreshold = 2.0
	criticalThreshold  = 3.0
)

// BuildBaseline computes a metric's statistical profile from its sample
// window: overall summary plus hour-of-day and day-of-week bucket means.
// The profile is rebuilt from scratch on every call.
func BuildBaseline(nodeID, metric, period string, points []SeriesPoint) models.Baseline {
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Value
	}
	summary := CalculateSummary(values)

	b := models.Baseline{
		NodeID: nodeID,
		Metric: metric,
		Period: period,
		Mean:   summary.Mean,
		Median: summary.Median,
		StdDev: summary.StdDev,
		Min:    summary.Min,
		Max:    summary.Max,
		Count:  summary.Count,
	}

	for _, p := range points {
		h := p.Timestamp.Hour()
		b.HourlyPattern[h] = addToBucket(b.HourlyPattern[h], p.Value)
		d := int(p.Timestamp.Weekday())
		b.DayOfWeek[d] = addToBucket(b.DayOfWeek[d], p.Value)
	}
	return b
}

// addToBucket folds a value into a bucket's running mean.
func addToBucket(bucket models.PatternBucket, value float64) models.PatternBucket {
	bucket.Count++
	bucket.Mean += (value - bucket.Mean) / float64(bucket.Count)
	return bucket
}

// DetectDeviation checks a current reading against the profile bucket
// matching its own hour, falling back to the day-of-week bucket and then
// the overall mean when the hour bucket is empty. Returns nil when the
// window is too sparse or the reading is within two standard deviations.
func DetectDeviation(b models.Baseline, value float64, ts time.Time) *models.PatternDeviation {
	if b.Count < minPatternSamples {
		return nil
	}

	expected := b.Mean
	if hb := b.HourlyPattern[ts.Hour()]; hb.Count > 0 {
		expected = hb.Mean
	} else if db := b.DayOfWeek[int(ts.Weekday())]; db.Count > 0 {
		expected = db.Mean
	}

	z := ZScore(value, expected, b.StdDev)
	if math.Abs(z) <= deviationThreshold {
		return nil
	}

	severity := "warning"
	if math.Abs(z) > criticalThreshold {
		severity = "critical"
	}

	return &models.PatternDeviation{
		NodeID:        b.NodeID,
		Metric:        b.Metric,
		CurrentValue:  value,
		ExpectedValue: expected,
		ZScore:        z,
		Severity:      severity,
		Timestamp:     ts,
	}
}
