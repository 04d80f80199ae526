package models

import "time"

// PatternBucket holds the running mean for one hour-of-day or day-of-week
// bucket of a metric's baseline profile.
type PatternBucket struct {
	Mean  float64 `json:"mean"`
	Count int     `json:"count"`
}

// Baseline is the statistical profile of one metric for one node, rebuilt
// from the raw sample window on every query.
type Baseline struct {
	NodeID        string            `json:"node_id"`
	Metric        string            `json:"metric"`
	Period        string            `json:"period"`
	Mean          float64           `json:"mean"`
	Median        float64           `json:"median"`
	StdDev        float64           `json:"std_dev"`
	Min           float64           `json:"min"`
	Max           float64           `json:"max"`
	Count         int               `json:"count"`
	HourlyPattern [24]PatternBucket `json:"hourly_pattern"`
	DayOfWeek     [7]PatternBucket  `json:"day_of_week_pattern"`
}

// PatternDeviation is emitted when a current reading lands outside the
// profile for its own hour/day bucket.
type PatternDeviation struct {
	NodeID        string    `json:"node_id"`
	Metric        string    `json:"metric"`
	CurrentValue  float64   `json:"current_value"`
	ExpectedValue float64   `json:"expected_value"`
	ZScore        float64   `json:"z_score"`
	Severity      string    `json:"severity"` // "warning", "critical"
	Timestamp     time.Time `json:"timestamp"`
}
