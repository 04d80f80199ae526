package models

// MetricTrend is a fitted trend line for one metric over the analysis window.
type MetricTrend struct {
	Trend        string  `json:"trend"` // "rising", "falling", "stable"
	SlopePerHour float64 `json:"slope_per_hour"`
}

// DegradationPrediction is a forward-looking estimate for one metric.
type DegradationPrediction struct {
	Metric   string  `json:"metric"`
	Message  string  `json:"message"`
	ETAHours float64 `json:"eta_hours"`
}

// DegradationIndicators summarize a node's resource trajectory.
type DegradationIndicators struct {
	NodeID      string                  `json:"node_id"`
	CPUTrend    MetricTrend             `json:"cpu_trend"`
	RAMTrend    MetricTrend             `json:"ram_trend"`
	UptimeTrend MetricTrend             `json:"uptime_trend"`
	RiskScore   float64                 `json:"risk_score"`   // 0-100
	OverallRisk string                  `json:"overall_risk"` // low|medium|high|critical
	Predictions []DegradationPrediction `json:"predictions"`
	SampleCount int                     `json:"sample_count"`
}
