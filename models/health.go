package models

// HealthComponents are the weighted sub-scores of a node's composite health
// score. Each is in [0,100].
type HealthComponents struct {
	Uptime       float64 `json:"uptime"`
	CPU          float64 `json:"cpu"`
	RAM          float64 `json:"ram"`
	Connectivity float64 `json:"connectivity"`
	Version      float64 `json:"version"`
}

// MetricOutliers tags each metric with its position relative to the
// network-wide distribution ("very_low" .. "very_high").
type MetricOutliers struct {
	CPU    string `json:"cpu"`
	RAM    string `json:"ram"`
	Uptime string `json:"uptime"`
}

// HealthScore is the composite 0-100 assessment for a single node.
type HealthScore struct {
	NodeID     string           `json:"node_id"`
	Overall    int              `json:"overall"` // weighted sum of components, [0,100]
	Grade      string           `json:"grade"`   // A-F, step function of Overall
	Components HealthComponents `json:"components"`
	Outliers   MetricOutliers   `json:"outliers"`
	Details    []string         `json:"details,omitempty"`
}

// NodeRank is one leaderboard entry when ranking nodes on a single raw
// metric rather than the composite health score.
type NodeRank struct {
	Rank   int     `json:"rank"`
	NodeID string  `json:"node_id"`
	Metric string  `json:"metric"`
	Value  float64 `json:"value"`
}

// NetworkHealthSummary aggregates per-node health scores network-wide.
type NetworkHealthSummary struct {
	AvgScore          float64        `json:"avg_score"`
	Grade             string         `json:"grade"`
	Distribution      map[string]int `json:"distribution"` // grade -> node count
	HealthyPercentage float64        `json:"healthy_percentage"`
	NodeCount         int            `json:"node_count"`
}
