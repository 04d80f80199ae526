package models

import "time"

// DailySnapshot is one day of fleet-level history, the input to the growth
// modeler.
type DailySnapshot struct {
	Date              time.Time `bson:"date" json:"date"`
	TotalNodes        int       `bson:"total_nodes" json:"total_nodes"`
	ActiveNodes       int       `bson:"active_nodes" json:"active_nodes"`
	TotalStorageBytes float64   `bson:"total_storage_bytes" json:"total_storage_bytes"`
}

// ScenarioProjection holds one scenario's day-30/60/90 estimates.
type ScenarioProjection struct {
	Days    int       `json:"days"`
	Date    time.Time `json:"date"`
	Nodes   float64   `json:"nodes"`
	Storage float64   `json:"storage_bytes"`
}

// Milestone is a round-number threshold and when the model expects it to be
// crossed. EstimatedDate is nil when the threshold is unreachable under the
// scenario's rate.
type Milestone struct {
	Label         string     `json:"label"`
	Threshold     float64    `json:"threshold"`
	EstimatedDate *time.Time `json:"estimated_date"`
}

// GrowthScenario is one named growth-rate assumption.
type GrowthScenario struct {
	Name           string               `json:"name"` // optimistic|realistic|pessimistic
	RateMultiplier float64              `json:"rate_multiplier"`
	NodesPerDay    float64              `json:"nodes_per_day"`
	StoragePerDay  float64              `json:"storage_bytes_per_day"`
	Projections    []ScenarioProjection `json:"projections"`
	Milestones     []Milestone          `json:"milestones"`
}

// GrowthReport bundles all scenarios for a period.
type GrowthReport struct {
	Period      string           `json:"period"`
	Scenarios   []GrowthScenario `json:"scenarios"`
	GeneratedAt time.Time        `json:"generated_at"`
}

// ScenarioComparison ranks scenarios by 90-day projected storage.
type ScenarioComparison struct {
	Ranked        []string `json:"ranked"` // scenario names, best first
	SpreadStorage float64  `json:"spread_storage_bytes"`
	SpreadNodes   float64  `json:"spread_nodes"`
}
