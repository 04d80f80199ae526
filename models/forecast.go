package models

import "time"

// HorizonProjection is one projected value at a fixed horizon.
type HorizonProjection struct {
	Horizon string    `json:"horizon"` // "1w", "1m", "3m", "6m"
	Date    time.Time `json:"date"`
	Value   float64   `json:"value"`
}

// CapacityForecast extrapolates one monotonically-tending series (storage
// bytes, node count) to fixed horizons.
type CapacityForecast struct {
	Metric       string              `json:"metric"`
	CurrentValue float64             `json:"current_value"`
	RatePerDay   float64             `json:"rate_per_day"`
	Model        string              `json:"model"` // "linear", "log-linear"
	Projections  []HorizonProjection `json:"projections"`
	DataPoints   int                 `json:"data_points"`
	GeneratedAt  time.Time           `json:"generated_at"`
}

// NetworkForecast pairs the storage trajectory with current fleet totals.
type NetworkForecast struct {
	ActiveNodes   int              `json:"active_nodes"`
	InactiveNodes int              `json:"inactive_nodes"`
	Storage       CapacityForecast `json:"storage"`
	NodeCount     CapacityForecast `json:"node_count"`
}

// TrendPoint is one daily observation of a forecastable series.
type TrendPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}
