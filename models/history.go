package models

import "time"

// NetworkSnapshot represents network state at a point in time
type NetworkSnapshot struct {
	Timestamp         time.Time `bson:"timestamp" json:"timestamp"`
	TotalNodes        int       `bson:"total_nodes" json:"total_nodes"`
	ActiveNodes       int       `bson:"active_nodes" json:"active_nodes"`
	InactiveNodes     int       `bson:"inactive_nodes" json:"inactive_nodes"`
	TotalStorageBytes float64   `bson:"total_storage_bytes" json:"total_storage_bytes"`
	AvgCPUPercent     float64   `bson:"avg_cpu_percent" json:"avg_cpu_percent"`
	AvgRAMPercent     float64   `bson:"avg_ram_percent" json:"avg_ram_percent"`
	AvgUptimeSeconds  float64   `bson:"avg_uptime_seconds" json:"avg_uptime_seconds"`
	NetworkHealth     float64   `bson:"network_health" json:"network_health"`
}

// StorageGrowthReport shows storage growth over a lookback window.
type StorageGrowthReport struct {
	StartDate        time.Time `json:"start_date"`
	EndDate          time.Time `json:"end_date"`
	StartBytes       float64   `json:"start_bytes"`
	EndBytes         float64   `json:"end_bytes"`
	GrowthBytes      float64   `json:"growth_bytes"`
	GrowthPercentage float64   `json:"growth_percentage"`
	GrowthPerDay     float64   `json:"growth_per_day"`
	DaysAnalyzed     int       `json:"days_analyzed"`
}
