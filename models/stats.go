package models

import "time"

// NodeCounts breaks the fleet down by liveness.
type NodeCounts struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Inactive int `json:"inactive"`
}

// VersionCount is one entry of the version distribution.
type VersionCount struct {
	Version string `json:"version"`
	Count   int    `json:"count"`
}

// NetworkOverview is the top-level network summary.
type NetworkOverview struct {
	Nodes    NodeCounts     `json:"nodes"`
	Versions []VersionCount `json:"versions"`
	Metrics  NetworkMetrics `json:"metrics"`
}

// NetworkMetrics are the aggregate gauges of the overview.
type NetworkMetrics struct {
	TotalStorageBytes int64     `json:"total_storage_bytes"`
	AvgCPUPercent     float64   `json:"avg_cpu_percent"`
	AvgRAMPercent     float64   `json:"avg_ram_percent"`
	AvgUptimeSeconds  int64     `json:"avg_uptime_seconds"`
	Timestamp         time.Time `json:"timestamp"`
}

// CPUStats / RAMStats carry percentile breakdowns for the detailed stats
// endpoint.
type CPUStats struct {
	Avg float64 `json:"avg"`
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	P50 float64 `json:"p50"`
	P90 float64 `json:"p90"`
	P99 float64 `json:"p99"`
}

type RAMStats struct {
	AvgPercent float64 `json:"avg_percent"`
	MinPercent float64 `json:"min_percent"`
	MaxPercent float64 `json:"max_percent"`
	P50        float64 `json:"p50"`
	P90        float64 `json:"p90"`
	P99        float64 `json:"p99"`
}

type StorageStats struct {
	Total int64 `json:"total"`
	Avg   int64 `json:"avg"`
}

type UptimeStats struct {
	AvgSeconds int64 `json:"avg_seconds"`
}

// NetworkStats is the detailed statistics response.
type NetworkStats struct {
	CPU       CPUStats     `json:"cpu"`
	RAM       RAMStats     `json:"ram"`
	Storage   StorageStats `json:"storage"`
	Uptime    UptimeStats  `json:"uptime"`
	NodeCount int          `json:"node_count"`
}
