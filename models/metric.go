package models

import "time"

// MetricSample is one collection tick for a single node, as supplied by the
// data layer. Optional gauges are pointers: a nil field means the node did
// not report that metric, which is not the same as zero.
type MetricSample struct {
	Timestamp       time.Time `bson:"timestamp" json:"timestamp"`
	NodeID          string    `bson:"node_id" json:"node_id"`
	CPUPercent      *float64  `bson:"cpu_percent,omitempty" json:"cpu_percent,omitempty"`
	RAMUsedBytes    int64     `bson:"ram_used_bytes" json:"ram_used_bytes"`
	RAMTotalBytes   int64     `bson:"ram_total_bytes" json:"ram_total_bytes"`
	UptimeSeconds   *int64    `bson:"uptime_seconds,omitempty" json:"uptime_seconds,omitempty"`
	StorageBytes    int64     `bson:"storage_bytes" json:"storage_bytes"`
	PacketsReceived *int64    `bson:"packets_received,omitempty" json:"packets_received,omitempty"`
	PacketsSent     *int64    `bson:"packets_sent,omitempty" json:"packets_sent,omitempty"`
}

// RAMPercent recomputes utilization from raw bytes. Reported percentages are
// never trusted; used/total is the source of truth.
func (m *MetricSample) RAMPercent() float64 {
	if m.RAMTotalBytes <= 0 {
		return 0
	}
	return float64(m.RAMUsedBytes) / float64(m.RAMTotalBytes) * 100
}

// NetworkBaseline is the network-wide aggregate computed once per scoring
// pass from all active nodes' latest samples. It is read-only after
// construction and safe to share across per-node goroutines.
type NetworkBaseline struct {
	LatestVersion string  `json:"latest_version"`
	AvgCPU        float64 `json:"avg_cpu"`
	AvgRAM        float64 `json:"avg_ram"`
	AvgUptime     float64 `json:"avg_uptime"`
	CPUStdDev     float64 `json:"cpu_std_dev"`
	RAMStdDev     float64 `json:"ram_std_dev"`
	UptimeStdDev  float64 `json:"uptime_std_dev"`
	SampleCount   int     `json:"sample_count"`
}

// MetricPoint is a single point in a node's historical metric series as
// served by the API.
type MetricPoint struct {
	Time          time.Time `json:"time"`
	CPUPercent    float64   `json:"cpu_percent"`
	RAMPercent    float64   `json:"ram_percent"`
	StorageBytes  int64     `json:"storage_bytes"`
	UptimeSeconds int64     `json:"uptime_seconds"`
}
