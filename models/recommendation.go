package models

// TuningInput is the snapshot a node is tuned against. PeerCount < 0 means
// the peer count is unknown.
type TuningInput struct {
	NodeID        string  `json:"node_id"`
	CPUPercent    float64 `json:"cpu_percent"`
	RAMPercent    float64 `json:"ram_percent"`
	UptimeSeconds int64   `json:"uptime_seconds"`
	StorageBytes  int64   `json:"storage_bytes"`
	Version       string  `json:"version"`
	LatestVersion string  `json:"latest_version"`
	PeerCount     int     `json:"peer_count"`
}

// Recommendation is one rule hit from the resource tuner.
type Recommendation struct {
	Rule     string `json:"rule"`
	Priority string `json:"priority"` // critical|high|medium|low
	Message  string `json:"message"`
}
