package models

import "time"

// PeerInfo is one entry from a node's peer list.
type PeerInfo struct {
	Address  string    `bson:"address" json:"address"`
	Version  string    `bson:"version,omitempty" json:"version,omitempty"`
	IsActive bool      `bson:"is_active" json:"is_active"`
	LastSeen time.Time `bson:"last_seen" json:"last_seen"`
	Country  string    `bson:"country,omitempty" json:"country,omitempty"`
}

// PeerRecord is a persisted peer-list entry owned by one node. The record is
// flat so per-node counts can be aggregated with a single $group.
type PeerRecord struct {
	NodeID   string    `bson:"node_id" json:"node_id"`
	Address  string    `bson:"address" json:"address"`
	Version  string    `bson:"version,omitempty" json:"version,omitempty"`
	IsActive bool      `bson:"is_active" json:"is_active"`
	LastSeen time.Time `bson:"last_seen" json:"last_seen"`
	Country  string    `bson:"country,omitempty" json:"country,omitempty"`
}

// ToPeerInfo strips the owning node.
func (r PeerRecord) ToPeerInfo() PeerInfo {
	return PeerInfo{
		Address:  r.Address,
		Version:  r.Version,
		IsActive: r.IsActive,
		LastSeen: r.LastSeen,
		Country:  r.Country,
	}
}

// PeerAnalysis is the connectivity assessment for a single node.
type PeerAnalysis struct {
	NodeID           string   `json:"node_id"`
	TotalPeers       int      `json:"total_peers"`
	ActivePeers      int      `json:"active_peers"`
	StalePeers       int      `json:"stale_peers"`
	VersionDiversity int      `json:"version_diversity"`
	Status           string   `json:"status"` // good|warning|critical
	HealthScore      float64  `json:"health_score"`
	Recommendations  []string `json:"recommendations"`
}

// PeerOptimizationCandidate flags a node whose peer count sits well below
// the network average.
type PeerOptimizationCandidate struct {
	NodeID    string  `json:"node_id"`
	PeerCount int     `json:"peer_count"`
	Deficit   float64 `json:"deficit"` // peers below the network average
	Severity  string  `json:"severity"`
}

// NetworkPeerReport is the network-wide connectivity aggregation.
type NetworkPeerReport struct {
	NodesAnalyzed int                         `json:"nodes_analyzed"`
	AvgPeerCount  float64                     `json:"avg_peer_count"`
	Candidates    []PeerOptimizationCandidate `json:"optimization_candidates"`
}
