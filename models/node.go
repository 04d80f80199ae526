package models

import "time"

type Node struct {
	// Identity
	ID      string `bson:"node_id" json:"id"`
	Pubkey  string `bson:"pubkey,omitempty" json:"pubkey,omitempty"`
	Address string `bson:"address" json:"address"` // "IP:Port" for RPC

	Version string `bson:"version,omitempty" json:"version,omitempty"`

	// Liveness
	IsActive  bool      `bson:"is_active" json:"is_active"`
	LastSeen  time.Time `bson:"last_seen" json:"last_seen"`
	FirstSeen time.Time `bson:"first_seen" json:"first_seen"`

	// Geo estimation of the RPC address
	Country string  `bson:"country,omitempty" json:"country,omitempty"`
	City    string  `bson:"city,omitempty" json:"city,omitempty"`
	Lat     float64 `bson:"lat,omitempty" json:"lat,omitempty"`
	Lon     float64 `bson:"lon,omitempty" json:"lon,omitempty"`

	// Latest reported sample (nil until first collection)
	Metrics *MetricSample `bson:"metrics,omitempty" json:"metrics,omitempty"`

	// Known peer count; PeerCountKnown false means the node never answered
	// a peer query and connectivity must score neutral.
	PeerCount      int  `bson:"peer_count" json:"peer_count"`
	PeerCountKnown bool `bson:"peer_count_known" json:"peer_count_known"`

	MetricsCount int `bson:"metrics_count,omitempty" json:"metrics_count"`
}

// NodeRegistryEntry tracks when nodes first appeared
type NodeRegistryEntry struct {
	NodeID    string    `bson:"node_id" json:"node_id"`
	FirstSeen time.Time `bson:"first_seen" json:"first_seen"`
}
