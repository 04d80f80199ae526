package models

import "encoding/json"

// RPCRequest is a JSON-RPC 2.0 request sent to a pNode.
type RPCRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
	ID      int         `json:"id"`
}

type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type RPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error,omitempty"`
	ID      int             `json:"id"`
}

// VersionResponse is the get-version payload.
type VersionResponse struct {
	Version string `json:"version"`
}

// StatsResponse is the get-stats payload. Optional gauges stay pointers so
// "not reported" survives into the stored MetricSample.
type StatsResponse struct {
	CPUPercent      *float64 `json:"cpu_percent,omitempty"`
	RAMUsed         int64    `json:"ram_used"`
	RAMTotal        int64    `json:"ram_total"`
	UptimeSeconds   *int64   `json:"uptime,omitempty"`
	FileSize        int64    `json:"file_size"`
	PacketsReceived *int64   `json:"packets_received,omitempty"`
	PacketsSent     *int64   `json:"packets_sent,omitempty"`
}

// PodEntry is one peer in a get-pods response.
type PodEntry struct {
	Address  string `json:"address"`
	Pubkey   string `json:"pubkey,omitempty"`
	RPCPort  int    `json:"rpc_port"`
	Version  string `json:"version,omitempty"`
	LastSeen int64  `json:"last_seen"` // unix seconds
}

type PodsResponse struct {
	Pods []PodEntry `json:"pods"`
}
