package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"pulse/config"
	"pulse/models"
	"pulse/utils"
)

// PRPCClient speaks JSON-RPC 2.0 to a pNode's /rpc endpoint.
type PRPCClient struct {
	config     *config.Config
	httpClient *http.Client
}

func NewPRPCClient(cfg *config.Config) *PRPCClient {
	timeout := 10 * time.Second

	configTimeout := cfg.PRPCTimeoutDuration()
	if configTimeout > 0 && configTimeout <= 15*time.Second {
		timeout = configTimeout
	}

	return &PRPCClient{
		config: cfg,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     30 * time.Second,
				DisableKeepAlives:   false,
				DialContext: (&net.Dialer{
					Timeout:   5 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
			},
		},
	}
}

func (c *PRPCClient) CallPRPC(ctx context.Context, nodeAddr string, method string, params interface{}) (*models.RPCResponse, error) {
	reqBody := models.RPCRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      1,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("http://%s/rpc", nodeAddr)

	var resp *http.Response
	delay := 200 * time.Millisecond
	maxRetries := c.config.PRPC.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 1
	}

	for i := 0; i < maxRetries; i++ {
		httpReq, reqErr := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
		if reqErr != nil {
			err = fmt.Errorf("failed to create request: %w", reqErr)
			break
		}
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err = c.httpClient.Do(httpReq)
		if err == nil {
			if resp.StatusCode >= 500 || resp.StatusCode == 429 {
				resp.Body.Close()
				err = fmt.Errorf("server error: %d", resp.StatusCode)
			} else {
				break
			}
		}

		if isNonRetryableError(err) || ctx.Err() != nil {
			break
		}
		if i < maxRetries-1 {
			time.Sleep(delay)
			delay *= 2
		}
	}

	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http error %d from %s %s", resp.StatusCode, method, nodeAddr)
	}

	var rpcResp models.RPCResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if rpcResp.Error != nil {
		return &rpcResp, fmt.Errorf("rpc error %d: %s", rpcResp.Error.Code, rpcResp.Error.Message)
	}

	return &rpcResp, nil
}

func (c *PRPCClient) GetVersion(ctx context.Context, nodeAddr string) (*models.VersionResponse, error) {
	resp, err := c.CallPRPC(ctx, nodeAddr, "get-version", nil)
	if err != nil {
		return nil, err
	}

	var verResp models.VersionResponse
	if err := json.Unmarshal(resp.Result, &verResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal version result: %w", err)
	}
	return &verResp, nil
}

func (c *PRPCClient) GetStats(ctx context.Context, nodeAddr string) (*models.StatsResponse, error) {
	resp, err := c.CallPRPC(ctx, nodeAddr, "get-stats", nil)
	if err != nil {
		return nil, fmt.Errorf("get-stats failed for %s: %w", nodeAddr, err)
	}

	var statsResp models.StatsResponse
	if err := json.Unmarshal(resp.Result, &statsResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stats from %s: %w", nodeAddr, err)
	}

	return &statsResp, nil
}

func (c *PRPCClient) GetPods(ctx context.Context, nodeAddr string) (*models.PodsResponse, error) {
	resp, err := c.CallPRPC(ctx, nodeAddr, "get-pods-with-stats", nil)
	if err != nil {
		return nil, err
	}

	var podsResp models.PodsResponse
	if err := json.Unmarshal(resp.Result, &podsResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pods result: %w", err)
	}

	return &podsResp, nil
}

func isNonRetryableError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	nonRetryable := []string{
		"Parse error",
		"Invalid Request",
		"Method not found",
		"connection refused",
	}

	for _, msg := range nonRetryable {
		if strings.Contains(errStr, msg) {
			return true
		}
	}
	return false
}

// Collector polls every known node for version, stats and peers, persists
// the samples, and maintains the in-memory node registry the handlers and
// analyzers read from.
type Collector struct {
	cfg    *config.Config
	client *PRPCClient
	store  *MongoDBService
	geo    *utils.GeoResolver

	mu    sync.RWMutex
	nodes map[string]*models.Node // keyed by node ID (address)

	stopChan chan struct{}
	wg       sync.WaitGroup
}

func NewCollector(cfg *config.Config, store *MongoDBService, geo *utils.GeoResolver) *Collector {
	c := &Collector{
		cfg:      cfg,
		client:   NewPRPCClient(cfg),
		store:    store,
		geo:      geo,
		nodes:    make(map[string]*models.Node),
		stopChan: make(chan struct{}),
	}

	now := time.Now()
	for _, seed := range cfg.Server.SeedNodes {
		seed = strings.TrimSpace(seed)
		if seed == "" {
			continue
		}
		c.nodes[seed] = &models.Node{
			ID:        seed,
			Address:   seed,
			FirstSeen: now,
		}
	}

	return c
}

// Start restores known nodes from the registry and launches the stats and
// peer polling loops.
func (c *Collector) Start() {
	c.warmStart()

	log.Printf("Starting collector: %d known nodes, stats every %s, peers every %s",
		len(c.nodes), c.cfg.StatsIntervalDuration(), c.cfg.PeersIntervalDuration())

	c.wg.Add(2)
	go c.runStatsLoop()
	go c.runPeersLoop()
}

func (c *Collector) Stop() {
	close(c.stopChan)
	c.wg.Wait()
}

// warmStart reloads previously seen nodes and their last samples so scores
// and recommendations survive a restart without waiting for the first poll.
// Node IDs double as RPC addresses, which is what makes the rebuild possible.
func (c *Collector) warmStart() {
	if c.store == nil || !c.store.Enabled() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	entries, err := c.store.GetAllRegisteredNodes(ctx)
	if err != nil {
		log.Printf("⚠️  Could not load node registry: %v", err)
		return
	}

	samples, err := c.store.GetLatestSamplePerNode(ctx)
	if err != nil {
		log.Printf("⚠️  Could not load latest samples: %v", err)
		samples = nil
	}

	c.mu.Lock()
	restored := 0
	for _, entry := range entries {
		n, ok := c.nodes[entry.NodeID]
		if !ok {
			n = &models.Node{
				ID:        entry.NodeID,
				Address:   entry.NodeID,
				FirstSeen: entry.FirstSeen,
			}
			c.nodes[entry.NodeID] = n
			restored++
		} else if !entry.FirstSeen.IsZero() && entry.FirstSeen.Before(n.FirstSeen) {
			n.FirstSeen = entry.FirstSeen
		}
		if s, found := samples[entry.NodeID]; found {
			sample := s
			n.Metrics = &sample
			n.LastSeen = sample.Timestamp
		}
	}
	c.mu.Unlock()

	if restored > 0 {
		log.Printf("✓ Restored %d nodes from the registry", restored)
	}
}

func (c *Collector) runStatsLoop() {
	defer c.wg.Done()

	// Collect immediately on startup, then on the ticker.
	c.CollectStats(context.Background())

	ticker := time.NewTicker(c.cfg.StatsIntervalDuration())
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.CollectStats(context.Background())
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) runPeersLoop() {
	defer c.wg.Done()

	c.CollectPeers(context.Background())

	ticker := time.NewTicker(c.cfg.PeersIntervalDuration())
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.CollectPeers(context.Background())
		case <-c.stopChan:
			return
		}
	}
}

// CollectStats polls every known node for get-version/get-stats and persists
// one MetricSample per responsive node.
func (c *Collector) CollectStats(ctx context.Context) {
	start := time.Now()
	targets := c.GetNodes()

	sem := make(chan struct{}, c.maxConcurrent())
	var wg sync.WaitGroup

	var mu sync.Mutex
	responsive := 0
	batch := make([]models.MetricSample, 0, len(targets))

	for _, node := range targets {
		wg.Add(1)
		sem <- struct{}{}
		go func(n *models.Node) {
			defer wg.Done()
			defer func() { <-sem }()

			if sample, ok := c.pollNode(ctx, n, start); ok {
				mu.Lock()
				responsive++
				if sample != nil {
					batch = append(batch, *sample)
				}
				mu.Unlock()
			}
		}(node)
	}
	wg.Wait()

	if len(batch) > 0 && c.store != nil {
		if err := c.store.InsertMetricSamples(ctx, batch); err != nil {
			log.Printf("Failed to persist %d samples: %v", len(batch), err)
		}
	}

	log.Printf("Stats collection finished in %s: %d/%d nodes responsive",
		time.Since(start).Round(time.Millisecond), responsive, len(targets))
}

// pollNode queries one node. It returns the collected sample, nil when the
// node answered get-version but not get-stats, and ok=false when the node is
// unreachable.
func (c *Collector) pollNode(ctx context.Context, node *models.Node, now time.Time) (*models.MetricSample, bool) {
	verResp, verErr := c.client.GetVersion(ctx, node.Address)
	statsResp, statsErr := c.client.GetStats(ctx, node.Address)

	if verErr != nil && statsErr != nil {
		c.markInactive(node.ID, now)
		return nil, false
	}

	sample := models.MetricSample{
		Timestamp: now,
		NodeID:    node.ID,
	}
	if statsErr == nil {
		sample.CPUPercent = statsResp.CPUPercent
		sample.RAMUsedBytes = statsResp.RAMUsed
		sample.RAMTotalBytes = statsResp.RAMTotal
		sample.UptimeSeconds = statsResp.UptimeSeconds
		sample.StorageBytes = statsResp.FileSize
		sample.PacketsReceived = statsResp.PacketsReceived
		sample.PacketsSent = statsResp.PacketsSent
	}

	c.mu.Lock()
	n, ok := c.nodes[node.ID]
	if !ok {
		c.mu.Unlock()
		return nil, false
	}
	n.IsActive = true
	n.LastSeen = now
	if verErr == nil {
		n.Version = verResp.Version
	}
	if statsErr == nil {
		n.Metrics = &sample
		n.MetricsCount++
	}
	c.mu.Unlock()

	if statsErr != nil {
		return nil, true
	}
	return &sample, true
}

func (c *Collector) markInactive(nodeID string, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.nodes[nodeID]
	if !ok {
		return
	}
	if now.Sub(n.LastSeen) > c.cfg.StaleThresholdDuration() {
		n.IsActive = false
	}
}

// CollectPeers polls get-pods on every active node, persists the peer lists
// and folds newly gossiped addresses into the registry.
func (c *Collector) CollectPeers(ctx context.Context) {
	targets := c.GetNodes()
	now := time.Now()

	sem := make(chan struct{}, c.maxConcurrent())
	var wg sync.WaitGroup

	for _, node := range targets {
		wg.Add(1)
		sem <- struct{}{}
		go func(n *models.Node) {
			defer wg.Done()
			defer func() { <-sem }()
			c.pollPeers(ctx, n, now)
		}(node)
	}
	wg.Wait()
}

func (c *Collector) pollPeers(ctx context.Context, node *models.Node, now time.Time) {
	podsResp, err := c.client.GetPods(ctx, node.Address)
	if err != nil {
		return
	}

	records := make([]models.PeerRecord, 0, len(podsResp.Pods))
	for _, pod := range podsResp.Pods {
		lastSeen := time.Unix(pod.LastSeen, 0)
		record := models.PeerRecord{
			NodeID:   node.ID,
			Address:  pod.Address,
			Version:  pod.Version,
			IsActive: now.Sub(lastSeen) <= c.cfg.StaleThresholdDuration(),
			LastSeen: lastSeen,
		}
		if c.geo != nil {
			host := pod.Address
			if h, _, splitErr := net.SplitHostPort(pod.Address); splitErr == nil {
				host = h
			}
			record.Country = c.geo.Lookup(host).Country
		}
		records = append(records, record)

		c.discover(pod, now)
	}

	c.mu.Lock()
	if n, ok := c.nodes[node.ID]; ok {
		n.PeerCount = len(records)
		n.PeerCountKnown = true
	}
	c.mu.Unlock()

	if c.store != nil {
		if err := c.store.ReplaceNodePeers(ctx, node.ID, records); err != nil {
			log.Printf("Failed to persist peers for %s: %v", node.ID, err)
		}
	}
}

// discover adds a gossiped pod to the registry if it is new. The geo lookup
// and the registry insert both hit the network, so the node is built fully
// outside the lock; the lock only guards the map insert.
func (c *Collector) discover(pod models.PodEntry, now time.Time) {
	addr := pod.Address
	if pod.RPCPort > 0 {
		if host, _, err := net.SplitHostPort(pod.Address); err == nil {
			addr = fmt.Sprintf("%s:%d", host, pod.RPCPort)
		}
	}
	if addr == "" {
		return
	}

	c.mu.RLock()
	_, exists := c.nodes[addr]
	c.mu.RUnlock()
	if exists {
		return
	}

	node := &models.Node{
		ID:        addr,
		Pubkey:    pod.Pubkey,
		Address:   addr,
		Version:   pod.Version,
		FirstSeen: now,
	}
	if c.geo != nil {
		if host, _, err := net.SplitHostPort(addr); err == nil {
			loc := c.geo.Lookup(host)
			node.Country, node.City, node.Lat, node.Lon = loc.Country, loc.City, loc.Lat, loc.Lon
		}
	}

	c.mu.Lock()
	if _, raced := c.nodes[addr]; raced {
		c.mu.Unlock()
		return
	}
	c.nodes[addr] = node
	c.mu.Unlock()

	if c.store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.store.RegisterNode(ctx, addr, now); err != nil {
			log.Printf("Failed to register node %s: %v", addr, err)
		}
	}

	log.Printf("Discovered new node: %s (version %s)", addr, pod.Version)
}

func (c *Collector) maxConcurrent() int {
	if c.cfg.Polling.MaxConcurrent > 0 {
		return c.cfg.Polling.MaxConcurrent
	}
	return 16
}

// GetNodes returns a snapshot of the registry, sorted by ID for stable
// output.
func (c *Collector) GetNodes() []*models.Node {
	c.mu.RLock()
	defer c.mu.RUnlock()

	nodes := make([]*models.Node, 0, len(c.nodes))
	for _, n := range c.nodes {
		copied := *n
		nodes = append(nodes, &copied)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
	return nodes
}

func (c *Collector) GetNode(id string) (*models.Node, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n, ok := c.nodes[id]
	if !ok {
		return nil, false
	}
	copied := *n
	return &copied, true
}
