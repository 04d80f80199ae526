package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"pulse/analytics"
	"pulse/config"
	"pulse/models"
)

// Metric names accepted by the baseline endpoints.
const (
	MetricCPU     = "cpu_percent"
	MetricRAM     = "ram_percent"
	MetricUptime  = "uptime_seconds"
	MetricStorage = "storage_bytes"
)

// AnalyticsService drives the analyzers: it pulls node state from the
// collector and sample history from Mongo, runs the pure analytics core,
// and keeps the hot results warm in the cache.
type AnalyticsService struct {
	cfg       *config.Config
	collector *Collector
	store     *MongoDBService
	cache     *CacheService

	stopChan chan struct{}
	wg       sync.WaitGroup
}

func NewAnalyticsService(cfg *config.Config, collector *Collector, store *MongoDBService, cache *CacheService) *AnalyticsService {
	return &AnalyticsService{
		cfg:       cfg,
		collector: collector,
		store:     store,
		cache:     cache,
		stopChan:  make(chan struct{}),
	}
}

// Start launches the cache warming loop.
func (s *AnalyticsService) Start() {
	s.wg.Add(1)
	go s.runRefreshLoop()
}

func (s *AnalyticsService) Stop() {
	close(s.stopChan)
	s.wg.Wait()
}

func (s *AnalyticsService) runRefreshLoop() {
	defer s.wg.Done()

	s.RefreshCache()

	ticker := time.NewTicker(s.cfg.StatsIntervalDuration())
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.RefreshCache()
		case <-s.stopChan:
			return
		}
	}
}

// RefreshCache recomputes the network-wide aggregates and pushes them into
// the cache.
func (s *AnalyticsService) RefreshCache() {
	start := time.Now()
	nodes := s.collector.GetNodes()
	ttl := s.cfg.CacheTTLDuration()

	overview := analytics.BuildNetworkOverview(nodes, start)
	stats := analytics.BuildNetworkStats(nodes)
	_, summary := s.scoreNodes(nodes)

	s.cache.Set("overview", overview, ttl)
	s.cache.Set("stats", stats, ttl)
	s.cache.Set("health", summary, ttl)
	s.cache.Set("nodes", nodes, ttl)
	for _, n := range nodes {
		s.cache.Set("node:"+n.ID, n, 60*time.Second)
	}

	log.Printf("Analytics cache refreshed in %s: %d nodes, network grade %s",
		time.Since(start).Round(time.Millisecond), len(nodes), summary.Grade)
}

// ============================================
// Health scoring
// ============================================

// ScoreAll scores every known node against a baseline computed once for the
// pass.
func (s *AnalyticsService) ScoreAll() ([]models.HealthScore, models.NetworkHealthSummary) {
	return s.scoreNodes(s.collector.GetNodes())
}

func (s *AnalyticsService) scoreNodes(nodes []*models.Node) ([]models.HealthScore, models.NetworkHealthSummary) {
	baseline := analytics.BuildNetworkBaseline(nodes)

	scores := make([]models.HealthScore, len(nodes))
	var wg sync.WaitGroup
	for i, node := range nodes {
		wg.Add(1)
		go func(i int, node *models.Node) {
			defer wg.Done()
			scores[i] = analytics.ScoreNode(node, baseline)
		}(i, node)
	}
	wg.Wait()

	return scores, analytics.NetworkHealth(scores)
}

// NodeHealth scores a single node against the current fleet baseline.
func (s *AnalyticsService) NodeHealth(nodeID string) (models.HealthScore, error) {
	node, ok := s.collector.GetNode(nodeID)
	if !ok {
		return models.HealthScore{}, fmt.Errorf("node %s not found", nodeID)
	}

	baseline := analytics.BuildNetworkBaseline(s.collector.GetNodes())
	return analytics.ScoreNode(node, baseline), nil
}

// Leaderboard returns nodes ranked by health score, best first for top and
// worst first for bottom. Ties break by node ID so the ordering is stable.
func (s *AnalyticsService) Leaderboard(order string, limit int) []models.HealthScore {
	scores, _ := s.ScoreAll()

	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].Overall != scores[j].Overall {
			if order == analytics.OrderBottom {
				return scores[i].Overall < scores[j].Overall
			}
			return scores[i].Overall > scores[j].Overall
		}
		return scores[i].NodeID < scores[j].NodeID
	})

	if limit > 0 && limit < len(scores) {
		scores = scores[:limit]
	}
	return scores
}

// MetricLeaderboard ranks the fleet on a single raw metric from the latest
// samples.
func (s *AnalyticsService) MetricLeaderboard(metric, order string, limit int) []models.NodeRank {
	return analytics.RankNodes(s.collector.GetNodes(), metric, order, limit)
}

// ============================================
// Baselines & pattern deviations
// ============================================

// NodeBaseline builds the statistical profile of one metric from the node's
// sample history.
func (s *AnalyticsService) NodeBaseline(ctx context.Context, nodeID, metric string, days int) (models.Baseline, error) {
	points, err := s.nodeSeries(ctx, nodeID, metric, days)
	if err != nil {
		return models.Baseline{}, err
	}
	period := fmt.Sprintf("%dd", days)
	return analytics.BuildBaseline(nodeID, metric, period, points), nil
}

// NodeDeviations checks the node's latest sample against its own baselines
// and returns any metric currently outside its learned pattern.
func (s *AnalyticsService) NodeDeviations(ctx context.Context, nodeID string, days int, now time.Time) ([]models.PatternDeviation, error) {
	node, ok := s.collector.GetNode(nodeID)
	if !ok {
		return nil, fmt.Errorf("node %s not found", nodeID)
	}
	if node.Metrics == nil {
		return []models.PatternDeviation{}, nil
	}

	deviations := []models.PatternDeviation{}
	for _, metric := range []string{MetricCPU, MetricRAM, MetricUptime} {
		current, ok := sampleValue(node.Metrics, metric)
		if !ok {
			continue
		}

		baseline, err := s.NodeBaseline(ctx, nodeID, metric, days)
		if err != nil {
			return nil, err
		}

		if d := analytics.DetectDeviation(baseline, current, now); d != nil {
			deviations = append(deviations, *d)
		}
	}
	return deviations, nil
}

// NodeDegradation runs the trend analysis over the node's sample window.
func (s *AnalyticsService) NodeDegradation(ctx context.Context, nodeID string, days int) (models.DegradationIndicators, error) {
	end := time.Now()
	start := end.AddDate(0, 0, -days)

	samples, err := s.store.GetNodeSamplesRange(ctx, nodeID, start, end)
	if err != nil {
		return models.DegradationIndicators{}, fmt.Errorf("loading samples for %s: %w", nodeID, err)
	}

	return analytics.AnalyzeDegradation(nodeID, samples)
}

// ============================================
// Forecasts & growth
// ============================================

// NetworkForecast projects fleet storage and node count from the daily
// snapshot history.
func (s *AnalyticsService) NetworkForecast(ctx context.Context, days int, now time.Time) (models.NetworkForecast, error) {
	snapshots, err := s.store.GetDailySnapshots(ctx, days)
	if err != nil {
		return models.NetworkForecast{}, fmt.Errorf("loading daily snapshots: %w", err)
	}

	storage := make([]models.TrendPoint, len(snapshots))
	nodeCounts := make([]models.TrendPoint, len(snapshots))
	for i, snap := range snapshots {
		storage[i] = models.TrendPoint{Date: snap.Date, Value: snap.TotalStorageBytes}
		nodeCounts[i] = models.TrendPoint{Date: snap.Date, Value: float64(snap.TotalNodes)}
	}

	active, inactive := 0, 0
	for _, n := range s.collector.GetNodes() {
		if n.IsActive {
			active++
		} else {
			inactive++
		}
	}

	return analytics.ForecastNetwork(active, inactive, storage, nodeCounts, now)
}

// GrowthReport models fleet growth scenarios from the daily snapshots.
func (s *AnalyticsService) GrowthReport(ctx context.Context, days int, now time.Time) (models.GrowthReport, models.ScenarioComparison, error) {
	snapshots, err := s.store.GetDailySnapshots(ctx, days)
	if err != nil {
		return models.GrowthReport{}, models.ScenarioComparison{}, fmt.Errorf("loading daily snapshots: %w", err)
	}

	period := fmt.Sprintf("%dd", days)
	report, err := analytics.BuildGrowthReport(period, snapshots, now)
	if err != nil {
		return models.GrowthReport{}, models.ScenarioComparison{}, err
	}

	return report, analytics.CompareScenarios(report), nil
}

// ============================================
// Peers
// ============================================

// NodePeerAnalysis assesses one node's stored peer list.
func (s *AnalyticsService) NodePeerAnalysis(ctx context.Context, nodeID string, now time.Time) (models.PeerAnalysis, error) {
	records, err := s.store.GetNodePeers(ctx, nodeID)
	if err != nil {
		return models.PeerAnalysis{}, fmt.Errorf("loading peers for %s: %w", nodeID, err)
	}

	peers := make([]models.PeerInfo, len(records))
	for i, r := range records {
		peers[i] = r.ToPeerInfo()
	}
	return analytics.AnalyzePeers(nodeID, peers, now), nil
}

// NetworkPeerReport aggregates connectivity across the fleet. Peer counts
// come from the registry (fresh), falling back to stored records when a
// node has not answered a peer query yet.
func (s *AnalyticsService) NetworkPeerReport(ctx context.Context) (models.NetworkPeerReport, error) {
	counts := map[string]int{}
	for _, n := range s.collector.GetNodes() {
		if n.PeerCountKnown {
			counts[n.ID] = n.PeerCount
		}
	}

	if len(counts) == 0 && s.store != nil {
		stored, err := s.store.GetPeerCounts(ctx)
		if err == nil {
			counts = stored
		}
	}

	return analytics.AnalyzeNetworkPeers(counts), nil
}

// ============================================
// Tuning recommendations
// ============================================

// NodeRecommendations evaluates the tuning rules against the node's latest
// sample.
func (s *AnalyticsService) NodeRecommendations(nodeID string) ([]models.Recommendation, error) {
	node, ok := s.collector.GetNode(nodeID)
	if !ok {
		return nil, fmt.Errorf("node %s not found", nodeID)
	}

	baseline := analytics.BuildNetworkBaseline(s.collector.GetNodes())

	in := models.TuningInput{
		NodeID:        nodeID,
		Version:       node.Version,
		LatestVersion: baseline.LatestVersion,
		PeerCount:     -1,
	}
	if node.PeerCountKnown {
		in.PeerCount = node.PeerCount
	}
	if m := node.Metrics; m != nil {
		if m.CPUPercent != nil {
			in.CPUPercent = *m.CPUPercent
		}
		in.RAMPercent = m.RAMPercent()
		if m.UptimeSeconds != nil {
			in.UptimeSeconds = *m.UptimeSeconds
		}
		in.StorageBytes = m.StorageBytes
	}

	return analytics.Recommend(in), nil
}

// ============================================
// Metric history
// ============================================

// NodeMetricHistory serves a node's sample series as API points, bucketed
// per the requested aggregation.
func (s *AnalyticsService) NodeMetricHistory(ctx context.Context, nodeID string, days int, agg string) ([]models.MetricPoint, error) {
	end := time.Now()
	start := end.AddDate(0, 0, -days)

	samples, err := s.store.GetNodeSamplesRange(ctx, nodeID, start, end)
	if err != nil {
		return nil, fmt.Errorf("loading samples for %s: %w", nodeID, err)
	}

	points := make([]models.MetricPoint, len(samples))
	for i, sample := range samples {
		p := models.MetricPoint{
			Time:         sample.Timestamp,
			RAMPercent:   sample.RAMPercent(),
			StorageBytes: sample.StorageBytes,
		}
		if sample.CPUPercent != nil {
			p.CPUPercent = *sample.CPUPercent
		}
		if sample.UptimeSeconds != nil {
			p.UptimeSeconds = *sample.UptimeSeconds
		}
		points[i] = p
	}
	return analytics.AggregatePoints(points, agg), nil
}

// nodeSeries loads one metric's series from the sample history, skipping
// ticks where the node did not report it.
func (s *AnalyticsService) nodeSeries(ctx context.Context, nodeID, metric string, days int) ([]analytics.SeriesPoint, error) {
	end := time.Now()
	start := end.AddDate(0, 0, -days)

	samples, err := s.store.GetNodeSamplesRange(ctx, nodeID, start, end)
	if err != nil {
		return nil, fmt.Errorf("loading samples for %s: %w", nodeID, err)
	}

	points := make([]analytics.SeriesPoint, 0, len(samples))
	for i := range samples {
		if v, ok := sampleValue(&samples[i], metric); ok {
			points = append(points, analytics.SeriesPoint{Timestamp: samples[i].Timestamp, Value: v})
		}
	}
	return points, nil
}

// sampleValue extracts one metric from a sample. The bool is false when the
// node did not report that metric on this tick.
func sampleValue(m *models.MetricSample, metric string) (float64, bool) {
	switch metric {
	case MetricCPU:
		if m.CPUPercent == nil {
			return 0, false
		}
		return *m.CPUPercent, true
	case MetricRAM:
		if m.RAMTotalBytes <= 0 {
			return 0, false
		}
		return m.RAMPercent(), true
	case MetricUptime:
		if m.UptimeSeconds == nil {
			return 0, false
		}
		return float64(*m.UptimeSeconds), true
	case MetricStorage:
		return float64(m.StorageBytes), true
	default:
		return 0, false
	}
}

// ValidMetric reports whether the baseline endpoints accept this metric
// name.
func ValidMetric(metric string) bool {
	switch metric {
	case MetricCPU, MetricRAM, MetricUptime, MetricStorage:
		return true
	}
	return false
}
