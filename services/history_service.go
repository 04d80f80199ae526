package services

import (
	"context"
	"log"
	"sync"
	"time"

	"pulse/analytics"
	"pulse/config"
	"pulse/models"
)

// hotWindowSize bounds the in-memory snapshot ring: one hour of history at
// the default 5-minute interval.
const hotWindowSize = 12

// HistoryService periodically snapshots fleet-level state into Mongo. The
// network snapshots feed the storage-growth queries; the daily snapshots
// feed the growth modeler and capacity forecaster.
type HistoryService struct {
	cfg       *config.Config
	collector *Collector
	mongo     *MongoDBService

	stopChan chan struct{}
	wg       sync.WaitGroup
	mutex    sync.RWMutex

	// Hot in-memory window for when Mongo is disabled or unreachable.
	recentSnapshots []models.NetworkSnapshot
}

func NewHistoryService(cfg *config.Config, collector *Collector, mongo *MongoDBService) *HistoryService {
	return &HistoryService{
		cfg:             cfg,
		collector:       collector,
		mongo:           mongo,
		stopChan:        make(chan struct{}),
		recentSnapshots: make([]models.NetworkSnapshot, 0, hotWindowSize),
	}
}

func (hs *HistoryService) Start() {
	log.Printf("Starting history service: snapshots every %s, retention %d days",
		hs.cfg.SnapshotIntervalDuration(), hs.cfg.History.RetentionDays)

	hs.wg.Add(1)
	go hs.run()
}

func (hs *HistoryService) Stop() {
	close(hs.stopChan)
	hs.wg.Wait()
}

func (hs *HistoryService) run() {
	defer hs.wg.Done()

	hs.CollectSnapshot(time.Now())

	ticker := time.NewTicker(hs.cfg.SnapshotIntervalDuration())
	defer ticker.Stop()

	retention := time.NewTicker(24 * time.Hour)
	defer retention.Stop()

	for {
		select {
		case <-ticker.C:
			hs.CollectSnapshot(time.Now())
		case <-retention.C:
			hs.sweepOldData()
		case <-hs.stopChan:
			return
		}
	}
}

// CollectSnapshot records the fleet's current aggregate state.
func (hs *HistoryService) CollectSnapshot(now time.Time) {
	nodes := hs.collector.GetNodes()
	if len(nodes) == 0 {
		return
	}

	overview := analytics.BuildNetworkOverview(nodes, now)

	baseline := analytics.BuildNetworkBaseline(nodes)
	scores := make([]models.HealthScore, len(nodes))
	for i, n := range nodes {
		scores[i] = analytics.ScoreNode(n, baseline)
	}
	summary := analytics.NetworkHealth(scores)

	snap := models.NetworkSnapshot{
		Timestamp:         now,
		TotalNodes:        overview.Nodes.Total,
		ActiveNodes:       overview.Nodes.Active,
		InactiveNodes:     overview.Nodes.Inactive,
		TotalStorageBytes: float64(overview.Metrics.TotalStorageBytes),
		AvgCPUPercent:     overview.Metrics.AvgCPUPercent,
		AvgRAMPercent:     overview.Metrics.AvgRAMPercent,
		AvgUptimeSeconds:  float64(overview.Metrics.AvgUptimeSeconds),
		NetworkHealth:     summary.AvgScore,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if hs.mongo != nil && hs.mongo.Enabled() {
		if err := hs.mongo.InsertNetworkSnapshot(ctx, &snap); err != nil {
			log.Printf("Error saving network snapshot: %v", err)
		}

		daily := models.DailySnapshot{
			Date:              now.UTC().Truncate(24 * time.Hour),
			TotalNodes:        overview.Nodes.Total,
			ActiveNodes:       overview.Nodes.Active,
			TotalStorageBytes: float64(overview.Metrics.TotalStorageBytes),
		}
		if err := hs.mongo.UpsertDailySnapshot(ctx, &daily); err != nil {
			log.Printf("Error saving daily snapshot: %v", err)
		}
	}

	hs.mutex.Lock()
	hs.recentSnapshots = append(hs.recentSnapshots, snap)
	if len(hs.recentSnapshots) > hotWindowSize {
		hs.recentSnapshots = hs.recentSnapshots[len(hs.recentSnapshots)-hotWindowSize:]
	}
	hs.mutex.Unlock()

	log.Printf("Collected snapshot: %d/%d nodes active, network health %.1f",
		snap.ActiveNodes, snap.TotalNodes, snap.NetworkHealth)
}

func (hs *HistoryService) sweepOldData() {
	if hs.mongo == nil || !hs.mongo.Enabled() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := hs.mongo.DeleteOldData(ctx, hs.cfg.RetentionDuration()); err != nil {
		log.Printf("Retention sweep failed: %v", err)
	}
}

// GetNetworkHistory returns network snapshots for the lookback window,
// oldest first. Mongo when available, hot window otherwise.
func (hs *HistoryService) GetNetworkHistory(hours int) []models.NetworkSnapshot {
	if hours <= 0 {
		hours = 24
	}

	if hs.mongo != nil && hs.mongo.Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		startTime := time.Now().Add(-time.Duration(hours) * time.Hour)

		snapshots, err := hs.mongo.GetNetworkSnapshotsRange(ctx, startTime, time.Now())
		if err != nil {
			log.Printf("Error fetching network history: %v", err)
			return hs.hotWindow()
		}
		return snapshots
	}

	return hs.hotWindow()
}

func (hs *HistoryService) hotWindow() []models.NetworkSnapshot {
	hs.mutex.RLock()
	defer hs.mutex.RUnlock()

	result := make([]models.NetworkSnapshot, len(hs.recentSnapshots))
	copy(result, hs.recentSnapshots)
	return result
}

// GetStorageGrowth reports storage growth over the lookback window. Falls
// back to the hot window when Mongo is unavailable.
func (hs *HistoryService) GetStorageGrowth(days int) (*models.StorageGrowthReport, error) {
	if hs.mongo != nil && hs.mongo.Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		report, err := hs.mongo.GetStorageGrowth(ctx, days)
		if err == nil {
			return report, nil
		}
		log.Printf("Error computing storage growth from Mongo: %v", err)
	}

	hs.mutex.RLock()
	snapshots := hs.recentSnapshots
	hs.mutex.RUnlock()

	if len(snapshots) < 2 {
		return nil, analytics.ErrInsufficientData
	}

	first := snapshots[0]
	last := snapshots[len(snapshots)-1]

	growth := last.TotalStorageBytes - first.TotalStorageBytes
	daysSpanned := last.Timestamp.Sub(first.Timestamp).Hours() / 24

	var perDay float64
	if daysSpanned > 0 {
		perDay = growth / daysSpanned
	}
	var pct float64
	if first.TotalStorageBytes > 0 {
		pct = growth / first.TotalStorageBytes * 100
	}

	return &models.StorageGrowthReport{
		StartDate:        first.Timestamp,
		EndDate:          last.Timestamp,
		StartBytes:       first.TotalStorageBytes,
		EndBytes:         last.TotalStorageBytes,
		GrowthBytes:      growth,
		GrowthPercentage: pct,
		GrowthPerDay:     perDay,
		DaysAnalyzed:     int(daysSpanned),
	}, nil
}
