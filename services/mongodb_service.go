package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pulse/config"
	"pulse/models"
)

type MongoDBService struct {
	client  *mongo.Client
	db      *mongo.Database
	enabled bool
}

const (
	CollectionMetricSamples    = "metric_samples"
	CollectionNetworkSnapshots = "network_snapshots"
	CollectionDailySnapshots   = "daily_snapshots"
	CollectionNodeRegistry     = "node_registry" // Track when nodes first appeared
	CollectionPeerRecords      = "peer_records"
)

var ErrMongoDisabled = fmt.Errorf("MongoDB not enabled")

func NewMongoDBService(cfg *config.Config) (*MongoDBService, error) {
	if !cfg.MongoDB.Enabled {
		log.Println("MongoDB is disabled in configuration")
		return &MongoDBService{enabled: false}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(cfg.MongoDB.URI)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Ping to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(cfg.MongoDB.Database)

	service := &MongoDBService{
		client:  client,
		db:      db,
		enabled: true,
	}

	// Create indexes
	if err := service.createIndexes(ctx); err != nil {
		log.Printf("Warning: Failed to create indexes: %v", err)
	}

	log.Printf("MongoDB connected successfully to database: %s", cfg.MongoDB.Database)
	return service, nil
}

// NewDisabledMongoDBService returns a service that rejects every operation.
// Used when the database is unreachable so callers can degrade instead of
// carrying nil checks everywhere.
func NewDisabledMongoDBService() *MongoDBService {
	return &MongoDBService{enabled: false}
}

func (m *MongoDBService) Enabled() bool {
	return m.enabled
}

func (m *MongoDBService) createIndexes(ctx context.Context) error {
	if !m.enabled {
		return nil
	}

	// Metric samples: compound index on node_id and timestamp plus a plain
	// timestamp index for retention sweeps
	_, err := m.db.Collection(CollectionMetricSamples).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "node_id", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("node_timestamp"),
		},
		{
			Keys:    bson.D{{Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("timestamp_desc"),
		},
	})
	if err != nil {
		return err
	}

	// Network snapshots: timestamp descending for recent queries
	_, err = m.db.Collection(CollectionNetworkSnapshots).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "timestamp", Value: -1}},
		Options: options.Index().SetName("timestamp_desc"),
	})
	if err != nil {
		return err
	}

	// Daily snapshots: one document per calendar day
	_, err = m.db.Collection(CollectionDailySnapshots).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "date", Value: 1}},
		Options: options.Index().SetName("date").SetUnique(true),
	})
	if err != nil {
		return err
	}

	// Node registry: unique node_id
	_, err = m.db.Collection(CollectionNodeRegistry).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "node_id", Value: 1}},
		Options: options.Index().SetName("node_id").SetUnique(true),
	})
	if err != nil {
		return err
	}

	// Peer records: per-node fetch and rewrite
	_, err = m.db.Collection(CollectionPeerRecords).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "node_id", Value: 1}, {Key: "address", Value: 1}},
		Options: options.Index().SetName("node_address"),
	})

	return err
}

func (m *MongoDBService) Close() error {
	if !m.enabled || m.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

// ============================================
// METRIC SAMPLES
// ============================================

// InsertMetricSamples writes one collection pass worth of samples in a
// single round trip.
func (m *MongoDBService) InsertMetricSamples(ctx context.Context, samples []models.MetricSample) error {
	if !m.enabled || len(samples) == 0 {
		return nil
	}
	docs := make([]interface{}, len(samples))
	for i := range samples {
		docs[i] = samples[i]
	}
	_, err := m.db.Collection(CollectionMetricSamples).InsertMany(ctx, docs)
	return err
}

// GetNodeSamplesRange returns one node's samples within [start, end],
// oldest first. This is the series every per-node analyzer consumes.
func (m *MongoDBService) GetNodeSamplesRange(ctx context.Context, nodeID string, start, end time.Time) ([]models.MetricSample, error) {
	if !m.enabled {
		return nil, ErrMongoDisabled
	}

	filter := bson.M{
		"node_id": nodeID,
		"timestamp": bson.M{
			"$gte": start,
			"$lte": end,
		},
	}

	opts := options.Find().SetSort(bson.M{"timestamp": 1})
	cursor, err := m.db.Collection(CollectionMetricSamples).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var samples []models.MetricSample
	if err := cursor.All(ctx, &samples); err != nil {
		return nil, err
	}

	return samples, nil
}

// GetLatestSamplePerNode returns each node's most recent sample in a single
// round trip, so a scoring pass never does N queries.
func (m *MongoDBService) GetLatestSamplePerNode(ctx context.Context) (map[string]models.MetricSample, error) {
	if !m.enabled {
		return nil, ErrMongoDisabled
	}

	pipeline := mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "node_id", Value: 1}, {Key: "timestamp", Value: -1}}}},
		{{Key: "$group", Value: bson.M{
			"_id":    "$node_id",
			"sample": bson.M{"$first": "$$ROOT"},
		}}},
	}

	cursor, err := m.db.Collection(CollectionMetricSamples).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		NodeID string              `bson:"_id"`
		Sample models.MetricSample `bson:"sample"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	latest := make(map[string]models.MetricSample, len(rows))
	for _, row := range rows {
		latest[row.NodeID] = row.Sample
	}
	return latest, nil
}

// ============================================
// NETWORK SNAPSHOTS
// ============================================

func (m *MongoDBService) InsertNetworkSnapshot(ctx context.Context, snapshot *models.NetworkSnapshot) error {
	if !m.enabled {
		return nil
	}
	_, err := m.db.Collection(CollectionNetworkSnapshots).InsertOne(ctx, snapshot)
	return err
}

// GetNetworkSnapshotsRange retrieves network snapshots within a time range
func (m *MongoDBService) GetNetworkSnapshotsRange(ctx context.Context, start, end time.Time) ([]models.NetworkSnapshot, error) {
	if !m.enabled {
		return nil, ErrMongoDisabled
	}

	filter := bson.M{
		"timestamp": bson.M{
			"$gte": start,
			"$lte": end,
		},
	}

	opts := options.Find().SetSort(bson.M{"timestamp": 1})
	cursor, err := m.db.Collection(CollectionNetworkSnapshots).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var snapshots []models.NetworkSnapshot
	if err := cursor.All(ctx, &snapshots); err != nil {
		return nil, err
	}

	return snapshots, nil
}

// GetLatestNetworkSnapshot gets the most recent network snapshot
func (m *MongoDBService) GetLatestNetworkSnapshot(ctx context.Context) (*models.NetworkSnapshot, error) {
	if !m.enabled {
		return nil, ErrMongoDisabled
	}

	var snapshot models.NetworkSnapshot
	opts := options.FindOne().SetSort(bson.M{"timestamp": -1})

	err := m.db.Collection(CollectionNetworkSnapshots).FindOne(ctx, bson.M{}, opts).Decode(&snapshot)
	if err != nil {
		return nil, err
	}

	return &snapshot, nil
}

// GetOldestNetworkSnapshot gets the oldest network snapshot
func (m *MongoDBService) GetOldestNetworkSnapshot(ctx context.Context) (*models.NetworkSnapshot, error) {
	if !m.enabled {
		return nil, ErrMongoDisabled
	}

	var snapshot models.NetworkSnapshot
	opts := options.FindOne().SetSort(bson.M{"timestamp": 1})

	err := m.db.Collection(CollectionNetworkSnapshots).FindOne(ctx, bson.M{}, opts).Decode(&snapshot)
	if err != nil {
		return nil, err
	}

	return &snapshot, nil
}

// GetStorageGrowth compares the first snapshot inside the lookback window
// against the latest one.
func (m *MongoDBService) GetStorageGrowth(ctx context.Context, days int) (*models.StorageGrowthReport, error) {
	if !m.enabled {
		return nil, ErrMongoDisabled
	}

	startDate := time.Now().AddDate(0, 0, -days)

	var first models.NetworkSnapshot
	err := m.db.Collection(CollectionNetworkSnapshots).FindOne(ctx, bson.M{
		"timestamp": bson.M{"$gte": startDate},
	}, options.FindOne().SetSort(bson.M{"timestamp": 1})).Decode(&first)
	if err != nil {
		return nil, err
	}

	last, err := m.GetLatestNetworkSnapshot(ctx)
	if err != nil {
		return nil, err
	}

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

// ============================================
// DAILY SNAPSHOTS (growth modeler feed)
// ============================================

// UpsertDailySnapshot writes the day's fleet totals, replacing any earlier
// write for the same calendar day.
func (m *MongoDBService) UpsertDailySnapshot(ctx context.Context, snapshot *models.DailySnapshot) error {
	if !m.enabled {
		return nil
	}

	day := snapshot.Date.UTC().Truncate(24 * time.Hour)
	filter := bson.M{"date": day}
	update := bson.M{"$set": bson.M{
		"date":                day,
		"total_nodes":         snapshot.TotalNodes,
		"active_nodes":        snapshot.ActiveNodes,
		"total_storage_bytes": snapshot.TotalStorageBytes,
	}}
	opts := options.Update().SetUpsert(true)

	_, err := m.db.Collection(CollectionDailySnapshots).UpdateOne(ctx, filter, update, opts)
	return err
}

func (m *MongoDBService) GetDailySnapshots(ctx context.Context, days int) ([]models.DailySnapshot, error) {
	if !m.enabled {
		return nil, ErrMongoDisabled
	}

	startDate := time.Now().UTC().AddDate(0, 0, -days)
	filter := bson.M{"date": bson.M{"$gte": startDate}}

	cursor, err := m.db.Collection(CollectionDailySnapshots).Find(ctx, filter,
		options.Find().SetSort(bson.M{"date": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var snapshots []models.DailySnapshot
	if err := cursor.All(ctx, &snapshots); err != nil {
		return nil, err
	}

	return snapshots, nil
}

// ============================================
// NODE REGISTRY
// ============================================

func (m *MongoDBService) RegisterNode(ctx context.Context, nodeID string, firstSeen time.Time) error {
	if !m.enabled {
		return nil
	}

	filter := bson.M{"node_id": nodeID}
	update := bson.M{
		"$setOnInsert": bson.M{
			"node_id":    nodeID,
			"first_seen": firstSeen,
		},
	}
	opts := options.Update().SetUpsert(true)

	_, err := m.db.Collection(CollectionNodeRegistry).UpdateOne(ctx, filter, update, opts)
	return err
}

// GetAllRegisteredNodes returns all nodes that have ever been seen
func (m *MongoDBService) GetAllRegisteredNodes(ctx context.Context) ([]models.NodeRegistryEntry, error) {
	if !m.enabled {
		return nil, ErrMongoDisabled
	}

	cursor, err := m.db.Collection(CollectionNodeRegistry).Find(ctx, bson.M{},
		options.Find().SetSort(bson.M{"first_seen": -1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []models.NodeRegistryEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}

	return entries, nil
}

// GetRecentlyJoinedNodes returns nodes first seen inside the lookback window
func (m *MongoDBService) GetRecentlyJoinedNodes(ctx context.Context, daysBack int) ([]models.NodeRegistryEntry, error) {
	if !m.enabled {
		return nil, ErrMongoDisabled
	}

	startDate := time.Now().AddDate(0, 0, -daysBack)

	filter := bson.M{
		"first_seen": bson.M{"$gte": startDate},
	}

	cursor, err := m.db.Collection(CollectionNodeRegistry).Find(ctx, filter,
		options.Find().SetSort(bson.M{"first_seen": -1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []models.NodeRegistryEntry
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}

	return results, nil
}

// ============================================
// PEER RECORDS
// ============================================

// ReplaceNodePeers swaps out a node's stored peer list for the freshly
// collected one.
func (m *MongoDBService) ReplaceNodePeers(ctx context.Context, nodeID string, peers []models.PeerRecord) error {
	if !m.enabled {
		return nil
	}

	coll := m.db.Collection(CollectionPeerRecords)
	if _, err := coll.DeleteMany(ctx, bson.M{"node_id": nodeID}); err != nil {
		return err
	}
	if len(peers) == 0 {
		return nil
	}

	docs := make([]interface{}, len(peers))
	for i := range peers {
		docs[i] = peers[i]
	}
	_, err := coll.InsertMany(ctx, docs)
	return err
}

func (m *MongoDBService) GetNodePeers(ctx context.Context, nodeID string) ([]models.PeerRecord, error) {
	if !m.enabled {
		return nil, ErrMongoDisabled
	}

	cursor, err := m.db.Collection(CollectionPeerRecords).Find(ctx, bson.M{"node_id": nodeID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []models.PeerRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}

	return records, nil
}

// GetPeerCounts returns stored peer counts per node for the network-wide
// connectivity aggregation.
func (m *MongoDBService) GetPeerCounts(ctx context.Context) (map[string]int, error) {
	if !m.enabled {
		return nil, ErrMongoDisabled
	}

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":   "$node_id",
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := m.db.Collection(CollectionPeerRecords).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		NodeID string `bson:"_id"`
		Count  int    `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.NodeID] = row.Count
	}
	return counts, nil
}

// ============================================
// MAINTENANCE
// ============================================

// DeleteOldData deletes samples and snapshots older than the retention
// window.
func (m *MongoDBService) DeleteOldData(ctx context.Context, olderThan time.Duration) error {
	if !m.enabled {
		return ErrMongoDisabled
	}

	cutoffTime := time.Now().Add(-olderThan)
	filter := bson.M{
		"timestamp": bson.M{"$lt": cutoffTime},
	}

	sampleResult, err := m.db.Collection(CollectionMetricSamples).DeleteMany(ctx, filter)
	if err != nil {
		return err
	}

	netResult, err := m.db.Collection(CollectionNetworkSnapshots).DeleteMany(ctx, filter)
	if err != nil {
		return err
	}

	log.Printf("Deleted %d metric samples and %d network snapshots older than %v",
		sampleResult.DeletedCount, netResult.DeletedCount, olderThan)

	return nil
}

// GetDatabaseStats returns statistics about the MongoDB collections
func (m *MongoDBService) GetDatabaseStats(ctx context.Context) (map[string]interface{}, error) {
	if !m.enabled {
		return nil, ErrMongoDisabled
	}

	stats := make(map[string]interface{})

	sampleCount, _ := m.db.Collection(CollectionMetricSamples).CountDocuments(ctx, bson.M{})
	netCount, _ := m.db.Collection(CollectionNetworkSnapshots).CountDocuments(ctx, bson.M{})
	dailyCount, _ := m.db.Collection(CollectionDailySnapshots).CountDocuments(ctx, bson.M{})
	registryCount, _ := m.db.Collection(CollectionNodeRegistry).CountDocuments(ctx, bson.M{})
	peerCount, _ := m.db.Collection(CollectionPeerRecords).CountDocuments(ctx, bson.M{})

	stats["metric_samples_count"] = sampleCount
	stats["network_snapshots_count"] = netCount
	stats["daily_snapshots_count"] = dailyCount
	stats["registered_nodes_count"] = registryCount
	stats["peer_records_count"] = peerCount

	oldest, err := m.GetOldestNetworkSnapshot(ctx)
	if err == nil {
		stats["oldest_snapshot"] = oldest.Timestamp
	}

	latest, err := m.GetLatestNetworkSnapshot(ctx)
	if err == nil {
		stats["latest_snapshot"] = latest.Timestamp
	}

	if oldest != nil && latest != nil {
		duration := latest.Timestamp.Sub(oldest.Timestamp)
		stats["data_span_days"] = duration.Hours() / 24
	}

	return stats, nil
}
