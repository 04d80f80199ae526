package analytics

import (
	"sort"
	"time"

	"pulse/models"
)

// Aggregation modes for metric history series.
const (
	AggregationRaw    = "raw"
	AggregationHourly = "hourly"
	AggregationDaily  = "daily"
)

// ValidAggregation reports whether the history endpoints accept this
// aggregation name.
func ValidAggregation(agg string) bool {
	switch agg {
	case AggregationRaw, AggregationHourly, AggregationDaily:
		return true
	}
	return false
}

// AggregatePoints averages a raw sample series into fixed UTC buckets,
// one output point per bucket carrying the bucket start time. Raw returns
// the input unchanged.
func AggregatePoints(points []models.MetricPoint, agg string) []models.MetricPoint {
	var bucket time.Duration
	switch agg {
	case AggregationHourly:
		bucket = time.Hour
	case AggregationDaily:
		bucket = 24 * time.Hour
	default:
		return points
	}

	type acc struct {
		cpu, ram, storage, uptime float64
		n                         float64
	}
	buckets := map[time.Time]*acc{}
	for _, p := range points {
		key := p.Time.UTC().Truncate(bucket)
		a := buckets[key]
		if a == nil {
			a = &acc{}
			buckets[key] = a
		}
		a.cpu += p.CPUPercent
		a.ram += p.RAMPercent
		a.storage += float64(p.StorageBytes)
		a.uptime += float64(p.UptimeSeconds)
		a.n++
	}

	out := make([]models.MetricPoint, 0, len(buckets))
	for key, a := range buckets {
		out = append(out, models.MetricPoint{
			Time:          key,
			CPUPercent:    a.cpu / a.n,
			RAMPercent:    a.ram / a.n,
			StorageBytes:  int64(a.storage / a.n),
			UptimeSeconds: int64(a.uptime / a.n),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out
}
