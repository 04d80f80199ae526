package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"pulse/models"
)

// Scenario rate multipliers applied to the observed baseline growth rate.
var growthScenarios = []struct {
	Name       string
	Multiplier float64
}{
	{"optimistic", 1.5},
	{"realistic", 1.0},
	{"pessimistic", 0.5},
}

var projectionDays = []int{30, 60, 90}

// BuildGrowthReport derives named growth scenarios from daily fleet
// snapshots. Each scenario scales the observed per-day rates and projects
// day-30/60/90 values plus round-number milestones.
func BuildGrowthReport(period string, snapshots []models.DailySnapshot, now time.Time) (models.GrowthReport, error) {
	if len(snapshots) < 3 {
		return models.GrowthReport{}, ErrInsufficientData
	}

	t0 := snapshots[0].Date
	xs := make([]float64, len(snapshots))
	nodeYs := make([]float64, len(snapshots))
	storageYs := make([]float64, len(snapshots))
	for i, s := range snapshots {
		xs[i] = s.Date.Sub(t0).Hours() / 24
		nodeYs[i] = float64(s.TotalNodes)
		storageYs[i] = s.TotalStorageBytes
	}

	nodesPerDay := Slope(xs, nodeYs)
	storagePerDay := Slope(xs, storageYs)
	currentNodes := nodeYs[len(nodeYs)-1]
	currentStorage := storageYs[len(storageYs)-1]

	report := models.GrowthReport{
		Period:      period,
		GeneratedAt: now,
	}

	for _, sc := range growthScenarios {
		scenario := models.GrowthScenario{
			Name:           sc.Name,
			RateMultiplier: sc.Multiplier,
			NodesPerDay:    nodesPerDay * sc.Multiplier,
			StoragePerDay:  storagePerDay * sc.Multiplier,
		}

		for _, days := range projectionDays {
			scenario.Projections = append(scenario.Projections, models.ScenarioProjection{
				Days:    days,
				Date:    now.AddDate(0, 0, days),
				Nodes:   projectValue(currentNodes, scenario.NodesPerDay, days),
				Storage: projectValue(currentStorage, scenario.StoragePerDay, days),
			})
		}

		scenario.Milestones = append(scenario.Milestones,
			milestone(fmt.Sprintf("storage reaches %s", formatBytes(nextRound(currentStorage))),
				nextRound(currentStorage), currentStorage, scenario.StoragePerDay, now),
			milestone(fmt.Sprintf("fleet reaches %d nodes", int(nextHundred(currentNodes))),
				nextHundred(currentNodes), currentNodes, scenario.NodesPerDay, now),
		)

		report.Scenarios = append(report.Scenarios, scenario)
	}

	return report, nil
}

// CompareScenarios ranks scenarios by their day-90 storage projection and
// reports the spread between the extremes.
func CompareScenarios(report models.GrowthReport) models.ScenarioComparison {
	cmp := models.ScenarioComparison{}
	if len(report.Scenarios) == 0 {
		return cmp
	}

	type ranked struct {
		name    string
		storage float64
		nodes   float64
	}
	rs := make([]ranked, 0, len(report.Scenarios))
	for _, sc := range report.Scenarios {
		r := ranked{name: sc.Name}
		for _, p := range sc.Projections {
			if p.Days == 90 {
				r.storage = p.Storage
				r.nodes = p.Nodes
			}
		}
		rs = append(rs, r)
	}

	sort.SliceStable(rs, func(i, j int) bool { return rs[i].storage > rs[j].storage })
	for _, r := range rs {
		cmp.Ranked = append(cmp.Ranked, r.name)
	}
	cmp.SpreadStorage = rs[0].storage - rs[len(rs)-1].storage
	cmp.SpreadNodes = rs[0].nodes - rs[len(rs)-1].nodes
	return cmp
}

func projectValue(current, ratePerDay float64, days int) float64 {
	v := current + ratePerDay*float64(days)
	if v < 0 {
		return 0
	}
	return v
}

// milestone inverts the linear model to find when a threshold is crossed.
// A non-positive rate or a non-finite ETA leaves EstimatedDate nil.
func milestone(label string, threshold, current, ratePerDay float64, now time.Time) models.Milestone {
	m := models.Milestone{Label: label, Threshold: threshold}
	if ratePerDay <= 0 || threshold <= current {
		return m
	}
	etaDays := (threshold - current) / ratePerDay
	if etaDays < 0 || math.IsNaN(etaDays) || math.IsInf(etaDays, 0) {
		return m
	}
	date := now.AddDate(0, 0, int(math.Ceil(etaDays)))
	m.EstimatedDate = &date
	return m
}

// nextRound returns the next 1-2-5 round number above the value.
func nextRound(v float64) float64 {
	if v <= 0 {
		return 1
	}
	mag := math.Pow(10, math.Floor(math.Log10(v)))
	for _, step := range []float64{1, 2, 5, 10} {
		if mag*step > v {
			return mag * step
		}
	}
	return mag * 10
}

// nextHundred returns the next multiple of 100 above the value.
func nextHundred(v float64) float64 {
	if v < 0 {
		v = 0
	}
	return (math.Floor(v/100) + 1) * 100
}

func formatBytes(v float64) string {
	units := []string{"B", "KB", "MB", "GB", "TB", "PB", "EB"}
	i := 0
	for v >= 1000 && i < len(units)-1 {
		v /= 1000
		i++
	}
	return fmt.Sprintf("%.0f %s", v, units[i])
}
