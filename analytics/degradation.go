package analytics

import (
	"fmt"
	"math"

	"pulse/models"
)

const (
	TrendRising  = "rising"
	TrendFalling = "falling"
	TrendStable  = "stable"
)

const (
	RiskLow      = "low"
	RiskMedium   = "medium"
	RiskHigh     = "high"
	RiskCritical = "critical"
)

// Risk score cutoffs; pinned in tests.
const (
	riskMediumCutoff   = 25.0
	riskHighCutoff     = 50.0
	riskCriticalCutoff = 75.0
)

// Alert thresholds toward which ETAs are computed.
const (
	cpuCeilingPct = 90.0
	ramCeilingPct = 95.0
)

// Risk weights: CPU and RAM pressure weigh equally; uptime resets slightly
// less since a single restart is routine.
const (
	riskWeightCPU    = 0.35
	riskWeightRAM    = 0.35
	riskWeightUptime = 0.30
)

// minTrendSamples is the smallest window a trend fit is meaningful for.
const minTrendSamples = 3

// AnalyzeDegradation fits trend lines to a node's recent CPU/RAM/uptime
// series and condenses them into a 0-100 risk score. Fewer than three
// samples returns ErrInsufficientData instead of a zero-confidence answer.
func AnalyzeDegradation(nodeID string, samples []models.MetricSample) (models.DegradationIndicators, error) {
	if len(samples) < minTrendSamples {
		return models.DegradationIndicators{}, ErrInsufficientData
	}

	var cpu, ram, uptime []SeriesPoint
	for i := range samples {
		s := &samples[i]
		if s.CPUPercent != nil {
			cpu = append(cpu, SeriesPoint{Timestamp: s.Timestamp, Value: *s.CPUPercent})
		}
		if s.RAMTotalBytes > 0 {
			ram = append(ram, SeriesPoint{Timestamp: s.Timestamp, Value: s.RAMPercent()})
		}
		if s.UptimeSeconds != nil {
			uptime = append(uptime, SeriesPoint{Timestamp: s.Timestamp, Value: float64(*s.UptimeSeconds)})
		}
	}

	ind := models.DegradationIndicators{
		NodeID:      nodeID,
		CPUTrend:    fitTrend(cpu),
		RAMTrend:    fitTrend(ram),
		UptimeTrend: fitTrend(uptime),
		SampleCount: len(samples),
	}

	cpuRisk := risingRisk(ind.CPUTrend)
	ramRisk := risingRisk(ind.RAMTrend)
	uptimeRisk := uptimeResetRisk(uptime)

	ind.RiskScore = clampComponent(
		cpuRisk*riskWeightCPU + ramRisk*riskWeightRAM + uptimeRisk*riskWeightUptime)
	ind.OverallRisk = riskBucket(ind.RiskScore)

	ind.Predictions = []models.DegradationPrediction{}
	if p := ceilingPrediction("cpu", ind.CPUTrend, lastValue(cpu), cpuCeilingPct); p != nil {
		ind.Predictions = append(ind.Predictions, *p)
	}
	if p := ceilingPrediction("ram", ind.RAMTrend, lastValue(ram), ramCeilingPct); p != nil {
		ind.Predictions = append(ind.Predictions, *p)
	}
	if ind.UptimeTrend.Trend == TrendFalling {
		ind.Predictions = append(ind.Predictions, models.DegradationPrediction{
			Metric:  "uptime",
			Message: "uptime is trending down; node appears to be restarting",
		})
	}

	return ind, nil
}

// fitTrend fits an ordinary-least-squares line against elapsed hours. A
// slope only counts as a trend when the projected change over the window
// clears half the series' own spread, so a noisy-but-flat series reads
// stable.
func fitTrend(points []SeriesPoint) models.MetricTrend {
	if len(points) < minTrendSamples {
		return models.MetricTrend{Trend: TrendStable}
	}

	t0 := points[0].Timestamp
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.Timestamp.Sub(t0).Hours()
		ys[i] = p.Value
	}

	slope := Slope(xs, ys)
	windowHours := xs[len(xs)-1]
	sd := StdDev(ys)

	projected := slope * windowHours
	if math.Abs(projected) <= sd/2 || windowHours == 0 {
		return models.MetricTrend{Trend: TrendStable, SlopePerHour: slope}
	}
	if slope > 0 {
		return models.MetricTrend{Trend: TrendRising, SlopePerHour: slope}
	}
	return models.MetricTrend{Trend: TrendFalling, SlopePerHour: slope}
}

// risingRisk converts a rising percentage trend into a 0-100 contribution:
// 5 points of gain per hour saturates the scale.
func risingRisk(t models.MetricTrend) float64 {
	if t.Trend != TrendRising {
		return 0
	}
	return clampComponent(t.SlopePerHour * 20)
}

// uptimeResetRisk scores restart churn: every reset per day costs 50 points.
func uptimeResetRisk(uptime []SeriesPoint) float64 {
	if len(uptime) < 2 {
		return 0
	}
	resets := 0
	for i := 1; i < len(uptime); i++ {
		if uptime[i].Value < uptime[i-1].Value {
			resets++
		}
	}
	if resets == 0 {
		return 0
	}
	windowDays := uptime[len(uptime)-1].Timestamp.Sub(uptime[0].Timestamp).Hours() / 24
	if windowDays < 1 {
		windowDays = 1
	}
	return clampComponent(float64(resets) / windowDays * 50)
}

func riskBucket(score float64) string {
	switch {
	case score < riskMediumCutoff:
		return RiskLow
	case score < riskHighCutoff:
		return RiskMedium
	case score < riskCriticalCutoff:
		return RiskHigh
	default:
		return RiskCritical
	}
}

// ceilingPrediction estimates hours until a rising metric breaches its
// ceiling by dividing the remaining headroom by the slope.
func ceilingPrediction(metric string, t models.MetricTrend, current, ceiling float64) *models.DegradationPrediction {
	if t.Trend != TrendRising || t.SlopePerHour <= 0 {
		return nil
	}
	if current >= ceiling {
		return &models.DegradationPrediction{
			Metric:  metric,
			Message: fmt.Sprintf("%s is already above %.0f%%", metric, ceiling),
		}
	}
	eta := (ceiling - current) / t.SlopePerHour
	return &models.DegradationPrediction{
		Metric:   metric,
		Message:  fmt.Sprintf("%s will exceed %.0f%% in about %.1f hours", metric, ceiling, eta),
		ETAHours: eta,
	}
}

func lastValue(points []SeriesPoint) float64 {
	if len(points) == 0 {
		return 0
	}
	return points[len(points)-1].Value
}
