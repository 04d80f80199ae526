package analytics

import (
	"math"
	"time"

	"pulse/models"
)

// Forecast horizons, pinned: next week through next 6 months.
var forecastHorizons = []struct {
	Label string
	Days  int
}{
	{"1w", 7},
	{"1m", 30},
	{"3m", 90},
	{"6m", 180},
}

// ForecastValues extrapolates a daily series (storage bytes, node count) to
// the fixed horizons. Growth that looks multiplicative is fitted in log
// space. Fewer than three points returns ErrInsufficientData.
func ForecastValues(metric string, points []models.TrendPoint, now time.Time) (models.CapacityForecast, error) {
	if len(points) < 3 {
		return models.CapacityForecast{}, ErrInsufficientData
	}

	t0 := points[0].Date
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	allPositive := true
	for i, p := range points {
		xs[i] = p.Date.Sub(t0).Hours() / 24
		ys[i] = p.Value
		if p.Value <= 0 {
			allPositive = false
		}
	}

	current := ys[len(ys)-1]
	first := ys[0]

	forecast := models.CapacityForecast{
		Metric:       metric,
		CurrentValue: current,
		DataPoints:   len(points),
		GeneratedAt:  now,
		Model:        "linear",
	}

	// Log-linear when the series is strictly positive and grew by more than
	// half over the window: that growth resembles a fraction, not a fixed
	// increment.
	useLog := allPositive && first > 0 && current/first > 1.5

	var project func(days float64) float64

	if useLog {
		forecast.Model = "log-linear"
		logYs := make([]float64, len(ys))
		for i, y := range ys {
			logYs[i] = math.Log(y)
		}
		k := Slope(xs, logYs)
		project = func(days float64) float64 {
			return current * math.Exp(k*days)
		}
		forecast.RatePerDay = current * (math.Exp(k) - 1)
	} else {
		slope := Slope(xs, ys)
		project = func(days float64) float64 {
			return current + slope*days
		}
		forecast.RatePerDay = slope
	}

	for _, h := range forecastHorizons {
		v := project(float64(h.Days))
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		forecast.Projections = append(forecast.Projections, models.HorizonProjection{
			Horizon: h.Label,
			Date:    now.AddDate(0, 0, h.Days),
			Value:   v,
		})
	}

	return forecast, nil
}

// ForecastNetwork pairs storage and node-count trajectories with the fleet's
// current liveness totals.
func ForecastNetwork(active, inactive int, storage, nodeCounts []models.TrendPoint, now time.Time) (models.NetworkForecast, error) {
	storageFc, err := ForecastValues("storage_bytes", storage, now)
	if err != nil {
		return models.NetworkForecast{}, err
	}
	nodeFc, err := ForecastValues("node_count", nodeCounts, now)
	if err != nil {
		return models.NetworkForecast{}, err
	}
	return models.NetworkForecast{
		ActiveNodes:   active,
		InactiveNodes: inactive,
		Storage:       storageFc,
		NodeCount:     nodeFc,
	}, nil
}
