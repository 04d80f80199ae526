package analytics

import (
	"math"

	"github.com/montanaflynn/stats"
)

// Value categories relative to the network distribution.
const (
	CategoryVeryLow  = "very_low"
	CategoryLow      = "low"
	CategoryNormal   = "normal"
	CategoryHigh     = "high"
	CategoryVeryHigh = "very_high"
)

// Summary holds descriptive statistics for a series.
type Summary struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Count  int     `json:"count"`
}

// Mean returns the arithmetic mean, 0 for an empty series.
func Mean(xs []float64) float64 {
	m, err := stats.Mean(xs)
	if err != nil {
		return 0
	}
	return m
}

// Median returns the middle value, 0 for an empty series.
func Median(xs []float64) float64 {
	m, err := stats.Median(xs)
	if err != nil {
		return 0
	}
	return m
}

// StdDev returns the population standard deviation. Series with fewer than
// two samples have no spread and yield 0.
func StdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	sd, err := stats.StandardDeviationPopulation(xs)
	if err != nil {
		return 0
	}
	return sd
}

// ZScore returns how many standard deviations value sits from mean, 0 when
// the spread is zero.
func ZScore(value, mean, stdDev float64) float64 {
	if stdDev == 0 {
		return 0
	}
	return (value - mean) / stdDev
}

// Slope returns the least-squares slope of ys against xs, 0 for a
// degenerate x spread or mismatched series.
func Slope(xs, ys []float64) float64 {
	if len(xs) < 2 || len(xs) != len(ys) {
		return 0
	}

	series := make(stats.Series, len(xs))
	for i := range xs {
		series[i] = stats.Coordinate{X: xs[i], Y: ys[i]}
	}
	fitted, err := stats.LinearRegression(series)
	if err != nil || len(fitted) < 2 {
		return 0
	}

	run := fitted[len(fitted)-1].X - fitted[0].X
	if run == 0 {
		return 0
	}
	slope := (fitted[len(fitted)-1].Y - fitted[0].Y) / run
	if math.IsNaN(slope) || math.IsInf(slope, 0) {
		return 0
	}
	return slope
}

// CalculateSummary computes descriptive statistics in one pass. An empty
// series yields the zero Summary.
func CalculateSummary(xs []float64) Summary {
	if len(xs) == 0 {
		return Summary{}
	}
	min, _ := stats.Min(xs)
	max, _ := stats.Max(xs)
	return Summary{
		Mean:   Mean(xs),
		Median: Median(xs),
		StdDev: StdDev(xs),
		Min:    min,
		Max:    max,
		Count:  len(xs),
	}
}

// DetectOutliers returns indices of values more than thresholdStdDevs from
// the mean. Fewer than 3 samples or zero variance yields no outliers. A
// non-positive threshold is a caller bug and fails fast.
func DetectOutliers(xs []float64, thresholdStdDevs float64) ([]int, error) {
	if thresholdStdDevs <= 0 {
		return nil, ErrInvalidThreshold
	}
	if len(xs) < 3 {
		return []int{}, nil
	}
	mean := Mean(xs)
	sd := StdDev(xs)
	if sd == 0 {
		return []int{}, nil
	}

	outliers := []int{}
	for i, v := range xs {
		if math.Abs(ZScore(v, mean, sd)) > thresholdStdDevs {
			outliers = append(outliers, i)
		}
	}
	return outliers, nil
}

// CategorizeValue places value into a band relative to the distribution,
// using z-score cutoffs at +-2 and +-3. Zero spread always reads normal.
func CategorizeValue(value, mean, stdDev float64) string {
	z := ZScore(value, mean, stdDev)
	switch {
	case z < -3:
		return CategoryVeryLow
	case z < -2:
		return CategoryLow
	case z > 3:
		return CategoryVeryHigh
	case z > 2:
		return CategoryHigh
	default:
		return CategoryNormal
	}
}

// PercentileRank returns the percentage of values strictly below value,
// 0 for an empty series.
func PercentileRank(value float64, xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	below := 0
	for _, v := range xs {
		if v < value {
			below++
		}
	}
	return float64(below) / float64(len(xs)) * 100
}

// Percentile returns the pth percentile of the series, 0 when the series is
// empty or p is out of range.
func Percentile(xs []float64, p float64) float64 {
	v, err := stats.Percentile(xs, p)
	if err != nil {
		return 0
	}
	return v
}
