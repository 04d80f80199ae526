package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeanDegenerateInputs(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 0.0, Mean([]float64{}))
	assert.Equal(t, 42.0, Mean([]float64{42}))
}

func TestStdDevDegenerateInputs(t *testing.T) {
	assert.Equal(t, 0.0, StdDev(nil))
	assert.Equal(t, 0.0, StdDev([]float64{7}))
	assert.InDelta(t, 2.0, StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 1e-9)
}

func TestMedian(t *testing.T) {
	assert.Equal(t, 0.0, Median(nil))
	assert.Equal(t, 3.0, Median([]float64{1, 3, 5}))
	assert.Equal(t, 2.5, Median([]float64{1, 2, 3, 4}))
}

func TestZScoreZeroSpread(t *testing.T) {
	assert.Equal(t, 0.0, ZScore(99, 10, 0))
	assert.Equal(t, 2.0, ZScore(14, 10, 2))
}

func TestCalculateSummaryEmpty(t *testing.T) {
	s := CalculateSummary(nil)
	assert.Equal(t, Summary{}, s)
}

func TestCalculateSummary(t *testing.T) {
	s := CalculateSummary([]float64{1, 2, 3, 4, 5})
	assert.Equal(t, 3.0, s.Mean)
	assert.Equal(t, 3.0, s.Median)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 5.0, s.Max)
	assert.Equal(t, 5, s.Count)
}

func TestDetectOutliersIdenticalValues(t *testing.T) {
	outliers, err := DetectOutliers([]float64{5, 5, 5, 5, 5}, 2)
	require.NoError(t, err)
	assert.Empty(t, outliers)
}

func TestDetectOutliersTooFewSamples(t *testing.T) {
	outliers, err := DetectOutliers([]float64{1, 100}, 2)
	require.NoError(t, err)
	assert.Empty(t, outliers)
}

func TestDetectOutliersInvalidThreshold(t *testing.T) {
	_, err := DetectOutliers([]float64{1, 2, 3}, 0)
	assert.ErrorIs(t, err, ErrInvalidThreshold)

	_, err = DetectOutliers([]float64{1, 2, 3}, -1)
	assert.ErrorIs(t, err, ErrInvalidThreshold)
}

func TestDetectOutliersCPUSpike(t *testing.T) {
	series := []float64{10, 15, 20, 25, 30, 35, 90}

	outliers, err := DetectOutliers(series, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{6}, outliers)

	category := CategorizeValue(90, Mean(series), StdDev(series))
	assert.Contains(t, []string{CategoryHigh, CategoryVeryHigh}, category)
}

func TestCategorizeValueZeroStdDev(t *testing.T) {
	// Guards divide-by-zero: zero spread always reads normal.
	assert.Equal(t, CategoryNormal, CategorizeValue(1000, 10, 0))
	assert.Equal(t, CategoryNormal, CategorizeValue(-1000, 10, 0))
}

func TestCategorizeValueBands(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  string
	}{
		{"very low", -40, CategoryVeryLow},
		{"low", -15, CategoryLow},
		{"normal low edge", -10, CategoryNormal},
		{"normal", 10, CategoryNormal},
		{"high", 35, CategoryHigh},
		{"very high", 50, CategoryVeryHigh},
	}

	// mean 10, stddev 10
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CategorizeValue(tt.value, 10, 10))
		})
	}
}

func TestPercentileRank(t *testing.T) {
	xs := []float64{10, 20, 30, 40}

	assert.Equal(t, 0.0, PercentileRank(5, nil))
	assert.Equal(t, 0.0, PercentileRank(10, xs))  // nothing strictly below
	assert.Equal(t, 50.0, PercentileRank(25, xs)) // 2 of 4 below
	assert.Equal(t, 100.0, PercentileRank(99, xs))
}

func TestPercentileEmpty(t *testing.T) {
	assert.Equal(t, 0.0, Percentile(nil, 50))
}

func TestSlopeCleanLine(t *testing.T) {
	xs := []float64{0, 1, 2, 3, 4}
	ys := []float64{10, 13, 16, 19, 22}
	assert.InDelta(t, 3.0, Slope(xs, ys), 1e-9)
}

func TestSlopeNegative(t *testing.T) {
	xs := []float64{0, 2, 4, 6}
	ys := []float64{100, 95, 90, 85}
	assert.InDelta(t, -2.5, Slope(xs, ys), 1e-9)
}

func TestSlopeDegenerateInputs(t *testing.T) {
	assert.Equal(t, 0.0, Slope(nil, nil))
	assert.Equal(t, 0.0, Slope([]float64{1}, []float64{5}))
	assert.Equal(t, 0.0, Slope([]float64{1, 2}, []float64{5})) // mismatched
	// Identical x values have no spread to regress over.
	assert.Equal(t, 0.0, Slope([]float64{3, 3, 3}, []float64{1, 2, 3}))
}
