package profiling

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	summary, err := Summarize([]float64{1, 2, 3, 4, 5})
	require.NoError(t, err)

	assert.Equal(t, 3.0, summary.Mean)
	assert.Equal(t, 3.0, summary.Median)
	assert.Equal(t, 1.0, summary.Min)
	assert.Equal(t, 5.0, summary.Max)
	assert.InDelta(t, math.Sqrt(2.5), summary.StdDev, 1e-12)
	assert.InDelta(t, 0, summary.Skewness, 1e-12)

	_, err = Summarize(nil)
	assert.Error(t, err)
}

func TestSummarizeSingleValue(t *testing.T) {
	summary, err := Summarize([]float64{7})
	require.NoError(t, err)
	assert.True(t, math.IsNaN(summary.StdDev))
	assert.Equal(t, 0.0, summary.Skewness)
}

func TestMode(t *testing.T) {
	tests := []struct {
		name string
		data []float64
		want float64
	}{
		{name: "single mode", data: []float64{1, 2, 2, 3}, want: 2},
		{name: "tie picks smallest", data: []float64{5, 5, 1, 1, 3}, want: 1},
		{name: "all distinct picks smallest", data: []float64{9, 4, 7}, want: 4},
		{name: "single value", data: []float64{3}, want: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Mode(tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPopulationMeanStdDev(t *testing.T) {
	mean, std, err := PopulationMeanStdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	require.NoError(t, err)
	assert.Equal(t, 5.0, mean)
	assert.Equal(t, 2.0, std)
}
