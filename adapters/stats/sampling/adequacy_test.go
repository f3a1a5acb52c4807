package sampling

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gocleanse/adapters/stats/lookup"
	"gocleanse/domain/core"
	"gocleanse/domain/dataset"
)

func newChecker(t *testing.T) *Checker {
	t.Helper()
	table, err := lookup.Default()
	require.NoError(t, err)
	return NewChecker(table)
}

func TestRequiredSampleSize(t *testing.T) {
	tests := []struct {
		name       string
		population float64
		confidence float64
		margin     float64
		expected   int
	}{
		{name: "small population", population: 100, confidence: 0.95, margin: 0.05, expected: 80},
		{name: "thousand", population: 1000, confidence: 0.95, margin: 0.05, expected: 278},
		{name: "tight margin", population: 10000, confidence: 0.99, margin: 0.01, expected: 6239},
		{name: "fractional population", population: 150.5, confidence: 0.95, margin: 0.05, expected: 109},
		{name: "proportion below one", population: 0.5, confidence: 0.95, margin: 0.05, expected: 1},
	}

	checker := newChecker(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := checker.RequiredSampleSize(tt.population, tt.confidence, tt.margin)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, n)
		})
	}
}

func TestRequiredSampleSizeValidation(t *testing.T) {
	checker := newChecker(t)

	cases := []Request{
		{Population: 0, Confidence: 0.95, MarginError: 0.05},
		{Population: -5, Confidence: 0.95, MarginError: 0.05},
		{Population: math.NaN(), Confidence: 0.95, MarginError: 0.05},
		{Population: math.Inf(1), Confidence: 0.95, MarginError: 0.05},
		{Population: 100, Confidence: 1.0, MarginError: 0.05},
		{Population: 100, Confidence: 0, MarginError: 0.05},
		{Population: 100, Confidence: 0.95, MarginError: 0},
		{Population: 100, Confidence: 0.95, MarginError: 1},
	}
	for _, req := range cases {
		_, err := checker.Calculate(req)
		assert.ErrorIs(t, err, core.ErrValidation, "%+v", req)
	}
}

func TestRequiredSampleSizeMissingKey(t *testing.T) {
	checker := newChecker(t)

	// 0.333 adjusts to 0.6665, which is not in the table
	_, err := checker.RequiredSampleSize(100, 0.333, 0.05)
	assert.ErrorIs(t, err, core.ErrLookup)
}

func TestCalculateReportsInputs(t *testing.T) {
	result, err := newChecker(t).Calculate(Request{Population: 100, Confidence: 0.95, MarginError: 0.05})
	require.NoError(t, err)
	assert.Equal(t, "0.975", result.AdjustedKey)
	assert.Equal(t, 1.96, result.CriticalValue)
	assert.Equal(t, 80, result.Required)
}

func TestIsAdequate(t *testing.T) {
	values := make([]dataset.Value, 81)
	for i := range values {
		values[i] = dataset.NewNumericValue(float64(i))
	}
	table, err := dataset.NewTable(dataset.NewColumn("x", dataset.ValueTypeNumeric, values))
	require.NoError(t, err)

	checker := newChecker(t)
	ok, required, err := checker.IsAdequate(table, 100, 0.95, 0.05)
	require.NoError(t, err)
	assert.Equal(t, 80, required)
	assert.True(t, ok)

	ok, _, err = checker.IsAdequate(table.Head(80), 100, 0.95, 0.05)
	require.NoError(t, err)
	assert.False(t, ok)
}
