package cleaning

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gocleanse/domain/cleaning"
	"gocleanse/domain/core"
	"gocleanse/domain/dataset"
	"gocleanse/internal/logging"
)

// 1000 sits at z ~ 3.46 among twelve values clustered around 11.5
func priceColumn() *dataset.Column {
	return nums("price", 10, 12, 11, 13, 10, 12, 11, 13, 10, 12, 11, 13, 1000)
}

func TestDetectFlagsOnlyTheExtremeValue(t *testing.T) {
	table := newTable(t, priceColumn())

	registry := NewOutlierEngine(logging.Discard()).Detect(table)

	require.Len(t, registry, 1)
	assert.Equal(t, []cleaning.OutlierFlag{{Column: "price", Value: 1000}}, registry.Flags(12))
}

func TestDetectFiveValuesCannotExceedThreshold(t *testing.T) {
	// the population z-score of any of n values is at most sqrt(n-1), which is 2 for n = 5
	table := newTable(t, nums("price", 10, 12, 11, 13, 1000))

	registry := NewOutlierEngine(logging.Discard()).Detect(table)
	assert.Equal(t, 0, registry.Len())
}

func TestDetectSkipsConstantAndTextColumns(t *testing.T) {
	table := newTable(t,
		nums("flat", 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5),
		strs("label", "a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l", "m"),
	)
	assert.Equal(t, 0, NewOutlierEngine(logging.Discard()).Detect(table).Len())
}

func TestDetectOrdersFlagsByColumn(t *testing.T) {
	table := newTable(t,
		nums("b", 1, 2, 1, 2, 1, 2, 1, 2, 1, 2, 1, 2, 500),
		priceColumn(),
	)

	registry := NewOutlierEngine(logging.Discard()).Detect(table)
	assert.Equal(t, []cleaning.OutlierFlag{
		{Column: "b", Value: 500},
		{Column: "price", Value: 1000},
	}, registry.Flags(12))
}

func TestHandleReplacements(t *testing.T) {
	tests := []struct {
		name     string
		method   cleaning.OutlierMethod
		expected float64
	}{
		{name: "median", method: cleaning.OutlierMedian, expected: 2},
		{name: "mode picks the smallest tie", method: cleaning.OutlierMode, expected: 1},
		{name: "mean includes the outlier", method: cleaning.OutlierMean, expected: 518.0 / 13},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := newTable(t, nums("b", 1, 2, 1, 2, 1, 2, 1, 2, 1, 2, 1, 2, 500))
			engine := NewOutlierEngine(logging.Discard())
			registry := engine.Detect(table)

			actions, err := engine.Handle(table, registry, tt.method)
			require.NoError(t, err)
			require.Len(t, actions, 1)
			assert.Equal(t, 12, actions[0].Row)
			assert.Equal(t, 500.0, actions[0].Old)
			assert.InDelta(t, tt.expected, actions[0].New, 1e-9)

			cell, err := table.Cell(12, "b")
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, cell.AsFloat64(), 1e-9)

			// replaying the same registry finds nothing left to change
			again, err := engine.Handle(table, registry, tt.method)
			require.NoError(t, err)
			assert.Empty(t, again)
		})
	}
}

func TestHandleRemoveDropsRowOnce(t *testing.T) {
	table := newTable(t,
		nums("b", 1, 2, 1, 2, 1, 2, 1, 2, 1, 2, 1, 2, 500),
		priceColumn(),
	)
	engine := NewOutlierEngine(logging.Discard())
	registry := engine.Detect(table)
	require.Len(t, registry.Flags(12), 2)

	actions, err := engine.Handle(table, registry, cleaning.OutlierRemove)
	require.NoError(t, err)
	assert.Len(t, actions, 1)
	assert.True(t, actions[0].Removed)
	assert.Equal(t, 12, table.RowCount())
}

func TestHandleErrors(t *testing.T) {
	engine := NewOutlierEngine(logging.Discard())
	table := newTable(t, nums("x", 1, 2, 3), strs("s", "a", "b", "c"))

	outOfRange := cleaning.NewOutlierRegistry()
	outOfRange.Add(7, "x", 1)
	_, err := engine.Handle(table, outOfRange, cleaning.OutlierMedian)
	assert.ErrorIs(t, err, core.ErrRowOutOfRange)

	textColumn := cleaning.NewOutlierRegistry()
	textColumn.Add(0, "s", 1)
	_, err = engine.Handle(table, textColumn, cleaning.OutlierMedian)
	assert.ErrorIs(t, err, core.ErrUnsupportedOperation)

	unknownColumn := cleaning.NewOutlierRegistry()
	unknownColumn.Add(0, "gone", 1)
	_, err = engine.Handle(table, unknownColumn, cleaning.OutlierMedian)
	assert.ErrorIs(t, err, core.ErrColumnNotFound)

	paddedKey := cleaning.OutlierRegistry{"02": {{Column: "x", Value: 3}}}
	_, err = engine.Handle(table, paddedKey, cleaning.OutlierMedian)
	assert.ErrorIs(t, err, core.ErrValidation)

	_, err = engine.Handle(table, cleaning.NewOutlierRegistry(), cleaning.OutlierMethod("winsorize"))
	assert.ErrorIs(t, err, core.ErrUnsupportedOperation)

	// nothing was touched by the failed calls
	assert.Equal(t, 3, table.RowCount())
	cell, _ := table.Cell(0, "x")
	assert.Equal(t, 1.0, cell.AsFloat64())
}

func TestDetectAndPersistThenHandle(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	engine := NewOutlierEngine(logging.Discard())
	table := newTable(t, priceColumn())

	registry, err := engine.DetectAndPersist(ctx, table, store, "outliers.json")
	require.NoError(t, err)
	assert.Equal(t, registry, store.registries["outliers.json"])

	actions, err := engine.LoadAndHandle(ctx, table, store, "outliers.json", cleaning.OutlierMedian)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, 12.0, actions[0].New)

	_, err = engine.LoadAndHandle(ctx, table, store, "absent.json", cleaning.OutlierMedian)
	assert.ErrorIs(t, err, core.ErrNotFound)
}
