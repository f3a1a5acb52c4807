package cleaning

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gocleanse/domain/cleaning"
	"gocleanse/domain/core"
	"gocleanse/domain/dataset"
	"gocleanse/internal/logging"
)

func TestFillZeroClearsMissing(t *testing.T) {
	table := newTable(t, withMissing(nums("age", 30, 0, 40, 0), 1, 3))
	manager := NewMissingManager(logging.Discard())

	filled, err := manager.FillColumn(table, "age", cleaning.FillStrategy{Method: cleaning.FillZero})
	require.NoError(t, err)
	assert.Equal(t, 2, filled)
	assert.Equal(t, 0, manager.Detect(table).Count("age"))

	col, _ := table.Column("age")
	assert.Equal(t, 0.0, col.Values[1].AsFloat64())
	assert.Equal(t, 0.0, col.Values[3].AsFloat64())
	assert.Equal(t, 40.0, col.Values[2].AsFloat64())
}

func TestFillMeanAndMedian(t *testing.T) {
	tests := []struct {
		name     string
		method   cleaning.FillMethod
		expected float64
	}{
		{name: "mean", method: cleaning.FillMean, expected: 4},
		{name: "median", method: cleaning.FillMedian, expected: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := newTable(t, withMissing(nums("x", 1, 2, 9, 0), 3))
			_, err := NewMissingManager(logging.Discard()).FillColumn(table, "x", cleaning.FillStrategy{Method: tt.method})
			require.NoError(t, err)

			col, _ := table.Column("x")
			assert.InDelta(t, tt.expected, col.Values[3].AsFloat64(), 1e-12)
		})
	}
}

func TestFillConstantUpcastsToString(t *testing.T) {
	table := newTable(t, withMissing(nums("x", 1.5, 0), 1))

	_, err := NewMissingManager(logging.Discard()).FillColumn(table, "x", cleaning.FillStrategy{Method: cleaning.FillConstant})
	require.NoError(t, err)

	col, _ := table.Column("x")
	assert.Equal(t, dataset.ValueTypeString, col.Type)
	assert.Equal(t, "1.5", col.Values[0].AsString())
	assert.Equal(t, cleaning.DefaultFillConstant, col.Values[1].AsString())
}

func TestFillRejections(t *testing.T) {
	boolCol := dataset.NewColumn("flag", dataset.ValueTypeBoolean, []dataset.Value{
		dataset.NewBooleanValue(true), dataset.NewMissingValue(),
	})
	table := newTable(t, strs("name", "a", ""), boolCol)
	manager := NewMissingManager(logging.Discard())

	_, err := manager.FillColumn(table, "name", cleaning.FillStrategy{Method: cleaning.FillZero})
	assert.ErrorIs(t, err, core.ErrUnsupportedOperation)

	_, err = manager.FillColumn(table, "name", cleaning.FillStrategy{Method: cleaning.FillConstant})
	assert.ErrorIs(t, err, core.ErrUnsupportedOperation)

	_, err = manager.FillColumn(table, "flag", cleaning.FillStrategy{Method: cleaning.FillMean})
	assert.ErrorIs(t, err, core.ErrUnsupportedOperation)

	_, err = manager.FillColumn(table, "nope", cleaning.FillStrategy{Method: cleaning.FillZero})
	assert.ErrorIs(t, err, core.ErrColumnNotFound)
	assert.True(t, core.IsNotFoundError(err))

	// rejected fills leave the data alone
	assert.Equal(t, 1, manager.Detect(table).Count("name"))
}

func TestDropRows(t *testing.T) {
	build := func() *dataset.Table {
		return newTable(t,
			withMissing(nums("a", 1, 0, 3, 4), 1),
			strs("b", "x", "y", "", "w"),
		)
	}
	manager := NewMissingManager(logging.Discard())

	table := build()
	removed, err := manager.DropRows(table, "a")
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 3, table.RowCount())

	table = build()
	removed, err = manager.DropRows(table, cleaning.AllColumns)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.Equal(t, 0, manager.Detect(table).Total())

	a, _ := table.Column("a")
	got, _ := a.Floats()
	assert.Equal(t, []float64{1, 4}, got)

	_, err = manager.DropRows(build(), "zzz")
	assert.ErrorIs(t, err, core.ErrColumnNotFound)
}
