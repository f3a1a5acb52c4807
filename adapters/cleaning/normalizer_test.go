package cleaning

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gocleanse/domain/core"
	"gocleanse/domain/datareadiness/profiling"
	"gocleanse/domain/dataset"
)

func TestNormalize(t *testing.T) {
	table := newTable(t,
		strs("joined", "2020-01-05", "", "2021-02-03"),
		strs("amount", "1,234", "12", "5,000.5"),
		strs("city", " New York", "BOSTON", ""),
		nums("score", 1, 2, 3),
	)

	results, err := newTestNormalizer().Normalize(table)
	require.NoError(t, err)
	require.Len(t, results, 4)
	assert.Equal(t, profiling.KindDatetime, results[0].Kind)
	assert.Equal(t, "to_timestamp", results[0].Action)
	assert.Equal(t, "none", results[3].Action)

	joined, _ := table.Column("joined")
	assert.Equal(t, dataset.ValueTypeTimestamp, joined.Type)
	assert.True(t, joined.Values[0].AsTime().Equal(time.Date(2020, 1, 5, 0, 0, 0, 0, time.UTC)))
	assert.True(t, joined.Values[1].IsMissing())

	amount, _ := table.Column("amount")
	assert.Equal(t, dataset.ValueTypeNumeric, amount.Type)
	got, _ := amount.Floats()
	assert.Equal(t, []float64{1234, 12, 5000.5}, got)

	city, _ := table.Column("city")
	assert.Equal(t, "newyork", city.Values[0].AsString())
	assert.Equal(t, "boston", city.Values[1].AsString())
	assert.True(t, city.Values[2].IsMissing())
}

func TestNormalizeFailedColumnLeftUntouched(t *testing.T) {
	table := newTable(t,
		strs("price", "1,234", "$12"),
		strs("city", "Paris", "ROME"),
	)

	_, err := newTestNormalizer().Normalize(table)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrConversion)

	price, _ := table.Column("price")
	assert.Equal(t, dataset.ValueTypeString, price.Type)
	assert.Equal(t, "$12", price.Values[1].AsString())

	// the other columns are still processed
	city, _ := table.Column("city")
	assert.Equal(t, "rome", city.Values[1].AsString())
}

func TestNormalizeDatetimeWithUnparsableValue(t *testing.T) {
	table := newTable(t, strs("when", "2020-01-01", "2020-01-02", "soon"))

	_, err := newTestNormalizer().NormalizeColumn(table, "when")
	assert.ErrorIs(t, err, core.ErrConversion)

	col, _ := table.Column("when")
	assert.Equal(t, dataset.ValueTypeString, col.Type)
}

func TestNormalizeUnknownColumn(t *testing.T) {
	table := newTable(t, nums("a", 1))
	_, err := newTestNormalizer().NormalizeColumn(table, "missing")
	assert.ErrorIs(t, err, core.ErrColumnNotFound)
}
