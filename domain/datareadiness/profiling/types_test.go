package profiling

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gocleanse/domain/dataset"
)

func TestMissingCounts(t *testing.T) {
	table, err := dataset.NewTable(
		dataset.NewColumn("a", dataset.ValueTypeNumeric, []dataset.Value{dataset.NewNumericValue(1), dataset.NewMissingValue()}),
		dataset.NewColumn("b", dataset.ValueTypeString, []dataset.Value{dataset.NewStringValue("x"), dataset.NewStringValue("y")}),
	)
	require.NoError(t, err)

	report := MissingCounts(table)
	assert.Equal(t, MissingReport{{Column: "a", Count: 1}, {Column: "b", Count: 0}}, report)
	assert.Equal(t, 1, report.Total())
	assert.Equal(t, 1, report.Count("a"))
	assert.Equal(t, 0, report.Count("absent"))
	assert.Equal(t, []string{"a"}, report.ColumnsWithMissing())
}

func TestNumericSummary_MarshalJSONWithUndefinedStdDev(t *testing.T) {
	summary := NumericSummary{Mean: 4, StdDev: math.NaN(), Min: 4, Q25: 4, Median: 4, Q75: 4, Max: 4}

	data, err := json.Marshal(summary)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Nil(t, decoded["std_dev"])
	assert.Equal(t, 4.0, decoded["mean"])
}

func TestProfilingResult_KindOf(t *testing.T) {
	result := &ProfilingResult{Profiles: []ColumnProfile{{Column: "when", Kind: KindDatetime}}}

	kind, ok := result.KindOf("when")
	assert.True(t, ok)
	assert.Equal(t, KindDatetime, kind)

	_, ok = result.KindOf("other")
	assert.False(t, ok)
}
