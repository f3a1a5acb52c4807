package lookup

import (
	"math"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/distuv"

	"gocleanse/domain/core"
)

func TestDefaultTable(t *testing.T) {
	table, err := Default()
	require.NoError(t, err)
	assert.Equal(t, 52, table.Len())

	z, err := table.CriticalValue("0.975")
	require.NoError(t, err)
	assert.Equal(t, 1.96, z)

	z, err = table.CriticalValue("0.995")
	require.NoError(t, err)
	assert.Equal(t, 2.5758, z)

	_, err = table.CriticalValue("0.9750")
	assert.ErrorIs(t, err, core.ErrLookup)
}

func TestDefaultTableMatchesNormalQuantile(t *testing.T) {
	table, err := Default()
	require.NoError(t, err)

	for _, key := range table.Keys() {
		level, err := strconv.ParseFloat(key, 64)
		require.NoError(t, err)
		z, _ := table.CriticalValue(key)
		assert.InDelta(t, distuv.UnitNormal.Quantile(level), z, 1e-4, key)
	}
}

func TestKey(t *testing.T) {
	tests := map[float64]string{
		0.95:  "0.975",
		0.99:  "0.995",
		0.5:   "0.75",
		0.6:   "0.8",
		0.999: "0.9995",
	}
	for confidence, want := range tests {
		assert.Equal(t, want, Key(confidence))
	}
}

func TestGenerateCoversDefaultKeys(t *testing.T) {
	generated, err := Generate(DefaultConfidenceLevels())
	require.NoError(t, err)

	embedded, err := Default()
	require.NoError(t, err)
	assert.Equal(t, embedded.Keys(), generated.Keys())

	for _, key := range embedded.Keys() {
		want, _ := embedded.CriticalValue(key)
		got, _ := generated.CriticalValue(key)
		assert.LessOrEqual(t, math.Abs(want-got), 1e-4+1e-12, key)
	}

	_, err = Generate([]float64{1})
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestLoadAndWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.json")

	generated, err := Generate([]float64{0.9, 0.95})
	require.NoError(t, err)
	require.NoError(t, generated.WriteFile(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"0.95", "0.975"}, loaded.Keys())

	_, err = Load(filepath.Join(t.TempDir(), "absent.json"))
	assert.ErrorIs(t, err, core.ErrConfiguration)

	embedded, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 52, embedded.Len())
}

func TestParseRejectsMalformedTables(t *testing.T) {
	cases := map[string]string{
		"not json":     `{"values": `,
		"no values":    `{"other": {}}`,
		"string value": `{"values": {"0.975": "1.96"}}`,
		"empty values": `{"values": {}}`,
		"values array": `{"values": [1.96]}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.ErrorIs(t, err, core.ErrConfiguration)
		})
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`[]`), 0644))
	_, err := Load(path)
	assert.ErrorIs(t, err, core.ErrConfiguration)
}
