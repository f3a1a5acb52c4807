package cleaning

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"gocleanse/adapters/datareadiness"
	"gocleanse/adapters/datareadiness/coercer"
	"gocleanse/domain/cleaning"
	"gocleanse/domain/core"
	"gocleanse/domain/datareadiness/profiling"
	"gocleanse/domain/dataset"
	"gocleanse/internal/logging"
)

func nums(name string, vals ...float64) *dataset.Column {
	values := make([]dataset.Value, len(vals))
	for i, v := range vals {
		values[i] = dataset.NewNumericValue(v)
	}
	return dataset.NewColumn(name, dataset.ValueTypeNumeric, values)
}

// strs treats "" as a missing cell
func strs(name string, raw ...string) *dataset.Column {
	values := make([]dataset.Value, len(raw))
	for i, s := range raw {
		if s == "" {
			values[i] = dataset.NewMissingValue()
			continue
		}
		values[i] = dataset.NewStringValue(s)
	}
	return dataset.NewColumn(name, dataset.ValueTypeString, values)
}

func withMissing(col *dataset.Column, rows ...int) *dataset.Column {
	for _, r := range rows {
		col.Values[r] = dataset.NewMissingValue()
	}
	return col
}

func newTable(t *testing.T, columns ...*dataset.Column) *dataset.Table {
	t.Helper()
	table, err := dataset.NewTable(columns...)
	require.NoError(t, err)
	return table
}

func newTestNormalizer() *Normalizer {
	c := coercer.NewTypeCoercer(coercer.DefaultCoercionConfig())
	profiler := datareadiness.NewProfilerAdapter(c, profiling.DefaultProfilingConfig())
	return NewNormalizer(profiler, c, logging.Discard())
}

// memoryStore keeps artifacts in maps
type memoryStore struct {
	registries map[string]cleaning.OutlierRegistry
	mappings   map[string]cleaning.CategoricalMapping
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		registries: make(map[string]cleaning.OutlierRegistry),
		mappings:   make(map[string]cleaning.CategoricalMapping),
	}
}

func (m *memoryStore) SaveRegistry(_ context.Context, name string, registry cleaning.OutlierRegistry) error {
	m.registries[name] = registry
	return nil
}

func (m *memoryStore) LoadRegistry(_ context.Context, name string) (cleaning.OutlierRegistry, error) {
	r, ok := m.registries[name]
	if !ok {
		return nil, core.ErrNotFound
	}
	return r, nil
}

func (m *memoryStore) SaveMapping(_ context.Context, name string, mapping cleaning.CategoricalMapping) error {
	m.mappings[name] = mapping
	return nil
}

func (m *memoryStore) LoadMapping(_ context.Context, name string) (cleaning.CategoricalMapping, error) {
	mp, ok := m.mappings[name]
	if !ok {
		return nil, core.ErrNotFound
	}
	return mp, nil
}
