// Package cleaning implements the table-mutating cleaning components.
// Every component mutates the *dataset.Table it is given in place.
package cleaning

import (
	"errors"
	"fmt"
	"log/slog"

	"gocleanse/adapters/datareadiness/coercer"
	"gocleanse/domain/core"
	"gocleanse/domain/datareadiness/profiling"
	"gocleanse/domain/dataset"
	"gocleanse/internal/logging"
	"gocleanse/ports"
)

// ColumnNormalization records what happened to one column
type ColumnNormalization struct {
	Column string         `json:"column"`
	Kind   profiling.Kind `json:"kind"`
	Action string         `json:"action"` // "to_timestamp", "to_numeric", "clean_text" or "none"
}

// Normalizer rewrites columns into a canonical representation for their kind
type Normalizer struct {
	profiler ports.ProfilerPort
	coercer  *coercer.TypeCoercer
	logger   *slog.Logger
}

// NewNormalizer creates a normalizer
func NewNormalizer(profiler ports.ProfilerPort, coercerInstance *coercer.TypeCoercer, logger *slog.Logger) *Normalizer {
	return &Normalizer{
		profiler: profiler,
		coercer:  coercerInstance,
		logger:   logging.WithComponent(logger, "normalizer"),
	}
}

// Normalize classifies and rewrites every column.
//
// A column that fails conversion is left unmodified; the remaining columns are
// still processed and the failures are returned joined.
func (n *Normalizer) Normalize(t *dataset.Table) ([]ColumnNormalization, error) {
	results := make([]ColumnNormalization, 0, t.ColumnCount())
	var errs []error
	for _, name := range t.ColumnNames() {
		result, err := n.NormalizeColumn(t, name)
		if err != nil {
			n.logger.Warn("column left unnormalized", "column", name, "error", err)
			errs = append(errs, err)
			continue
		}
		results = append(results, result)
	}
	return results, errors.Join(errs...)
}

// NormalizeColumn classifies and rewrites a single column
func (n *Normalizer) NormalizeColumn(t *dataset.Table, name string) (ColumnNormalization, error) {
	col, err := t.Column(name)
	if err != nil {
		return ColumnNormalization{}, err
	}

	kind := n.profiler.Classify(col)
	result := ColumnNormalization{Column: name, Kind: kind, Action: "none"}

	// Columns already stored natively need no rewrite
	if col.Type != dataset.ValueTypeString {
		return result, nil
	}

	var converted *dataset.Column
	switch kind {
	case profiling.KindDatetime:
		converted, err = n.toTimestamp(col)
		result.Action = "to_timestamp"
	case profiling.KindNumericFormatted:
		converted, err = n.toNumeric(col)
		result.Action = "to_numeric"
	case profiling.KindCategoricalText:
		converted = n.cleanText(col)
		result.Action = "clean_text"
	default:
		return result, nil
	}
	if err != nil {
		return ColumnNormalization{}, err
	}

	if err := t.ReplaceColumn(name, converted); err != nil {
		return ColumnNormalization{}, fmt.Errorf("replace column %q: %w", name, err)
	}
	n.logger.Debug("column normalized", "column", name, "kind", kind, "action", result.Action)
	return result, nil
}

func (n *Normalizer) toTimestamp(col *dataset.Column) (*dataset.Column, error) {
	values := make([]dataset.Value, col.Len())
	for i, v := range col.Values {
		if v.IsMissing() {
			values[i] = v
			continue
		}
		ts, ok := n.coercer.ParseTimestamp(v.String())
		if !ok {
			return nil, core.NewConversionError(col.Name, i, v.String(), fmt.Errorf("not a recognized date/time"))
		}
		values[i] = dataset.NewTimestampValue(ts)
	}
	return dataset.NewColumn(col.Name, dataset.ValueTypeTimestamp, values), nil
}

func (n *Normalizer) toNumeric(col *dataset.Column) (*dataset.Column, error) {
	values := make([]dataset.Value, col.Len())
	for i, v := range col.Values {
		if v.IsMissing() {
			values[i] = v
			continue
		}
		f, err := n.coercer.ParseFormattedNumeric(v.String())
		if err != nil {
			return nil, core.NewConversionError(col.Name, i, v.String(), err)
		}
		values[i] = dataset.NewNumericValue(f)
	}
	return dataset.NewColumn(col.Name, dataset.ValueTypeNumeric, values), nil
}

func (n *Normalizer) cleanText(col *dataset.Column) *dataset.Column {
	values := make([]dataset.Value, col.Len())
	for i, v := range col.Values {
		if v.IsMissing() {
			values[i] = v
			continue
		}
		values[i] = dataset.NewStringValue(n.coercer.NormalizeText(v.String()))
	}
	return dataset.NewColumn(col.Name, dataset.ValueTypeString, values)
}
