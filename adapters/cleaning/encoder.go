package cleaning

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"gocleanse/domain/cleaning"
	"gocleanse/domain/core"
	"gocleanse/domain/dataset"
	"gocleanse/internal/logging"
	"gocleanse/ports"
)

// EncoderConfig controls code assignment
type EncoderConfig struct {
	Order         cleaning.CategoryOrder
	UnknownPolicy cleaning.UnknownCategoryPolicy
}

// DefaultEncoderConfig returns sorted codes and strict handling of unseen values
func DefaultEncoderConfig() EncoderConfig {
	return EncoderConfig{Order: cleaning.OrderSorted, UnknownPolicy: cleaning.UnknownError}
}

// Encoder converts text columns to label codes and boolean columns to one-hot indicators
type Encoder struct {
	config EncoderConfig
	logger *slog.Logger
}

// NewEncoder creates an encoder
func NewEncoder(config EncoderConfig, logger *slog.Logger) *Encoder {
	if config.Order == "" {
		config.Order = cleaning.OrderSorted
	}
	if config.UnknownPolicy == "" {
		config.UnknownPolicy = cleaning.UnknownError
	}
	return &Encoder{config: config, logger: logging.WithComponent(logger, "encoder")}
}

// IndicatorName is the name of the one-hot column for a category
func IndicatorName(column, category string) string {
	return column + "_" + category
}

type encodedColumn struct {
	name        string
	mapping     cleaning.ColumnMapping
	replacement []*dataset.Column
}

// Encode label-encodes every string column and one-hot encodes every boolean column.
//
// Columns present in existing reuse its codes. The returned mapping holds every
// encoded column plus the untouched entries of existing. Nothing is written to
// the table unless every column encodes.
func (e *Encoder) Encode(t *dataset.Table, existing cleaning.CategoricalMapping) (cleaning.CategoricalMapping, error) {
	var encoded []encodedColumn
	for _, col := range t.Columns() {
		prior, hasPrior := existing[col.Name]
		var (
			result encodedColumn
			err    error
		)
		switch col.Type {
		case dataset.ValueTypeString:
			if hasPrior && prior.Scheme != cleaning.SchemeLabel {
				return nil, core.NewUnsupportedOperationError("encode",
					fmt.Sprintf("column %q holds text but its mapping is %s", col.Name, prior.Scheme))
			}
			result, err = e.labelEncode(col, prior, hasPrior)
		case dataset.ValueTypeBoolean:
			if hasPrior && prior.Scheme != cleaning.SchemeOneHot {
				return nil, core.NewUnsupportedOperationError("encode",
					fmt.Sprintf("column %q is boolean but its mapping is %s", col.Name, prior.Scheme))
			}
			result, err = e.oneHotEncode(col, prior, hasPrior)
			if err == nil && len(result.replacement) == 0 {
				// an all-missing boolean column has no indicators to expand into
				continue
			}
		default:
			continue
		}
		if err != nil {
			return nil, err
		}
		encoded = append(encoded, result)
	}

	mapping := cleaning.NewCategoricalMapping()
	for name, m := range existing {
		mapping[name] = m
	}
	replacements := make(map[string][]*dataset.Column, len(encoded))
	for _, enc := range encoded {
		replacements[enc.name] = enc.replacement
	}
	if err := t.ReplaceColumns(replacements); err != nil {
		return nil, fmt.Errorf("replace encoded columns: %w", err)
	}
	for _, enc := range encoded {
		mapping[enc.name] = enc.mapping
		e.logger.Debug("column encoded", "column", enc.name, "scheme", enc.mapping.Scheme, "categories", len(enc.mapping.Categories))
	}
	e.logger.Info("categorical columns encoded", "columns", len(encoded))
	return mapping, nil
}

// EncodeAndPersist encodes the table and writes the resulting mapping to the store
func (e *Encoder) EncodeAndPersist(ctx context.Context, t *dataset.Table, existing cleaning.CategoricalMapping, store ports.ArtifactStore, name string) (cleaning.CategoricalMapping, error) {
	mapping, err := e.Encode(t, existing)
	if err != nil {
		return nil, err
	}
	if err := store.SaveMapping(ctx, name, mapping); err != nil {
		return nil, fmt.Errorf("persist categorical mapping: %w", err)
	}
	return mapping, nil
}

func (e *Encoder) labelEncode(col *dataset.Column, prior cleaning.ColumnMapping, hasPrior bool) (encodedColumn, error) {
	mapping := prior
	if !hasPrior {
		mapping = cleaning.NewLabelMapping(e.categories(col))
	}

	values := make([]dataset.Value, col.Len())
	for i, v := range col.Values {
		if v.IsMissing() {
			values[i] = v
			continue
		}
		code, ok := mapping.Code(v.String())
		if !ok {
			if e.config.UnknownPolicy != cleaning.UnknownReserve {
				return encodedColumn{}, fmt.Errorf("%w: column %q row %d value %q", core.ErrUnknownCategory, col.Name, i, v.String())
			}
			code = cleaning.UnknownCode
		}
		values[i] = dataset.NewNumericValue(float64(code))
	}

	return encodedColumn{
		name:        col.Name,
		mapping:     mapping,
		replacement: []*dataset.Column{dataset.NewColumn(col.Name, dataset.ValueTypeNumeric, values)},
	}, nil
}

func (e *Encoder) oneHotEncode(col *dataset.Column, prior cleaning.ColumnMapping, hasPrior bool) (encodedColumn, error) {
	mapping := prior
	if !hasPrior {
		// "false" sorts before "true"
		mapping = cleaning.NewOneHotMapping(sortedDistinct(col))
	}

	indicators := make([]*dataset.Column, len(mapping.Categories))
	for k, category := range mapping.Categories {
		indicators[k] = dataset.NewColumn(IndicatorName(col.Name, category), dataset.ValueTypeNumeric, make([]dataset.Value, col.Len()))
	}

	for i, v := range col.Values {
		if v.IsMissing() {
			for _, ind := range indicators {
				ind.Values[i] = dataset.NewMissingValue()
			}
			continue
		}
		vec, ok := mapping.Vector(v.String())
		if !ok {
			if e.config.UnknownPolicy != cleaning.UnknownReserve {
				return encodedColumn{}, fmt.Errorf("%w: column %q row %d value %q", core.ErrUnknownCategory, col.Name, i, v.String())
			}
			vec = make([]int, len(mapping.Categories))
		}
		for k, bit := range vec {
			indicators[k].Values[i] = dataset.NewNumericValue(float64(bit))
		}
	}

	return encodedColumn{name: col.Name, mapping: mapping, replacement: indicators}, nil
}

// categories lists the distinct present values in the configured order
func (e *Encoder) categories(col *dataset.Column) []string {
	if e.config.Order == cleaning.OrderFirstSeen {
		seen := make(map[string]struct{})
		out := make([]string, 0)
		for _, v := range col.NonMissing() {
			s := v.String()
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
		return out
	}
	return sortedDistinct(col)
}

func sortedDistinct(col *dataset.Column) []string {
	seen := make(map[string]struct{})
	for _, v := range col.NonMissing() {
		seen[v.String()] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Decode reverses label codes and collapses one-hot indicator columns.
// Label code -1 and all-zero indicator rows decode to missing. The table is
// left unchanged if any column fails to decode.
func (e *Encoder) Decode(t *dataset.Table, mapping cleaning.CategoricalMapping) error {
	names := make([]string, 0, len(mapping))
	for name := range mapping {
		names = append(names, name)
	}
	sort.Strings(names)

	replacements := make(map[string][]*dataset.Column)
	for _, name := range names {
		m := mapping[name]
		var err error
		if m.Scheme == cleaning.SchemeOneHot {
			err = e.decodeOneHot(t, name, m, replacements)
		} else {
			err = e.decodeLabel(t, name, m, replacements)
		}
		if err != nil {
			return err
		}
	}
	return t.ReplaceColumns(replacements)
}

func (e *Encoder) decodeLabel(t *dataset.Table, name string, m cleaning.ColumnMapping, replacements map[string][]*dataset.Column) error {
	col, err := t.Column(name)
	if err != nil {
		return err
	}
	if col.Type != dataset.ValueTypeNumeric {
		return core.NewUnsupportedOperationError("decode", fmt.Sprintf("column %q is not label encoded", name))
	}

	values := make([]dataset.Value, col.Len())
	for i, v := range col.Values {
		if v.IsMissing() {
			values[i] = v
			continue
		}
		code := int(v.NumericVal)
		switch {
		case float64(code) != v.NumericVal:
			return core.NewConversionError(name, i, v.String(), fmt.Errorf("label code is not an integer"))
		case code == cleaning.UnknownCode:
			values[i] = dataset.NewMissingValue()
		case code < 0 || code >= len(m.Categories):
			return core.NewConversionError(name, i, v.String(), fmt.Errorf("no category for code %d", code))
		default:
			values[i] = dataset.NewStringValue(m.Categories[code])
		}
	}
	replacements[name] = []*dataset.Column{dataset.NewColumn(name, dataset.ValueTypeString, values)}
	return nil
}

func (e *Encoder) decodeOneHot(t *dataset.Table, name string, m cleaning.ColumnMapping, replacements map[string][]*dataset.Column) error {
	if len(m.Categories) == 0 {
		return nil
	}
	indicators := make([]*dataset.Column, len(m.Categories))
	for k, category := range m.Categories {
		col, err := t.Column(IndicatorName(name, category))
		if err != nil {
			return err
		}
		indicators[k] = col
	}

	boolean := true
	for _, category := range m.Categories {
		if category != "true" && category != "false" {
			boolean = false
		}
	}

	rows := indicators[0].Len()
	values := make([]dataset.Value, rows)
	for i := 0; i < rows; i++ {
		values[i] = dataset.NewMissingValue()
		for k, ind := range indicators {
			v := ind.Values[i]
			if v.IsMissing() || v.AsFloat64() != 1 {
				continue
			}
			if boolean {
				values[i] = dataset.NewBooleanValue(m.Categories[k] == "true")
			} else {
				values[i] = dataset.NewStringValue(m.Categories[k])
			}
			break
		}
	}

	typ := dataset.ValueTypeString
	if boolean {
		typ = dataset.ValueTypeBoolean
	}
	decoded := dataset.NewColumn(name, typ, values)

	replacements[indicators[0].Name] = []*dataset.Column{decoded}
	for _, ind := range indicators[1:] {
		replacements[ind.Name] = nil
	}
	return nil
}
