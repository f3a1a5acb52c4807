package cleaning

import (
	"encoding/json"
	"fmt"
	"sort"
)

// EncodingScheme identifies how a column was encoded
type EncodingScheme string

const (
	SchemeLabel  EncodingScheme = "label"
	SchemeOneHot EncodingScheme = "onehot"
)

// ColumnMapping records value -> code (label) or value -> indicator vector (one-hot).
// On disk it is a plain object: {"blue": 0, "red": 1} or {"false": [1, 0], "true": [0, 1]}.
type ColumnMapping struct {
	Scheme     EncodingScheme
	Categories []string // code order: Categories[i] has code i / hot position i
}

// NewLabelMapping builds a label mapping from categories in code order
func NewLabelMapping(categories []string) ColumnMapping {
	return ColumnMapping{Scheme: SchemeLabel, Categories: categories}
}

// NewOneHotMapping builds a one-hot mapping from categories in indicator order
func NewOneHotMapping(categories []string) ColumnMapping {
	return ColumnMapping{Scheme: SchemeOneHot, Categories: categories}
}

// Code returns the label code of a value
func (m ColumnMapping) Code(value string) (int, bool) {
	for i, c := range m.Categories {
		if c == value {
			return i, true
		}
	}
	return 0, false
}

// Vector returns the one-hot vector of a value
func (m ColumnMapping) Vector(value string) ([]int, bool) {
	idx, ok := m.Code(value)
	if !ok {
		return nil, false
	}
	vec := make([]int, len(m.Categories))
	vec[idx] = 1
	return vec, true
}

func (m ColumnMapping) MarshalJSON() ([]byte, error) {
	if m.Scheme == SchemeOneHot {
		out := make(map[string][]int, len(m.Categories))
		for _, c := range m.Categories {
			out[c], _ = m.Vector(c)
		}
		return json.Marshal(out)
	}
	out := make(map[string]int, len(m.Categories))
	for i, c := range m.Categories {
		out[c] = i
	}
	return json.Marshal(out)
}

func (m *ColumnMapping) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("column mapping must be an object: %w", err)
	}

	positions := make(map[string]int, len(raw))
	scheme := EncodingScheme("")
	for value, msg := range raw {
		var code int
		var vec []int
		switch {
		case json.Unmarshal(msg, &code) == nil:
			if scheme == SchemeOneHot {
				return fmt.Errorf("column mapping mixes codes and vectors")
			}
			scheme = SchemeLabel
			positions[value] = code
		case json.Unmarshal(msg, &vec) == nil:
			if scheme == SchemeLabel {
				return fmt.Errorf("column mapping mixes codes and vectors")
			}
			scheme = SchemeOneHot
			hot := -1
			for i, bit := range vec {
				if bit == 1 {
					if hot >= 0 {
						return fmt.Errorf("vector for %q has more than one hot position", value)
					}
					hot = i
				}
			}
			if hot < 0 {
				return fmt.Errorf("vector for %q has no hot position", value)
			}
			positions[value] = hot
		default:
			return fmt.Errorf("mapping value for %q is neither a code nor a vector", value)
		}
	}
	if scheme == "" {
		scheme = SchemeLabel
	}

	categories := make([]string, 0, len(positions))
	for value := range positions {
		categories = append(categories, value)
	}
	sort.Slice(categories, func(i, j int) bool { return positions[categories[i]] < positions[categories[j]] })
	for i, c := range categories {
		if positions[c] != i {
			return fmt.Errorf("mapping codes must be consecutive from 0, %q has %d", c, positions[c])
		}
	}

	m.Scheme = scheme
	m.Categories = categories
	return nil
}

// CategoricalMapping maps a column name to its encoding
type CategoricalMapping map[string]ColumnMapping

// NewCategoricalMapping creates an empty mapping
func NewCategoricalMapping() CategoricalMapping {
	return make(CategoricalMapping)
}
