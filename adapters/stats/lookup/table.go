// Package lookup provides the confidence critical-value table.
//
// The table maps a two-tailed adjusted confidence level, formatted as its
// shortest decimal (for example "0.975"), to the standard normal quantile.
package lookup

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"

	"github.com/tidwall/gjson"
	"gonum.org/v1/gonum/stat/distuv"

	"gocleanse/domain/core"
)

//go:embed confidence.json
var defaultTable []byte

// Table is an immutable set of critical values, safe for concurrent reads
type Table struct {
	values map[string]float64
}

// Default returns the embedded table
func Default() (*Table, error) {
	return Parse(defaultTable)
}

// Load reads a table from path, or the embedded table when path is empty
func Load(path string) (*Table, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read lookup table %s: %v", core.ErrConfiguration, path, err)
	}
	return Parse(data)
}

// Parse decodes a {"values": {"0.975": 1.96, ...}} document
func Parse(data []byte) (*Table, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: lookup table is not valid JSON", core.ErrConfiguration)
	}
	section := gjson.GetBytes(data, "values")
	if !section.IsObject() {
		return nil, fmt.Errorf("%w: lookup table has no \"values\" object", core.ErrConfiguration)
	}

	values := make(map[string]float64)
	var parseErr error
	section.ForEach(func(key, value gjson.Result) bool {
		if value.Type != gjson.Number {
			parseErr = fmt.Errorf("%w: lookup value for %q is not a number", core.ErrConfiguration, key.String())
			return false
		}
		values[key.String()] = value.Float()
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: lookup table is empty", core.ErrConfiguration)
	}
	return &Table{values: values}, nil
}

// CriticalValue returns the value stored under key; keys must match exactly
func (t *Table) CriticalValue(key string) (float64, error) {
	v, ok := t.values[key]
	if !ok {
		return 0, fmt.Errorf("%w: no critical value for adjusted confidence %s", core.ErrLookup, key)
	}
	return v, nil
}

// Keys returns the stored keys in ascending order
func (t *Table) Keys() []string {
	keys := make([]string, 0, len(t.values))
	for k := range t.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of entries
func (t *Table) Len() int {
	return len(t.values)
}

// AdjustedLevel converts a confidence level to its two-tailed form, 1-(1-c)/2,
// rounded to 6 decimals
func AdjustedLevel(confidence float64) float64 {
	return math.Round((1-(1-confidence)/2)*1e6) / 1e6
}

// Key formats the adjusted level of a confidence as a lookup key
func Key(confidence float64) string {
	return strconv.FormatFloat(AdjustedLevel(confidence), 'f', -1, 64)
}

// DefaultConfidenceLevels lists 0.50 through 0.99 in steps of 0.01, then 0.995 and 0.999
func DefaultConfidenceLevels() []float64 {
	levels := make([]float64, 0, 52)
	for i := 50; i <= 99; i++ {
		levels = append(levels, float64(i)/100)
	}
	return append(levels, 0.995, 0.999)
}

// Generate computes a table from the standard normal quantile, rounded to 4 decimals
func Generate(levels []float64) (*Table, error) {
	values := make(map[string]float64, len(levels))
	for _, c := range levels {
		if c <= 0 || c >= 1 {
			return nil, core.NewValidationError("confidence", fmt.Sprintf("%v is not in (0, 1)", c))
		}
		q := distuv.UnitNormal.Quantile(AdjustedLevel(c))
		values[Key(c)] = math.Round(q*1e4) / 1e4
	}
	return &Table{values: values}, nil
}

// MarshalJSON writes the {"values": {...}} document
func (t *Table) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Values map[string]float64 `json:"values"`
	}{Values: t.values})
}

// WriteFile saves the table to path as indented JSON
func (t *Table) WriteFile(path string) error {
	data, err := json.MarshalIndent(struct {
		Values map[string]float64 `json:"values"`
	}{Values: t.values}, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}
