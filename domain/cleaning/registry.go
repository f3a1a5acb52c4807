package cleaning

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// OutlierFlag is a (column, original value) pair flagged in a row.
// It serializes as a two-element array: ["price", 1000].
type OutlierFlag struct {
	Column string
	Value  float64
}

func (f OutlierFlag) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{f.Column, f.Value})
}

func (f *OutlierFlag) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("outlier flag must be a [column, value] pair: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("outlier flag must have 2 elements, got %d", len(pair))
	}
	if err := json.Unmarshal(pair[0], &f.Column); err != nil {
		return fmt.Errorf("outlier flag column: %w", err)
	}
	if err := json.Unmarshal(pair[1], &f.Value); err != nil {
		return fmt.Errorf("outlier flag value: %w", err)
	}
	return nil
}

// OutlierRegistry maps a row index (as a string key) to the flags detected in that row.
// It outlives the in-memory table and is replayed against a possibly reloaded one,
// so callers must keep row indices aligned across the save/reload boundary.
type OutlierRegistry map[string][]OutlierFlag

// NewOutlierRegistry creates an empty registry
func NewOutlierRegistry() OutlierRegistry {
	return make(OutlierRegistry)
}

// Add appends a flag to a row
func (r OutlierRegistry) Add(row int, column string, value float64) {
	key := strconv.Itoa(row)
	r[key] = append(r[key], OutlierFlag{Column: column, Value: value})
}

// Flags returns the flags recorded for a row
func (r OutlierRegistry) Flags(row int) []OutlierFlag {
	return r[strconv.Itoa(row)]
}

// Rows returns the flagged row indices in ascending order
func (r OutlierRegistry) Rows() ([]int, error) {
	rows := make([]int, 0, len(r))
	for key := range r {
		row, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("registry key %q is not a row index: %w", key, err)
		}
		if strconv.Itoa(row) != key {
			return nil, fmt.Errorf("registry key %q is not a canonical row index", key)
		}
		rows = append(rows, row)
	}
	sort.Ints(rows)
	return rows, nil
}

// Len returns the total number of flags
func (r OutlierRegistry) Len() int {
	n := 0
	for _, flags := range r {
		n += len(flags)
	}
	return n
}
