package profiling

import (
	"encoding/json"
	"math"

	"gocleanse/domain/core"
	"gocleanse/domain/dataset"
)

// Kind represents the inferred semantic classification of a column
type Kind string

const (
	KindDatetime         Kind = "datetime"
	KindNumeric          Kind = "numeric"
	KindNumericFormatted Kind = "numeric_formatted"
	KindBoolean          Kind = "boolean"
	KindCategoricalText  Kind = "categorical_text"
)

// ColumnProfile contains the profile of a single column
type ColumnProfile struct {
	Column       string            `json:"column"`
	StorageType  dataset.ValueType `json:"storage_type"`
	Kind         Kind              `json:"kind"`
	RowCount     int               `json:"row_count"`
	MissingStats MissingStats      `json:"missing_stats"`
	Summary      ColumnSummary     `json:"summary"`
}

// MissingStats tracks missing value patterns
type MissingStats struct {
	MissingCount       int     `json:"missing_count"`
	MissingRate        float64 `json:"missing_rate"`
	ConsecutiveMissing int     `json:"consecutive_missing"` // Max consecutive missing
}

// ColumnSummary is the per-column describe() output. Only the block matching
// the column's storage type is populated.
type ColumnSummary struct {
	Count       int                 `json:"count"`
	Numeric     *NumericSummary     `json:"numeric,omitempty"`
	Categorical *CategoricalSummary `json:"categorical,omitempty"`
	Temporal    *TemporalSummary    `json:"temporal,omitempty"`
}

// NumericSummary contains statistics for numeric columns
type NumericSummary struct {
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"std_dev"` // sample standard deviation
	Min      float64 `json:"min"`
	Q25      float64 `json:"q25"`
	Median   float64 `json:"median"`
	Q75      float64 `json:"q75"`
	Max      float64 `json:"max"`
	Skewness float64 `json:"skewness"`
	Kurtosis float64 `json:"kurtosis"`
}

// MarshalJSON writes an undefined standard deviation (a single value) as null
func (s NumericSummary) MarshalJSON() ([]byte, error) {
	type plain NumericSummary
	var stdDev *float64
	if !math.IsNaN(s.StdDev) {
		stdDev = &s.StdDev
	}
	return json.Marshal(struct {
		plain
		StdDev *float64 `json:"std_dev"`
	}{plain(s), stdDev})
}

// CategoricalSummary contains statistics for text and boolean columns
type CategoricalSummary struct {
	Distinct      int    `json:"distinct"`
	Mode          string `json:"mode"` // Most frequent value
	ModeFrequency int    `json:"mode_frequency"`
}

// TemporalSummary contains statistics for timestamp columns
type TemporalSummary struct {
	First    string `json:"first"`
	Last     string `json:"last"`
	Distinct int    `json:"distinct"`
}

// MissingEntry is one row of the missing-value report
type MissingEntry struct {
	Column string `json:"column"`
	Count  int    `json:"count"`
}

// MissingReport maps each column, in table order, to its missing-cell count
type MissingReport []MissingEntry

// MissingCounts builds the report for a table
func MissingCounts(t *dataset.Table) MissingReport {
	report := make(MissingReport, 0, t.ColumnCount())
	for _, col := range t.Columns() {
		report = append(report, MissingEntry{Column: col.Name, Count: col.MissingCount()})
	}
	return report
}

// Count returns the missing count for a column, or 0 when absent
func (r MissingReport) Count(column string) int {
	for _, e := range r {
		if e.Column == column {
			return e.Count
		}
	}
	return 0
}

// Total returns the number of missing cells across all columns
func (r MissingReport) Total() int {
	total := 0
	for _, e := range r {
		total += e.Count
	}
	return total
}

// ColumnsWithMissing returns, in table order, the columns with at least one missing cell
func (r MissingReport) ColumnsWithMissing() []string {
	out := make([]string, 0)
	for _, e := range r {
		if e.Count > 0 {
			out = append(out, e.Column)
		}
	}
	return out
}

// ProfilingConfig defines the profiling parameters
type ProfilingConfig struct {
	InferenceSampleSize int     `json:"inference_sample_size"` // Non-null values sampled for datetime detection
	MajorityThreshold   float64 `json:"majority_threshold"`    // Share of the sample that must agree
}

// DefaultProfilingConfig returns sensible defaults
func DefaultProfilingConfig() ProfilingConfig {
	return ProfilingConfig{
		InferenceSampleSize: 10,
		MajorityThreshold:   0.5, // strictly more than half must parse
	}
}

// ProfilingResult is the data quality report for a whole table
type ProfilingResult struct {
	Profiles           []ColumnProfile      `json:"profiles"`
	RowCount           int                  `json:"row_count"`
	ColumnCount        int                  `json:"column_count"`
	Dtypes             []dataset.ColumnType `json:"dtypes"`
	Missing            MissingReport        `json:"missing"`
	TotalMissing       int                  `json:"total_missing"`
	ColumnsWithMissing []string             `json:"columns_with_missing"`
	DuplicateMask      []bool               `json:"duplicate_mask"`
	DuplicateCount     int                  `json:"duplicate_count"`
	Fingerprint        core.Hash            `json:"fingerprint"`
	ComputedAt         core.Timestamp       `json:"computed_at"`
}

// KindOf returns the inferred kind of a column from the result
func (r *ProfilingResult) KindOf(column string) (Kind, bool) {
	for _, p := range r.Profiles {
		if p.Column == column {
			return p.Kind, true
		}
	}
	return "", false
}
