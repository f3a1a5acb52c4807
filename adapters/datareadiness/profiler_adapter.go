package datareadiness

import (
	"sort"

	"gocleanse/adapters/datareadiness/coercer"
	"gocleanse/domain/core"
	"gocleanse/domain/datareadiness/profiling"
	"gocleanse/domain/dataset"
	statsprofiling "gocleanse/internal/profiling"
)

// ProfilerAdapter classifies columns and computes data quality statistics
type ProfilerAdapter struct {
	coercer *coercer.TypeCoercer
	config  profiling.ProfilingConfig
}

// NewProfilerAdapter creates a new profiler adapter
func NewProfilerAdapter(coercerInstance *coercer.TypeCoercer, config profiling.ProfilingConfig) *ProfilerAdapter {
	if config.InferenceSampleSize <= 0 {
		config.InferenceSampleSize = profiling.DefaultProfilingConfig().InferenceSampleSize
	}
	if config.MajorityThreshold <= 0 || config.MajorityThreshold >= 1 {
		config.MajorityThreshold = profiling.DefaultProfilingConfig().MajorityThreshold
	}
	return &ProfilerAdapter{coercer: coercerInstance, config: config}
}

// Classify infers the semantic kind of a column.
//
// String columns are datetime when more than MajorityThreshold of the first
// InferenceSampleSize non-null values parse as a date/time; otherwise
// numeric_formatted when no value contains a letter; otherwise categorical_text.
func (p *ProfilerAdapter) Classify(col *dataset.Column) profiling.Kind {
	switch col.Type {
	case dataset.ValueTypeNumeric:
		return profiling.KindNumeric
	case dataset.ValueTypeBoolean:
		return profiling.KindBoolean
	case dataset.ValueTypeTimestamp:
		return profiling.KindDatetime
	}

	values := col.NonMissing()
	if len(values) == 0 {
		return profiling.KindCategoricalText
	}

	if p.looksLikeDatetime(values) {
		return profiling.KindDatetime
	}

	for _, v := range values {
		if p.coercer.ContainsLetter(v.String()) {
			return profiling.KindCategoricalText
		}
	}
	return profiling.KindNumericFormatted
}

// looksLikeDatetime samples the leading non-null values and requires a majority to parse
func (p *ProfilerAdapter) looksLikeDatetime(values []dataset.Value) bool {
	sampleSize := p.config.InferenceSampleSize
	if sampleSize > len(values) {
		sampleSize = len(values)
	}

	parsed := 0
	for _, v := range values[:sampleSize] {
		if _, ok := p.coercer.ParseTimestamp(v.String()); ok {
			parsed++
		}
	}
	return float64(parsed)/float64(sampleSize) > p.config.MajorityThreshold
}

// ClassifyAll classifies every column, keyed by column name
func (p *ProfilerAdapter) ClassifyAll(t *dataset.Table) map[string]profiling.Kind {
	kinds := make(map[string]profiling.Kind, t.ColumnCount())
	for _, col := range t.Columns() {
		kinds[col.Name] = p.Classify(col)
	}
	return kinds
}

// MissingCounts returns the per-column missing counts in table order
func (p *ProfilerAdapter) MissingCounts(t *dataset.Table) profiling.MissingReport {
	return profiling.MissingCounts(t)
}

// TotalMissing returns the number of missing cells in the table
func (p *ProfilerAdapter) TotalMissing(t *dataset.Table) int {
	return p.MissingCounts(t).Total()
}

// ColumnsWithMissing returns the columns holding at least one missing cell, in table order
func (p *ProfilerAdapter) ColumnsWithMissing(t *dataset.Table) []string {
	return p.MissingCounts(t).ColumnsWithMissing()
}

// DuplicateMask is true for every row whose full value tuple equals an earlier row
func (p *ProfilerAdapter) DuplicateMask(t *dataset.Table) []bool {
	return t.DuplicateMask()
}

// DuplicateCount returns the number of rows flagged by DuplicateMask
func (p *ProfilerAdapter) DuplicateCount(t *dataset.Table) int {
	count := 0
	for _, dup := range p.DuplicateMask(t) {
		if dup {
			count++
		}
	}
	return count
}

// Describe returns the per-column summary in table order
func (p *ProfilerAdapter) Describe(t *dataset.Table) ([]profiling.ColumnProfile, error) {
	profiles := make([]profiling.ColumnProfile, 0, t.ColumnCount())
	for _, col := range t.Columns() {
		profile, err := p.profileColumn(col)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	return profiles, nil
}

// Profile produces the full data quality report for a table
func (p *ProfilerAdapter) Profile(t *dataset.Table) (*profiling.ProfilingResult, error) {
	profiles, err := p.Describe(t)
	if err != nil {
		return nil, err
	}

	missing := p.MissingCounts(t)
	mask := p.DuplicateMask(t)
	duplicates := 0
	for _, dup := range mask {
		if dup {
			duplicates++
		}
	}

	return &profiling.ProfilingResult{
		Profiles:           profiles,
		RowCount:           t.RowCount(),
		ColumnCount:        t.ColumnCount(),
		Dtypes:             t.Dtypes(),
		Missing:            missing,
		TotalMissing:       missing.Total(),
		ColumnsWithMissing: missing.ColumnsWithMissing(),
		DuplicateMask:      mask,
		DuplicateCount:     duplicates,
		Fingerprint:        t.Fingerprint(),
		ComputedAt:         core.Now(),
	}, nil
}

// profileColumn analyzes a single column
func (p *ProfilerAdapter) profileColumn(col *dataset.Column) (profiling.ColumnProfile, error) {
	profile := profiling.ColumnProfile{
		Column:       col.Name,
		StorageType:  col.Type,
		Kind:         p.Classify(col),
		RowCount:     col.Len(),
		MissingStats: computeMissingStats(col),
	}

	values := col.NonMissing()
	profile.Summary.Count = len(values)
	if len(values) == 0 {
		return profile, nil
	}

	switch col.Type {
	case dataset.ValueTypeNumeric:
		data, _ := col.Floats()
		summary, err := statsprofiling.Summarize(data)
		if err != nil {
			return profile, err
		}
		profile.Summary.Numeric = &summary
	case dataset.ValueTypeTimestamp:
		profile.Summary.Temporal = computeTemporalSummary(values)
	default:
		profile.Summary.Categorical = computeCategoricalSummary(values)
	}

	return profile, nil
}

func computeMissingStats(col *dataset.Column) profiling.MissingStats {
	stats := profiling.MissingStats{}
	run := 0
	for _, v := range col.Values {
		if v.IsMissing() {
			stats.MissingCount++
			run++
			if run > stats.ConsecutiveMissing {
				stats.ConsecutiveMissing = run
			}
			continue
		}
		run = 0
	}
	if col.Len() > 0 {
		stats.MissingRate = float64(stats.MissingCount) / float64(col.Len())
	}
	return stats
}

// computeCategoricalSummary finds distinct count and mode; ties resolve to the smallest value
func computeCategoricalSummary(values []dataset.Value) *profiling.CategoricalSummary {
	freq := make(map[string]int)
	for _, v := range values {
		freq[v.String()]++
	}

	keys := make([]string, 0, len(freq))
	for k := range freq {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	mode := ""
	modeFreq := 0
	for _, k := range keys {
		if freq[k] > modeFreq {
			mode = k
			modeFreq = freq[k]
		}
	}

	return &profiling.CategoricalSummary{
		Distinct:      len(freq),
		Mode:          mode,
		ModeFrequency: modeFreq,
	}
}

func computeTemporalSummary(values []dataset.Value) *profiling.TemporalSummary {
	first := values[0].AsTime()
	last := first
	distinct := make(map[int64]struct{})
	for _, v := range values {
		ts := v.AsTime()
		if ts.Before(first) {
			first = ts
		}
		if ts.After(last) {
			last = ts
		}
		distinct[ts.UnixNano()] = struct{}{}
	}
	return &profiling.TemporalSummary{
		First:    first.Format(dataset.TimestampLayout),
		Last:     last.Format(dataset.TimestampLayout),
		Distinct: len(distinct),
	}
}
