package ports

import (
	"gocleanse/domain/datareadiness/profiling"
	"gocleanse/domain/dataset"
)

// ProfilerPort classifies columns and reports data quality
type ProfilerPort interface {
	Classify(col *dataset.Column) profiling.Kind
	Profile(t *dataset.Table) (*profiling.ProfilingResult, error)
}
