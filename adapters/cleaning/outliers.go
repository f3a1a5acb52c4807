package cleaning

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"gocleanse/domain/cleaning"
	"gocleanse/domain/core"
	"gocleanse/domain/dataset"
	"gocleanse/internal/logging"
	statsprofiling "gocleanse/internal/profiling"
	"gocleanse/ports"
)

// ZScoreThreshold is the absolute population z-score above which a value is an outlier
const ZScoreThreshold = 3.0

// OutlierAction is one audited remediation
type OutlierAction struct {
	Row     int     `json:"row"`
	Column  string  `json:"column"`
	Old     float64 `json:"old"`
	New     float64 `json:"new,omitempty"`
	Removed bool    `json:"removed,omitempty"`
}

// OutlierEngine flags z-score outliers and remediates them
type OutlierEngine struct {
	logger *slog.Logger
}

// NewOutlierEngine creates an outlier engine
func NewOutlierEngine(logger *slog.Logger) *OutlierEngine {
	return &OutlierEngine{logger: logging.WithComponent(logger, "outliers")}
}

// Detect flags every numeric cell whose population z-score exceeds the threshold.
// Flags for a row are recorded in column order.
func (e *OutlierEngine) Detect(t *dataset.Table) cleaning.OutlierRegistry {
	registry := cleaning.NewOutlierRegistry()
	for _, col := range t.Columns() {
		if col.Type != dataset.ValueTypeNumeric {
			continue
		}
		data, rows := col.Floats()
		if len(data) == 0 {
			continue
		}
		mean, std, err := statsprofiling.PopulationMeanStdDev(data)
		if err != nil || std == 0 || math.IsNaN(std) {
			continue
		}
		for i, x := range data {
			if math.Abs((x-mean)/std) > ZScoreThreshold {
				registry.Add(rows[i], col.Name, x)
			}
		}
	}
	// Rows are visited column by column, so each row's flags are already in column order
	e.logger.Debug("outliers detected", "rows", len(registry), "flags", registry.Len())
	return registry
}

// DetectAndPersist detects outliers and writes the registry to the store
func (e *OutlierEngine) DetectAndPersist(ctx context.Context, t *dataset.Table, store ports.ArtifactStore, name string) (cleaning.OutlierRegistry, error) {
	registry := e.Detect(t)
	if err := store.SaveRegistry(ctx, name, registry); err != nil {
		return nil, fmt.Errorf("persist outlier registry: %w", err)
	}
	e.logger.Info("outlier registry saved", "name", name, "flags", registry.Len())
	return registry, nil
}

// LoadAndHandle reads a persisted registry and remediates it
func (e *OutlierEngine) LoadAndHandle(ctx context.Context, t *dataset.Table, store ports.ArtifactStore, name string, method cleaning.OutlierMethod) ([]OutlierAction, error) {
	registry, err := store.LoadRegistry(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("load outlier registry: %w", err)
	}
	return e.Handle(t, registry, method)
}

// Handle remediates flagged cells.
//
// Replacement statistics are computed once per column from the table as it is
// before any replacement. Only cells that still hold their recorded value are
// touched, so handling the same registry twice changes nothing the second
// time. With OutlierRemove a row is removed once however many of its cells
// were flagged; row indices in the registry are stale afterwards.
func (e *OutlierEngine) Handle(t *dataset.Table, registry cleaning.OutlierRegistry, method cleaning.OutlierMethod) ([]OutlierAction, error) {
	switch method {
	case cleaning.OutlierMedian, cleaning.OutlierMean, cleaning.OutlierMode, cleaning.OutlierRemove:
	default:
		return nil, core.NewUnsupportedOperationError("outlier remediation", "unknown method "+string(method))
	}

	rows, err := registry.Rows()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrValidation, err)
	}

	// Validate everything before the first mutation
	n := t.RowCount()
	columns := make(map[string]*dataset.Column)
	for _, row := range rows {
		if row < 0 || row >= n {
			return nil, fmt.Errorf("%w: row %d, table has %d rows", core.ErrRowOutOfRange, row, n)
		}
		for _, flag := range registry.Flags(row) {
			if _, ok := columns[flag.Column]; ok {
				continue
			}
			col, err := t.Column(flag.Column)
			if err != nil {
				return nil, err
			}
			if col.Type != dataset.ValueTypeNumeric {
				return nil, core.NewUnsupportedOperationError("outlier remediation",
					fmt.Sprintf("column %q has %s storage", col.Name, col.Type))
			}
			columns[flag.Column] = col
		}
	}

	if method == cleaning.OutlierRemove {
		return e.remove(t, registry, rows, columns)
	}

	replacements := make(map[string]float64, len(columns))
	for name, col := range columns {
		value, err := columnStatistic(col, method)
		if err != nil {
			return nil, err
		}
		replacements[name] = value
	}

	actions := make([]OutlierAction, 0, registry.Len())
	for _, row := range rows {
		for _, flag := range registry.Flags(row) {
			col := columns[flag.Column]
			if !holds(col.Values[row], flag.Value) {
				continue
			}
			replacement := replacements[flag.Column]
			col.Values[row] = dataset.NewNumericValue(replacement)
			e.logger.Info("outlier replaced",
				"row", row, "column", flag.Column, "old", flag.Value, "new", replacement, "method", method)
			actions = append(actions, OutlierAction{Row: row, Column: flag.Column, Old: flag.Value, New: replacement})
		}
	}
	return actions, nil
}

func (e *OutlierEngine) remove(t *dataset.Table, registry cleaning.OutlierRegistry, rows []int, columns map[string]*dataset.Column) ([]OutlierAction, error) {
	var doomed []int
	actions := make([]OutlierAction, 0, len(rows))
	for _, row := range rows {
		for _, flag := range registry.Flags(row) {
			if holds(columns[flag.Column].Values[row], flag.Value) {
				doomed = append(doomed, row)
				actions = append(actions, OutlierAction{Row: row, Column: flag.Column, Old: flag.Value, Removed: true})
				e.logger.Info("outlier row removed", "row", row, "column", flag.Column, "old", flag.Value)
				break
			}
		}
	}
	if _, err := t.RemoveRows(doomed); err != nil {
		return nil, err
	}
	return actions, nil
}

func holds(v dataset.Value, recorded float64) bool {
	return !v.IsMissing() && v.Type == dataset.ValueTypeNumeric && v.NumericVal == recorded
}

func columnStatistic(col *dataset.Column, method cleaning.OutlierMethod) (float64, error) {
	data, _ := col.Floats()
	if len(data) == 0 {
		return 0, core.NewValidationError(col.Name, "no values to compute "+string(method)+" from")
	}
	switch method {
	case cleaning.OutlierMean:
		return statsprofiling.Mean(data)
	case cleaning.OutlierMode:
		return statsprofiling.Mode(data)
	default:
		return statsprofiling.Median(data)
	}
}
