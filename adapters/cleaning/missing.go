package cleaning

import (
	"fmt"
	"log/slog"

	"gocleanse/domain/cleaning"
	"gocleanse/domain/core"
	"gocleanse/domain/datareadiness/profiling"
	"gocleanse/domain/dataset"
	"gocleanse/internal/logging"
	statsprofiling "gocleanse/internal/profiling"
)

// MissingManager reports, imputes and drops missing cells
type MissingManager struct {
	logger *slog.Logger
}

// NewMissingManager creates a missing-value manager
func NewMissingManager(logger *slog.Logger) *MissingManager {
	return &MissingManager{logger: logging.WithComponent(logger, "missing")}
}

// Detect returns the per-column missing counts in table order
func (m *MissingManager) Detect(t *dataset.Table) profiling.MissingReport {
	return profiling.MissingCounts(t)
}

// FillColumn imputes the missing cells of one column and returns how many were filled.
//
// Mean, median and zero require numeric storage. Constant fill converts the
// column to string storage. Text columns are rejected for every method.
func (m *MissingManager) FillColumn(t *dataset.Table, column string, strategy cleaning.FillStrategy) (int, error) {
	col, err := t.Column(column)
	if err != nil {
		return 0, err
	}

	if col.Type == dataset.ValueTypeString {
		return 0, core.NewUnsupportedOperationError("fill "+string(strategy.Method),
			fmt.Sprintf("column %q holds text", column))
	}

	missing := col.MissingCount()

	switch strategy.Method {
	case cleaning.FillConstant:
		m.fillConstant(col, strategy.ConstantOrDefault())
	case cleaning.FillMean, cleaning.FillMedian, cleaning.FillZero:
		if col.Type != dataset.ValueTypeNumeric {
			return 0, core.NewUnsupportedOperationError("fill "+string(strategy.Method),
				fmt.Sprintf("column %q has %s storage", column, col.Type))
		}
		if missing == 0 {
			return 0, nil
		}
		fill, err := numericFill(col, strategy.Method)
		if err != nil {
			return 0, err
		}
		for i, v := range col.Values {
			if v.IsMissing() {
				col.Values[i] = dataset.NewNumericValue(fill)
			}
		}
	default:
		return 0, core.NewUnsupportedOperationError("fill", "unknown method "+string(strategy.Method))
	}

	m.logger.Info("missing values filled", "column", column, "method", strategy.Method, "filled", missing)
	return missing, nil
}

func numericFill(col *dataset.Column, method cleaning.FillMethod) (float64, error) {
	if method == cleaning.FillZero {
		return 0, nil
	}
	data, _ := col.Floats()
	if len(data) == 0 {
		return 0, core.NewValidationError(col.Name, "no values to compute "+string(method)+" from")
	}
	if method == cleaning.FillMean {
		return statsprofiling.Mean(data)
	}
	return statsprofiling.Median(data)
}

// fillConstant upcasts the column to string storage and writes the constant
func (m *MissingManager) fillConstant(col *dataset.Column, constant string) {
	for i, v := range col.Values {
		if v.IsMissing() {
			col.Values[i] = dataset.NewStringValue(constant)
			continue
		}
		col.Values[i] = dataset.NewStringValue(v.String())
	}
	col.Type = dataset.ValueTypeString
}

// DropRows removes every row with a missing cell in the column, or in any
// column when column is "*". It returns the number of rows removed.
func (m *MissingManager) DropRows(t *dataset.Table, column string) (int, error) {
	var scope []*dataset.Column
	if column == cleaning.AllColumns {
		scope = t.Columns()
	} else {
		col, err := t.Column(column)
		if err != nil {
			return 0, err
		}
		scope = []*dataset.Column{col}
	}

	keep := make([]bool, t.RowCount())
	for i := range keep {
		keep[i] = true
		for _, col := range scope {
			if col.Values[i].IsMissing() {
				keep[i] = false
				break
			}
		}
	}

	removed := t.KeepRows(keep)
	m.logger.Info("rows with missing values dropped", "column", column, "removed", removed)
	return removed, nil
}

// DropMissing removes every row holding a missing cell in any column
func (m *MissingManager) DropMissing(t *dataset.Table) int {
	removed, _ := m.DropRows(t, cleaning.AllColumns)
	return removed
}
