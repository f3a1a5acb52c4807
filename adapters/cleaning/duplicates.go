package cleaning

import (
	"log/slog"

	"gocleanse/domain/dataset"
	"gocleanse/internal/logging"
)

// DuplicateManager removes exact duplicate rows
type DuplicateManager struct {
	logger *slog.Logger
}

// NewDuplicateManager creates a duplicate manager
func NewDuplicateManager(logger *slog.Logger) *DuplicateManager {
	return &DuplicateManager{logger: logging.WithComponent(logger, "duplicates")}
}

// Count returns the number of rows repeating an earlier row
func (d *DuplicateManager) Count(t *dataset.Table) int {
	count := 0
	for _, dup := range t.DuplicateMask() {
		if dup {
			count++
		}
	}
	return count
}

// RemoveDuplicates keeps the first occurrence of every row and returns the number removed
func (d *DuplicateManager) RemoveDuplicates(t *dataset.Table) int {
	mask := t.DuplicateMask()
	keep := make([]bool, len(mask))
	for i, dup := range mask {
		keep[i] = !dup
	}
	removed := t.KeepRows(keep)
	if removed > 0 {
		d.logger.Info("duplicate rows removed", "removed", removed, "remaining", t.RowCount())
	}
	return removed
}
