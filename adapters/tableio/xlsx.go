package tableio

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"gocleanse/domain/dataset"
)

// readXLSX reads the first worksheet; the first row is the header
func (r *Reader) readXLSX() (*dataset.Table, error) {
	f, err := excelize.OpenFile(r.source.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("Excel file %s has no worksheets", r.source.Path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", sheets[0], err)
	}
	r.logger.Debug("worksheet read", "sheet", sheets[0], "rows", len(rows))

	return newTableBuilder(r.coercer).fromRecords(rows)
}
