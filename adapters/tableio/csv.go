package tableio

import (
	"encoding/csv"
	"fmt"
	"os"

	"gocleanse/domain/dataset"
)

// readCSV reads a header row plus records; missing trailing fields are missing cells
func (r *Reader) readCSV() (*dataset.Table, error) {
	file, err := os.Open(r.source.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return newTableBuilder(r.coercer).fromRecords(records)
}
