package tableio

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"

	"github.com/xuri/excelize/v2"

	"gocleanse/adapters/cleaning"
	"gocleanse/domain/core"
	"gocleanse/domain/dataset"
	"gocleanse/internal/logging"
)

// Writer exports a table to a file
type Writer struct {
	path   string
	format Format
	logger *slog.Logger
}

// NewWriter creates a writer; an empty format is inferred from the path
func NewWriter(path string, format Format, logger *slog.Logger) (*Writer, error) {
	var err error
	if format == "" {
		format, err = DetectFormat(path)
	} else {
		format, err = ParseFormat(string(format))
	}
	if err != nil {
		return nil, err
	}
	if format == FormatSQL {
		return nil, fmt.Errorf("%w: export to %s", core.ErrUnsupportedFormat, format)
	}
	return &Writer{path: path, format: format, logger: logging.WithComponent(logger, "tableio")}, nil
}

// Export writes the table to path in the format implied by its extension
func Export(ctx context.Context, t *dataset.Table, path string) error {
	w, err := NewWriter(path, "", nil)
	if err != nil {
		return err
	}
	return w.Write(ctx, t)
}

// Write exports the table
func (w *Writer) Write(ctx context.Context, t *dataset.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var err error
	switch w.format {
	case FormatCSV:
		err = writeCSV(w.path, t)
	case FormatXLSX:
		err = writeXLSX(w.path, t)
	case FormatJSON:
		err = writeJSON(w.path, t)
	default:
		err = fmt.Errorf("%w: export to %s", core.ErrUnsupportedFormat, w.format)
	}
	if err != nil {
		return err
	}
	w.logger.Info("table exported", "path", w.path, "format", w.format, "rows", t.RowCount())
	return nil
}

func writeCSV(path string, t *dataset.Table) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	cw := csv.NewWriter(file)
	if err := cw.Write(t.ColumnNames()); err != nil {
		return err
	}
	record := make([]string, t.ColumnCount())
	for i := 0; i < t.RowCount(); i++ {
		for j, v := range t.Row(i) {
			record[j] = v.String()
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeXLSX(path string, t *dataset.Table) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	header := make([]interface{}, t.ColumnCount())
	for i, name := range t.ColumnNames() {
		header[i] = name
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i := 0; i < t.RowCount(); i++ {
		cells := make([]interface{}, t.ColumnCount())
		for j, v := range t.Row(i) {
			cells[j] = nativeValue(v)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save Excel file: %w", err)
	}
	return nil
}

// writeJSON writes an array of records with keys in column order
func writeJSON(path string, t *dataset.Table) error {
	var buf bytes.Buffer
	names := t.ColumnNames()
	keys := make([][]byte, len(names))
	for i, name := range names {
		key, err := json.Marshal(name)
		if err != nil {
			return err
		}
		keys[i] = key
	}

	buf.WriteByte('[')
	for i := 0; i < t.RowCount(); i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString("\n    {")
		for j, v := range t.Row(i) {
			if j > 0 {
				buf.WriteString(", ")
			}
			buf.Write(keys[j])
			buf.WriteString(": ")
			val, err := json.Marshal(nativeValue(v))
			if err != nil {
				return err
			}
			buf.Write(val)
		}
		buf.WriteByte('}')
	}
	buf.WriteString("\n]\n")

	return os.WriteFile(path, buf.Bytes(), 0644)
}

// nativeValue converts a cell for excelize and encoding/json; missing and
// non-finite numbers become nil
func nativeValue(v dataset.Value) interface{} {
	switch v.Type {
	case dataset.ValueTypeNumeric:
		if math.IsNaN(v.NumericVal) || math.IsInf(v.NumericVal, 0) {
			return nil
		}
		return v.NumericVal
	case dataset.ValueTypeBoolean:
		return v.BooleanVal
	case dataset.ValueTypeString, dataset.ValueTypeTimestamp:
		return v.String()
	}
	return nil
}

// WriteCorrelationCSV saves a correlation matrix with a leading column of row names
func WriteCorrelationCSV(path string, m cleaning.CorrelationMatrix) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create correlation file: %w", err)
	}
	defer file.Close()

	cw := csv.NewWriter(file)
	if err := cw.Write(append([]string{""}, m.Columns...)); err != nil {
		return err
	}
	for i, name := range m.Columns {
		record := make([]string, 0, len(m.Columns)+1)
		record = append(record, name)
		for _, r := range m.Values[i] {
			if math.IsNaN(r) {
				record = append(record, "")
				continue
			}
			record = append(record, strconv.FormatFloat(r, 'f', -1, 64))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
