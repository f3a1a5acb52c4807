package tableio

import (
	"fmt"
	"strconv"
	"time"

	"gocleanse/adapters/datareadiness/coercer"
	"gocleanse/domain/core"
	"gocleanse/domain/dataset"
)

type cellKind int

const (
	cellMissing cellKind = iota
	cellText
	cellNumber
	cellBool
	cellTime
)

// cell is one raw value before the column storage type is decided
type cell struct {
	kind cellKind
	text string
	num  float64
	b    bool
	t    time.Time
}

// tableBuilder accumulates raw cells column by column and infers storage types
type tableBuilder struct {
	coercer *coercer.TypeCoercer
	names   []string
	index   map[string]int
	cells   [][]cell
	rows    int
}

func newTableBuilder(c *coercer.TypeCoercer) *tableBuilder {
	return &tableBuilder{coercer: c, index: make(map[string]int)}
}

// column returns the index of a column, adding it with missing history when new
func (b *tableBuilder) column(name string) int {
	if idx, ok := b.index[name]; ok {
		return idx
	}
	b.index[name] = len(b.names)
	b.names = append(b.names, name)
	b.cells = append(b.cells, make([]cell, b.rows))
	return len(b.names) - 1
}

// setHeader declares columns in order; duplicate or empty names are rejected
func (b *tableBuilder) setHeader(names []string) error {
	for i, name := range names {
		if name == "" {
			return fmt.Errorf("%w: column %d has an empty header", core.ErrValidation, i)
		}
		if _, ok := b.index[name]; ok {
			return fmt.Errorf("%w: duplicate header %q", core.ErrValidation, name)
		}
		b.column(name)
	}
	return nil
}

// newRow appends a row of missing cells
func (b *tableBuilder) newRow() int {
	for i := range b.cells {
		b.cells[i] = append(b.cells[i], cell{})
	}
	b.rows++
	return b.rows - 1
}

func (b *tableBuilder) set(row, col int, c cell) {
	b.cells[col][row] = c
}

// text classifies raw text; null tokens become missing
func (b *tableBuilder) text(raw string) cell {
	if b.coercer.IsNullToken(raw) {
		return cell{}
	}
	return cell{kind: cellText, text: raw}
}

// native converts a decoded driver or JSON value
func (b *tableBuilder) native(v any) cell {
	switch x := v.(type) {
	case nil:
		return cell{}
	case string:
		return b.text(x)
	case []byte:
		return b.text(string(x))
	case bool:
		return cell{kind: cellBool, b: x}
	case float64:
		return cell{kind: cellNumber, num: x}
	case float32:
		return cell{kind: cellNumber, num: float64(x)}
	case int64:
		return cell{kind: cellNumber, num: float64(x)}
	case int:
		return cell{kind: cellNumber, num: float64(x)}
	case int32:
		return cell{kind: cellNumber, num: float64(x)}
	case time.Time:
		return cell{kind: cellTime, t: x}
	default:
		return b.text(fmt.Sprint(x))
	}
}

// build infers each column's storage type: numeric when every present cell is
// a number, boolean when every present cell is True/False, timestamp when every
// present cell is a native time, otherwise string. All-missing columns are numeric.
func (b *tableBuilder) build() (*dataset.Table, error) {
	columns := make([]*dataset.Column, len(b.names))
	for i, name := range b.names {
		columns[i] = b.buildColumn(name, b.cells[i])
	}
	return dataset.NewTable(columns...)
}

func (b *tableBuilder) buildColumn(name string, cells []cell) *dataset.Column {
	numeric, boolean, temporal := true, true, true
	for _, c := range cells {
		switch c.kind {
		case cellMissing:
		case cellNumber:
			boolean, temporal = false, false
		case cellBool:
			numeric, temporal = false, false
		case cellTime:
			numeric, boolean = false, false
		case cellText:
			temporal = false
			if _, ok := b.coercer.ParseStrictNumeric(c.text); !ok {
				numeric = false
			}
			if _, ok := b.coercer.ParseBoolean(c.text); !ok {
				boolean = false
			}
		}
	}

	values := make([]dataset.Value, len(cells))
	switch {
	case numeric:
		for i, c := range cells {
			switch c.kind {
			case cellNumber:
				values[i] = dataset.NewNumericValue(c.num)
			case cellText:
				f, _ := b.coercer.ParseStrictNumeric(c.text)
				values[i] = dataset.NewNumericValue(f)
			default:
				values[i] = dataset.NewMissingValue()
			}
		}
		return dataset.NewColumn(name, dataset.ValueTypeNumeric, values)
	case boolean:
		for i, c := range cells {
			switch c.kind {
			case cellBool:
				values[i] = dataset.NewBooleanValue(c.b)
			case cellText:
				v, _ := b.coercer.ParseBoolean(c.text)
				values[i] = dataset.NewBooleanValue(v)
			default:
				values[i] = dataset.NewMissingValue()
			}
		}
		return dataset.NewColumn(name, dataset.ValueTypeBoolean, values)
	case temporal:
		for i, c := range cells {
			if c.kind == cellTime {
				values[i] = dataset.NewTimestampValue(c.t)
				continue
			}
			values[i] = dataset.NewMissingValue()
		}
		return dataset.NewColumn(name, dataset.ValueTypeTimestamp, values)
	}

	for i, c := range cells {
		switch c.kind {
		case cellMissing:
			values[i] = dataset.NewMissingValue()
		case cellNumber:
			values[i] = dataset.NewStringValue(strconv.FormatFloat(c.num, 'f', -1, 64))
		case cellBool:
			values[i] = dataset.NewStringValue(strconv.FormatBool(c.b))
		case cellTime:
			values[i] = dataset.NewStringValue(c.t.Format(dataset.TimestampLayout))
		default:
			values[i] = dataset.NewStringValue(c.text)
		}
	}
	return dataset.NewColumn(name, dataset.ValueTypeString, values)
}

// fromRecords builds a table from a header row and text records; short records are padded
func (b *tableBuilder) fromRecords(records [][]string) (*dataset.Table, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no header row", core.ErrValidation)
	}
	if err := b.setHeader(records[0]); err != nil {
		return nil, err
	}
	width := len(records[0])
	for n, record := range records[1:] {
		if len(record) > width {
			return nil, fmt.Errorf("%w: row %d has %d fields, header has %d", core.ErrValidation, n+1, len(record), width)
		}
		row := b.newRow()
		for col, raw := range record {
			b.set(row, col, b.text(raw))
		}
	}
	return b.build()
}
