package tableio

import (
	"fmt"
	"os"
	"strconv"

	"github.com/tidwall/gjson"

	"gocleanse/domain/core"
	"gocleanse/domain/dataset"
)

// readJSON accepts either an array of records, [{"a": 1}, ...], or a column
// object, {"a": [1, ...]} or {"a": {"0": 1, ...}}. Key order is preserved.
func (r *Reader) readJSON() (*dataset.Table, error) {
	data, err := os.ReadFile(r.source.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open JSON file: %w", err)
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: %s is not valid JSON", core.ErrValidation, r.source.Path)
	}

	root := gjson.ParseBytes(data)
	b := newTableBuilder(r.coercer)
	switch {
	case root.IsArray():
		err = b.jsonRecords(root)
	case root.IsObject():
		err = b.jsonColumns(root)
	default:
		err = fmt.Errorf("%w: JSON table must be an array or an object", core.ErrValidation)
	}
	if err != nil {
		return nil, err
	}
	return b.build()
}

func (b *tableBuilder) jsonRecords(root gjson.Result) error {
	var err error
	root.ForEach(func(_, record gjson.Result) bool {
		if !record.IsObject() {
			err = fmt.Errorf("%w: record %d is not an object", core.ErrValidation, b.rows)
			return false
		}
		row := b.newRow()
		record.ForEach(func(key, value gjson.Result) bool {
			b.set(row, b.column(key.String()), b.jsonCell(value))
			return true
		})
		return true
	})
	return err
}

func (b *tableBuilder) jsonColumns(root gjson.Result) error {
	var err error
	root.ForEach(func(key, column gjson.Result) bool {
		col := b.column(key.String())
		i := 0
		column.ForEach(func(index, value gjson.Result) bool {
			row := i
			if column.IsObject() {
				n, convErr := strconv.Atoi(index.String())
				if convErr != nil || n < 0 {
					err = fmt.Errorf("%w: column %q has non-integer row key %q", core.ErrValidation, key.String(), index.String())
					return false
				}
				row = n
			}
			for b.rows <= row {
				b.newRow()
			}
			b.set(row, col, b.jsonCell(value))
			i++
			return true
		})
		return err == nil
	})
	return err
}

func (b *tableBuilder) jsonCell(value gjson.Result) cell {
	switch value.Type {
	case gjson.Null:
		return cell{}
	case gjson.True, gjson.False:
		return cell{kind: cellBool, b: value.Bool()}
	case gjson.Number:
		return cell{kind: cellNumber, num: value.Float()}
	case gjson.String:
		return b.text(value.String())
	default:
		return b.text(value.Raw)
	}
}
