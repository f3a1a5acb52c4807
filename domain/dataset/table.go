// Package dataset holds the in-memory table the cleaning components operate on.
//
// A Table is owned by a single caller and mutated in place by every component.
// It carries no locking: concurrent use of the same Table from several
// goroutines is the caller's responsibility.
package dataset

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"gocleanse/domain/core"
)

// Column is a named, typed sequence of cells aligned by row index
type Column struct {
	Name   string    `json:"name"`
	Type   ValueType `json:"type"`
	Values []Value   `json:"values"`
}

// NewColumn creates a column with the given storage type
func NewColumn(name string, typ ValueType, values []Value) *Column {
	if values == nil {
		values = []Value{}
	}
	return &Column{Name: name, Type: typ, Values: values}
}

// Len returns the number of cells
func (c *Column) Len() int {
	return len(c.Values)
}

// MissingCount returns the number of missing cells
func (c *Column) MissingCount() int {
	n := 0
	for _, v := range c.Values {
		if v.IsMissing() {
			n++
		}
	}
	return n
}

// Floats returns the non-missing numeric cells and their row indices
func (c *Column) Floats() ([]float64, []int) {
	values := make([]float64, 0, len(c.Values))
	rows := make([]int, 0, len(c.Values))
	for i, v := range c.Values {
		if v.IsMissing() || v.Type != ValueTypeNumeric {
			continue
		}
		values = append(values, v.NumericVal)
		rows = append(rows, i)
	}
	return values, rows
}

// NonMissing returns the non-missing cells in row order
func (c *Column) NonMissing() []Value {
	out := make([]Value, 0, len(c.Values))
	for _, v := range c.Values {
		if !v.IsMissing() {
			out = append(out, v)
		}
	}
	return out
}

func (c *Column) clone() *Column {
	values := make([]Value, len(c.Values))
	copy(values, c.Values)
	return &Column{Name: c.Name, Type: c.Type, Values: values}
}

// Table is an ordered sequence of named columns of equal length.
// The row index is the position within the columns and stays stable until a
// row-removing operation compacts it.
type Table struct {
	columns []*Column
}

// NewTable builds a table and validates it
func NewTable(columns ...*Column) (*Table, error) {
	t := &Table{columns: columns}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate ensures the table is internally consistent
func (t *Table) Validate() error {
	seen := make(map[string]bool, len(t.columns))
	for i, col := range t.columns {
		if col == nil {
			return core.NewValidationError("columns", fmt.Sprintf("column %d is nil", i))
		}
		if strings.TrimSpace(col.Name) == "" {
			return core.NewValidationError("columns", fmt.Sprintf("column %d has no name", i))
		}
		if seen[col.Name] {
			return core.NewValidationError("columns", fmt.Sprintf("duplicate column name %q", col.Name))
		}
		seen[col.Name] = true
		if col.Len() != t.columns[0].Len() {
			return core.NewValidationError("columns",
				fmt.Sprintf("column %q has %d rows, expected %d", col.Name, col.Len(), t.columns[0].Len()))
		}
	}
	return nil
}

// Columns returns the columns in table order
func (t *Table) Columns() []*Column {
	return t.columns
}

// ColumnNames returns the column names in table order
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, col := range t.columns {
		names[i] = col.Name
	}
	return names
}

// ColumnIndex returns the position of a column
func (t *Table) ColumnIndex(name string) (int, bool) {
	for i, col := range t.columns {
		if col.Name == name {
			return i, true
		}
	}
	return -1, false
}

// Column returns a column by name
func (t *Table) Column(name string) (*Column, error) {
	idx, ok := t.ColumnIndex(name)
	if !ok {
		return nil, core.NewColumnNotFoundError(name)
	}
	return t.columns[idx], nil
}

// RowCount returns the number of rows
func (t *Table) RowCount() int {
	if len(t.columns) == 0 {
		return 0
	}
	return t.columns[0].Len()
}

// ColumnCount returns the number of columns
func (t *Table) ColumnCount() int {
	return len(t.columns)
}

// Row returns the value tuple at a row index
func (t *Table) Row(i int) []Value {
	row := make([]Value, len(t.columns))
	for j, col := range t.columns {
		row[j] = col.Values[i]
	}
	return row
}

// Cell returns a single cell
func (t *Table) Cell(row int, column string) (Value, error) {
	col, err := t.Column(column)
	if err != nil {
		return Value{}, err
	}
	if row < 0 || row >= col.Len() {
		return Value{}, fmt.Errorf("%w: row %d, table has %d rows", core.ErrRowOutOfRange, row, col.Len())
	}
	return col.Values[row], nil
}

// SetCell overwrites a single cell
func (t *Table) SetCell(row int, column string, v Value) error {
	col, err := t.Column(column)
	if err != nil {
		return err
	}
	if row < 0 || row >= col.Len() {
		return fmt.Errorf("%w: row %d, table has %d rows", core.ErrRowOutOfRange, row, col.Len())
	}
	col.Values[row] = v
	return nil
}

// RowKey renders the full value tuple of a row; two rows have equal keys iff
// every cell is equal.
func (t *Table) RowKey(i int) string {
	var b strings.Builder
	for j, col := range t.columns {
		if j > 0 {
			b.WriteByte('\x1f')
		}
		col.Values[i].key(&b)
	}
	return b.String()
}

// DuplicateMask is true for every row whose full value tuple equals an earlier row
func (t *Table) DuplicateMask() []bool {
	mask := make([]bool, t.RowCount())
	seen := make(map[string]struct{}, len(mask))
	for i := range mask {
		key := t.RowKey(i)
		if _, ok := seen[key]; ok {
			mask[i] = true
			continue
		}
		seen[key] = struct{}{}
	}
	return mask
}

// KeepRows retains the rows where keep is true and compacts the row index.
// It returns the number of rows removed.
func (t *Table) KeepRows(keep []bool) int {
	removed := 0
	for _, col := range t.columns {
		kept := col.Values[:0]
		for i, v := range col.Values {
			if keep[i] {
				kept = append(kept, v)
			}
		}
		removed = len(col.Values) - len(kept)
		col.Values = kept
	}
	return removed
}

// RemoveRows removes each listed row exactly once, regardless of repeats in rows
func (t *Table) RemoveRows(rows []int) (int, error) {
	n := t.RowCount()
	keep := make([]bool, n)
	for i := range keep {
		keep[i] = true
	}
	for _, r := range rows {
		if r < 0 || r >= n {
			return 0, fmt.Errorf("%w: row %d, table has %d rows", core.ErrRowOutOfRange, r, n)
		}
		keep[r] = false
	}
	return t.KeepRows(keep), nil
}

// ReplaceColumn swaps one column for zero or more columns at the same position
func (t *Table) ReplaceColumn(name string, replacements ...*Column) error {
	idx, ok := t.ColumnIndex(name)
	if !ok {
		return core.NewColumnNotFoundError(name)
	}
	columns := make([]*Column, 0, len(t.columns)-1+len(replacements))
	columns = append(columns, t.columns[:idx]...)
	columns = append(columns, replacements...)
	columns = append(columns, t.columns[idx+1:]...)

	previous := t.columns
	t.columns = columns
	if err := t.Validate(); err != nil {
		t.columns = previous
		return err
	}
	return nil
}

// ReplaceColumns swaps several columns in one step. Each named column is
// replaced in place by its replacements; the table is left unchanged if any
// name is unknown or the result fails validation.
func (t *Table) ReplaceColumns(replacements map[string][]*Column) error {
	for name := range replacements {
		if _, ok := t.ColumnIndex(name); !ok {
			return core.NewColumnNotFoundError(name)
		}
	}
	columns := make([]*Column, 0, len(t.columns))
	for _, col := range t.columns {
		if repl, ok := replacements[col.Name]; ok {
			columns = append(columns, repl...)
			continue
		}
		columns = append(columns, col)
	}

	previous := t.columns
	t.columns = columns
	if err := t.Validate(); err != nil {
		t.columns = previous
		return err
	}
	return nil
}

// AddColumn appends a column
func (t *Table) AddColumn(col *Column) error {
	previous := t.columns
	t.columns = append(t.columns, col)
	if err := t.Validate(); err != nil {
		t.columns = previous
		return err
	}
	return nil
}

// Clone returns a deep copy
func (t *Table) Clone() *Table {
	columns := make([]*Column, len(t.columns))
	for i, col := range t.columns {
		columns[i] = col.clone()
	}
	return &Table{columns: columns}
}

// Head returns a copy of the first n rows
func (t *Table) Head(n int) *Table {
	if n > t.RowCount() {
		n = t.RowCount()
	}
	if n < 0 {
		n = 0
	}
	out := t.Clone()
	for _, col := range out.columns {
		col.Values = col.Values[:n]
	}
	return out
}

// Sample returns a copy of n rows drawn without replacement, kept in row order
func (t *Table) Sample(rng *rand.Rand, n int) *Table {
	total := t.RowCount()
	if n > total {
		n = total
	}
	picked := rng.Perm(total)[:n]
	sort.Ints(picked)
	keep := make([]bool, total)
	for _, r := range picked {
		keep[r] = true
	}
	out := t.Clone()
	out.KeepRows(keep)
	return out
}

// ColumnType pairs a column name with its storage type
type ColumnType struct {
	Name string    `json:"name"`
	Type ValueType `json:"type"`
}

// Dtypes returns the storage type of every column in table order
func (t *Table) Dtypes() []ColumnType {
	out := make([]ColumnType, len(t.columns))
	for i, col := range t.columns {
		out[i] = ColumnType{Name: col.Name, Type: col.Type}
	}
	return out
}

// Fingerprint hashes the schema and every row; used to check that a persisted
// artifact is replayed against the table it was computed from.
func (t *Table) Fingerprint() core.Hash {
	var b strings.Builder
	for _, ct := range t.Dtypes() {
		b.WriteString(ct.Name)
		b.WriteByte(':')
		b.WriteString(string(ct.Type))
		b.WriteByte('\x1e')
	}
	for i := 0; i < t.RowCount(); i++ {
		b.WriteString(t.RowKey(i))
		b.WriteByte('\x1e')
	}
	return core.NewHash([]byte(b.String()))
}
