package census

import (
	"fmt"
	"strconv"
	"time"
)

// ValueKind identifies the type stored in a table cell.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindString
	KindNumber
	KindDate
)

// Value is a single table cell. Exactly one of the payload fields is
// meaningful, selected by Kind.
type Value struct {
	Kind ValueKind
	Str  string
	Num  float64
	Date time.Time
}

// Null returns a null cell value.
func Null() Value {
	return Value{Kind: KindNull}
}

// String returns a string cell value.
func String(s string) Value {
	return Value{Kind: KindString, Str: s}
}

// Number returns a numeric cell value.
func Number(f float64) Value {
	return Value{Kind: KindNumber, Num: f}
}

// Date returns a date cell value.
func Date(t time.Time) Value {
	return Value{Kind: KindDate, Date: t}
}

// IsNull reports whether the cell holds no value.
func (v Value) IsNull() bool {
	return v.Kind == KindNull
}

// Display renders the cell in its canonical wire form: dates as
// DateLayout, numbers without trailing zeros, nulls as the empty string.
func (v Value) Display() string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindDate:
		return v.Date.Format(DateLayout)
	default:
		return ""
	}
}

// Equal reports whether two cells hold the same value.
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindString:
		return v.Str == other.Str
	case KindNumber:
		return v.Num == other.Num
	case KindDate:
		return v.Date.Equal(other.Date)
	default:
		return true
	}
}

// Table is an in-memory census table with named columns and stable
// 0-based row indices. Row indices never change for the lifetime of a
// table; exclusions flag rows instead of deleting them.
//
// Table is not safe for concurrent mutation. Callers serialize write
// access; see services.Session.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]Value
}

// NewTable creates an empty table with the given column set.
func NewTable(columns []string) *Table {
	t := &Table{
		columns: make([]string, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	copy(t.columns, columns)
	for i, c := range columns {
		t.index[c] = i
	}
	return t
}

// Columns returns the column names in order.
func (t *Table) Columns() []string {
	cols := make([]string, len(t.columns))
	copy(cols, t.columns)
	return cols
}

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// RowCount returns the number of rows.
func (t *Table) RowCount() int {
	return len(t.rows)
}

// AppendRow adds a row. Missing trailing cells are filled with null.
func (t *Table) AppendRow(values []Value) {
	row := make([]Value, len(t.columns))
	for i := range row {
		if i < len(values) {
			row[i] = values[i]
		} else {
			row[i] = Null()
		}
	}
	t.rows = append(t.rows, row)
}

// Cell returns the value at (row, column). The second return is false
// when the row index is out of range or the column does not exist.
func (t *Table) Cell(row int, column string) (Value, bool) {
	col, ok := t.index[column]
	if !ok || row < 0 || row >= len(t.rows) {
		return Null(), false
	}
	return t.rows[row][col], true
}

// SetCell overwrites the value at (row, column).
func (t *Table) SetCell(row int, column string, v Value) error {
	col, ok := t.index[column]
	if !ok {
		return fmt.Errorf("column %s does not exist", column)
	}
	if row < 0 || row >= len(t.rows) {
		return fmt.Errorf("row %d out of range (0-%d)", row, len(t.rows)-1)
	}
	t.rows[row][col] = v
	return nil
}

// AddColumn appends a new column filled with the given value. Adding a
// column that already exists is a no-op.
func (t *Table) AddColumn(name string, fill Value) {
	if t.HasColumn(name) {
		return
	}
	t.index[name] = len(t.columns)
	t.columns = append(t.columns, name)
	for i := range t.rows {
		t.rows[i] = append(t.rows[i], fill)
	}
}

// Column returns all values of the named column in row order. The
// second return is false when the column does not exist.
func (t *Table) Column(name string) ([]Value, bool) {
	col, ok := t.index[name]
	if !ok {
		return nil, false
	}
	values := make([]Value, len(t.rows))
	for i, row := range t.rows {
		values[i] = row[col]
	}
	return values, true
}

// Clone returns a deep copy of the table. Fix previews run against a
// clone so the live table is never touched.
func (t *Table) Clone() *Table {
	clone := NewTable(t.columns)
	clone.rows = make([][]Value, len(t.rows))
	for i, row := range t.rows {
		rowCopy := make([]Value, len(row))
		copy(rowCopy, row)
		clone.rows[i] = rowCopy
	}
	return clone
}

// Records renders the full table as header + string records, in the
// canonical wire form used for export.
func (t *Table) Records() ([]string, [][]string) {
	records := make([][]string, len(t.rows))
	for i, row := range t.rows {
		record := make([]string, len(row))
		for j, v := range row {
			record[j] = v.Display()
		}
		records[i] = record
	}
	return t.Columns(), records
}
