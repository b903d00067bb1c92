package table

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kailas-cloud/ragtools/internal/domain"
)

// Cell is a single table value that is either present or null.
type Cell struct {
	value string
	valid bool
}

// Value creates a present cell.
func Value(s string) Cell { return Cell{value: s, valid: true} }

// Null creates an absent cell.
func Null() Cell { return Cell{} }

// IsNull reports whether the cell is absent.
func (c Cell) IsNull() bool { return !c.valid }

// String returns the cell text ("" for null cells).
func (c Cell) String() string { return c.value }

// Column is a named, ordered sequence of cells.
type Column struct {
	name  string
	cells []Cell
}

// NewColumn creates a column. The cells slice is not copied.
func NewColumn(name string, cells []Cell) Column {
	return Column{name: name, cells: cells}
}

// Name returns the raw column name.
func (c Column) Name() string { return c.name }

// Len returns the number of cells.
func (c Column) Len() int { return len(c.cells) }

// Cell returns the cell at row i.
func (c Column) Cell(i int) Cell { return c.cells[i] }

// Samples returns up to limit non-null values in table order.
func (c Column) Samples(limit int) []string {
	out := make([]string, 0, limit)
	for _, cell := range c.cells {
		if len(out) >= limit {
			break
		}
		if !cell.IsNull() {
			out = append(out, cell.String())
		}
	}
	return out
}

// Distinct returns the distinct non-null values in first-occurrence order.
func (c Column) Distinct() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, cell := range c.cells {
		if cell.IsNull() {
			continue
		}
		if _, ok := seen[cell.value]; ok {
			continue
		}
		seen[cell.value] = struct{}{}
		out = append(out, cell.value)
	}
	return out
}

// Table is an in-memory tabular data set (immutable once built).
type Table struct {
	source  string
	columns []Column
	rows    int
}

// New validates and creates a Table. source is the file name the data came from.
func New(source string, columns []Column) (*Table, error) {
	rows := 0
	for i := range columns {
		if i == 0 {
			rows = columns[i].Len()
			continue
		}
		if columns[i].Len() != rows {
			return nil, fmt.Errorf("column %q has %d rows, want %d: %w",
				columns[i].Name(), columns[i].Len(), rows, domain.ErrRaggedTable)
		}
	}
	return &Table{source: source, columns: columns, rows: rows}, nil
}

// FromRecords transposes row records into columns. Every record must have exactly
// len(header) cells.
func FromRecords(source string, header []string, records [][]Cell) (*Table, error) {
	cols := make([][]Cell, len(header))
	for i := range cols {
		cols[i] = make([]Cell, 0, len(records))
	}
	for r, rec := range records {
		if len(rec) != len(header) {
			return nil, fmt.Errorf("record %d has %d fields, want %d: %w",
				r+1, len(rec), len(header), domain.ErrRaggedTable)
		}
		for i, cell := range rec {
			cols[i] = append(cols[i], cell)
		}
	}

	columns := make([]Column, len(header))
	for i, name := range header {
		columns[i] = NewColumn(name, cols[i])
	}
	return New(source, columns)
}

// Source returns the source file name (base name, with extension).
func (t *Table) Source() string { return t.source }

// Name returns the source file stem, used as the human-readable data set name.
func (t *Table) Name() string {
	base := filepath.Base(t.source)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// RowCount returns the number of data rows.
func (t *Table) RowCount() int { return t.rows }

// Columns returns the columns in table order.
func (t *Table) Columns() []Column { return t.columns }

// ColumnNames returns the column names in table order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i := range t.columns {
		names[i] = t.columns[i].Name()
	}
	return names
}

// Row returns a view over row i (0-based).
func (t *Table) Row(i int) Row { return Row{table: t, index: i} }

// Row is a read-only view of one table row.
type Row struct {
	table *Table
	index int
}

// Index returns the 0-based row position.
func (r Row) Index() int { return r.index }

// Field is a column name paired with the row's cell for that column.
type Field struct {
	Name string
	Cell Cell
}

// Fields returns every (column, cell) pair of the row in column order.
func (r Row) Fields() []Field {
	out := make([]Field, len(r.table.columns))
	for i := range r.table.columns {
		c := &r.table.columns[i]
		out[i] = Field{Name: c.Name(), Cell: c.Cell(r.index)}
	}
	return out
}
