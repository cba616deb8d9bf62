package export

import (
	"fmt"
)

// Table is an ordered result set. Every row holds one cell per column.
type Table struct {
	Columns []string `json:"columns" yaml:"columns"`
	Rows    [][]any  `json:"rows" yaml:"rows"`
}

// NewTable creates an empty table with the given column labels.
func NewTable(columns ...string) *Table {
	return &Table{
		Columns: columns,
		Rows:    make([][]any, 0),
	}
}

// Append adds a row, padding or truncating it to the column count.
func (t *Table) Append(cells ...any) {
	row := make([]any, len(t.Columns))
	copy(row, cells)
	t.Rows = append(t.Rows, row)
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Records renders the header and all rows as text.
func (t *Table) Records() [][]string {
	list := make([][]string, 0, len(t.Rows)+1)
	list = append(list, t.Columns)
	for _, r := range t.Rows {
		rec := make([]string, len(t.Columns))
		for i := range t.Columns {
			if i < len(r) {
				rec[i] = cellText(r[i])
			}
		}
		list = append(list, rec)
	}
	return list
}

func cellText(v any) string {
	if v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
