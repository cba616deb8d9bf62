package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type label string

func (l label) String() string { return "label:" + string(l) }

func TestTable_Append(t *testing.T) {
	tbl := NewTable("a", "b")
	tbl.Append("1")
	tbl.Append("1", "2", "3")

	assert.Equal(t, 2, tbl.Len())
	assert.Equal(t, []any{"1", nil}, tbl.Rows[0])
	assert.Equal(t, []any{"1", "2"}, tbl.Rows[1])
}

func TestTable_Records(t *testing.T) {
	tbl := NewTable("name", "score", "tag", "ratio")
	tbl.Append("FIXGO", 95, label("x"), 0.5)
	tbl.Rows = append(tbl.Rows, []any{"short"})

	assert.Equal(t, [][]string{
		{"name", "score", "tag", "ratio"},
		{"FIXGO", "95", "label:x", "0.5"},
		{"short", "", "", ""},
	}, tbl.Records())
}

func TestTable_LenNil(t *testing.T) {
	var tbl *Table
	assert.Equal(t, 0, tbl.Len())
}
