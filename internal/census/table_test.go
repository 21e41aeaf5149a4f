package census

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueDisplay(t *testing.T) {
	assert.Equal(t, "", Null().Display())
	assert.Equal(t, "hello", String("hello").Display())
	assert.Equal(t, "50000.5", Number(50000.5).Display())
	assert.Equal(t, "50000", Number(50000).Display(), "whole numbers carry no decimal point")
	assert.Equal(t, "1985-01-15", Date(time.Date(1985, 1, 15, 0, 0, 0, 0, time.UTC)).Display())
}

func TestValueEqual(t *testing.T) {
	assert.True(t, Null().Equal(Null()))
	assert.True(t, String("a").Equal(String("a")))
	assert.False(t, String("a").Equal(String("b")))
	assert.False(t, String("1").Equal(Number(1)))
	assert.True(t, Number(1.5).Equal(Number(1.5)))
	d := time.Date(2020, 6, 30, 0, 0, 0, 0, time.UTC)
	assert.True(t, Date(d).Equal(Date(d)))
}

func TestTableCellAndSetCell(t *testing.T) {
	tbl := NewTable([]string{"A", "B"})
	tbl.AppendRow([]Value{String("x"), Number(1)})

	v, ok := tbl.Cell(0, "A")
	require.True(t, ok)
	assert.Equal(t, "x", v.Str)

	_, ok = tbl.Cell(0, "missing")
	assert.False(t, ok)
	_, ok = tbl.Cell(5, "A")
	assert.False(t, ok)

	require.NoError(t, tbl.SetCell(0, "B", Number(2)))
	v, _ = tbl.Cell(0, "B")
	assert.Equal(t, 2.0, v.Num)

	assert.Error(t, tbl.SetCell(0, "missing", Null()))
	assert.Error(t, tbl.SetCell(9, "A", Null()))
	assert.Error(t, tbl.SetCell(-1, "A", Null()))
}

func TestTableAppendRowPadsShortRows(t *testing.T) {
	tbl := NewTable([]string{"A", "B", "C"})
	tbl.AppendRow([]Value{String("only")})

	v, ok := tbl.Cell(0, "C")
	require.True(t, ok)
	assert.True(t, v.IsNull())
}

func TestTableAddColumn(t *testing.T) {
	tbl := NewTable([]string{"A"})
	tbl.AppendRow([]Value{String("x")})

	tbl.AddColumn("Excluded", String("false"))
	require.True(t, tbl.HasColumn("Excluded"))
	v, _ := tbl.Cell(0, "Excluded")
	assert.Equal(t, "false", v.Str)

	// Adding again must not reset values.
	require.NoError(t, tbl.SetCell(0, "Excluded", String("true")))
	tbl.AddColumn("Excluded", String("false"))
	v, _ = tbl.Cell(0, "Excluded")
	assert.Equal(t, "true", v.Str)
}

func TestTableCloneIsIndependent(t *testing.T) {
	tbl := NewTable([]string{"A"})
	tbl.AppendRow([]Value{String("original")})

	clone := tbl.Clone()
	require.NoError(t, clone.SetCell(0, "A", String("changed")))

	v, _ := tbl.Cell(0, "A")
	assert.Equal(t, "original", v.Str)
	v, _ = clone.Cell(0, "A")
	assert.Equal(t, "changed", v.Str)
}

func TestTableRecords(t *testing.T) {
	tbl := NewTable([]string{"A", "B"})
	tbl.AppendRow([]Value{Number(100), Null()})

	headers, records := tbl.Records()
	assert.Equal(t, []string{"A", "B"}, headers)
	require.Len(t, records, 1)
	assert.Equal(t, []string{"100", ""}, records[0])
}
