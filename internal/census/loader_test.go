package census

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCSVTypesCanonicalValues(t *testing.T) {
	csv := strings.Join([]string{
		"SSN,DOB,PriorYearComp",
		"123-45-6789,1985-01-15,50000",
		"987654321,01/15/1985,\"$60,000\"",
		",,",
	}, "\n")

	tbl, err := LoadCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Equal(t, 3, tbl.RowCount())

	// Canonical date parses into a typed date cell.
	v, _ := tbl.Cell(0, "DOB")
	assert.Equal(t, KindDate, v.Kind)

	// Non-canonical date stays a string for the detectors to flag.
	v, _ = tbl.Cell(1, "DOB")
	assert.Equal(t, KindString, v.Kind)
	assert.Equal(t, "01/15/1985", v.Str)

	// Plain numbers type as numbers, formatted ones stay strings.
	v, _ = tbl.Cell(0, "PriorYearComp")
	assert.Equal(t, KindNumber, v.Kind)
	assert.Equal(t, 50000.0, v.Num)
	v, _ = tbl.Cell(1, "PriorYearComp")
	assert.Equal(t, KindString, v.Kind)

	// Empty cells become null.
	v, _ = tbl.Cell(2, "SSN")
	assert.True(t, v.IsNull())
}

func TestLoadCSVStripsBOM(t *testing.T) {
	csv := "\ufeffSSN,DOB\n123-45-6789,1985-01-15\n"
	tbl, err := LoadCSV(strings.NewReader(csv))
	require.NoError(t, err)
	assert.True(t, tbl.HasColumn("SSN"))
}

func TestLoadCSVToleratesRaggedRows(t *testing.T) {
	csv := "A,B,C\n1,2\n1,2,3,4\n"
	tbl, err := LoadCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Equal(t, 2, tbl.RowCount())

	v, ok := tbl.Cell(0, "C")
	require.True(t, ok)
	assert.True(t, v.IsNull())
}

func TestLoadCSVRejectsEmptyInput(t *testing.T) {
	_, err := LoadCSV(strings.NewReader(""))
	assert.Error(t, err)
}

func TestFromRecordsTrimsWhitespace(t *testing.T) {
	tbl := FromRecords([]string{"SSN"}, [][]string{{"  123-45-6789  "}})
	v, _ := tbl.Cell(0, "SSN")
	assert.Equal(t, "123-45-6789", v.Str)
}
