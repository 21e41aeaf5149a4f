package detectors

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"censusqc/internal/census"
)

// analysisTime anchors age calculations for every test in the package.
var analysisTime = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func buildTable(t *testing.T, headers []string, rows [][]string) *census.Table {
	t.Helper()
	return census.FromRecords(headers, rows)
}

func TestRequiredFieldsDetectorMissingColumn(t *testing.T) {
	tbl := buildTable(t,
		[]string{census.FieldDOB, census.FieldDOH, census.FieldPriorYearComp},
		[][]string{
			{"1985-01-15", "2010-06-01", "50000"},
			{"1990-03-20", "2015-02-10", "61000"},
		})

	issues := (&RequiredFieldsDetector{}).Detect(tbl)
	require.Len(t, issues, 1)

	issue := issues[0]
	assert.Equal(t, KindCritical, issue.Kind)
	assert.Equal(t, SeverityHigh, issue.Severity)
	assert.Equal(t, CategoryMissingData, issue.Category)
	assert.Equal(t, census.FieldSSN, issue.Field)
	assert.Equal(t, 2, issue.AffectedEmployees, "a missing column affects every employee")
	assert.Empty(t, issue.AffectedRows)
	assert.False(t, issue.AutoFixable)
	assert.Equal(t, FixKindNone, issue.FixKind)
}

func TestRequiredFieldsDetectorNullCells(t *testing.T) {
	tbl := buildTable(t,
		[]string{census.FieldSSN, census.FieldDOB, census.FieldDOH, census.FieldPriorYearComp},
		[][]string{
			{"123-45-6789", "1985-01-15", "2010-06-01", "50000"},
			{"987-65-4321", "", "2015-02-10", "61000"},
			{"555-44-3333", "", "2018-09-01", "47000"},
		})

	issues := (&RequiredFieldsDetector{}).Detect(tbl)
	require.Len(t, issues, 1)

	issue := issues[0]
	assert.Equal(t, census.FieldDOB, issue.Field)
	assert.Equal(t, []int{1, 2}, issue.AffectedRows)
	assert.Equal(t, 2, issue.AffectedEmployees)
	assert.Equal(t, FixKindMissingRequired, issue.FixKind)
}

func TestDateFormatDetector(t *testing.T) {
	tbl := buildTable(t,
		[]string{census.FieldDOB},
		[][]string{
			{"1985-01-15"},
			{"01/15/1985"},
			{"March 1, 1990"},
			{""},
		})

	issues := (&DateFormatDetector{}).Detect(tbl)
	require.Len(t, issues, 1)

	issue := issues[0]
	assert.Equal(t, CategoryFormatError, issue.Category)
	assert.Equal(t, []int{1, 2}, issue.AffectedRows)
	assert.True(t, issue.AutoFixable)
	assert.Equal(t, FixKindDateFormat, issue.FixKind)
	assert.Equal(t, census.FieldDOB, issue.Field)
}

func TestSSNFormatDetector(t *testing.T) {
	tbl := buildTable(t,
		[]string{census.FieldSSN},
		[][]string{
			{"123-45-6789"},
			{"123456789"},
			{"123 45 6789"},
			{"12345"},
			{""},
		})

	issues := (&SSNFormatDetector{}).Detect(tbl)
	require.Len(t, issues, 1)

	issue := issues[0]
	assert.Equal(t, []int{2, 3}, issue.AffectedRows)
	assert.True(t, issue.AutoFixable)
	assert.Equal(t, FixKindSSNFormat, issue.FixKind)
}

func TestSSNFormatDetectorCleanTable(t *testing.T) {
	tbl := buildTable(t,
		[]string{census.FieldSSN},
		[][]string{{"123-45-6789"}, {"987654321"}})
	assert.Empty(t, (&SSNFormatDetector{}).Detect(tbl))
}

func TestNumericFormatDetector(t *testing.T) {
	tbl := buildTable(t,
		[]string{census.FieldPriorYearComp},
		[][]string{
			{"50000"},
			{"$60,000"},
			{"not a number"},
			{""},
		})

	issues := (&NumericFormatDetector{}).Detect(tbl)
	require.Len(t, issues, 1)

	issue := issues[0]
	assert.Equal(t, []int{1, 2}, issue.AffectedRows)
	assert.True(t, issue.AutoFixable)
	assert.Equal(t, FixKindNumericFormat, issue.FixKind)
	assert.Equal(t, SeverityMedium, issue.Severity)
}

func TestDateOrderDetector(t *testing.T) {
	tbl := buildTable(t,
		[]string{census.FieldDOH, census.FieldDOT},
		[][]string{
			{"2010-06-01", "2020-03-31"}, // valid
			{"2020-03-31", "2010-06-01"}, // reversed
			{"2015-01-01", "2015-01-01"}, // same day counts as a violation
			{"2018-01-01", ""},           // active employee, skipped
		})

	issues := (&DateOrderDetector{}).Detect(tbl)
	require.Len(t, issues, 1)

	issue := issues[0]
	assert.Equal(t, CategoryLogicError, issue.Category)
	assert.Equal(t, []int{1, 2}, issue.AffectedRows)
	assert.Equal(t, 1.0, issue.Confidence)
	assert.False(t, issue.AutoFixable)
}

func TestAgeRangeDetector(t *testing.T) {
	tbl := buildTable(t,
		[]string{census.FieldDOB},
		[][]string{
			{"1985-01-15"}, // 41, fine
			{"1930-01-01"}, // 96, too old
			{"2015-06-01"}, // 10, too young
			{""},
		})

	issues := (&AgeRangeDetector{Now: analysisTime}).Detect(tbl)
	require.Len(t, issues, 1)
	assert.Equal(t, []int{1, 2}, issues[0].AffectedRows)
	assert.Equal(t, CategoryAnomaly, issues[0].Category)
}

func TestCompensationRangeDetector(t *testing.T) {
	tbl := buildTable(t,
		[]string{census.FieldPriorYearComp},
		[][]string{
			{"50000"},
			{"500"},      // below $1,000
			{"15000000"}, // above $10,000,000
		})

	issues := (&CompensationRangeDetector{}).Detect(tbl)
	require.Len(t, issues, 1)
	assert.Equal(t, []int{1, 2}, issues[0].AffectedRows)
}

func TestDetectorsSkipAbsentColumns(t *testing.T) {
	tbl := buildTable(t, []string{"Unrelated"}, [][]string{{"x"}})

	assert.Empty(t, (&DateFormatDetector{}).Detect(tbl))
	assert.Empty(t, (&SSNFormatDetector{}).Detect(tbl))
	assert.Empty(t, (&NumericFormatDetector{}).Detect(tbl))
	assert.Empty(t, (&DateOrderDetector{}).Detect(tbl))
	assert.Empty(t, (&AgeRangeDetector{Now: analysisTime}).Detect(tbl))
	assert.Empty(t, (&CompensationRangeDetector{}).Detect(tbl))
	assert.Empty(t, (&IQROutlierDetector{}).Detect(tbl))
	assert.Empty(t, (&MassTerminationDetector{}).Detect(tbl))
	assert.Empty(t, (&MassHiringDetector{}).Detect(tbl))
}
