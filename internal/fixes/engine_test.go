package fixes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"censusqc/internal/census"
	"censusqc/internal/detectors"
)

func fixtureTable(t *testing.T) *census.Table {
	t.Helper()
	return census.FromRecords(
		[]string{census.FieldSSN, census.FieldDOB, census.FieldPriorYearComp},
		[][]string{
			{"123 45 6789", "01/15/1985", "$50,000"},
			{"987-65-4321", "1990-03-20", "61000"},
			{"", "March 1, 1992", ""},
		})
}

func dateIssue(rows []int) *detectors.Issue {
	return &detectors.Issue{
		ID:           "issue-date",
		Category:     detectors.CategoryFormatError,
		AffectedRows: rows,
		AutoFixable:  true,
		FixKind:      detectors.FixKindDateFormat,
		Field:        census.FieldDOB,
	}
}

func ssnIssue(rows []int) *detectors.Issue {
	return &detectors.Issue{
		ID:           "issue-ssn",
		Category:     detectors.CategoryFormatError,
		AffectedRows: rows,
		AutoFixable:  true,
		FixKind:      detectors.FixKindSSNFormat,
		Field:        census.FieldSSN,
	}
}

func missingIssue(rows []int, field string) *detectors.Issue {
	return &detectors.Issue{
		ID:           "issue-missing",
		Category:     detectors.CategoryMissingData,
		AffectedRows: rows,
		FixKind:      detectors.FixKindMissingRequired,
		Field:        field,
	}
}

func TestAutoFixDateFormat(t *testing.T) {
	tbl := fixtureTable(t)
	engine := NewEngine(tbl, nil)
	issue := dateIssue([]int{0, 2})

	result, err := engine.ApplyFix(issue, ActionAutoFix, nil, "tester")
	require.NoError(t, err)
	assert.Equal(t, 2, result.RowsAffected)

	v, _ := tbl.Cell(0, census.FieldDOB)
	assert.Equal(t, census.KindDate, v.Kind)
	assert.Equal(t, "1985-01-15", v.Display())
	v, _ = tbl.Cell(2, census.FieldDOB)
	assert.Equal(t, "1992-03-01", v.Display())

	// Untouched row keeps its typed date.
	v, _ = tbl.Cell(1, census.FieldDOB)
	assert.Equal(t, "1990-03-20", v.Display())

	require.True(t, issue.Resolved())
	assert.Equal(t, detectors.MethodAutoFix, issue.Resolution.Method)

	history := engine.History(issue.ID)
	require.Len(t, history, 1)
	assert.True(t, history[0].Success)
	assert.NotEmpty(t, history[0].RollbackData, "mutating fixes snapshot the originals")
}

func TestAutoFixSSNFormat(t *testing.T) {
	tbl := fixtureTable(t)
	engine := NewEngine(tbl, nil)

	result, err := engine.ApplyFix(ssnIssue([]int{0}), ActionAutoFix, nil, "tester")
	require.NoError(t, err)
	require.Len(t, result.Changes, 1)
	assert.Equal(t, "123 45 6789", result.Changes[0].Original)
	assert.Equal(t, "123-45-6789", result.Changes[0].Fixed)

	v, _ := tbl.Cell(0, census.FieldSSN)
	assert.Equal(t, "123-45-6789", v.Str)
}

func TestAutoFixNumericFormat(t *testing.T) {
	tbl := fixtureTable(t)
	engine := NewEngine(tbl, nil)
	issue := &detectors.Issue{
		ID:           "issue-numeric",
		AffectedRows: []int{0},
		AutoFixable:  true,
		FixKind:      detectors.FixKindNumericFormat,
		Field:        census.FieldPriorYearComp,
	}

	result, err := engine.ApplyFix(issue, ActionAutoFix, nil, "tester")
	require.NoError(t, err)
	assert.Equal(t, 1, result.RowsAffected)

	v, _ := tbl.Cell(0, census.FieldPriorYearComp)
	assert.Equal(t, census.KindNumber, v.Kind)
	assert.Equal(t, 50000.0, v.Num)
}

func TestAutoFixSkipsUnfixableCells(t *testing.T) {
	tbl := census.FromRecords(
		[]string{census.FieldDOB},
		[][]string{{"01/15/1985"}, {"not a date"}})
	engine := NewEngine(tbl, nil)
	issue := dateIssue([]int{0, 1})

	result, err := engine.ApplyFix(issue, ActionAutoFix, nil, "tester")
	require.NoError(t, err)
	assert.Equal(t, 1, result.RowsAffected, "unparseable cells are skipped, never partially written")

	v, _ := tbl.Cell(1, census.FieldDOB)
	assert.Equal(t, "not a date", v.Str)
}

func TestAutoFixRejectsNonAutoFixable(t *testing.T) {
	engine := NewEngine(fixtureTable(t), nil)
	issue := &detectors.Issue{ID: "issue-x", AutoFixable: false, FixKind: detectors.FixKindNone}

	_, err := engine.ApplyFix(issue, ActionAutoFix, nil, "tester")
	require.Error(t, err)
	assert.Equal(t, ErrorTypeUnsupported, TypeOf(err))
	assert.False(t, issue.Resolved())

	history := engine.History(issue.ID)
	require.Len(t, history, 1, "failed attempts are recorded too")
	assert.False(t, history[0].Success)
	assert.NotEmpty(t, history[0].Error)
}

func TestUnknownActionRejected(t *testing.T) {
	engine := NewEngine(fixtureTable(t), nil)
	_, err := engine.ApplyFix(dateIssue([]int{0}), Action("explode"), nil, "tester")
	require.Error(t, err)
	assert.Equal(t, ErrorTypeUnsupported, TypeOf(err))
}

func TestPreviewFixLeavesTableUntouched(t *testing.T) {
	tbl := fixtureTable(t)
	engine := NewEngine(tbl, nil)
	issue := dateIssue([]int{0})

	result, err := engine.PreviewFix(issue)
	require.NoError(t, err)
	require.Len(t, result.Changes, 1)
	assert.Equal(t, "1985-01-15", result.Changes[0].Fixed)

	v, _ := tbl.Cell(0, census.FieldDOB)
	assert.Equal(t, "01/15/1985", v.Display(), "preview runs against a disposable copy")
	assert.False(t, issue.Resolved())
	assert.Empty(t, engine.History(issue.ID), "previews leave no audit records")
}

func TestPreviewFixRequiresAutoFixable(t *testing.T) {
	engine := NewEngine(fixtureTable(t), nil)
	_, err := engine.PreviewFix(&detectors.Issue{ID: "x", AutoFixable: false})
	require.Error(t, err)
	assert.True(t, IsUnsupported(err))
}

func TestManualEntry(t *testing.T) {
	tbl := fixtureTable(t)
	engine := NewEngine(tbl, nil)
	issue := missingIssue([]int{2}, census.FieldSSN)

	data := &FixData{Cells: map[int]map[string]string{
		2: {census.FieldSSN: "111-22-3333"},
	}}
	result, err := engine.ApplyFix(issue, ActionManualEntry, data, "tester")
	require.NoError(t, err)
	assert.Equal(t, 1, result.RowsAffected)

	v, _ := tbl.Cell(2, census.FieldSSN)
	assert.Equal(t, "111-22-3333", v.Str)
	assert.True(t, issue.Resolved())
}

func TestManualEntryRejectsInvalidData(t *testing.T) {
	tbl := fixtureTable(t)
	engine := NewEngine(tbl, nil)
	issue := missingIssue([]int{2}, census.FieldSSN)

	data := &FixData{Cells: map[int]map[string]string{
		2: {census.FieldSSN: "000000000"},
	}}
	_, err := engine.ApplyFix(issue, ActionManualEntry, data, "tester")
	require.Error(t, err)
	assert.Equal(t, ErrorTypeValidation, TypeOf(err))

	v, _ := tbl.Cell(2, census.FieldSSN)
	assert.True(t, v.IsNull(), "failed fixes leave the table untouched")
	assert.False(t, issue.Resolved())
}

func TestManualEntrySSNMustBeFormatted(t *testing.T) {
	tbl := fixtureTable(t)
	engine := NewEngine(tbl, nil)
	issue := missingIssue([]int{2}, census.FieldSSN)

	// Values that only standardize are rejected: manual entries are
	// written verbatim, so accepting "987 65 4321" would resolve the
	// issue while the format check still flags the cell.
	data := &FixData{Cells: map[int]map[string]string{
		2: {census.FieldSSN: "987 65 4321"},
	}}
	_, err := engine.ApplyFix(issue, ActionManualEntry, data, "tester")
	require.Error(t, err)
	assert.Equal(t, ErrorTypeValidation, TypeOf(err))
	v, _ := tbl.Cell(2, census.FieldSSN)
	assert.True(t, v.IsNull())
	assert.False(t, issue.Resolved())

	// The formatted form applies, and the detector stays quiet on the
	// repaired row afterwards.
	data = &FixData{Cells: map[int]map[string]string{
		2: {census.FieldSSN: "987-65-4321"},
	}}
	_, err = engine.ApplyFix(issue, ActionManualEntry, data, "tester")
	require.NoError(t, err)
	require.True(t, issue.Resolved())

	for _, found := range (&detectors.SSNFormatDetector{}).Detect(tbl) {
		assert.NotContains(t, found.AffectedRows, 2, "a resolved manual entry must not be re-flagged")
	}
}

func TestManualEntryRejectsUnknownColumn(t *testing.T) {
	engine := NewEngine(fixtureTable(t), nil)
	data := &FixData{Cells: map[int]map[string]string{0: {"Nope": "v"}}}
	_, err := engine.ApplyFix(missingIssue([]int{0}, "Nope"), ActionManualEntry, data, "tester")
	require.Error(t, err)
	assert.Equal(t, ErrorTypeValidation, TypeOf(err))
}

func TestExclusionIsIdempotent(t *testing.T) {
	tbl := fixtureTable(t)
	engine := NewEngine(tbl, nil)
	issue := missingIssue([]int{2}, census.FieldSSN)

	result, err := engine.ApplyFix(issue, ActionExclude, nil, "tester")
	require.NoError(t, err)
	assert.Equal(t, 1, result.RowsAffected)

	require.True(t, tbl.HasColumn(census.ExcludedColumn))
	v, _ := tbl.Cell(2, census.ExcludedColumn)
	assert.Equal(t, "true", v.Str)
	v, _ = tbl.Cell(0, census.ExcludedColumn)
	assert.Equal(t, "false", v.Str, "other rows default to not excluded")

	// Excluding again changes nothing.
	issue.Reopen()
	result, err = engine.ApplyFix(issue, ActionExclude, nil, "tester")
	require.NoError(t, err)
	assert.Equal(t, 0, result.RowsAffected)
	v, _ = tbl.Cell(2, census.ExcludedColumn)
	assert.Equal(t, "true", v.Str)
}

func TestAcceptResolvesWithoutMutation(t *testing.T) {
	tbl := fixtureTable(t)
	before, _ := tbl.Records()
	engine := NewEngine(tbl, nil)
	issue := &detectors.Issue{ID: "issue-anomaly", Category: detectors.CategoryAnomaly, AffectedRows: []int{1}}

	result, err := engine.ApplyFix(issue, ActionAccept, &FixData{Rationale: "verified with payroll"}, "tester")
	require.NoError(t, err)
	assert.Equal(t, 0, result.RowsAffected)

	after, _ := tbl.Records()
	assert.Equal(t, before, after)
	require.True(t, issue.Resolved())
	assert.Equal(t, detectors.MethodAccept, issue.Resolution.Method)
	assert.Equal(t, "verified with payroll", issue.Resolution.Notes)
}

func TestGenerateTestSSNs(t *testing.T) {
	tbl := census.FromRecords(
		[]string{census.FieldSSN},
		[][]string{{""}, {""}, {"555-44-3333"}})
	engine := NewEngine(tbl, nil)
	issue := missingIssue([]int{0, 1}, census.FieldSSN)

	result, err := engine.ApplyFix(issue, ActionGenerateTest, nil, "tester")
	require.NoError(t, err)
	assert.Equal(t, 2, result.RowsAffected)

	v, _ := tbl.Cell(0, census.FieldSSN)
	assert.Equal(t, "123-45-6789", v.Str)
	v, _ = tbl.Cell(1, census.FieldSSN)
	assert.Equal(t, "123-45-6790", v.Str, "synthetic identifiers are sequential")
}

func TestGenerateTestRejectsNonSSNField(t *testing.T) {
	engine := NewEngine(fixtureTable(t), nil)
	_, err := engine.ApplyFix(missingIssue([]int{2}, census.FieldPriorYearComp), ActionGenerateTest, nil, "tester")
	require.Error(t, err)
	assert.True(t, IsUnsupported(err))
}

func TestFillMissingRequired(t *testing.T) {
	tbl := fixtureTable(t)
	engine := NewEngine(tbl, nil)
	issue := missingIssue([]int{2}, census.FieldPriorYearComp)
	issue.AutoFixable = true

	data := &FixData{Fill: map[string]string{census.FieldPriorYearComp: "45000"}}
	result, err := engine.ApplyFix(issue, ActionAutoFix, data, "tester")
	require.NoError(t, err)
	assert.Equal(t, 1, result.RowsAffected)

	v, _ := tbl.Cell(2, census.FieldPriorYearComp)
	assert.Equal(t, census.KindNumber, v.Kind)
	assert.Equal(t, 45000.0, v.Num)
}

func TestFillRefusesIdentifierColumns(t *testing.T) {
	engine := NewEngine(fixtureTable(t), nil)
	issue := missingIssue([]int{2}, census.FieldSSN)
	issue.AutoFixable = true

	data := &FixData{Fill: map[string]string{census.FieldSSN: "123-45-6789"}}
	_, err := engine.ApplyFix(issue, ActionAutoFix, data, "tester")
	require.Error(t, err)
	assert.True(t, IsUnsupported(err), "identifier columns are never bulk-filled")
}

func TestFillRequiresValue(t *testing.T) {
	engine := NewEngine(fixtureTable(t), nil)
	issue := missingIssue([]int{2}, census.FieldPriorYearComp)
	issue.AutoFixable = true

	_, err := engine.ApplyFix(issue, ActionAutoFix, nil, "tester")
	require.Error(t, err)
	assert.Equal(t, ErrorTypeValidation, TypeOf(err))
}

func TestUndoRestoresData(t *testing.T) {
	tbl := fixtureTable(t)
	engine := NewEngine(tbl, nil)
	issue := ssnIssue([]int{0})

	_, err := engine.ApplyFix(issue, ActionAutoFix, nil, "tester")
	require.NoError(t, err)

	result, err := engine.Undo(issue)
	require.NoError(t, err)
	assert.True(t, result.DataRestored)
	assert.False(t, issue.Resolved())

	v, _ := tbl.Cell(0, census.FieldSSN)
	assert.Equal(t, "123 45 6789", v.Str, "undo puts the original value back")

	history := engine.History(issue.ID)
	require.Len(t, history, 2)
	assert.Equal(t, ActionUndo, history[1].ActionType)
}

func TestUndoWithoutSnapshot(t *testing.T) {
	engine := NewEngine(fixtureTable(t), nil)
	issue := &detectors.Issue{ID: "issue-accepted", Category: detectors.CategoryAnomaly}

	_, err := engine.ApplyFix(issue, ActionAccept, nil, "tester")
	require.NoError(t, err)

	result, err := engine.Undo(issue)
	require.NoError(t, err)
	assert.False(t, result.DataRestored, "accept stores no snapshot, so only the state reverts")
	assert.False(t, issue.Resolved())
}

func TestUndoRequiresResolvedIssue(t *testing.T) {
	engine := NewEngine(fixtureTable(t), nil)
	_, err := engine.Undo(&detectors.Issue{ID: "open"})
	require.Error(t, err)
	assert.Equal(t, ErrorTypeInvalidState, TypeOf(err))
}

func TestCommitFailureSurfacesButKeepsFix(t *testing.T) {
	tbl := fixtureTable(t)
	engine := NewEngine(tbl, nil)
	engine.SetCommitFunc(func() error { return assert.AnError })
	issue := ssnIssue([]int{0})

	_, err := engine.ApplyFix(issue, ActionAutoFix, nil, "tester")
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)

	v, _ := tbl.Cell(0, census.FieldSSN)
	assert.Equal(t, "123-45-6789", v.Str, "in-memory fix stays applied for retry")
	assert.True(t, issue.Resolved())
}
