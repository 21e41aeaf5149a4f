package detectors

import (
	"fmt"
	"time"

	"censusqc/internal/census"
)

// cellDate parses a cell as a date, accepting typed date cells and
// strings in any layout the standardizer knows. Unparsable cells are
// skipped by the caller, never fatal.
func cellDate(t *census.Table, row int, column string) (time.Time, bool) {
	v, ok := t.Cell(row, column)
	if !ok || v.IsNull() {
		return time.Time{}, false
	}
	if v.Kind == census.KindDate {
		return v.Date, true
	}
	return census.ParseDate(v.Display())
}

// cellNumber parses a cell as a number, tolerating formatting junk so
// that range checks still run over cells the format detector flagged.
func cellNumber(t *census.Table, row int, column string) (float64, bool) {
	v, ok := t.Cell(row, column)
	if !ok || v.IsNull() {
		return 0, false
	}
	if v.Kind == census.KindNumber {
		return v.Num, true
	}
	return census.CleanNumeric(v.Display())
}

// DateOrderDetector flags employees whose termination date is on or
// before their hire date.
type DateOrderDetector struct{}

func (d *DateOrderDetector) Name() string { return "date_order" }

func (d *DateOrderDetector) Detect(t *census.Table) []Issue {
	if !t.HasColumn(census.FieldDOH) || !t.HasColumn(census.FieldDOT) {
		return nil
	}
	var violations []int
	for row := 0; row < t.RowCount(); row++ {
		doh, ok := cellDate(t, row, census.FieldDOH)
		if !ok {
			continue
		}
		dot, ok := cellDate(t, row, census.FieldDOT)
		if !ok {
			continue
		}
		if !dot.After(doh) {
			violations = append(violations, row)
		}
	}
	if len(violations) == 0 {
		return nil
	}
	return []Issue{newIssue(Issue{
		Kind:            KindCritical,
		Severity:        SeverityHigh,
		Category:        CategoryLogicError,
		Title:           "Termination Date Before Hire Date",
		Description:     fmt.Sprintf("%d employees have termination dates on or before their hire dates.", len(violations)),
		AffectedRows:    violations,
		SuggestedAction: "Review and correct date entries. Termination date must be after hire date.",
		Confidence:      1.0,
		Details: LogicDetails{
			Check:      "date_sequence",
			ErrorCount: len(violations),
		},
	})}
}

// AgeRangeDetector flags employees whose age at analysis time falls
// outside the plausible working range of 16 to 90.
type AgeRangeDetector struct {
	Now time.Time
}

func (d *AgeRangeDetector) Name() string { return "age_range" }

func (d *AgeRangeDetector) Detect(t *census.Table) []Issue {
	if !t.HasColumn(census.FieldDOB) {
		return nil
	}
	var unreasonable []int
	for row := 0; row < t.RowCount(); row++ {
		dob, ok := cellDate(t, row, census.FieldDOB)
		if !ok {
			continue
		}
		age := d.Now.Year() - dob.Year()
		if age < 16 || age > 90 {
			unreasonable = append(unreasonable, row)
		}
	}
	if len(unreasonable) == 0 {
		return nil
	}
	return []Issue{newIssue(Issue{
		Kind:            KindWarning,
		Severity:        SeverityMedium,
		Category:        CategoryAnomaly,
		Title:           "Unreasonable Employee Ages",
		Description:     fmt.Sprintf("%d employees have ages outside the typical working range (16-90 years).", len(unreasonable)),
		AffectedRows:    unreasonable,
		SuggestedAction: "Verify birth dates for employees with unusual ages.",
		Field:           census.FieldDOB,
		Confidence:      0.8,
		Details: RangeDetails{
			Field:      census.FieldDOB,
			Min:        16,
			Max:        90,
			OutOfRange: len(unreasonable),
		},
	})}
}

// CompensationRangeDetector flags prior-year compensation outside the
// $1,000 to $10,000,000 range.
type CompensationRangeDetector struct{}

func (d *CompensationRangeDetector) Name() string { return "compensation_range" }

const (
	compRangeMin = 1_000
	compRangeMax = 10_000_000
)

func (d *CompensationRangeDetector) Detect(t *census.Table) []Issue {
	if !t.HasColumn(census.FieldPriorYearComp) {
		return nil
	}
	var unusual []int
	for row := 0; row < t.RowCount(); row++ {
		comp, ok := cellNumber(t, row, census.FieldPriorYearComp)
		if !ok {
			continue
		}
		if comp < compRangeMin || comp > compRangeMax {
			unusual = append(unusual, row)
		}
	}
	if len(unusual) == 0 {
		return nil
	}
	return []Issue{newIssue(Issue{
		Kind:            KindWarning,
		Severity:        SeverityMedium,
		Category:        CategoryAnomaly,
		Title:           "Unusual Compensation Amounts",
		Description:     fmt.Sprintf("%d employees have compensation outside typical range ($1,000 - $10,000,000).", len(unusual)),
		AffectedRows:    unusual,
		SuggestedAction: "Verify compensation amounts for employees with unusual values.",
		Field:           census.FieldPriorYearComp,
		Confidence:      0.7,
		Details: RangeDetails{
			Field:      census.FieldPriorYearComp,
			Min:        compRangeMin,
			Max:        compRangeMax,
			OutOfRange: len(unusual),
		},
	})}
}
