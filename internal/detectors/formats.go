package detectors

import (
	"fmt"
	"strconv"
	"time"

	"censusqc/internal/census"
)

// DateFormatDetector flags date cells that do not parse as the
// canonical layout. Loaded cells that typed as dates are clean by
// construction; anything still a string here needs repair.
type DateFormatDetector struct{}

func (d *DateFormatDetector) Name() string { return "date_format" }

func (d *DateFormatDetector) Detect(t *census.Table) []Issue {
	var issues []Issue
	for _, field := range census.DateFields {
		if !t.HasColumn(field) {
			continue
		}
		var invalid []int
		var examples []string
		for row := 0; row < t.RowCount(); row++ {
			v, ok := t.Cell(row, field)
			if !ok || v.IsNull() || v.Kind == census.KindDate {
				continue
			}
			if _, err := time.Parse(census.DateLayout, v.Display()); err != nil {
				invalid = append(invalid, row)
				if len(examples) < 3 {
					examples = append(examples, v.Display())
				}
			}
		}
		if len(invalid) == 0 {
			continue
		}
		issues = append(issues, newIssue(Issue{
			Kind:            KindCritical,
			Severity:        SeverityHigh,
			Category:        CategoryFormatError,
			Title:           fmt.Sprintf("Invalid Date Format in %s", field),
			Description:     fmt.Sprintf("%d records have invalid date formats in %s. Expected format: %s.", len(invalid), field, census.DateLayout),
			AffectedRows:    invalid,
			SuggestedAction: fmt.Sprintf("Convert %s values to %s format.", field, census.DateLayout),
			AutoFixable:     true,
			Field:           field,
			FixKind:         FixKindDateFormat,
			Confidence:      0.9,
			Details: FormatDetails{
				Field:          field,
				ExpectedFormat: census.DateLayout,
				InvalidCount:   len(invalid),
				Examples:       examples,
			},
		}))
	}
	return issues
}

// SSNFormatDetector flags SSN cells that are neither XXX-XX-XXXX nor
// nine raw digits.
type SSNFormatDetector struct{}

func (d *SSNFormatDetector) Name() string { return "ssn_format" }

func (d *SSNFormatDetector) Detect(t *census.Table) []Issue {
	if !t.HasColumn(census.FieldSSN) {
		return nil
	}
	var invalid []int
	for row := 0; row < t.RowCount(); row++ {
		s, ok := cellString(t, row, census.FieldSSN)
		if !ok {
			continue
		}
		if !census.ValidSSNShape(s) {
			invalid = append(invalid, row)
		}
	}
	if len(invalid) == 0 {
		return nil
	}
	return []Issue{newIssue(Issue{
		Kind:            KindCritical,
		Severity:        SeverityHigh,
		Category:        CategoryFormatError,
		Title:           "Invalid SSN Format",
		Description:     fmt.Sprintf("%d records have invalid SSN formats. Expected: XXX-XX-XXXX or XXXXXXXXX.", len(invalid)),
		AffectedRows:    invalid,
		SuggestedAction: "Correct SSN formats to XXX-XX-XXXX or provide 9 raw digits.",
		AutoFixable:     true,
		Field:           census.FieldSSN,
		FixKind:         FixKindSSNFormat,
		Confidence:      0.8,
		Details: FormatDetails{
			Field:          census.FieldSSN,
			ExpectedFormat: "XXX-XX-XXXX",
			InvalidCount:   len(invalid),
		},
	})}
}

// NumericFormatDetector flags numeric cells that are not plain numbers.
// Cells that become parseable after stripping currency symbols, commas,
// percent signs and spaces are auto-fixable; the fixer skips the rest.
type NumericFormatDetector struct{}

func (d *NumericFormatDetector) Name() string { return "numeric_format" }

func (d *NumericFormatDetector) Detect(t *census.Table) []Issue {
	var issues []Issue
	for _, field := range census.NumericFields {
		if !t.HasColumn(field) {
			continue
		}
		var invalid []int
		for row := 0; row < t.RowCount(); row++ {
			v, ok := t.Cell(row, field)
			if !ok || v.IsNull() || v.Kind == census.KindNumber {
				continue
			}
			if _, err := strconv.ParseFloat(v.Display(), 64); err != nil {
				invalid = append(invalid, row)
			}
		}
		if len(invalid) == 0 {
			continue
		}
		issues = append(issues, newIssue(Issue{
			Kind:            KindCritical,
			Severity:        SeverityMedium,
			Category:        CategoryFormatError,
			Title:           fmt.Sprintf("Invalid Numeric Format in %s", field),
			Description:     fmt.Sprintf("%d records have non-numeric values in %s.", len(invalid), field),
			AffectedRows:    invalid,
			SuggestedAction: fmt.Sprintf("Ensure all %s values are numeric (remove currency symbols, commas, etc.).", field),
			AutoFixable:     true,
			Field:           field,
			FixKind:         FixKindNumericFormat,
			Confidence:      0.9,
			Details: FormatDetails{
				Field:          field,
				ExpectedFormat: "number",
				InvalidCount:   len(invalid),
			},
		}))
	}
	return issues
}
