package detectors

import (
	"fmt"

	"censusqc/internal/census"
)

// RequiredFieldsDetector flags required columns that are absent
// entirely, and null cells inside required columns that are present.
type RequiredFieldsDetector struct{}

func (d *RequiredFieldsDetector) Name() string { return "required_fields" }

func (d *RequiredFieldsDetector) Detect(t *census.Table) []Issue {
	var issues []Issue

	for _, field := range census.RequiredFields {
		if !t.HasColumn(field) {
			issues = append(issues, newIssue(Issue{
				Kind:              KindCritical,
				Severity:          SeverityHigh,
				Category:          CategoryMissingData,
				Title:             fmt.Sprintf("Missing Required Field: %s", field),
				Description:       fmt.Sprintf("The %s field is required for compliance testing but was not found in the uploaded data.", field),
				AffectedEmployees: t.RowCount(),
				SuggestedAction:   fmt.Sprintf("Add the %s column to your data file or map an existing column to %s.", field, field),
				Field:             field,
				Confidence:        1.0,
				Details: MissingFieldDetails{
					Field:         field,
					MissingColumn: true,
					RequiredFor:   "compliance_testing",
				},
			}))
			continue
		}

		var nullRows []int
		for row := 0; row < t.RowCount(); row++ {
			if v, ok := t.Cell(row, field); ok && v.IsNull() {
				nullRows = append(nullRows, row)
			}
		}
		if len(nullRows) == 0 {
			continue
		}
		issues = append(issues, newIssue(Issue{
			Kind:            KindCritical,
			Severity:        SeverityHigh,
			Category:        CategoryMissingData,
			Title:           fmt.Sprintf("Missing Values in %s", field),
			Description:     fmt.Sprintf("%d employees are missing %s values, which are required for compliance testing.", len(nullRows), field),
			AffectedRows:    nullRows,
			SuggestedAction: fmt.Sprintf("Provide %s values for all employees or exclude incomplete records.", field),
			Field:           field,
			FixKind:         FixKindMissingRequired,
			Confidence:      1.0,
			Details: MissingFieldDetails{
				Field:       field,
				NullCount:   len(nullRows),
				RequiredFor: "compliance_testing",
			},
		}))
	}
	return issues
}
