package detectors

import (
	"fmt"
	"strings"

	"censusqc/internal/census"
)

// ComplianceReadinessDetector checks whether the field sets required by
// downstream compliance determinations are present at all.
type ComplianceReadinessDetector struct{}

func (d *ComplianceReadinessDetector) Name() string { return "compliance_readiness" }

func (d *ComplianceReadinessDetector) Detect(t *census.Table) []Issue {
	var issues []Issue

	if missing := missingColumns(t, census.HCEDeterminationFields); len(missing) > 0 {
		issues = append(issues, newIssue(Issue{
			Kind:              KindWarning,
			Severity:          SeverityMedium,
			Category:          CategoryComplianceError,
			Title:             "HCE Determination Fields Missing",
			Description:       fmt.Sprintf("Missing fields for HCE determination: %s", strings.Join(missing, ", ")),
			AffectedEmployees: t.RowCount(),
			SuggestedAction:   "Add missing fields or ensure proper column mapping for HCE determination.",
			Confidence:        0.9,
			Details: ComplianceDetails{
				MissingFields:  missing,
				RequiredFor:    "HCE determination",
				ComplianceTest: "ADP/ACP",
			},
		}))
	}

	if missing := missingColumns(t, census.EligibilityFields); len(missing) > 0 {
		issues = append(issues, newIssue(Issue{
			Kind:              KindWarning,
			Severity:          SeverityMedium,
			Category:          CategoryComplianceError,
			Title:             "Eligibility Testing Fields Missing",
			Description:       fmt.Sprintf("Missing fields for eligibility testing: %s", strings.Join(missing, ", ")),
			AffectedEmployees: t.RowCount(),
			SuggestedAction:   "Add missing fields for comprehensive eligibility analysis.",
			Confidence:        0.8,
			Details: ComplianceDetails{
				MissingFields:  missing,
				RequiredFor:    "eligibility testing",
				ComplianceTest: "410(b) coverage",
			},
		}))
	}

	return issues
}

func missingColumns(t *census.Table, fields []string) []string {
	var missing []string
	for _, f := range fields {
		if !t.HasColumn(f) {
			missing = append(missing, f)
		}
	}
	return missing
}
