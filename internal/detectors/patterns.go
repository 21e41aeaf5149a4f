package detectors

import (
	"fmt"
	"math"
	"sort"
	"time"

	"censusqc/internal/census"
)

// AgeClusterDetector flags one age value shared by more than 30% of
// non-null ages. High clustering usually means a default birth date was
// keyed in for many employees.
type AgeClusterDetector struct {
	Now time.Time
}

func (d *AgeClusterDetector) Name() string { return "age_cluster" }

const (
	ageClusterThreshold = 0.30
	ageClusterMinSample = 5
)

func (d *AgeClusterDetector) Detect(t *census.Table) []Issue {
	if !t.HasColumn(census.FieldDOB) {
		return nil
	}
	ageRows := make(map[int][]int)
	total := 0
	for row := 0; row < t.RowCount(); row++ {
		dob, ok := cellDate(t, row, census.FieldDOB)
		if !ok {
			continue
		}
		age := d.Now.Year() - dob.Year()
		ageRows[age] = append(ageRows[age], row)
		total++
	}
	if total < ageClusterMinSample {
		return nil
	}

	commonAge, commonCount := 0, 0
	for age, rows := range ageRows {
		if len(rows) > commonCount || (len(rows) == commonCount && age < commonAge) {
			commonAge = age
			commonCount = len(rows)
		}
	}
	percent := float64(commonCount) / float64(total)
	if percent <= ageClusterThreshold {
		return nil
	}
	return []Issue{newIssue(Issue{
		Kind:            KindInfo,
		Severity:        SeverityLow,
		Category:        CategoryAnomaly,
		Title:           "Unusual Age Clustering",
		Description:     fmt.Sprintf("%d employees (%.1f%%) are age %d.", commonCount, percent*100, commonAge),
		AffectedRows:    ageRows[commonAge],
		SuggestedAction: "Verify birth date data entry. High age clustering may indicate data entry errors.",
		Field:           census.FieldDOB,
		Confidence:      0.5,
		Details: ClusterDetails{
			Age:            commonAge,
			ClusterPercent: percent * 100,
			SampleSize:     total,
		},
	})}
}

// dateGroups buckets rows by the exact cell value of a date column.
func dateGroups(t *census.Table, field string) map[string][]int {
	groups := make(map[string][]int)
	for row := 0; row < t.RowCount(); row++ {
		s, ok := cellString(t, row, field)
		if !ok {
			continue
		}
		groups[s] = append(groups[s], row)
	}
	return groups
}

// MassTerminationDetector flags 10 or more rows sharing one exact
// termination date. Mass terminations change 410(b) coverage testing.
type MassTerminationDetector struct{}

func (d *MassTerminationDetector) Name() string { return "mass_termination" }

const massTerminationThreshold = 10

func (d *MassTerminationDetector) Detect(t *census.Table) []Issue {
	if !t.HasColumn(census.FieldDOT) {
		return nil
	}
	var issues []Issue
	groups := dateGroups(t, census.FieldDOT)
	for _, date := range sortedKeys(groups) {
		rows := groups[date]
		if len(rows) < massTerminationThreshold {
			continue
		}
		issues = append(issues, newIssue(Issue{
			Kind:            KindWarning,
			Severity:        SeverityMedium,
			Category:        CategoryAnomaly,
			Title:           "Mass Termination Event",
			Description:     fmt.Sprintf("%d employees terminated on %s. This may impact coverage testing.", len(rows), date),
			AffectedRows:    rows,
			SuggestedAction: "Confirm mass termination event and consider impact on 410(b) coverage testing.",
			Field:           census.FieldDOT,
			Confidence:      0.8,
			Details: MassEventDetails{
				Event:            "termination",
				Date:             date,
				EmployeeCount:    len(rows),
				ComplianceImpact: "410(b) coverage testing",
			},
		}))
	}
	return issues
}

// MassHiringDetector flags 15 or more rows sharing one exact hire date.
type MassHiringDetector struct{}

func (d *MassHiringDetector) Name() string { return "mass_hiring" }

const massHiringThreshold = 15

func (d *MassHiringDetector) Detect(t *census.Table) []Issue {
	if !t.HasColumn(census.FieldDOH) {
		return nil
	}
	var issues []Issue
	groups := dateGroups(t, census.FieldDOH)
	for _, date := range sortedKeys(groups) {
		rows := groups[date]
		if len(rows) < massHiringThreshold {
			continue
		}
		issues = append(issues, newIssue(Issue{
			Kind:            KindWarning,
			Severity:        SeverityLow,
			Category:        CategoryAnomaly,
			Title:           "Mass Hiring Event",
			Description:     fmt.Sprintf("%d employees hired on %s. Verify this is accurate.", len(rows), date),
			AffectedRows:    rows,
			SuggestedAction: "Confirm mass hiring event details are correct.",
			Field:           census.FieldDOH,
			Confidence:      0.7,
			Details: MassEventDetails{
				Event:         "hiring",
				Date:          date,
				EmployeeCount: len(rows),
			},
		}))
	}
	return issues
}

// IdenticalValueDetector flags one value occupying more than 25% of the
// non-null cells of a non-identifier column.
type IdenticalValueDetector struct{}

func (d *IdenticalValueDetector) Name() string { return "identical_values" }

const identicalValueThreshold = 0.25

func (d *IdenticalValueDetector) Detect(t *census.Table) []Issue {
	var issues []Issue
	for _, column := range t.Columns() {
		if census.IsIdentifierField(column) {
			continue
		}
		valueRows := make(map[string][]int)
		nonNull := 0
		for row := 0; row < t.RowCount(); row++ {
			s, ok := cellString(t, row, column)
			if !ok {
				continue
			}
			valueRows[s] = append(valueRows[s], row)
			nonNull++
		}
		if nonNull == 0 {
			continue
		}

		commonValue, commonCount := "", 0
		for _, value := range sortedKeys(valueRows) {
			if len(valueRows[value]) > commonCount {
				commonValue = value
				commonCount = len(valueRows[value])
			}
		}
		percent := float64(commonCount) / float64(nonNull)
		if percent <= identicalValueThreshold || commonCount < 2 {
			continue
		}
		issues = append(issues, newIssue(Issue{
			Kind:            KindInfo,
			Severity:        SeverityLow,
			Category:        CategoryAnomaly,
			Title:           fmt.Sprintf("Identical Values Pattern in %s", column),
			Description:     fmt.Sprintf("%d employees (%.1f%%) have identical %s values: %s", commonCount, percent*100, column, commonValue),
			AffectedRows:    valueRows[commonValue],
			SuggestedAction: fmt.Sprintf("Verify if identical %s values are intentional or indicate data entry errors.", column),
			Field:           column,
			Confidence:      0.3,
			Details: PatternDetails{
				Field:          column,
				IdenticalValue: commonValue,
				PatternPercent: percent * 100,
			},
		}))
	}
	return issues
}

// RoundNumberDetector flags compensation columns where more than half
// the values are exact multiples of 1000, which usually means estimates
// were entered instead of actuals.
type RoundNumberDetector struct{}

func (d *RoundNumberDetector) Name() string { return "round_numbers" }

const roundBiasThreshold = 0.50

func (d *RoundNumberDetector) Detect(t *census.Table) []Issue {
	var issues []Issue
	for _, field := range census.CompensationFields {
		if !t.HasColumn(field) {
			continue
		}
		values, rows := numericColumn(t, field)
		if len(values) == 0 {
			continue
		}
		var roundRows []int
		for i, v := range values {
			if math.Mod(v, 1000) == 0 {
				roundRows = append(roundRows, rows[i])
			}
		}
		percent := float64(len(roundRows)) / float64(len(values))
		if percent <= roundBiasThreshold {
			continue
		}
		issues = append(issues, newIssue(Issue{
			Kind:            KindInfo,
			Severity:        SeverityLow,
			Category:        CategoryAnomaly,
			Title:           fmt.Sprintf("Round Number Bias in %s", field),
			Description:     fmt.Sprintf("%.1f%% of %s values are exact multiples of 1000, which is higher than typical.", percent*100, field),
			AffectedRows:    roundRows,
			SuggestedAction: fmt.Sprintf("Verify if round numbers in %s are accurate or estimated values.", field),
			Field:           field,
			Confidence:      0.3,
			Details: RoundBiasDetails{
				Field:        field,
				RoundPercent: percent * 100,
			},
		}))
	}
	return issues
}

func sortedKeys(m map[string][]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
