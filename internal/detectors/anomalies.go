package detectors

import (
	"fmt"
	"math"

	"censusqc/internal/census"
)

// numericColumn collects the parseable values of a column along with
// the row index of each.
func numericColumn(t *census.Table, field string) (values []float64, rows []int) {
	for row := 0; row < t.RowCount(); row++ {
		if v, ok := cellNumber(t, row, field); ok {
			values = append(values, v)
			rows = append(rows, row)
		}
	}
	return values, rows
}

// IQROutlierDetector flags compensation values beyond 2.5 IQR of the
// quartiles.
type IQROutlierDetector struct{}

func (d *IQROutlierDetector) Name() string { return "iqr_outliers" }

const iqrMultiplier = 2.5

func (d *IQROutlierDetector) Detect(t *census.Table) []Issue {
	if !t.HasColumn(census.FieldPriorYearComp) {
		return nil
	}
	values, rows := numericColumn(t, census.FieldPriorYearComp)
	if len(values) == 0 {
		return nil
	}

	sorted := sortedCopy(values)
	q1 := quantile(sorted, 0.25)
	q3 := quantile(sorted, 0.75)
	iqr := q3 - q1
	low := q1 - iqrMultiplier*iqr
	high := q3 + iqrMultiplier*iqr

	var outliers []int
	for i, v := range values {
		if v < low || v > high {
			outliers = append(outliers, rows[i])
		}
	}
	if len(outliers) == 0 {
		return nil
	}
	return []Issue{newIssue(Issue{
		Kind:            KindWarning,
		Severity:        SeverityMedium,
		Category:        CategoryAnomaly,
		Title:           "Statistical Compensation Outliers",
		Description:     fmt.Sprintf("%d employees have compensation significantly different from the group average.", len(outliers)),
		AffectedRows:    outliers,
		SuggestedAction: "Review compensation data for potential data entry errors or verify if outliers are legitimate.",
		Field:           census.FieldPriorYearComp,
		Confidence:      0.6,
		Details: OutlierDetails{
			Field:         census.FieldPriorYearComp,
			Method:        "iqr_2.5",
			LowThreshold:  low,
			HighThreshold: high,
			Median:        quantile(sorted, 0.5),
			OutlierCount:  len(outliers),
		},
	})}
}

// ZScoreOutlierDetector flags values more than three standard
// deviations from the mean across all numeric fields.
type ZScoreOutlierDetector struct{}

func (d *ZScoreOutlierDetector) Name() string { return "zscore_outliers" }

const zScoreThreshold = 3.0

func (d *ZScoreOutlierDetector) Detect(t *census.Table) []Issue {
	var issues []Issue
	for _, field := range []string{census.FieldPriorYearComp, census.FieldEmployeeDeferrals, census.FieldEmployerMatch, census.FieldHoursWorked} {
		if !t.HasColumn(field) {
			continue
		}
		values, rows := numericColumn(t, field)
		if len(values) < 2 {
			continue
		}
		m := mean(values)
		sd := stddev(values, m)
		if sd == 0 || math.IsNaN(sd) {
			continue
		}

		var outliers []int
		for i, v := range values {
			if math.Abs((v-m)/sd) > zScoreThreshold {
				outliers = append(outliers, rows[i])
			}
		}
		if len(outliers) == 0 {
			continue
		}
		issues = append(issues, newIssue(Issue{
			Kind:            KindInfo,
			Severity:        SeverityLow,
			Category:        CategoryAnomaly,
			Title:           fmt.Sprintf("Statistical Outliers in %s", field),
			Description:     fmt.Sprintf("%d values in %s are more than 3 standard deviations from the mean.", len(outliers), field),
			AffectedRows:    outliers,
			SuggestedAction: fmt.Sprintf("Review %s values that are significantly different from the group average.", field),
			Field:           field,
			Confidence:      0.4,
			Details: OutlierDetails{
				Field:        field,
				Method:       "z_score_3_std",
				Mean:         m,
				StdDev:       sd,
				OutlierCount: len(outliers),
			},
		}))
	}
	return issues
}
