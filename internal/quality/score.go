// Package quality computes the deterministic 0-100 data quality score
// for one validation run. Scoring is a pure function of the issue
// multiset: identical issues always yield identical scores regardless
// of order.
package quality

import (
	"time"

	"censusqc/internal/detectors"
)

// Score is the quality summary for one run. Later runs or
// recomputations supersede earlier scores; they are never merged.
type Score struct {
	Overall      float64 `json:"overall"`
	Completeness float64 `json:"completeness"`
	Consistency  float64 `json:"consistency"`
	Accuracy     float64 `json:"accuracy"`

	CriticalCount int `json:"critical_count"`
	WarningCount  int `json:"warning_count"`
	InfoCount     int `json:"info_count"`

	AutoFixableCount int `json:"auto_fixable_count"`
	AutoFixedCount   int `json:"auto_fixed_count"`

	Version    int       `json:"version"`
	ComputedAt time.Time `json:"computed_at"`
}

// deduction returns the points removed for one unresolved issue.
func deduction(kind detectors.Kind, severity detectors.Severity) float64 {
	switch kind {
	case detectors.KindCritical:
		switch severity {
		case detectors.SeverityHigh:
			return 15
		case detectors.SeverityMedium:
			return 10
		default:
			return 5
		}
	case detectors.KindWarning:
		switch severity {
		case detectors.SeverityHigh:
			return 8
		case detectors.SeverityMedium:
			return 5
		default:
			return 2
		}
	default:
		return 1
	}
}

// subScoreCategories maps each sub-score to the issue categories that
// deduct from it.
var (
	completenessCategories = map[detectors.Category]bool{
		detectors.CategoryMissingData:     true,
		detectors.CategoryComplianceError: true,
	}
	consistencyCategories = map[detectors.Category]bool{
		detectors.CategoryFormatError: true,
		detectors.CategoryLogicError:  true,
	}
	accuracyCategories = map[detectors.Category]bool{
		detectors.CategoryAnomaly: true,
	}
)

// Compute derives the score for the given issues. Resolved issues no
// longer deduct but still feed the auto-fixed counter, so a score
// recomputed after fixes reflects the remediation.
func Compute(issues []detectors.Issue, version int, at time.Time) Score {
	s := Score{
		Overall:      100,
		Completeness: 100,
		Consistency:  100,
		Accuracy:     100,
		Version:      version,
		ComputedAt:   at,
	}

	for i := range issues {
		issue := &issues[i]
		if issue.AutoFixable {
			s.AutoFixableCount++
		}
		if issue.Resolved() {
			if issue.Resolution.Method == detectors.MethodAutoFix {
				s.AutoFixedCount++
			}
			continue
		}

		switch issue.Kind {
		case detectors.KindCritical:
			s.CriticalCount++
		case detectors.KindWarning:
			s.WarningCount++
		default:
			s.InfoCount++
		}

		d := deduction(issue.Kind, issue.Severity)
		s.Overall -= d
		if completenessCategories[issue.Category] {
			s.Completeness -= d
		}
		if consistencyCategories[issue.Category] {
			s.Consistency -= d
		}
		if accuracyCategories[issue.Category] {
			s.Accuracy -= d
		}
	}

	s.Overall = clamp(s.Overall)
	s.Completeness = clamp(s.Completeness)
	s.Consistency = clamp(s.Consistency)
	s.Accuracy = clamp(s.Accuracy)
	return s
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
