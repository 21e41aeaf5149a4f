package fixes

import (
	"sort"

	"censusqc/internal/detectors"
)

// Suggestion is one ranked remediation option for an issue.
type Suggestion struct {
	Action      Action  `json:"action"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"`
}

// Suggestions returns the remediation options for an issue, ranked by
// confidence. Auto-fix appears only for auto-fixable issues and carries
// the detector's confidence.
func (e *Engine) Suggestions(issue *detectors.Issue) []Suggestion {
	var suggestions []Suggestion

	if issue.AutoFixable {
		suggestions = append(suggestions, Suggestion{
			Action:      ActionAutoFix,
			Title:       "Auto-Fix",
			Description: "Automatically fix this issue using built-in rules",
			Confidence:  issue.Confidence,
		})
	}

	switch issue.Category {
	case detectors.CategoryMissingData:
		suggestions = append(suggestions,
			Suggestion{
				Action:      ActionManualEntry,
				Title:       "Manual Entry",
				Description: "Manually enter the missing data",
				Confidence:  1.0,
			},
			Suggestion{
				Action:      ActionExclude,
				Title:       "Exclude from Testing",
				Description: "Exclude affected records from compliance tests",
				Confidence:  0.8,
			},
			Suggestion{
				Action:      ActionGenerateTest,
				Title:       "Generate Test Data",
				Description: "Generate placeholder data for development and testing purposes",
				Confidence:  0.6,
			},
		)
	case detectors.CategoryAnomaly:
		suggestions = append(suggestions,
			Suggestion{
				Action:      ActionManualEntry,
				Title:       "Correct Value",
				Description: "Manually correct the anomalous value",
				Confidence:  0.9,
			},
			Suggestion{
				Action:      ActionAccept,
				Title:       "Accept as Valid",
				Description: "Mark this anomaly as acceptable for your organization",
				Confidence:  0.7,
			},
		)
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Confidence > suggestions[j].Confidence
	})
	return suggestions
}
