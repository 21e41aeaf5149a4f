package detectors

import (
	"time"
)

// Kind classifies how serious an issue is for downstream compliance runs.
type Kind string

const (
	KindCritical Kind = "critical"
	KindWarning  Kind = "warning"
	KindInfo     Kind = "info"
)

// Severity grades issues within a kind.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Category groups issues by the class of problem.
type Category string

const (
	CategoryMissingData     Category = "missing_data"
	CategoryFormatError     Category = "format_error"
	CategoryLogicError      Category = "logic_error"
	CategoryComplianceError Category = "compliance_error"
	CategoryAnomaly         Category = "anomaly"
)

// FixKind is the closed set of auto-fix behaviors. It is assigned at
// detection time and the fix engine dispatches on it exclusively; the
// free-text title never drives remediation.
type FixKind string

const (
	FixKindNone            FixKind = "none"
	FixKindDateFormat      FixKind = "date_format"
	FixKindSSNFormat       FixKind = "ssn_format"
	FixKindNumericFormat   FixKind = "numeric_format"
	FixKindMissingRequired FixKind = "missing_required"
)

// ResolutionMethod is how an issue was resolved.
type ResolutionMethod string

const (
	MethodAutoFix      ResolutionMethod = "auto_fix"
	MethodManualEntry  ResolutionMethod = "manual_entry"
	MethodExclude      ResolutionMethod = "exclude"
	MethodAccept       ResolutionMethod = "accept"
	MethodGenerateTest ResolutionMethod = "generate_test"
)

// Resolution records how and by whom an issue was resolved. It is the
// only part of an issue that mutates after detection.
type Resolution struct {
	Method     ResolutionMethod `json:"method"`
	Notes      string           `json:"notes,omitempty"`
	ResolvedBy string           `json:"resolved_by,omitempty"`
	ResolvedAt time.Time        `json:"resolved_at"`
}

// Issue is one detected data-quality problem. Issues from one
// validation run replace those of any earlier run wholesale.
type Issue struct {
	ID                string      `json:"id"`
	Kind              Kind        `json:"kind"`
	Severity          Severity    `json:"severity"`
	Category          Category    `json:"category"`
	Title             string      `json:"title"`
	Description       string      `json:"description"`
	AffectedRows      []int       `json:"affected_rows"`
	AffectedEmployees int         `json:"affected_employee_count"`
	SuggestedAction   string      `json:"suggested_action"`
	AutoFixable       bool        `json:"auto_fixable"`
	FixKind           FixKind     `json:"fix_kind"`
	Field             string      `json:"field,omitempty"`
	Confidence        float64     `json:"confidence"`
	Details           Details     `json:"details,omitempty"`
	Resolution        *Resolution `json:"resolution,omitempty"`
	CreatedAt         time.Time   `json:"created_at"`
}

// Resolved reports whether the issue currently has a resolution.
func (i *Issue) Resolved() bool {
	return i.Resolution != nil
}

// Resolve marks the issue resolved. Resolving an already resolved issue
// overwrites the previous resolution.
func (i *Issue) Resolve(method ResolutionMethod, by, notes string, at time.Time) {
	i.Resolution = &Resolution{
		Method:     method,
		Notes:      notes,
		ResolvedBy: by,
		ResolvedAt: at,
	}
}

// Reopen reverts the issue to unresolved, used by undo.
func (i *Issue) Reopen() {
	i.Resolution = nil
}

// newIssue fills the derived fields every detector would otherwise
// repeat: the affected-employee invariant and row ordering.
func newIssue(i Issue) Issue {
	if len(i.AffectedRows) > 0 {
		i.AffectedRows = dedupeSorted(i.AffectedRows)
		i.AffectedEmployees = len(i.AffectedRows)
	}
	if i.FixKind == "" {
		i.FixKind = FixKindNone
	}
	return i
}

func dedupeSorted(rows []int) []int {
	seen := make(map[int]bool, len(rows))
	out := rows[:0]
	for _, r := range rows {
		if !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}
	// Detectors scan rows in order, so the slice is already ascending;
	// dedupe preserves that.
	return out
}
