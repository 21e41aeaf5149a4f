package fixes

import (
	"context"
	"fmt"
	"log/slog"

	"censusqc/internal/detectors"
)

// ItemResult is the outcome of one issue inside a bulk operation.
type ItemResult struct {
	IssueID string  `json:"issue_id"`
	Success bool    `json:"success"`
	Error   string  `json:"error,omitempty"`
	Result  *Result `json:"result,omitempty"`
}

// BulkResult summarizes a bulk or category fix operation.
type BulkResult struct {
	Applied   int          `json:"applied"`
	Attempted int          `json:"attempted"`
	Items     []ItemResult `json:"items"`
}

// ApplyAllAutoFixes applies auto-fix to every auto-fixable unresolved
// issue. Each issue is isolated: a failure is recorded per item and the
// remaining issues are still attempted. Cancellation is honored only
// between issues, never mid-issue, and persistence commits once at the
// end.
func (e *Engine) ApplyAllAutoFixes(ctx context.Context, issues []*detectors.Issue, performedBy string) (*BulkResult, error) {
	var scope []*detectors.Issue
	for _, issue := range issues {
		if issue.AutoFixable && !issue.Resolved() {
			scope = append(scope, issue)
		}
	}
	return e.applyBatch(ctx, scope, func(issue *detectors.Issue) (*Result, error) {
		return e.applyFix(issue, ActionAutoFix, nil, performedBy, false)
	})
}

// ApplyCategoryFixes applies auto-fix to every unresolved issue of one
// category with the same per-item isolation. Non-auto-fixable issues in
// scope are reported as failed rather than attempted.
func (e *Engine) ApplyCategoryFixes(ctx context.Context, issues []*detectors.Issue, category detectors.Category, performedBy string) (*BulkResult, error) {
	var scope []*detectors.Issue
	for _, issue := range issues {
		if issue.Category == category && !issue.Resolved() {
			scope = append(scope, issue)
		}
	}
	return e.applyBatch(ctx, scope, func(issue *detectors.Issue) (*Result, error) {
		if !issue.AutoFixable {
			return nil, NewUnsupportedError(issue.ID, "issue requires manual fix")
		}
		return e.applyFix(issue, ActionAutoFix, nil, performedBy, false)
	})
}

// applyBatch drives one fix per issue with per-item isolation and a
// single commit at the end.
func (e *Engine) applyBatch(ctx context.Context, scope []*detectors.Issue, apply func(*detectors.Issue) (*Result, error)) (*BulkResult, error) {
	result := &BulkResult{Attempted: len(scope), Items: make([]ItemResult, 0, len(scope))}

	for _, issue := range scope {
		if err := ctx.Err(); err != nil {
			// Issue-granular cancellation: stop before the next issue,
			// keep everything already applied.
			result.Attempted = len(result.Items)
			break
		}
		fixResult, err := apply(issue)
		if err != nil {
			result.Items = append(result.Items, ItemResult{
				IssueID: issue.ID,
				Success: false,
				Error:   err.Error(),
			})
			continue
		}
		result.Applied++
		result.Items = append(result.Items, ItemResult{
			IssueID: issue.ID,
			Success: true,
			Result:  fixResult,
		})
	}

	e.logger.Info("bulk fix complete",
		slog.Int("applied", result.Applied),
		slog.Int("attempted", result.Attempted))

	if err := e.commit(); err != nil {
		return result, fmt.Errorf("bulk fixes applied but persistence commit failed: %w", err)
	}
	return result, nil
}
