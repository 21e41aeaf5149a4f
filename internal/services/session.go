// Package services owns the per-table validation session: one
// explicitly owned table buffer, the issues and score of the latest
// run, and the fix engine bound to that table. The session enforces the
// single-writer discipline the engine relies on.
package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"censusqc/internal/census"
	"censusqc/internal/detectors"
	"censusqc/internal/exporter"
	"censusqc/internal/fixes"
	"censusqc/internal/quality"
)

// Session binds one census table to its validation state. All
// mutations of the table flow through the session mutex, so a
// validation run and a fix application never interleave.
type Session struct {
	mu sync.Mutex

	id     string
	table  *census.Table
	engine *fixes.Engine
	logger *slog.Logger

	issues       []*detectors.Issue
	score        *quality.Score
	scoreVersion int

	// rescores tracks in-flight deferred score recomputations so tests
	// and shutdown can wait for them.
	rescores sync.WaitGroup

	metrics *Metrics
	now     func() time.Time
}

// NewSession creates a session owning the given table.
func NewSession(id string, table *census.Table, logger *slog.Logger, metrics *Metrics) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		id:      id,
		table:   table,
		engine:  fixes.NewEngine(table, logger),
		logger:  logger.With(slog.String("component", "session"), slog.String("table_id", id)),
		metrics: metrics,
		now:     time.Now,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// RowCount returns the number of data rows in the owned table.
func (s *Session) RowCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.RowCount()
}

// ColumnCount returns the number of columns in the owned table.
func (s *Session) ColumnCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.table.Columns())
}

// Validate runs the full detector catalog and replaces the session's
// issues and score wholesale. Issues from earlier runs are discarded,
// never merged.
func (s *Session) Validate(ctx context.Context) ([]*detectors.Issue, *quality.Score, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	found, err := detectors.Run(ctx, s.table, detectors.Options{Logger: s.logger})
	if err != nil {
		return nil, nil, err
	}

	issues := make([]*detectors.Issue, len(found))
	for i := range found {
		issues[i] = &found[i]
	}
	s.issues = issues
	s.scoreVersion++
	score := quality.Compute(found, s.scoreVersion, s.now())
	s.score = &score

	if s.metrics != nil {
		s.metrics.ObserveRun(found)
	}
	return issues, &score, nil
}

// Issues returns the issues of the latest run.
func (s *Session) Issues() []*detectors.Issue {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*detectors.Issue, len(s.issues))
	copy(out, s.issues)
	return out
}

// Issue finds one issue by ID.
func (s *Session) Issue(id string) (*detectors.Issue, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, issue := range s.issues {
		if issue.ID == id {
			return issue, true
		}
	}
	return nil, false
}

// Score returns the latest quality score, which may lag behind fixes
// until the deferred recomputation lands.
func (s *Session) Score() *quality.Score {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score
}

// ApplyFix applies one remediation and schedules a deferred score
// recomputation. The fix outcome never depends on the rescore.
func (s *Session) ApplyFix(issueID string, action fixes.Action, data *fixes.FixData, performedBy string) (*fixes.Result, error) {
	s.mu.Lock()
	issue, ok := s.findIssue(issueID)
	if !ok {
		s.mu.Unlock()
		return nil, &fixes.EngineError{Type: fixes.ErrorTypeNotFound, IssueID: issueID, Message: "issue not found"}
	}
	result, err := s.engine.ApplyFix(issue, action, data, performedBy)
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.ObserveFix(action, err == nil)
	}
	if err == nil {
		s.scheduleRescore()
	}
	return result, err
}

// PreviewFix previews an auto-fix against a table copy.
func (s *Session) PreviewFix(issueID string) (*fixes.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	issue, ok := s.findIssue(issueID)
	if !ok {
		return nil, &fixes.EngineError{Type: fixes.ErrorTypeNotFound, IssueID: issueID, Message: "issue not found"}
	}
	return s.engine.PreviewFix(issue)
}

// ValidateFixData checks fix data without mutating anything.
func (s *Session) ValidateFixData(issueID string, data *fixes.FixData) (*fixes.ValidationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	issue, ok := s.findIssue(issueID)
	if !ok {
		return nil, &fixes.EngineError{Type: fixes.ErrorTypeNotFound, IssueID: issueID, Message: "issue not found"}
	}
	return s.engine.ValidateFixData(issue, data), nil
}

// Suggestions returns the ranked remediation options for an issue.
func (s *Session) Suggestions(issueID string) ([]fixes.Suggestion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	issue, ok := s.findIssue(issueID)
	if !ok {
		return nil, &fixes.EngineError{Type: fixes.ErrorTypeNotFound, IssueID: issueID, Message: "issue not found"}
	}
	return s.engine.Suggestions(issue), nil
}

// History returns the audit trail for one issue.
func (s *Session) History(issueID string) []*fixes.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.History(issueID)
}

// Undo reverts an issue's resolution and schedules a rescore.
func (s *Session) Undo(issueID string) (*fixes.UndoResult, error) {
	s.mu.Lock()
	issue, ok := s.findIssue(issueID)
	if !ok {
		s.mu.Unlock()
		return nil, &fixes.EngineError{Type: fixes.ErrorTypeNotFound, IssueID: issueID, Message: "issue not found"}
	}
	result, err := s.engine.Undo(issue)
	s.mu.Unlock()

	if err == nil {
		s.scheduleRescore()
	}
	return result, err
}

// ApplyAllAutoFixes runs the bulk orchestrator and schedules a rescore.
func (s *Session) ApplyAllAutoFixes(ctx context.Context, performedBy string) (*fixes.BulkResult, error) {
	s.mu.Lock()
	result, err := s.engine.ApplyAllAutoFixes(ctx, s.issues, performedBy)
	s.mu.Unlock()

	if result != nil && result.Applied > 0 {
		s.scheduleRescore()
	}
	return result, err
}

// ApplyCategoryFixes runs the category orchestrator and schedules a
// rescore.
func (s *Session) ApplyCategoryFixes(ctx context.Context, category detectors.Category, performedBy string) (*fixes.BulkResult, error) {
	s.mu.Lock()
	result, err := s.engine.ApplyCategoryFixes(ctx, s.issues, category, performedBy)
	s.mu.Unlock()

	if result != nil && result.Applied > 0 {
		s.scheduleRescore()
	}
	return result, err
}

// Export serializes the live table. The format is validated before any
// I/O.
func (s *Session) Export(format string) ([]byte, exporter.Format, error) {
	f, err := exporter.ParseFormat(format)
	if err != nil {
		return nil, "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := exporter.Export(s.table, f)
	return data, f, err
}

// scheduleRescore recomputes the quality score asynchronously after a
// fix. Rescoring is eventually consistent with fixes: it may run after
// the triggering call returns, and its failure never rolls back an
// applied fix.
func (s *Session) scheduleRescore() {
	s.rescores.Add(1)
	go func() {
		defer s.rescores.Done()
		s.mu.Lock()
		defer s.mu.Unlock()
		issues := make([]detectors.Issue, len(s.issues))
		for i, issue := range s.issues {
			issues[i] = *issue
		}
		s.scoreVersion++
		score := quality.Compute(issues, s.scoreVersion, s.now())
		s.score = &score
		s.logger.Debug("quality score recomputed",
			slog.Int("version", score.Version),
			slog.Float64("overall", score.Overall))
	}()
}

// WaitForRescore blocks until in-flight score recomputations finish.
func (s *Session) WaitForRescore() {
	s.rescores.Wait()
}

func (s *Session) findIssue(id string) (*detectors.Issue, bool) {
	for _, issue := range s.issues {
		if issue.ID == id {
			return issue, true
		}
	}
	return nil, false
}
