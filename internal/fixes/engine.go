package fixes

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"censusqc/internal/census"
	"censusqc/internal/detectors"
)

// Action is a remediation operation requested against one issue.
type Action string

const (
	ActionAutoFix      Action = "auto_fix"
	ActionManualEntry  Action = "manual_entry"
	ActionExclude      Action = "exclude"
	ActionAccept       Action = "accept"
	ActionGenerateTest Action = "generate_test"
	ActionUndo         Action = "undo"
)

// resolutionMethod maps an action to the resolution it records.
func (a Action) resolutionMethod() detectors.ResolutionMethod {
	return detectors.ResolutionMethod(a)
}

// FixData carries caller-supplied values for manual and fill-based
// fixes.
type FixData struct {
	// Cells maps row index to column name to the replacement value,
	// used by manual entry.
	Cells map[int]map[string]string `json:"cells,omitempty"`
	// Fill maps column name to the value applied to every null cell of
	// the issue's affected rows, used by missing-required fixes.
	Fill map[string]string `json:"fill,omitempty"`
	// Rationale documents why an accept was appropriate.
	Rationale string `json:"rationale,omitempty"`
}

// Change is one cell mutation performed by a fix.
type Change struct {
	Row      int    `json:"row"`
	Column   string `json:"column"`
	Original string `json:"original"`
	Fixed    string `json:"fixed"`
}

// Result summarizes one applied or previewed fix.
type Result struct {
	Action       Action   `json:"action"`
	RowsAffected int      `json:"rows_affected"`
	Changes      []Change `json:"changes"`
}

// UndoResult reports the outcome of an undo. DataRestored is false when
// no rollback snapshot existed, in which case only the resolution state
// was reverted.
type UndoResult struct {
	Resolution   string `json:"resolution"`
	DataRestored bool   `json:"data_restored"`
	Message      string `json:"message"`
}

// Engine applies remediation operations to issues against one owned
// table. The engine is single-writer: callers serialize access per
// table (services.Session holds the lock).
type Engine struct {
	table   *census.Table
	records *RecordStore
	logger  *slog.Logger
	now     func() time.Time

	// commit is invoked once after a fix (or once per bulk batch) to
	// let the persistence collaborator flush. Failures propagate to
	// the caller; the in-memory table stays consistent for retry.
	commit func() error
}

// NewEngine creates a fix engine over the given table.
func NewEngine(table *census.Table, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		table:   table,
		records: NewRecordStore(),
		logger:  logger.With(slog.String("component", "fix_engine")),
		now:     time.Now,
		commit:  func() error { return nil },
	}
}

// SetCommitFunc installs the persistence hook called after fixes.
func (e *Engine) SetCommitFunc(commit func() error) {
	if commit != nil {
		e.commit = commit
	}
}

// Table returns the live table the engine mutates.
func (e *Engine) Table() *census.Table { return e.table }

// Records returns the append-only audit store.
func (e *Engine) Records() *RecordStore { return e.records }

// History returns the audit trail for one issue.
func (e *Engine) History(issueID string) []*Record {
	return e.records.ByIssue(issueID)
}

// ApplyFix applies one remediation operation to one issue, mutating the
// live table, recording a FixRecord, and resolving the issue on
// success. A failed attempt is recorded too and leaves the table
// untouched.
func (e *Engine) ApplyFix(issue *detectors.Issue, action Action, data *FixData, performedBy string) (*Result, error) {
	return e.applyFix(issue, action, data, performedBy, true)
}

// applyFix is ApplyFix with the persistence commit made optional; bulk
// operations defer it to one commit per batch.
func (e *Engine) applyFix(issue *detectors.Issue, action Action, data *FixData, performedBy string, commit bool) (*Result, error) {
	if issue == nil {
		return nil, NewValidationError("", "no issue provided")
	}

	result, before, after, err := e.execute(e.table, issue, action, data)

	record := &Record{
		ID:          uuid.NewString(),
		IssueID:     issue.ID,
		ActionType:  action,
		Before:      before,
		After:       after,
		PerformedBy: performedBy,
		PerformedAt: e.now(),
		Success:     err == nil,
	}
	if err != nil {
		record.Error = err.Error()
		e.records.Append(record)
		e.logger.Warn("fix failed",
			slog.String("issue_id", issue.ID),
			slog.String("action", string(action)),
			slog.String("error", err.Error()))
		return nil, err
	}
	if len(before) > 0 {
		record.RollbackData = before
	}
	e.records.Append(record)

	notes := ""
	if data != nil {
		notes = data.Rationale
	}
	issue.Resolve(action.resolutionMethod(), performedBy, notes, record.PerformedAt)

	e.logger.Info("fix applied",
		slog.String("issue_id", issue.ID),
		slog.String("action", string(action)),
		slog.Int("rows_affected", result.RowsAffected),
		slog.Int("changes", len(result.Changes)))

	if commit {
		if err := e.commit(); err != nil {
			return result, fmt.Errorf("fix applied but persistence commit failed: %w", err)
		}
	}
	return result, nil
}

// PreviewFix computes the changes an auto-fix would make against a
// disposable copy of the table. The live table is never mutated.
func (e *Engine) PreviewFix(issue *detectors.Issue) (*Result, error) {
	if issue == nil {
		return nil, NewValidationError("", "no issue provided")
	}
	if !issue.AutoFixable {
		return nil, NewUnsupportedError(issue.ID, "issue is not auto-fixable")
	}
	result, _, _, err := e.execute(e.table.Clone(), issue, ActionAutoFix, nil)
	return result, err
}

// Undo reverts an issue's resolution. When the latest successful fix
// record carries rollback data the original cell values are restored;
// otherwise only the resolution flag reverts and DataRestored tells the
// caller the data was not put back.
func (e *Engine) Undo(issue *detectors.Issue) (*UndoResult, error) {
	if issue == nil {
		return nil, NewValidationError("", "no issue provided")
	}
	if !issue.Resolved() {
		return nil, NewInvalidStateError(issue.ID, "issue is not resolved, cannot undo")
	}

	record := e.records.LatestSuccess(issue.ID)
	restored := false
	if record != nil && len(record.RollbackData) > 0 {
		if err := restore(e.table, record.RollbackData); err != nil {
			return nil, NewExecutionError(issue.ID, "failed to restore original values", err)
		}
		restored = true
	}
	issue.Reopen()

	e.records.Append(&Record{
		ID:          uuid.NewString(),
		IssueID:     issue.ID,
		ActionType:  ActionUndo,
		PerformedAt: e.now(),
		Success:     true,
	})

	message := "fix undone; original values restored"
	if !restored {
		message = "fix undone; no rollback snapshot was stored, original data was not restored"
	}
	e.logger.Info("fix undone",
		slog.String("issue_id", issue.ID),
		slog.Bool("data_restored", restored))

	if err := e.commit(); err != nil {
		return nil, fmt.Errorf("undo applied but persistence commit failed: %w", err)
	}
	return &UndoResult{
		Resolution:   "unresolved",
		DataRestored: restored,
		Message:      message,
	}, nil
}

// execute dispatches one action against the given table (live or a
// preview clone) and returns the result plus before/after snapshots of
// every touched cell.
func (e *Engine) execute(t *census.Table, issue *detectors.Issue, action Action, data *FixData) (*Result, Snapshot, Snapshot, error) {
	switch action {
	case ActionAutoFix:
		if !issue.AutoFixable {
			return nil, nil, nil, NewUnsupportedError(issue.ID, "issue is not auto-fixable")
		}
		return e.applyAutoFix(t, issue, data)
	case ActionManualEntry:
		return e.applyManualEntry(t, issue, data)
	case ActionExclude:
		return e.applyExclusion(t, issue)
	case ActionAccept:
		return &Result{Action: ActionAccept}, nil, nil, nil
	case ActionGenerateTest:
		return e.applyGenerateTest(t, issue)
	default:
		return nil, nil, nil, NewUnsupportedError(issue.ID, fmt.Sprintf("unknown action type: %s", action))
	}
}

// applyAutoFix dispatches on the issue's fix kind. The fix kind is a
// closed enum assigned at detection time; titles and categories never
// drive remediation.
func (e *Engine) applyAutoFix(t *census.Table, issue *detectors.Issue, data *FixData) (*Result, Snapshot, Snapshot, error) {
	switch issue.FixKind {
	case detectors.FixKindDateFormat:
		return e.rewriteCells(t, issue, func(original census.Value) (census.Value, bool) {
			d, ok := census.ParseDate(original.Display())
			if !ok {
				return census.Null(), false
			}
			return census.Date(d), true
		})
	case detectors.FixKindSSNFormat:
		return e.rewriteCells(t, issue, func(original census.Value) (census.Value, bool) {
			formatted, ok := census.StandardizeSSN(original.Display())
			if !ok {
				return census.Null(), false
			}
			return census.String(formatted), true
		})
	case detectors.FixKindNumericFormat:
		return e.rewriteCells(t, issue, func(original census.Value) (census.Value, bool) {
			f, ok := census.CleanNumeric(original.Display())
			if !ok {
				return census.Null(), false
			}
			return census.Number(f), true
		})
	case detectors.FixKindMissingRequired:
		return e.applyFill(t, issue, data)
	default:
		return nil, nil, nil, NewUnsupportedError(issue.ID, fmt.Sprintf("no auto-fix behavior for fix kind %s", issue.FixKind))
	}
}

// rewriteCells standardizes the issue's column on each affected row.
// Rows whose value cannot be standardized are skipped, never partially
// written. On a write failure every already-written cell is restored
// from the pre-captured snapshot so the fix stays atomic.
func (e *Engine) rewriteCells(t *census.Table, issue *detectors.Issue, transform func(census.Value) (census.Value, bool)) (*Result, Snapshot, Snapshot, error) {
	if issue.Field == "" || !t.HasColumn(issue.Field) {
		return nil, nil, nil, NewValidationError(issue.ID, fmt.Sprintf("column %s does not exist", issue.Field))
	}

	before := capture(t, issue.AffectedRows, []string{issue.Field})
	result := &Result{Action: ActionAutoFix}

	for _, row := range issue.AffectedRows {
		original, ok := t.Cell(row, issue.Field)
		if !ok || original.IsNull() {
			continue
		}
		fixed, ok := transform(original)
		if !ok || fixed.Equal(original) {
			continue
		}
		if err := t.SetCell(row, issue.Field, fixed); err != nil {
			if restoreErr := restore(t, before); restoreErr != nil {
				e.logger.Error("rollback after failed fix also failed",
					slog.String("issue_id", issue.ID),
					slog.String("error", restoreErr.Error()))
			}
			return nil, before, nil, NewExecutionError(issue.ID, fmt.Sprintf("failed to write row %d", row), err)
		}
		result.Changes = append(result.Changes, Change{
			Row:      row,
			Column:   issue.Field,
			Original: original.Display(),
			Fixed:    fixed.Display(),
		})
	}

	result.RowsAffected = len(result.Changes)
	after := capture(t, issue.AffectedRows, []string{issue.Field})
	return result, before, after, nil
}

// applyFill writes a caller-specified fill value into null cells of the
// issue's affected rows. A fill is never synthesized for identifier
// fields; generating placeholder identifiers is the explicit
// generate_test action.
func (e *Engine) applyFill(t *census.Table, issue *detectors.Issue, data *FixData) (*Result, Snapshot, Snapshot, error) {
	if data == nil || len(data.Fill) == 0 {
		return nil, nil, nil, NewValidationError(issue.ID, "missing-required fix needs a caller-specified fill value")
	}
	fill, ok := data.Fill[issue.Field]
	if !ok {
		return nil, nil, nil, NewValidationError(issue.ID, fmt.Sprintf("no fill value provided for column %s", issue.Field))
	}
	if census.IsIdentifierField(issue.Field) {
		return nil, nil, nil, NewUnsupportedError(issue.ID,
			fmt.Sprintf("refusing to fill identifier column %s; use manual_entry or generate_test", issue.Field))
	}
	if !t.HasColumn(issue.Field) {
		return nil, nil, nil, NewValidationError(issue.ID, fmt.Sprintf("column %s does not exist", issue.Field))
	}

	value := typedValue(issue.Field, fill)
	before := capture(t, issue.AffectedRows, []string{issue.Field})
	result := &Result{Action: ActionAutoFix}

	for _, row := range issue.AffectedRows {
		original, ok := t.Cell(row, issue.Field)
		if !ok || !original.IsNull() {
			continue
		}
		if err := t.SetCell(row, issue.Field, value); err != nil {
			if restoreErr := restore(t, before); restoreErr != nil {
				e.logger.Error("rollback after failed fill also failed",
					slog.String("issue_id", issue.ID),
					slog.String("error", restoreErr.Error()))
			}
			return nil, before, nil, NewExecutionError(issue.ID, fmt.Sprintf("failed to write row %d", row), err)
		}
		result.Changes = append(result.Changes, Change{
			Row:      row,
			Column:   issue.Field,
			Original: "",
			Fixed:    value.Display(),
		})
	}

	result.RowsAffected = len(result.Changes)
	after := capture(t, issue.AffectedRows, []string{issue.Field})
	return result, before, after, nil
}

// applyManualEntry overwrites named cells for named rows with
// caller-supplied values. The values are re-validated here even though
// the caller contract says they were validated already.
func (e *Engine) applyManualEntry(t *census.Table, issue *detectors.Issue, data *FixData) (*Result, Snapshot, Snapshot, error) {
	if data == nil || len(data.Cells) == 0 {
		return nil, nil, nil, NewValidationError(issue.ID, "manual entry needs cell values")
	}
	if v := e.ValidateFixData(issue, data); !v.Valid {
		return nil, nil, nil, NewValidationError(issue.ID, fmt.Sprintf("fix data failed validation: %v", v.Errors))
	}

	rows := make([]int, 0, len(data.Cells))
	columnSet := make(map[string]bool)
	for row, cells := range data.Cells {
		rows = append(rows, row)
		for col := range cells {
			if !t.HasColumn(col) {
				return nil, nil, nil, NewValidationError(issue.ID, fmt.Sprintf("column %s does not exist", col))
			}
			columnSet[col] = true
		}
	}
	columns := make([]string, 0, len(columnSet))
	for col := range columnSet {
		columns = append(columns, col)
	}

	before := capture(t, rows, columns)
	result := &Result{Action: ActionManualEntry}

	for row, cells := range data.Cells {
		for col, raw := range cells {
			original, ok := t.Cell(row, col)
			if !ok {
				if restoreErr := restore(t, before); restoreErr != nil {
					e.logger.Error("rollback after failed manual entry also failed",
						slog.String("issue_id", issue.ID),
						slog.String("error", restoreErr.Error()))
				}
				return nil, before, nil, NewValidationError(issue.ID, fmt.Sprintf("row %d out of range", row))
			}
			value := typedValue(col, raw)
			if err := t.SetCell(row, col, value); err != nil {
				if restoreErr := restore(t, before); restoreErr != nil {
					e.logger.Error("rollback after failed manual entry also failed",
						slog.String("issue_id", issue.ID),
						slog.String("error", restoreErr.Error()))
				}
				return nil, before, nil, NewExecutionError(issue.ID, fmt.Sprintf("failed to write row %d", row), err)
			}
			result.Changes = append(result.Changes, Change{
				Row:      row,
				Column:   col,
				Original: original.Display(),
				Fixed:    value.Display(),
			})
		}
	}

	result.RowsAffected = len(data.Cells)
	after := capture(t, rows, columns)
	return result, before, after, nil
}

// applyExclusion flags the affected rows in the exclusion column,
// appending the column on first use. Rows are never deleted, and
// re-excluding already excluded rows changes nothing.
func (e *Engine) applyExclusion(t *census.Table, issue *detectors.Issue) (*Result, Snapshot, Snapshot, error) {
	t.AddColumn(census.ExcludedColumn, census.String("false"))

	before := capture(t, issue.AffectedRows, []string{census.ExcludedColumn})
	result := &Result{Action: ActionExclude}
	excluded := census.String("true")

	for _, row := range issue.AffectedRows {
		original, ok := t.Cell(row, census.ExcludedColumn)
		if !ok || original.Equal(excluded) {
			continue
		}
		if err := t.SetCell(row, census.ExcludedColumn, excluded); err != nil {
			if restoreErr := restore(t, before); restoreErr != nil {
				e.logger.Error("rollback after failed exclusion also failed",
					slog.String("issue_id", issue.ID),
					slog.String("error", restoreErr.Error()))
			}
			return nil, before, nil, NewExecutionError(issue.ID, fmt.Sprintf("failed to exclude row %d", row), err)
		}
		result.Changes = append(result.Changes, Change{
			Row:      row,
			Column:   census.ExcludedColumn,
			Original: original.Display(),
			Fixed:    "true",
		})
	}

	result.RowsAffected = len(result.Changes)
	after := capture(t, issue.AffectedRows, []string{census.ExcludedColumn})
	return result, before, after, nil
}

// generateTestSSNBase seeds the sequential synthetic identifiers.
const generateTestSSNBase = 123456789

// applyGenerateTest synthesizes sequential placeholder identifiers for
// the affected rows. It is a distinct action type so fabricated data is
// never mistaken for a verified fix.
func (e *Engine) applyGenerateTest(t *census.Table, issue *detectors.Issue) (*Result, Snapshot, Snapshot, error) {
	if issue.Field != census.FieldSSN {
		return nil, nil, nil, NewUnsupportedError(issue.ID,
			fmt.Sprintf("cannot generate test data for column %s", issue.Field))
	}
	if !t.HasColumn(census.FieldSSN) {
		return nil, nil, nil, NewValidationError(issue.ID, "SSN column does not exist")
	}

	before := capture(t, issue.AffectedRows, []string{census.FieldSSN})
	result := &Result{Action: ActionGenerateTest}

	for i, row := range issue.AffectedRows {
		original, ok := t.Cell(row, census.FieldSSN)
		if !ok {
			continue
		}
		synthetic, _ := census.StandardizeSSN(fmt.Sprintf("%09d", generateTestSSNBase+i))
		if err := t.SetCell(row, census.FieldSSN, census.String(synthetic)); err != nil {
			if restoreErr := restore(t, before); restoreErr != nil {
				e.logger.Error("rollback after failed generation also failed",
					slog.String("issue_id", issue.ID),
					slog.String("error", restoreErr.Error()))
			}
			return nil, before, nil, NewExecutionError(issue.ID, fmt.Sprintf("failed to write row %d", row), err)
		}
		result.Changes = append(result.Changes, Change{
			Row:      row,
			Column:   census.FieldSSN,
			Original: original.Display(),
			Fixed:    synthetic,
		})
	}

	result.RowsAffected = len(result.Changes)
	after := capture(t, issue.AffectedRows, []string{census.FieldSSN})
	return result, before, after, nil
}

// typedValue converts a caller-supplied string to the cell type of its
// column. Values that do not parse stay strings so a later validation
// run still sees them.
func typedValue(column, raw string) census.Value {
	if raw == "" {
		return census.Null()
	}
	switch {
	case census.IsDateField(column):
		if d, ok := census.ParseDate(raw); ok {
			return census.Date(d)
		}
	case census.IsNumericField(column):
		if f, ok := census.CleanNumeric(raw); ok {
			return census.Number(f)
		}
	}
	return census.String(raw)
}
