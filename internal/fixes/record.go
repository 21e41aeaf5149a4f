package fixes

import (
	"sync"
	"time"

	"censusqc/internal/census"
)

// Snapshot holds cell values keyed by row then column. A snapshot taken
// before a mutating fix becomes the rollback data for undo.
type Snapshot map[int]map[string]census.Value

// capture records the current values of the given cells.
func capture(t *census.Table, rows []int, columns []string) Snapshot {
	snap := make(Snapshot, len(rows))
	for _, row := range rows {
		cells := make(map[string]census.Value, len(columns))
		for _, col := range columns {
			if v, ok := t.Cell(row, col); ok {
				cells[col] = v
			}
		}
		if len(cells) > 0 {
			snap[row] = cells
		}
	}
	return snap
}

// restore writes the snapshot values back to the table.
func restore(t *census.Table, snap Snapshot) error {
	for row, cells := range snap {
		for col, v := range cells {
			if err := t.SetCell(row, col, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// Record is the append-only audit entry for one remediation attempt,
// successful or not. Records are never mutated after creation.
type Record struct {
	ID           string    `json:"id"`
	IssueID      string    `json:"issue_id"`
	ActionType   Action    `json:"action_type"`
	Before       Snapshot  `json:"before_state,omitempty"`
	After        Snapshot  `json:"after_state,omitempty"`
	PerformedBy  string    `json:"performed_by"`
	PerformedAt  time.Time `json:"performed_at"`
	Success      bool      `json:"success"`
	Error        string    `json:"error,omitempty"`
	RollbackData Snapshot  `json:"rollback_data,omitempty"`
}

// RecordStore keeps fix records in memory for the lifetime of a
// session. The persistence collaborator relays them out.
type RecordStore struct {
	mu      sync.RWMutex
	records []*Record
}

// NewRecordStore creates an empty store.
func NewRecordStore() *RecordStore {
	return &RecordStore{}
}

// Append adds a record. Records are append-only; there is no update.
func (s *RecordStore) Append(r *Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, r)
}

// ByIssue returns all records for one issue in insertion order.
func (s *RecordStore) ByIssue(issueID string) []*Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Record
	for _, r := range s.records {
		if r.IssueID == issueID {
			out = append(out, r)
		}
	}
	return out
}

// LatestSuccess returns the most recent successful record for an issue.
func (s *RecordStore) LatestSuccess(issueID string) *Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.records) - 1; i >= 0; i-- {
		if s.records[i].IssueID == issueID && s.records[i].Success {
			return s.records[i]
		}
	}
	return nil
}

// All returns every record in insertion order.
func (s *RecordStore) All() []*Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Record, len(s.records))
	copy(out, s.records)
	return out
}
