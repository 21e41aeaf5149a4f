package fixes

import "fmt"

// ErrorType classifies fix engine failures.
type ErrorType string

const (
	ErrorTypeUnsupported  ErrorType = "unsupported_operation"
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypeNotFound     ErrorType = "not_found"
	ErrorTypeInvalidState ErrorType = "invalid_state"
	ErrorTypeExecution    ErrorType = "execution"
)

// EngineError is a fix-engine specific error carrying the issue it
// relates to.
type EngineError struct {
	Type    ErrorType `json:"type"`
	IssueID string    `json:"issue_id,omitempty"`
	Message string    `json:"message"`
	Cause   error     `json:"-"`
}

// Error implements the error interface.
func (e *EngineError) Error() string {
	if e.IssueID != "" {
		return fmt.Sprintf("[%s] issue %s: %s", e.Type, e.IssueID, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error.
func (e *EngineError) Unwrap() error { return e.Cause }

// NewUnsupportedError reports an action the issue does not support.
func NewUnsupportedError(issueID, message string) *EngineError {
	return &EngineError{Type: ErrorTypeUnsupported, IssueID: issueID, Message: message}
}

// NewValidationError reports fix data that failed validation.
func NewValidationError(issueID, message string) *EngineError {
	return &EngineError{Type: ErrorTypeValidation, IssueID: issueID, Message: message}
}

// NewInvalidStateError reports an operation against the wrong
// resolution state, e.g. undoing an unresolved issue.
func NewInvalidStateError(issueID, message string) *EngineError {
	return &EngineError{Type: ErrorTypeInvalidState, IssueID: issueID, Message: message}
}

// NewExecutionError wraps a failure while mutating the table.
func NewExecutionError(issueID, message string, cause error) *EngineError {
	return &EngineError{Type: ErrorTypeExecution, IssueID: issueID, Message: message, Cause: cause}
}

// IsUnsupported reports whether err is an unsupported-operation error.
func IsUnsupported(err error) bool {
	e, ok := err.(*EngineError)
	return ok && e.Type == ErrorTypeUnsupported
}

// TypeOf returns the engine error type, or ErrorTypeExecution for
// foreign errors.
func TypeOf(err error) ErrorType {
	if e, ok := err.(*EngineError); ok {
		return e.Type
	}
	return ErrorTypeExecution
}
