package fixes

import (
	"fmt"

	"censusqc/internal/census"
	"censusqc/internal/detectors"
)

// ValidationResult reports whether fix data is safe to apply.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *ValidationResult) addError(format string, args ...any) {
	v.Valid = false
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}

func (v *ValidationResult) addWarning(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}

// compensationWarnLimit mirrors the upper bound of the range detector;
// manual values above it are suspicious but not rejected.
const compensationWarnLimit = 10_000_000

// ValidateFixData applies the same format and range checks the manual
// fix path enforces, without mutating anything. SSNs must be
// XXX-XX-XXXX and not a degenerate sequence; compensation must be
// non-negative, with a warning above $10,000,000; dates must parse.
func (e *Engine) ValidateFixData(issue *detectors.Issue, data *FixData) *ValidationResult {
	result := &ValidationResult{Valid: true, Errors: []string{}, Warnings: []string{}}
	if data == nil || (len(data.Cells) == 0 && len(data.Fill) == 0) {
		result.addError("no fix data provided")
		return result
	}

	for row, cells := range data.Cells {
		for column, value := range cells {
			e.validateCellValue(result, row, column, value)
		}
	}
	for column, value := range data.Fill {
		e.validateCellValue(result, -1, column, value)
	}
	return result
}

func (e *Engine) validateCellValue(result *ValidationResult, row int, column, value string) {
	where := fmt.Sprintf("row %d column %s", row, column)
	if row < 0 {
		where = fmt.Sprintf("fill for column %s", column)
	}

	switch {
	case column == census.FieldSSN:
		// Manual values are written verbatim, so only the exact
		// XXX-XX-XXXX form is accepted. Anything looser would resolve
		// the issue while leaving a cell the format check re-flags.
		if !census.ValidFormattedSSN(value) {
			if census.DegenerateSSN(value) {
				result.addError("%s: SSN %q is not a valid identifier", where, value)
				return
			}
			result.addError("%s: invalid SSN %q, expected XXX-XX-XXXX", where, value)
		}
	case census.IsDateField(column):
		if _, ok := census.ParseDate(value); !ok {
			result.addError("%s: unparseable date %q", where, value)
		}
	case census.IsNumericField(column):
		f, ok := census.CleanNumeric(value)
		if !ok {
			result.addError("%s: invalid numeric value %q", where, value)
			return
		}
		if isCompensationField(column) {
			if f < 0 {
				result.addError("%s: compensation cannot be negative", where)
			} else if f > compensationWarnLimit {
				result.addWarning("%s: compensation value is unusually high", where)
			}
		}
	}
}

func isCompensationField(column string) bool {
	for _, f := range census.CompensationFields {
		if f == column {
			return true
		}
	}
	return false
}
