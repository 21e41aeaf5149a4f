package census

// Canonical field names supplied by the column-mapping collaborator.
// The engine only ever addresses columns through these names.
const (
	FieldSSN                    = "SSN"
	FieldEEID                   = "EEID"
	FieldFirstName              = "FirstName"
	FieldLastName               = "LastName"
	FieldDOB                    = "DOB"
	FieldDOH                    = "DOH"
	FieldDOT                    = "DOT"
	FieldHoursWorked            = "HoursWorked"
	FieldOwnership              = "%Ownership"
	FieldOfficer                = "Officer"
	FieldPriorYearComp          = "PriorYearComp"
	FieldEmployeeDeferrals      = "EmployeeDeferrals"
	FieldEmployerMatch          = "EmployerMatch"
	FieldEmployerProfitSharing  = "EmployerProfitSharing"
	FieldEmployerSHContribution = "EmployerSHContribution"
)

// ExcludedColumn is appended by the exclusion fix. Rows flagged here are
// skipped by downstream compliance computations but never deleted.
const ExcludedColumn = "Excluded"

// RequiredFields must be present and non-null for compliance testing.
var RequiredFields = []string{FieldSSN, FieldDOB, FieldDOH, FieldPriorYearComp}

// DateFields hold calendar dates in the canonical DateLayout.
var DateFields = []string{FieldDOB, FieldDOH, FieldDOT}

// NumericFields hold plain numbers after mapping.
var NumericFields = []string{
	FieldHoursWorked,
	FieldOwnership,
	FieldPriorYearComp,
	FieldEmployeeDeferrals,
	FieldEmployerMatch,
	FieldEmployerProfitSharing,
	FieldEmployerSHContribution,
}

// CompensationFields are the dollar-amount columns checked for round
// number bias and range anomalies.
var CompensationFields = []string{
	FieldPriorYearComp,
	FieldEmployeeDeferrals,
	FieldEmployerMatch,
	FieldEmployerProfitSharing,
	FieldEmployerSHContribution,
}

// IdentifierFields are unique per employee and skipped by the
// identical-value pattern check.
var IdentifierFields = []string{FieldSSN, FieldEEID}

// HCEDeterminationFields are needed for highly-compensated-employee
// determination (ADP/ACP testing).
var HCEDeterminationFields = []string{FieldSSN, FieldPriorYearComp, FieldOwnership, FieldOfficer}

// EligibilityFields are needed for 410(b) coverage eligibility testing.
var EligibilityFields = []string{FieldDOB, FieldDOH, FieldHoursWorked}

// IsIdentifierField reports whether the column is an employee identifier.
func IsIdentifierField(name string) bool {
	for _, f := range IdentifierFields {
		if f == name {
			return true
		}
	}
	return false
}

// IsDateField reports whether the column holds dates.
func IsDateField(name string) bool {
	for _, f := range DateFields {
		if f == name {
			return true
		}
	}
	return false
}

// IsNumericField reports whether the column holds numbers.
func IsNumericField(name string) bool {
	for _, f := range NumericFields {
		if f == name {
			return true
		}
	}
	return false
}
