package census

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the single canonical wire format for dates. The
// detectors flag anything that does not parse as this layout and the
// fixer re-emits repaired dates in it, so auto-fix always converges.
const DateLayout = "2006-01-02"

// dateLayouts is the chain of formats the standardizer accepts, tried
// in order. The canonical layout comes first so already-clean values
// pass through unchanged.
var dateLayouts = []string{
	DateLayout,
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"1-2-2006",
	"01/02/06",
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"2 January 2006",
}

// ParseDate parses a date string against the accepted layout chain.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// StandardizeDate re-emits a parseable date string in DateLayout. The
// second return is false when no accepted layout matches.
func StandardizeDate(s string) (string, bool) {
	t, ok := ParseDate(s)
	if !ok {
		return "", false
	}
	return t.Format(DateLayout), true
}

var (
	ssnPattern   = regexp.MustCompile(`^\d{3}-?\d{2}-?\d{4}$`)
	ssnFormatted = regexp.MustCompile(`^\d{3}-\d{2}-\d{4}$`)
	nonDigits    = regexp.MustCompile(`\D`)
	numericJunk  = regexp.MustCompile(`[$,%\s]`)
)

// ValidSSNShape reports whether the string is an acceptable raw SSN
// shape: XXX-XX-XXXX, partial hyphenation, or 9 raw digits.
func ValidSSNShape(s string) bool {
	return ssnPattern.MatchString(strings.TrimSpace(s))
}

// StandardizeSSN strips non-digits and re-emits XXX-XX-XXXX. The second
// return is false unless exactly nine digits remain; a partial fix is
// never emitted.
func StandardizeSSN(s string) (string, bool) {
	digits := nonDigits.ReplaceAllString(s, "")
	if len(digits) != 9 {
		return "", false
	}
	return digits[:3] + "-" + digits[3:5] + "-" + digits[5:], true
}

// DegenerateSSN reports whether the formatted SSN is a sequence that is
// never a real identifier (all zeros or all nines).
func DegenerateSSN(s string) bool {
	digits := strings.ReplaceAll(s, "-", "")
	return digits == "000000000" || digits == "999999999"
}

// ValidFormattedSSN reports whether s is XXX-XX-XXXX and not a
// degenerate sequence. This is the acceptance check for manual entry.
func ValidFormattedSSN(s string) bool {
	return ssnFormatted.MatchString(s) && !DegenerateSSN(s)
}

// parseCanonicalDate accepts only the canonical layout. Loaders use it
// so that non-canonical dates stay strings for the detectors to flag.
func parseCanonicalDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// parseCanonicalNumber accepts only a plain float literal.
func parseCanonicalNumber(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}

// CleanNumeric strips currency symbols, thousands separators, percent
// signs and spaces, then parses the remainder as a float.
func CleanNumeric(s string) (float64, bool) {
	cleaned := numericJunk.ReplaceAllString(strings.TrimSpace(s), "")
	if cleaned == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
