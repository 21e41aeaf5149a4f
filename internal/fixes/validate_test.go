package fixes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"censusqc/internal/census"
	"censusqc/internal/detectors"
)

func validationEngine(t *testing.T) *Engine {
	t.Helper()
	return NewEngine(census.NewTable([]string{census.FieldSSN}), nil)
}

func TestValidateFixDataRejectsEmpty(t *testing.T) {
	engine := validationEngine(t)
	issue := &detectors.Issue{ID: "x"}

	for _, data := range []*FixData{nil, {}, {Rationale: "only words"}} {
		result := engine.ValidateFixData(issue, data)
		assert.False(t, result.Valid)
		assert.Contains(t, result.Errors[0], "no fix data provided")
	}
}

func TestValidateFixDataSSN(t *testing.T) {
	engine := validationEngine(t)
	issue := &detectors.Issue{ID: "x"}

	tests := []struct {
		name  string
		value string
		valid bool
	}{
		{name: "formatted", value: "123-45-6789", valid: true},
		{name: "raw digits rejected", value: "123456789", valid: false},
		{name: "spaces rejected", value: "123 45 6789", valid: false},
		{name: "all zeros rejected", value: "000000000", valid: false},
		{name: "all nines rejected", value: "999-99-9999", valid: false},
		{name: "too short", value: "12345", valid: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := &FixData{Cells: map[int]map[string]string{0: {census.FieldSSN: tt.value}}}
			result := engine.ValidateFixData(issue, data)
			assert.Equal(t, tt.valid, result.Valid)
		})
	}
}

func TestValidateFixDataDates(t *testing.T) {
	engine := validationEngine(t)
	issue := &detectors.Issue{ID: "x"}

	result := engine.ValidateFixData(issue, &FixData{Cells: map[int]map[string]string{
		0: {census.FieldDOB: "01/15/1985"},
	}})
	assert.True(t, result.Valid, "any standardizable layout is acceptable input")

	result = engine.ValidateFixData(issue, &FixData{Cells: map[int]map[string]string{
		0: {census.FieldDOB: "yesterday"},
	}})
	assert.False(t, result.Valid)
}

func TestValidateFixDataCompensation(t *testing.T) {
	engine := validationEngine(t)
	issue := &detectors.Issue{ID: "x"}

	result := engine.ValidateFixData(issue, &FixData{Fill: map[string]string{
		census.FieldPriorYearComp: "-100",
	}})
	require.False(t, result.Valid)
	assert.Contains(t, result.Errors[0], "negative")

	result = engine.ValidateFixData(issue, &FixData{Fill: map[string]string{
		census.FieldPriorYearComp: "20000000",
	}})
	assert.True(t, result.Valid, "high compensation warns but does not block")
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "unusually high")

	result = engine.ValidateFixData(issue, &FixData{Fill: map[string]string{
		census.FieldPriorYearComp: "$55,000",
	}})
	assert.True(t, result.Valid)
	assert.Empty(t, result.Warnings)
}

func TestValidateFixDataUnknownColumnPasses(t *testing.T) {
	engine := validationEngine(t)
	result := engine.ValidateFixData(&detectors.Issue{ID: "x"}, &FixData{Cells: map[int]map[string]string{
		0: {"FirstName": "Ada"},
	}})
	assert.True(t, result.Valid, "free-text columns have no format rules")
}
