package detectors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"censusqc/internal/census"
)

func messyTable(t *testing.T) *census.Table {
	t.Helper()
	return buildTable(t,
		[]string{census.FieldSSN, census.FieldDOB, census.FieldDOH, census.FieldDOT, census.FieldPriorYearComp},
		[][]string{
			{"123 45 6789", "01/15/1985", "2010-06-01", "", "$50,000"},
			{"987-65-4321", "1990-03-20", "2020-01-01", "2015-01-01", "61000"},
			{"", "1992-07-04", "2018-09-01", "", ""},
		})
}

func TestRunAssignsIdentityAndTimestamp(t *testing.T) {
	tbl := messyTable(t)

	issues, err := Run(context.Background(), tbl, Options{Now: analysisTime})
	require.NoError(t, err)
	require.NotEmpty(t, issues)

	seen := make(map[string]bool)
	for _, issue := range issues {
		assert.NotEmpty(t, issue.ID)
		assert.False(t, seen[issue.ID], "issue IDs must be unique")
		seen[issue.ID] = true
		assert.Equal(t, analysisTime, issue.CreatedAt)
		if len(issue.AffectedRows) > 0 {
			assert.Equal(t, len(dedupe(issue.AffectedRows)), issue.AffectedEmployees)
		}
	}
}

func TestRunIsDeterministicInOrder(t *testing.T) {
	tbl := messyTable(t)

	first, err := Run(context.Background(), tbl, Options{Now: analysisTime})
	require.NoError(t, err)
	second, err := Run(context.Background(), tbl, Options{Now: analysisTime})
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Title, second[i].Title)
		assert.Equal(t, first[i].AffectedRows, second[i].AffectedRows)
	}
}

func TestRunHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, messyTable(t), Options{Now: analysisTime})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunFindsExpectedProblems(t *testing.T) {
	tbl := messyTable(t)

	issues, err := Run(context.Background(), tbl, Options{Now: analysisTime})
	require.NoError(t, err)

	titles := make(map[string]bool)
	for _, issue := range issues {
		titles[issue.Title] = true
	}
	assert.True(t, titles["Missing Values in SSN"])
	assert.True(t, titles["Invalid Date Format in DOB"])
	assert.True(t, titles["Invalid SSN Format"])
	assert.True(t, titles["Invalid Numeric Format in PriorYearComp"])
	assert.True(t, titles["Termination Date Before Hire Date"])
}

func dedupe(rows []int) []int {
	seen := make(map[int]bool)
	var out []int
	for _, r := range rows {
		if !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}
	return out
}
