package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDoneSetUnion(t *testing.T) {
	results := []Result{{Query: "A"}, {Query: "C"}}
	failures := []Failure{{Company: "B", Error: "no results"}}

	done := DoneSet(results, failures)

	assert.Len(t, done, 3)
	for _, name := range []string{"A", "B", "C"} {
		assert.Contains(t, done, name)
	}
	assert.NotContains(t, done, "D")
}

func TestStatLabelsSortedUnion(t *testing.T) {
	results := []Result{
		{Query: "A", Stats: map[string]string{"복지 및 급여": "3.1", "승진 기회": "2.0"}},
		{Query: "B"},
		{Query: "C", Stats: map[string]string{"경영진": "2.5", "승진 기회": "2.2"}},
	}

	assert.Equal(t, []string{"경영진", "복지 및 급여", "승진 기회"}, StatLabels(results))
}

func TestValue(t *testing.T) {
	assert.Equal(t, "", Value(nil))
	assert.Equal(t, "5", Value(Str("5")))
}

func TestSummaryProcessed(t *testing.T) {
	s := Summary{Total: 5, Skipped: 2, Succeeded: 2, Failed: 1}
	assert.Equal(t, 3, s.Processed())
}
