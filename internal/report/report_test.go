package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"reviewscraper/pkg/models"
)

func TestBuild(t *testing.T) {
	items := []string{"A", "B", "C", "D"}
	results := []models.Result{{Query: "A"}, {Query: "Z"}}
	failures := []models.Failure{
		{Company: "B", Error: "no results"},
		{Company: "Y", Error: "detail timeout: timed out waiting for \"div.review_stats\""},
	}

	s := Build(items, results, failures, []string{"progress_50.csv"})

	assert.True(t, s.TargetsKnown)
	assert.Equal(t, 4, s.Targets)
	assert.Equal(t, 2, s.Done)
	assert.Equal(t, 2, s.Remaining)
	assert.Equal(t, 2, s.Results)
	assert.Equal(t, 2, s.Failures)
	assert.Equal(t, map[string]int{"no_results": 1, "detail timeout": 1}, s.FailureKinds)
}

func TestBuildWithoutTargets(t *testing.T) {
	results := []models.Result{{Query: "A"}}
	failures := []models.Failure{{Company: "B", Error: "no results"}}

	s := BuildWithoutTargets(results, failures, nil)

	assert.False(t, s.TargetsKnown)
	assert.Equal(t, 2, s.Done)
	assert.Equal(t, 1, s.Results)
	assert.Equal(t, 1, s.Failures)

	var buf bytes.Buffer
	WriteStatus(&buf, s)
	assert.Contains(t, buf.String(), "unknown")
}

func TestCategory(t *testing.T) {
	assert.Equal(t, "no_results", Category("no results"))
	assert.Equal(t, "search transport", Category("search transport: net::ERR_NAME_NOT_RESOLVED"))
	assert.Equal(t, "other", Category("boom"))
}

func TestSuspicious(t *testing.T) {
	results := []models.Result{
		{Query: "삼성전자", Name: models.Str("삼성전자(주)")},
		{Query: "Acme Corp", Name: models.Str("acme corp.")},
		{Query: "카카오", Name: models.Str("Kakao Games"), CompanyID: models.Str("42")},
		{Query: "NoName"},
	}

	mismatches := Suspicious(results, 0.85)
	require.Len(t, mismatches, 1)
	assert.Equal(t, "카카오", mismatches[0].Query)
	assert.Equal(t, "42", mismatches[0].CompanyID)
	assert.Less(t, mismatches[0].Similarity, 0.85)
}

func TestWriteStatus(t *testing.T) {
	var buf bytes.Buffer
	WriteStatus(&buf, Status{
		TargetsKnown: true,
		Targets:      3,
		Done:         2,
		Remaining:    1,
		Results:      1,
		Failures:     1,
		FailureKinds: map[string]int{"no_results": 1},
		Snapshots:    []string{"progress_50.csv"},
	})

	out := buf.String()
	assert.Contains(t, out, "Progress")
	assert.Contains(t, out, "no_results")
	assert.Contains(t, out, "Snapshots: progress_50.csv")
	assert.NotContains(t, out, "unknown")
}

func TestWriteMismatches(t *testing.T) {
	var buf bytes.Buffer
	WriteMismatches(&buf, nil)
	assert.Contains(t, buf.String(), "No suspicious matches")

	buf.Reset()
	WriteMismatches(&buf, []Mismatch{{Query: "카카오", Name: "Kakao Games", Similarity: 0.1}})
	assert.Contains(t, buf.String(), "Kakao Games")
	assert.Contains(t, buf.String(), "0.10")
}
