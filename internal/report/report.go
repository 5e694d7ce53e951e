// Package report summarises the Progress Store for the status command.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/antzucaro/matchr"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"reviewscraper/pkg/errors"
	"reviewscraper/pkg/models"
	"reviewscraper/pkg/targets"
)

// Status describes how far a crawl over a work list has come
type Status struct {
	// TargetsKnown is false when the work list could not be read, in which
	// case Targets, Done and Remaining are meaningless
	TargetsKnown bool

	Targets   int
	Results   int
	Failures  int
	Done      int
	Remaining int

	// FailureKinds counts recorded errors by category
	FailureKinds map[string]int

	Snapshots []string
}

// Build computes the status of items against the stored tables
func Build(items []string, results []models.Result, failures []models.Failure, snapshots []string) Status {
	done := models.DoneSet(results, failures)
	remaining, _ := targets.Remaining(items, done)

	kinds := make(map[string]int)
	for _, f := range failures {
		kinds[Category(f.Error)]++
	}

	return Status{
		TargetsKnown: true,
		Targets:      len(items),
		Results:      len(results),
		Failures:     len(failures),
		Done:         len(items) - len(remaining),
		Remaining:    len(remaining),
		FailureKinds: kinds,
		Snapshots:    snapshots,
	}
}

// BuildWithoutTargets computes the status of the stored tables alone, for
// when the work list is unavailable
func BuildWithoutTargets(results []models.Result, failures []models.Failure, snapshots []string) Status {
	s := Build(nil, results, failures, snapshots)
	s.TargetsKnown = false
	s.Done = len(models.DoneSet(results, failures))
	return s
}

// Category maps a recorded error description to a short category such as
// "no_results" or "search timeout"
func Category(msg string) string {
	if msg == errors.NoResultsMessage {
		return string(errors.ErrorTypeNoResults)
	}
	if i := strings.Index(msg, ": "); i > 0 {
		return msg[:i]
	}
	return "other"
}

// Mismatch is a result whose resolved name differs from the searched one
type Mismatch struct {
	Query      string
	Name       string
	CompanyID  string
	Similarity float64
}

var corporateMarkers = strings.NewReplacer(
	"(주)", "", "㈜", "", "주식회사", "", "(유)", "", " ", "", ".", "", ",", "",
)

// normalizeName removes corporate suffixes and spacing before comparison
func normalizeName(s string) string {
	return strings.ToLower(corporateMarkers.Replace(s))
}

// Suspicious returns the results whose first search candidate looks like a
// different company, least similar first. Results without a name are
// skipped.
func Suspicious(results []models.Result, threshold float64) []Mismatch {
	var out []Mismatch
	for _, r := range results {
		if r.Name == nil || *r.Name == "" {
			continue
		}
		sim := matchr.JaroWinkler(normalizeName(r.Query), normalizeName(*r.Name), false)
		if sim < threshold {
			out = append(out, Mismatch{
				Query:      r.Query,
				Name:       *r.Name,
				CompanyID:  models.Value(r.CompanyID),
				Similarity: sim,
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Similarity < out[j].Similarity })
	return out
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}

// WriteStatus renders s as tables
func WriteStatus(w io.Writer, s Status) {
	t := newTable(w)
	t.SetTitle("Progress")
	t.AppendHeader(table.Row{"Targets", "Done", "Remaining", "Results", "Errors"})
	if s.TargetsKnown {
		t.AppendRow(table.Row{s.Targets, s.Done, s.Remaining, s.Results, s.Failures})
	} else {
		t.AppendRow(table.Row{"unknown", s.Done, "unknown", s.Results, s.Failures})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Colors: text.Colors{text.FgYellow}},
		{Number: 5, Colors: text.Colors{text.FgRed}},
	})
	t.Render()

	if len(s.FailureKinds) > 0 {
		kinds := make([]string, 0, len(s.FailureKinds))
		for k := range s.FailureKinds {
			kinds = append(kinds, k)
		}
		sort.Strings(kinds)

		kt := newTable(w)
		kt.SetTitle("Errors by kind")
		kt.AppendHeader(table.Row{"Kind", "Count"})
		for _, k := range kinds {
			kt.AppendRow(table.Row{k, s.FailureKinds[k]})
		}
		kt.Render()
	}

	if len(s.Snapshots) > 0 {
		fmt.Fprintf(w, "Snapshots: %s\n", strings.Join(s.Snapshots, ", "))
	}
}

// WriteMismatches renders the suspicious results
func WriteMismatches(w io.Writer, mismatches []Mismatch) {
	if len(mismatches) == 0 {
		fmt.Fprintln(w, "No suspicious matches")
		return
	}

	t := newTable(w)
	t.SetTitle("Suspicious matches")
	t.AppendHeader(table.Row{"Searched", "Matched", "Company ID", "Similarity"})
	for _, m := range mismatches {
		t.AppendRow(table.Row{m.Query, m.Name, m.CompanyID, fmt.Sprintf("%.2f", m.Similarity)})
	}
	t.Render()
}
