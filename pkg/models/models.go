package models

import (
	"sort"
	"time"
)

// Result is the outcome of one successfully processed company. All fields
// except Query are optional; nil means the value was never observed.
type Result struct {
	CompanyID     *string
	Name          *string
	SearchRating  *string
	ReviewCount   *string
	OverallRating *string

	// Stats holds labelled sub-ratings harvested from the detail page. The
	// label set depends on what the page contains.
	Stats map[string]string

	// Query is the company name that was searched for
	Query string
}

// Failure records a company that could not be processed
type Failure struct {
	Company string
	Error   string
}

// Candidate is one search result entry
type Candidate struct {
	CompanyID *string
	Name      *string
	Rating    *string
}

// Str returns a pointer to s
func Str(s string) *string {
	return &s
}

// Value dereferences an optional string, treating nil as ""
func Value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// StatLabels returns the sorted union of stat labels across results
func StatLabels(results []Result) []string {
	seen := make(map[string]struct{})
	for _, r := range results {
		for label := range r.Stats {
			seen[label] = struct{}{}
		}
	}
	labels := make([]string, 0, len(seen))
	for label := range seen {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// DoneSet returns the company names already resolved by either table
func DoneSet(results []Result, failures []Failure) map[string]struct{} {
	done := make(map[string]struct{}, len(results)+len(failures))
	for _, r := range results {
		done[r.Query] = struct{}{}
	}
	for _, f := range failures {
		done[f.Company] = struct{}{}
	}
	return done
}

// Article is one news item returned by the news search API
type Article struct {
	Company      string
	Title        string
	OriginalLink string
	Link         string
	Description  string
	PubDate      string
}

// Summary counts what a crawl run did
type Summary struct {
	Total     int
	Skipped   int
	Succeeded int
	Failed    int
	Flushes   int
	Snapshots int
	Elapsed   time.Duration
}

// Processed returns the number of companies fetched in this run
func (s Summary) Processed() int {
	return s.Succeeded + s.Failed
}
