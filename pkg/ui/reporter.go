package ui

import (
	"time"

	"reviewscraper/pkg/models"
)

// Reporter receives progress events from a crawl run. Calls arrive from the
// crawl goroutine in order.
type Reporter interface {
	// RunStarted is called once with the work list size and how many
	// companies are already done
	RunStarted(total, skipped int)

	ItemStarted(pos, total int, company string)

	// ItemFinished reports the outcome of one fetch; err is nil on success
	ItemFinished(pos, total int, company string, err error, elapsed time.Duration)

	// Saved reports a progress store write. snapshot distinguishes the
	// position-suffixed pair from the canonical files.
	Saved(pos int, snapshot bool, err error)

	// RunFinished is called once; err is non-nil when the run was
	// interrupted or the final save failed
	RunFinished(summary models.Summary, err error)
}

// NopReporter discards every event
type NopReporter struct{}

func (NopReporter) RunStarted(total, skipped int) {}
func (NopReporter) ItemStarted(pos, total int, company string) {}
func (NopReporter) Saved(pos int, snapshot bool, err error) {}
func (NopReporter) RunFinished(summary models.Summary, err error) {}
func (NopReporter) ItemFinished(pos, total int, company string, err error, elapsed time.Duration) {
}

// MultiReporter fans events out to several reporters
type MultiReporter []Reporter

func (m MultiReporter) RunStarted(total, skipped int) {
	for _, r := range m {
		r.RunStarted(total, skipped)
	}
}

func (m MultiReporter) ItemStarted(pos, total int, company string) {
	for _, r := range m {
		r.ItemStarted(pos, total, company)
	}
}

func (m MultiReporter) ItemFinished(pos, total int, company string, err error, elapsed time.Duration) {
	for _, r := range m {
		r.ItemFinished(pos, total, company, err, elapsed)
	}
}

func (m MultiReporter) Saved(pos int, snapshot bool, err error) {
	for _, r := range m {
		r.Saved(pos, snapshot, err)
	}
}

func (m MultiReporter) RunFinished(summary models.Summary, err error) {
	for _, r := range m {
		r.RunFinished(summary, err)
	}
}
