package scraper

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"reviewscraper/pkg/logger"
	"reviewscraper/pkg/models"
	"reviewscraper/pkg/ratelimit"
	"reviewscraper/pkg/ui"
)

// Options control the periodic persistence of a run
type Options struct {
	// FlushEvery overwrites the canonical files every N work-list positions
	FlushEvery int

	// SnapshotEvery writes a position-suffixed copy every M positions
	SnapshotEvery int
}

// Runner drives one crawl over a work list, strictly one company at a time
type Runner struct {
	fetcher  Fetcher
	store    Store
	pacer    ratelimit.Limiter
	reporter ui.Reporter
	opts     Options
	logger   logger.Logger
	now      func() time.Time
}

// New creates a Runner. pacer is waited on after every fetched company.
func New(fetcher Fetcher, store Store, pacer ratelimit.Limiter, opts Options) *Runner {
	if pacer == nil {
		pacer = ratelimit.Nop{}
	}
	return &Runner{
		fetcher:  fetcher,
		store:    store,
		pacer:    pacer,
		reporter: ui.NopReporter{},
		opts:     opts,
		logger:   logger.GetLogger().WithField("component", "scraper"),
		now:      time.Now,
	}
}

// SetReporter sets the progress reporter
func (r *Runner) SetReporter(rep ui.Reporter) {
	if rep == nil {
		rep = ui.NopReporter{}
	}
	r.reporter = rep
}

// SetLogger replaces the runner's logger
func (r *Runner) SetLogger(l logger.Logger) {
	r.logger = l
}

// run holds the state owned by a single Run call
type run struct {
	results  []models.Result
	failures []models.Failure
	done     map[string]struct{}
	summary  models.Summary
	started  time.Time
}

// Run processes every company of items that is not already in the Done-set
// of the store. Failures are recorded, never retried. The canonical files
// are flushed at every FlushEvery-th position, snapshotted at every
// SnapshotEvery-th position and flushed once more at the end.
//
// When ctx is cancelled the company being fetched is not recorded, the
// accumulated state is flushed and ctx.Err() is returned.
func (r *Runner) Run(ctx context.Context, items []string) (models.Summary, error) {
	if r.opts.FlushEvery <= 0 || r.opts.SnapshotEvery <= 0 {
		return models.Summary{}, fmt.Errorf("flush and snapshot periods must be positive")
	}
	if r.opts.SnapshotEvery%r.opts.FlushEvery != 0 {
		return models.Summary{}, fmt.Errorf("snapshot period %d is not a multiple of flush period %d", r.opts.SnapshotEvery, r.opts.FlushEvery)
	}

	results, failures, err := r.store.Load()
	if err != nil {
		return models.Summary{}, fmt.Errorf("failed to load progress: %w", err)
	}

	st := &run{
		results:  results,
		failures: failures,
		done:     r.store.DoneSet(results, failures),
		started:  r.now(),
	}
	st.summary.Total = len(items)

	skipped := 0
	for _, item := range items {
		if _, ok := st.done[item]; ok {
			skipped++
		}
	}

	r.logger.InfoWithFields("Crawl started", map[string]interface{}{
		"total":    len(items),
		"done":     skipped,
		"results":  len(results),
		"failures": len(failures),
	})
	r.reporter.RunStarted(len(items), skipped)

	for i, company := range items {
		pos := i + 1
		if _, ok := st.done[company]; ok {
			st.summary.Skipped++
			continue
		}
		if err := ctx.Err(); err != nil {
			return r.interrupt(st, pos, err)
		}

		r.reporter.ItemStarted(pos, len(items), company)
		start := r.now()
		result, fetchErr := r.fetcher.Fetch(ctx, company)
		elapsed := r.now().Sub(start)
		if fetchErr == nil && result == nil {
			fetchErr = fmt.Errorf("no result")
		}

		if err := ctx.Err(); err != nil {
			return r.interrupt(st, pos, err)
		}

		if fetchErr != nil {
			st.failures = append(st.failures, models.Failure{Company: company, Error: fetchErr.Error()})
			st.summary.Failed++
		} else {
			if result.Query == "" {
				result.Query = company
			}
			st.results = append(st.results, *result)
			st.summary.Succeeded++
		}
		st.done[company] = struct{}{}

		logger.LogFetch(r.logger, company, pos, len(items), elapsed, fetchErr)
		r.reporter.ItemFinished(pos, len(items), company, fetchErr, elapsed)

		if pos%r.opts.FlushEvery == 0 {
			r.save(st, pos, false)
		}
		if pos%r.opts.SnapshotEvery == 0 {
			r.save(st, pos, true)
		}

		if err := r.pacer.Wait(ctx); err != nil {
			return r.interrupt(st, pos, err)
		}
	}

	st.summary.Elapsed = r.now().Sub(st.started)
	if err := r.store.Save(st.results, st.failures, ""); err != nil {
		err = fmt.Errorf("final flush failed: %w", err)
		r.reporter.Saved(len(items), false, err)
		r.reporter.RunFinished(st.summary, err)
		return st.summary, err
	}
	st.summary.Flushes++
	r.reporter.Saved(len(items), false, nil)

	logger.LogRunSummary(r.logger, "crawl", map[string]int{
		"total":     st.summary.Total,
		"skipped":   st.summary.Skipped,
		"succeeded": st.summary.Succeeded,
		"failed":    st.summary.Failed,
	}, st.summary.Elapsed)
	r.reporter.RunFinished(st.summary, nil)
	return st.summary, nil
}

// save writes the canonical files or a snapshot pair. Periodic failures are
// reported and the run continues; the next flush rewrites everything.
func (r *Runner) save(st *run, pos int, snapshot bool) {
	suffix := ""
	if snapshot {
		suffix = strconv.Itoa(pos)
	}

	err := r.store.Save(st.results, st.failures, suffix)
	if err != nil {
		r.logger.WithError(err).WarnWithFields("Periodic save failed", map[string]interface{}{
			"position": pos,
			"snapshot": snapshot,
		})
	} else if snapshot {
		st.summary.Snapshots++
	} else {
		st.summary.Flushes++
	}
	r.reporter.Saved(pos, snapshot, err)
}

// interrupt flushes what has been accumulated and reports cause
func (r *Runner) interrupt(st *run, pos int, cause error) (models.Summary, error) {
	st.summary.Elapsed = r.now().Sub(st.started)

	if err := r.store.Save(st.results, st.failures, ""); err != nil {
		r.logger.WithError(err).Error("Failed to save progress after interruption")
	} else {
		st.summary.Flushes++
	}

	r.logger.WarnWithFields("Crawl interrupted", map[string]interface{}{
		"position":  pos,
		"succeeded": st.summary.Succeeded,
		"failed":    st.summary.Failed,
	})
	r.reporter.RunFinished(st.summary, cause)
	return st.summary, cause
}
