package scraper

import (
	"context"
	"fmt"
	"testing"
	"time"

	"reviewscraper/pkg/checkpoint"
	"reviewscraper/pkg/errors"
	"reviewscraper/pkg/logger"
	"reviewscraper/pkg/models"
	"reviewscraper/pkg/storage"
	"reviewscraper/pkg/ui"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFetcher answers from a table; companies without an entry succeed
type fakeFetcher struct {
	failures map[string]error
	calls    []string
	hook     func(company string)
}

func (f *fakeFetcher) Fetch(ctx context.Context, company string) (*models.Result, error) {
	f.calls = append(f.calls, company)
	if f.hook != nil {
		f.hook(company)
	}
	if err, ok := f.failures[company]; ok {
		return nil, err
	}
	return &models.Result{
		CompanyID: models.Str("id-" + company),
		Name:      models.Str(company),
		Query:     company,
	}, nil
}

type saveCall struct {
	suffix   string
	results  int
	failures int
}

// memStore records every Save call
type memStore struct {
	results  []models.Result
	failures []models.Failure
	saves    []saveCall
	failOn   func(call int, suffix string) error
}

func (m *memStore) Load() ([]models.Result, []models.Failure, error) {
	return append([]models.Result(nil), m.results...), append([]models.Failure(nil), m.failures...), nil
}

func (m *memStore) Save(results []models.Result, failures []models.Failure, suffix string) error {
	m.saves = append(m.saves, saveCall{suffix: suffix, results: len(results), failures: len(failures)})
	if m.failOn != nil {
		if err := m.failOn(len(m.saves), suffix); err != nil {
			return err
		}
	}
	if suffix == "" {
		m.results = append([]models.Result(nil), results...)
		m.failures = append([]models.Failure(nil), failures...)
	}
	return nil
}

func (m *memStore) DoneSet(results []models.Result, failures []models.Failure) map[string]struct{} {
	return models.DoneSet(results, failures)
}

type countingPacer struct {
	waits int
}

func (p *countingPacer) Wait(ctx context.Context) error {
	p.waits++
	return ctx.Err()
}

type recordingReporter struct {
	ui.NopReporter
	started  []int
	saved    []error
	finished *models.Summary
	finalErr error
}

func (r *recordingReporter) RunStarted(total, skipped int) {
	r.started = []int{total, skipped}
}

func (r *recordingReporter) Saved(pos int, snapshot bool, err error) {
	r.saved = append(r.saved, err)
}

func (r *recordingReporter) RunFinished(summary models.Summary, err error) {
	r.finished = &summary
	r.finalErr = err
}

func newTestRunner(f Fetcher, s Store, p *countingPacer, n, m int) *Runner {
	r := New(f, s, p, Options{FlushEvery: n, SnapshotEvery: m})
	r.SetLogger(logger.NewNopLogger())
	return r
}

func companies(n int) []string {
	items := make([]string, n)
	for i := range items {
		items[i] = fmt.Sprintf("company-%02d", i+1)
	}
	return items
}

func TestRunRecordsSuccessAndFailure(t *testing.T) {
	fetcher := &fakeFetcher{failures: map[string]error{"B": errors.NoResults("B")}}
	store := &memStore{}
	pacer := &countingPacer{}
	runner := newTestRunner(fetcher, store, pacer, 2, 50)

	summary, err := runner.Run(context.Background(), []string{"A", "B", "C"})
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B", "C"}, fetcher.calls)
	assert.Equal(t, 3, pacer.waits)
	assert.Equal(t, []saveCall{
		{suffix: "", results: 1, failures: 1},
		{suffix: "", results: 2, failures: 1},
	}, store.saves)

	require.Len(t, store.results, 2)
	assert.Equal(t, "A", store.results[0].Query)
	assert.Equal(t, "C", store.results[1].Query)
	assert.Equal(t, []models.Failure{{Company: "B", Error: "no results"}}, store.failures)

	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 2, summary.Flushes)
	assert.Equal(t, 0, summary.Snapshots)
}

func TestRunFlushAndSnapshotCadence(t *testing.T) {
	store := &memStore{}
	runner := newTestRunner(&fakeFetcher{}, store, &countingPacer{}, 10, 50)

	summary, err := runner.Run(context.Background(), companies(100))
	require.NoError(t, err)

	var flushes, snapshots []int
	for _, s := range store.saves {
		if s.suffix == "" {
			flushes = append(flushes, s.results)
		} else {
			snapshots = append(snapshots, s.results)
			assert.Contains(t, []string{"50", "100"}, s.suffix)
		}
	}

	// ten periodic flushes plus the final one
	assert.Equal(t, []int{10, 20, 30, 40, 50, 60, 70, 80, 90, 100, 100}, flushes)
	assert.Equal(t, []int{50, 100}, snapshots)
	assert.Equal(t, 11, summary.Flushes)
	assert.Equal(t, 2, summary.Snapshots)
}

func TestRunSkipsDoneCompanies(t *testing.T) {
	store := &memStore{
		results:  []models.Result{{Query: "A"}},
		failures: []models.Failure{{Company: "C", Error: "no results"}},
	}
	fetcher := &fakeFetcher{}
	pacer := &countingPacer{}
	reporter := &recordingReporter{}
	runner := newTestRunner(fetcher, store, pacer, 2, 50)
	runner.SetReporter(reporter)

	summary, err := runner.Run(context.Background(), []string{"A", "B", "C", "D"})
	require.NoError(t, err)

	assert.Equal(t, []string{"B", "D"}, fetcher.calls)
	assert.Equal(t, 2, pacer.waits)
	assert.Equal(t, []int{4, 2}, reporter.started)
	assert.Equal(t, 2, summary.Skipped)

	// position 2 (B) and position 4 (D) trigger flushes, skipped positions do not
	assert.Equal(t, []saveCall{
		{suffix: "", results: 2, failures: 1},
		{suffix: "", results: 3, failures: 1},
		{suffix: "", results: 3, failures: 1},
	}, store.saves)
}

func TestRunIsIdempotent(t *testing.T) {
	store := &memStore{}
	first := &fakeFetcher{failures: map[string]error{"B": errors.NoResults("B")}}
	_, err := newTestRunner(first, store, &countingPacer{}, 10, 50).Run(context.Background(), []string{"A", "B"})
	require.NoError(t, err)

	second := &fakeFetcher{}
	summary, err := newTestRunner(second, store, &countingPacer{}, 10, 50).Run(context.Background(), []string{"A", "B"})
	require.NoError(t, err)

	assert.Empty(t, second.calls)
	assert.Equal(t, 2, summary.Skipped)
	assert.Len(t, store.results, 1)
	assert.Len(t, store.failures, 1)
}

func TestRunCancellationDropsInFlightCompany(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fetcher := &fakeFetcher{
		failures: map[string]error{"B": fmt.Errorf("browser closed")},
		hook: func(company string) {
			if company == "B" {
				cancel()
			}
		},
	}
	store := &memStore{}
	reporter := &recordingReporter{}
	runner := newTestRunner(fetcher, store, &countingPacer{}, 10, 50)
	runner.SetReporter(reporter)

	summary, err := runner.Run(ctx, []string{"A", "B", "C"})
	require.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, []string{"A", "B"}, fetcher.calls)
	require.Len(t, store.saves, 1)
	assert.Len(t, store.results, 1)
	assert.Empty(t, store.failures)
	assert.Equal(t, 1, summary.Succeeded)

	require.NotNil(t, reporter.finished)
	assert.ErrorIs(t, reporter.finalErr, context.Canceled)
}

func TestRunContinuesAfterPeriodicSaveFailure(t *testing.T) {
	store := &memStore{
		failOn: func(call int, suffix string) error {
			if call == 1 {
				return fmt.Errorf("disk full")
			}
			return nil
		},
	}
	reporter := &recordingReporter{}
	tl := logger.NewTestLogger()
	runner := newTestRunner(&fakeFetcher{}, store, &countingPacer{}, 1, 50)
	runner.SetLogger(tl)
	runner.SetReporter(reporter)

	summary, err := runner.Run(context.Background(), []string{"A", "B"})
	require.NoError(t, err)

	assert.Len(t, store.results, 2)
	assert.Equal(t, 2, summary.Flushes)
	require.Len(t, reporter.saved, 3)
	assert.Error(t, reporter.saved[0])
	assert.NoError(t, reporter.saved[2])
	assert.True(t, tl.HasMessage("Periodic save failed"))
}

func TestRunReturnsFinalSaveFailure(t *testing.T) {
	store := &memStore{
		failOn: func(call int, suffix string) error {
			return fmt.Errorf("read-only")
		},
	}
	reporter := &recordingReporter{}
	runner := newTestRunner(&fakeFetcher{}, store, &countingPacer{}, 10, 50)
	runner.SetReporter(reporter)

	_, err := runner.Run(context.Background(), []string{"A"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "final flush failed")
	assert.Error(t, reporter.finalErr)
}

func TestRunRejectsInvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		n, m int
	}{
		{"zero flush", 0, 50},
		{"zero snapshot", 10, 0},
		{"snapshot not a multiple of flush", 10, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := &fakeFetcher{}
			runner := newTestRunner(fetcher, &memStore{}, &countingPacer{}, tt.n, tt.m)
			_, err := runner.Run(context.Background(), []string{"A"})
			assert.Error(t, err)
			assert.Empty(t, fetcher.calls)
		})
	}
}

// nilFetcher answers every company with neither a result nor an error
type nilFetcher struct{}

func (nilFetcher) Fetch(ctx context.Context, company string) (*models.Result, error) {
	return nil, nil
}

func TestRunRecordsMissingResultAsFailure(t *testing.T) {
	store := &memStore{}
	runner := newTestRunner(nilFetcher{}, store, &countingPacer{}, 10, 50)

	summary, err := runner.Run(context.Background(), []string{"A", "B"})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Failed)
	assert.Empty(t, store.results)
	require.Len(t, store.failures, 2)
	assert.Equal(t, models.Failure{Company: "A", Error: "no result"}, store.failures[0])
}

func TestRunWithCheckpointStore(t *testing.T) {
	dir := t.TempDir()
	mgr, err := storage.NewManager(dir)
	require.NoError(t, err)
	store := checkpoint.NewStore(mgr, "progress.csv", "errors.csv")
	store.SetLogger(logger.NewNopLogger())

	fetcher := &fakeFetcher{failures: map[string]error{
		"company-03": errors.Timeout(errors.StageSearch, "company-03", "div.searchWrap", context.DeadlineExceeded),
	}}
	runner := newTestRunner(fetcher, store, &countingPacer{}, 2, 4)

	_, err = runner.Run(context.Background(), companies(5))
	require.NoError(t, err)

	results, failures, err := store.Load()
	require.NoError(t, err)
	assert.Len(t, results, 4)
	require.Len(t, failures, 1)
	assert.Equal(t, "company-03", failures[0].Company)

	snapshots, err := store.Snapshots()
	require.NoError(t, err)
	assert.NotEmpty(t, snapshots)

	// a second run over the same store fetches nothing
	again := &fakeFetcher{}
	_, err = newTestRunner(again, store, &countingPacer{}, 2, 4).Run(context.Background(), companies(5))
	require.NoError(t, err)
	assert.Empty(t, again.calls)
}

func TestRunElapsedUsesClock(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	runner := newTestRunner(&fakeFetcher{}, &memStore{}, &countingPacer{}, 10, 50)
	runner.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	summary, err := runner.Run(context.Background(), []string{"A"})
	require.NoError(t, err)
	assert.Greater(t, summary.Elapsed, time.Duration(0))
}

// pinnedStore reports extra companies as done on top of its tables
type pinnedStore struct {
	memStore
	pinned []string
}

func (p *pinnedStore) DoneSet(results []models.Result, failures []models.Failure) map[string]struct{} {
	done := models.DoneSet(results, failures)
	for _, c := range p.pinned {
		done[c] = struct{}{}
	}
	return done
}

func TestRunUsesStoreDoneSet(t *testing.T) {
	store := &pinnedStore{pinned: []string{"B"}}
	fetcher := &fakeFetcher{}
	runner := newTestRunner(fetcher, store, &countingPacer{}, 10, 50)

	summary, err := runner.Run(context.Background(), []string{"A", "B", "C"})
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "C"}, fetcher.calls)
	assert.Equal(t, 1, summary.Skipped)
}
