package ui

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"reviewscraper/pkg/config"
	"reviewscraper/pkg/models"
)

func TestProgressDisplayNonInteractive(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressDisplay(&buf, false, "기업별 크롤링")
	clock := time.Unix(0, 0)
	p.now = func() time.Time { return clock }

	p.RunStarted(4, 1)
	p.ItemStarted(2, 4, "Beta")
	clock = clock.Add(2 * time.Second)
	p.ItemFinished(2, 4, "Beta", nil, time.Second)
	p.ItemFinished(3, 4, "Gamma", errors.New("no results"), time.Second)
	p.Saved(3, true, nil)
	p.RunFinished(models.Summary{Succeeded: 1, Failed: 1, Skipped: 1, Elapsed: 3 * time.Second}, nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[0], "resuming, 1 of 4 already done")
	assert.Contains(t, lines[1], "2/4")
	assert.Contains(t, lines[1], "Beta")
	assert.Contains(t, lines[2], "3/4")
	assert.Contains(t, lines[2], "1 errors")
	assert.NotContains(t, lines[2], "\033[")
	assert.Contains(t, lines[3], "snapshot written at 3")
	assert.Contains(t, lines[4], "done, 1 succeeded, 1 failed, 1 skipped in 3s")
	assert.NotContains(t, buf.String(), "\r")
}

func TestProgressDisplayInteractiveRedraws(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressDisplay(&buf, true, "crawl")

	p.RunStarted(2, 0)
	p.ItemStarted(1, 2, "Alpha")
	p.ItemFinished(1, 2, "Alpha", nil, time.Millisecond)

	assert.Contains(t, buf.String(), "\r")
	assert.Contains(t, buf.String(), "1/2")
}

func TestProgressDisplayStoppedRun(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressDisplay(&buf, false, "crawl")

	p.Saved(10, false, errors.New("disk full"))
	p.RunFinished(models.Summary{}, errors.New("context canceled"))

	assert.Contains(t, buf.String(), "save at 10 failed: disk full")
	assert.Contains(t, buf.String(), "stopped (context canceled)")
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "42s", formatDuration(42*time.Second))
	assert.Equal(t, "2m5s", formatDuration(125*time.Second))
	assert.Equal(t, "1h30m", formatDuration(90*time.Minute))
}

func TestOpenProgressSinkAppendsWhenNotTerminal(t *testing.T) {
	dir := t.TempDir()
	stdout, err := os.Create(filepath.Join(dir, "stdout"))
	require.NoError(t, err)
	defer stdout.Close()

	logPath := filepath.Join(dir, "progress.log")
	require.NoError(t, os.WriteFile(logPath, []byte("earlier run\n"), 0644))

	sink, err := OpenProgressSink(stdout, logPath)
	require.NoError(t, err)
	assert.False(t, sink.Interactive)

	_, err = sink.Write([]byte("this run\n"))
	require.NoError(t, err)
	require.NoError(t, sink.Close())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Equal(t, "earlier run\nthis run\n", string(data))
}

type recordingSender struct {
	titles []string
}

func (r *recordingSender) Send(title, message string) error {
	r.titles = append(r.titles, title)
	return nil
}

func TestNotifier(t *testing.T) {
	sender := &recordingSender{}
	n := NewNotifier(config.NotificationConfig{Enabled: true, OnComplete: true, OnError: false}, sender)

	n.RunFinished(models.Summary{Succeeded: 3}, nil)
	n.RunFinished(models.Summary{}, errors.New("interrupted"))

	assert.Equal(t, []string{"reviewscraper finished"}, sender.titles)
}

type countingReporter struct {
	NopReporter
	finished int
}

func (c *countingReporter) RunFinished(summary models.Summary, err error) { c.finished++ }

func TestMultiReporter(t *testing.T) {
	a, b := &countingReporter{}, &countingReporter{}
	var r Reporter = MultiReporter{a, b}

	r.RunStarted(1, 0)
	r.RunFinished(models.Summary{}, nil)

	assert.Equal(t, 1, a.finished)
	assert.Equal(t, 1, b.finished)
}
