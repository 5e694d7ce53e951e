package tui

import (
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"reviewscraper/pkg/models"
)

// ItemRecord is one finished company shown in the recent panel
type ItemRecord struct {
	Pos     int
	Company string
	Err     error
	Elapsed time.Duration
}

// LogMessage represents a log entry
type LogMessage struct {
	Time    time.Time
	Level   string
	Message string
	Color   lipgloss.Color
}

// Model is the crawl dashboard state
type Model struct {
	spinner  spinner.Model
	progress progress.Model
	label    string

	total     int
	skipped   int
	succeeded int
	failed    int
	lastPos   int

	current      string
	currentPos   int
	currentStart time.Time

	recent    []ItemRecord
	maxRecent int

	flushes   int
	snapshots int
	saveErrs  int

	startTime time.Time
	finished  bool
	summary   *models.Summary
	runErr    error

	width          int
	height         int
	showHelp       bool
	stopping       bool
	logMessages    []LogMessage
	maxLogMessages int

	// onInterrupt is called when the user asks to stop the crawl
	onInterrupt func()
	now         func() time.Time

	mu sync.RWMutex
}

// NewModel creates a dashboard. onInterrupt may be nil.
func NewModel(label string, onInterrupt func()) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(neonCyan)

	p := progress.New(progress.WithDefaultGradient())
	p.Width = 40

	return &Model{
		spinner:        s,
		progress:       p,
		label:          label,
		maxRecent:      8,
		maxLogMessages: 50,
		startTime:      time.Now(),
		onInterrupt:    onInterrupt,
		now:            time.Now,
	}
}

// Init initializes the model
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tickCmd())
}

// StartRun records the work list size
func (m *Model) StartRun(total, skipped int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.total = total
	m.skipped = skipped
	m.startTime = m.now()
}

// StartItem marks company as the one being fetched
func (m *Model) StartItem(pos int, company string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.current = company
	m.currentPos = pos
	m.currentStart = m.now()
}

// FinishItem records the outcome of one fetch
func (m *Model) FinishItem(pos int, company string, err error, elapsed time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err != nil {
		m.failed++
	} else {
		m.succeeded++
	}
	m.lastPos = pos
	m.current = ""

	m.recent = append(m.recent, ItemRecord{Pos: pos, Company: company, Err: err, Elapsed: elapsed})
	if len(m.recent) > m.maxRecent {
		m.recent = m.recent[len(m.recent)-m.maxRecent:]
	}
}

// RecordSave counts a progress store write
func (m *Model) RecordSave(snapshot bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch {
	case err != nil:
		m.saveErrs++
	case snapshot:
		m.snapshots++
	default:
		m.flushes++
	}
}

// FinishRun stores the final summary
func (m *Model) FinishRun(summary models.Summary, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.finished = true
	m.summary = &summary
	m.runErr = err
	m.current = ""
}

// AddLogMessage adds a log message
func (m *Model) AddLogMessage(level, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.logMessages = append(m.logMessages, LogMessage{
		Time:    m.now(),
		Level:   level,
		Message: message,
		Color:   levelColor(level),
	})

	if len(m.logMessages) > m.maxLogMessages {
		m.logMessages = m.logMessages[len(m.logMessages)-m.maxLogMessages:]
	}
}

// Recent returns the most recently finished companies, oldest first
func (m *Model) Recent() []ItemRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()

	recent := make([]ItemRecord, len(m.recent))
	copy(recent, m.recent)
	return recent
}

// Counts returns the number of succeeded, failed and skipped companies
func (m *Model) Counts() (succeeded, failed, skipped int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.succeeded, m.failed, m.skipped
}

// Percent returns the share of the work list that is resolved
func (m *Model) Percent() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.percent()
}

func (m *Model) percent() float64 {
	if m.total == 0 {
		return 0
	}
	p := float64(m.skipped+m.succeeded+m.failed) / float64(m.total)
	if p > 1 {
		p = 1
	}
	return p
}

// ETA estimates the remaining time from the average fetch time so far
func (m *Model) ETA() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.eta()
}

func (m *Model) eta() time.Duration {
	processed := m.succeeded + m.failed
	remaining := m.total - m.skipped - processed
	if processed == 0 || remaining <= 0 {
		return 0
	}
	avg := m.now().Sub(m.startTime) / time.Duration(processed)
	return avg * time.Duration(remaining)
}

// Finished reports whether the run has ended
func (m *Model) Finished() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.finished
}
