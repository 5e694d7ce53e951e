package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"reviewscraper/pkg/models"
)

// TUI is a full-screen crawl dashboard. It implements ui.Reporter so the
// run driver can feed it directly.
type TUI struct {
	program *tea.Program
	model   *Model
}

// NewTUI creates a dashboard. onInterrupt is called when the user presses q.
func NewTUI(label string, onInterrupt func(), opts ...tea.ProgramOption) *TUI {
	model := NewModel(label, onInterrupt)
	if len(opts) == 0 {
		opts = []tea.ProgramOption{tea.WithAltScreen()}
	}

	return &TUI{
		program: tea.NewProgram(model, opts...),
		model:   model,
	}
}

// Start runs the dashboard until the run finishes or Stop is called
func (t *TUI) Start() error {
	_, err := t.program.Run()
	return err
}

// Stop stops the TUI gracefully
func (t *TUI) Stop() {
	t.program.Quit()
}

// Send sends a message to the TUI
func (t *TUI) Send(msg tea.Msg) {
	if t.program != nil {
		t.program.Send(msg)
	}
}

func (t *TUI) RunStarted(total, skipped int) {
	t.Send(RunStartedMsg{Total: total, Skipped: skipped})
}

func (t *TUI) ItemStarted(pos, total int, company string) {
	t.Send(ItemStartedMsg{Pos: pos, Total: total, Company: company})
}

func (t *TUI) ItemFinished(pos, total int, company string, err error, elapsed time.Duration) {
	t.Send(ItemFinishedMsg{Pos: pos, Total: total, Company: company, Err: err, Elapsed: elapsed})
}

func (t *TUI) Saved(pos int, snapshot bool, err error) {
	t.Send(SavedMsg{Pos: pos, Snapshot: snapshot, Err: err})
}

func (t *TUI) RunFinished(summary models.Summary, err error) {
	t.Send(RunFinishedMsg{Summary: summary, Err: err})
}

// Log sends a log message to the TUI
func (t *TUI) Log(level, format string, args ...interface{}) {
	t.Send(LogMsg{Level: level, Message: fmt.Sprintf(format, args...)})
}

// Finished reports whether the dashboard has seen the end of the run
func (t *TUI) Finished() bool {
	return t.model.Finished()
}
