package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"reviewscraper/pkg/models"
)

// RunStartedMsg is sent once the work list is known
type RunStartedMsg struct {
	Total   int
	Skipped int
}

// ItemStartedMsg is sent when a company fetch begins
type ItemStartedMsg struct {
	Pos     int
	Total   int
	Company string
}

// ItemFinishedMsg is sent when a company fetch ends
type ItemFinishedMsg struct {
	Pos     int
	Total   int
	Company string
	Err     error
	Elapsed time.Duration
}

// SavedMsg is sent after a progress store write
type SavedMsg struct {
	Pos      int
	Snapshot bool
	Err      error
}

// RunFinishedMsg is sent once the run ends
type RunFinishedMsg struct {
	Summary models.Summary
	Err     error
}

// LogMsg is sent to add a log message
type LogMsg struct {
	Level   string
	Message string
}

// TickMsg is sent periodically to refresh elapsed times
type TickMsg time.Time

// Update handles all messages and updates the model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.mu.Lock()
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = progressWidth(msg.Width)
		m.mu.Unlock()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case TickMsg:
		if m.Finished() {
			return m, nil
		}
		return m, tickCmd()

	case RunStartedMsg:
		m.StartRun(msg.Total, msg.Skipped)
		m.AddLogMessage("INFO", fmt.Sprintf("%d companies, %d already done", msg.Total, msg.Skipped))
		return m, nil

	case ItemStartedMsg:
		m.StartItem(msg.Pos, msg.Company)
		return m, nil

	case ItemFinishedMsg:
		m.FinishItem(msg.Pos, msg.Company, msg.Err, msg.Elapsed)
		if msg.Err != nil {
			m.AddLogMessage("WARN", msg.Company+": "+msg.Err.Error())
		}
		return m, nil

	case SavedMsg:
		m.RecordSave(msg.Snapshot, msg.Err)
		switch {
		case msg.Err != nil:
			m.AddLogMessage("ERROR", "Save failed: "+msg.Err.Error())
		case msg.Snapshot:
			m.AddLogMessage("SUCCESS", fmt.Sprintf("Snapshot written at %d", msg.Pos))
		}
		return m, nil

	case RunFinishedMsg:
		m.FinishRun(msg.Summary, msg.Err)
		if msg.Err != nil {
			m.AddLogMessage("ERROR", "Run stopped: "+msg.Err.Error())
		} else {
			m.AddLogMessage("SUCCESS", "Run finished")
		}
		return m, tea.Quit

	case LogMsg:
		m.AddLogMessage(msg.Level, msg.Message)
		return m, nil
	}

	return m, nil
}

// handleKeyPress handles keyboard input
func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "Q", "ctrl+c":
		if m.Finished() || m.onInterrupt == nil {
			return m, tea.Quit
		}
		if !m.stopping {
			m.stopping = true
			m.AddLogMessage("WARN", "Stopping, saving progress...")
			m.onInterrupt()
		}
		return m, nil

	case "?":
		m.showHelp = !m.showHelp
		return m, nil

	case "ctrl+l":
		m.mu.Lock()
		m.logMessages = nil
		m.mu.Unlock()
		return m, nil
	}

	return m, nil
}

func progressWidth(width int) int {
	w := (width-4)/2 - 12
	if w < 10 {
		return 10
	}
	return w
}

// tickCmd returns a command that sends a tick message
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
