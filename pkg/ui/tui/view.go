package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// View renders the entire TUI
func (m *Model) View() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	width := (m.width - 4) / 2

	left := lipgloss.JoinVertical(lipgloss.Left,
		m.renderStatsPanel(width),
		m.renderCurrentPanel(width),
	)
	right := lipgloss.JoinVertical(lipgloss.Left,
		m.renderRecentPanel(width),
		m.renderLogsPanel(width),
	)

	sections := []string{
		m.renderLogo(),
		lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right),
	}

	if m.showHelp {
		sections = append(sections, m.renderHelp())
	} else {
		sections = append(sections, helpStyle.Render("Press ? for help, q to stop"))
	}

	return baseStyle.Width(m.width).Height(m.height).Render(
		lipgloss.JoinVertical(lipgloss.Left, sections...),
	)
}

func (m *Model) renderLogo() string {
	logo := `
╔═══════════════════════════════════════╗
║   R E V I E W   S C R A P E R         ║
║   company ratings, one page at a time ║
╚═══════════════════════════════════════╝`

	return logoStyle.Width(m.width).Render(logo)
}

func stat(label, value string) string {
	return fmt.Sprintf("%s %s", statsLabelStyle.Render(label), value)
}

func (m *Model) renderStatsPanel(width int) string {
	title := titleStyle.Render(" " + strings.ToUpper(m.label) + " ")

	resolved := m.skipped + m.succeeded + m.failed
	failRate := 0.0
	if processed := m.succeeded + m.failed; processed > 0 {
		failRate = float64(m.failed) / float64(processed) * 100
	}

	stats := []string{
		m.progress.ViewAs(m.percent()),
		stat("Resolved:", statsValueStyle.Render(fmt.Sprintf("%d/%d", resolved, m.total))),
		stat("Succeeded:", successStyle.Render(fmt.Sprintf("%d", m.succeeded))),
		stat("Failed:", failureRateStyle(failRate).Render(fmt.Sprintf("%d (%.0f%%)", m.failed, failRate))),
		stat("Skipped:", mutedStyle.Render(fmt.Sprintf("%d", m.skipped))),
		stat("Saves:", statsValueStyle.Render(fmt.Sprintf("%d flushes, %d snapshots", m.flushes, m.snapshots))),
		stat("Session Time:", statsValueStyle.Render(formatDuration(m.now().Sub(m.startTime)))),
		stat("ETA:", statsValueStyle.Render(formatDuration(m.eta()))),
	}

	if m.saveErrs > 0 {
		stats = append(stats, errorStyle.Render(fmt.Sprintf("%d saves failed", m.saveErrs)))
	}
	if m.stopping && !m.finished {
		stats = append(stats, warningStyle.Render("Stopping..."))
	}

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, lipgloss.JoinVertical(lipgloss.Left, stats...)),
	)
}

func (m *Model) renderCurrentPanel(width int) string {
	title := titleStyle.Render(" NOW FETCHING ")

	var content string
	switch {
	case m.finished && m.runErr != nil:
		content = errorStyle.Render("Stopped: " + m.runErr.Error())
	case m.finished:
		content = successStyle.Render("Done")
	case m.current == "":
		content = mutedStyle.Render("Waiting...")
	default:
		content = fmt.Sprintf("%s %s %s",
			m.spinner.View(),
			currentStyle.Render(fmt.Sprintf("#%d %s", m.currentPos, m.current)),
			mutedStyle.Render(formatDuration(m.now().Sub(m.currentStart))),
		)
	}

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, content),
	)
}

func (m *Model) renderRecentPanel(width int) string {
	title := titleStyle.Render(" RECENT ")

	if len(m.recent) == 0 {
		return panelStyle.Width(width).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, mutedStyle.Render("Nothing fetched yet")),
		)
	}

	items := make([]string, 0, len(m.recent))
	for i := len(m.recent) - 1; i >= 0; i-- {
		r := m.recent[i]
		mark := successStyle.Render("✓")
		detail := formatDuration(r.Elapsed)
		if r.Err != nil {
			mark = errorStyle.Render("✗")
			detail = truncate(r.Err.Error(), width-30)
		}
		items = append(items, recentStyle.Render(fmt.Sprintf("%s #%d %s  %s", mark, r.Pos, r.Company, detail)))
	}

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, lipgloss.JoinVertical(lipgloss.Left, items...)),
	)
}

func (m *Model) renderLogsPanel(width int) string {
	title := titleStyle.Render(" LOGS ")

	start := len(m.logMessages) - 10
	if start < 0 {
		start = 0
	}

	var logs []string
	for _, log := range m.logMessages[start:] {
		timestamp := logTimestampStyle.Render(log.Time.Format("15:04:05"))
		level := lipgloss.NewStyle().Foreground(log.Color).Bold(true).Render(fmt.Sprintf("[%-7s]", log.Level))
		message := logMessageStyle.Render(truncate(log.Message, width-25))
		logs = append(logs, fmt.Sprintf("%s %s %s", timestamp, level, message))
	}

	content := strings.Join(logs, "\n")
	if content == "" {
		content = mutedStyle.Render("No logs yet...")
	}

	logsHeight := m.height - 30
	if logsHeight < 5 {
		logsHeight = 5
	}

	return panelStyle.Width(width).Height(logsHeight).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, content),
	)
}

func (m *Model) renderHelp() string {
	help := `
  Keys:
    q/Q      - Stop the crawl after saving progress
    ctrl+l   - Clear logs
    ?        - Toggle this help

  Recent:
    ` + successStyle.Render("✓") + `        - Company fetched
    ` + errorStyle.Render("✗") + `        - Company recorded as an error
`

	return panelStyle.Width(m.width).Render(help)
}

// truncate shortens s to at most n runes
func truncate(s string, n int) string {
	if n < 4 {
		n = 4
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d < 0 {
		return "00:00"
	}

	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60

	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
