package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"reviewscraper/pkg/models"
)

// ProgressDisplay renders the crawl as a progress line. On an interactive
// sink the line is redrawn in place; otherwise one plain line is appended
// per company so the log can be tailed.
type ProgressDisplay struct {
	mu          sync.Mutex
	out         io.Writer
	interactive bool
	label       string

	total     int
	done      int
	failed    int
	current   string
	startTime time.Time
	now       func() time.Time
}

// NewProgressDisplay creates a progress display writing to out
func NewProgressDisplay(out io.Writer, interactive bool, label string) *ProgressDisplay {
	return &ProgressDisplay{
		out:         out,
		interactive: interactive,
		label:       label,
		startTime:   time.Now(),
		now:         time.Now,
	}
}

func (p *ProgressDisplay) RunStarted(total, skipped int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.total = total
	p.done = skipped
	p.startTime = p.now()
	if skipped > 0 {
		p.printf("%s: resuming, %d of %d already done\n", p.label, skipped, total)
	}
}

func (p *ProgressDisplay) ItemStarted(pos, total int, company string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = company
	if p.interactive {
		p.printLine()
	}
}

func (p *ProgressDisplay) ItemFinished(pos, total int, company string, err error, elapsed time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done++
	if err != nil {
		p.failed++
	}
	p.current = company
	p.printLine()
}

func (p *ProgressDisplay) Saved(pos int, snapshot bool, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err != nil {
		p.printf("\n%s save at %d failed: %v\n", Red("✗"), pos, err)
		return
	}
	if snapshot && !p.interactive {
		p.printf("%s: snapshot written at %d\n", p.label, pos)
	}
}

func (p *ProgressDisplay) RunFinished(summary models.Summary, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.interactive {
		p.printf("\n")
	}
	status := "done"
	if err != nil {
		status = fmt.Sprintf("stopped (%v)", err)
	}
	p.printf("%s: %s, %d succeeded, %d failed, %d skipped in %s\n",
		p.label, status, summary.Succeeded, summary.Failed, summary.Skipped,
		formatDuration(summary.Elapsed))
}

// printLine prints the progress line
func (p *ProgressDisplay) printLine() {
	percent := 0
	if p.total > 0 {
		percent = p.done * 100 / p.total
	}

	const barWidth = 20
	filled := 0
	if p.total > 0 {
		filled = p.done * barWidth / p.total
	}
	bar := strings.Repeat("━", filled) + strings.Repeat("─", barWidth-filled)

	elapsed := p.now().Sub(p.startTime)
	line := fmt.Sprintf("%s: %3d%% [%s] %d/%d [%s<%s]",
		p.label, percent, bar, p.done, p.total, formatDuration(elapsed), p.eta(elapsed))
	if p.current != "" {
		line += " " + p.current
	}
	if p.failed > 0 {
		errs := fmt.Sprintf("%d errors", p.failed)
		if p.interactive {
			errs = Red(errs)
		}
		line += " • " + errs
	}

	if p.interactive {
		fmt.Fprintf(p.out, "\r%s\r%s", strings.Repeat(" ", 120), line)
		return
	}
	fmt.Fprintln(p.out, line)
}

func (p *ProgressDisplay) printf(format string, args ...interface{}) {
	fmt.Fprintf(p.out, format, args...)
}

// eta estimates time remaining from the pace so far
func (p *ProgressDisplay) eta(elapsed time.Duration) string {
	if p.done == 0 || elapsed <= 0 {
		return "?"
	}
	remaining := p.total - p.done
	if remaining <= 0 {
		return "0s"
	}
	perItem := elapsed / time.Duration(p.done)
	return formatDuration(perItem * time.Duration(remaining))
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
	}
}
