package ui

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// IsTerminal reports whether f is attached to an interactive terminal
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// ProgressSink is where the progress stream goes
type ProgressSink struct {
	io.Writer

	// Interactive is true when the writer is a terminal that supports
	// redrawing the current line
	Interactive bool

	closer io.Closer
}

// Close releases the log file, if one was opened
func (s *ProgressSink) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// OpenProgressSink returns stdout when it is a terminal, otherwise the file
// at logPath opened for appending
func OpenProgressSink(stdout *os.File, logPath string) (*ProgressSink, error) {
	if IsTerminal(stdout) {
		return &ProgressSink{Writer: stdout, Interactive: true}, nil
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open progress log: %w", err)
	}
	return &ProgressSink{Writer: f, closer: f}, nil
}
