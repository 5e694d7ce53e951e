package storage

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Manager owns an output directory and writes files into it atomically
type Manager struct {
	outputDir string
	mu        sync.Mutex
}

// NewManager creates a new storage manager, creating outputDir if needed
func NewManager(outputDir string) (*Manager, error) {
	if outputDir == "" {
		outputDir = "."
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &Manager{outputDir: outputDir}, nil
}

// Path returns the location of name inside the output directory
func (m *Manager) Path(name string) string {
	return filepath.Join(m.outputDir, name)
}

// Exists reports whether name exists in the output directory
func (m *Manager) Exists(name string) bool {
	_, err := os.Stat(m.Path(name))
	return err == nil
}

// Open opens name for reading. The error wraps os.ErrNotExist when the file
// is missing.
func (m *Manager) Open(name string) (*os.File, error) {
	return os.Open(m.Path(name))
}

// WriteFile writes name through write. Readers never observe a partial
// file: content goes to a temporary file in the same directory that is
// synced and then renamed over the target.
func (m *Manager) WriteFile(name string, write func(w io.Writer) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	target := m.Path(name)
	tmp, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tempFile := tmp.Name()

	bw := bufio.NewWriter(tmp)
	if err := write(bw); err != nil {
		tmp.Close()
		os.Remove(tempFile)
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := bw.Flush(); err != nil {
		tmp.Close()
		os.Remove(tempFile)
		return fmt.Errorf("failed to flush %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tempFile)
		return fmt.Errorf("failed to sync %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Chmod(tempFile, 0644); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := os.Rename(tempFile, target); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}
	return nil
}

// Glob returns the sorted file names in the output directory matching pattern
func (m *Manager) Glob(pattern string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(m.outputDir, pattern))
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	names := make([]string, 0, len(matches))
	for _, match := range matches {
		names = append(names, filepath.Base(match))
	}
	sort.Strings(names)
	return names, nil
}

// GetOutputDir returns the output directory path
func (m *Manager) GetOutputDir() string {
	return m.outputDir
}
