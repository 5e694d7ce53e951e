// Package targets reads the list of companies to process.
package targets

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// Options select which rows of the input table become work items
type Options struct {
	// NameColumn holds the company name
	NameColumn string

	// OwnerColumn and OwnerValue filter rows by ownership tag. An empty
	// OwnerColumn keeps every row.
	OwnerColumn string
	OwnerValue  string
}

// Load reads the company list at path
func Load(path string, opts Options) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	names, err := Read(f, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return names, nil
}

// Read returns the company names of rows matching opts. Empty names are
// dropped and duplicates removed, keeping first-seen order.
func Read(r io.Reader, opts Options) ([]string, error) {
	br := bufio.NewReader(r)
	if prefix, err := br.Peek(3); err == nil && string(prefix) == "\ufeff" {
		br.Discard(3)
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	nameIdx, ok := index[opts.NameColumn]
	if !ok {
		return nil, fmt.Errorf("missing required column %q", opts.NameColumn)
	}
	ownerIdx := -1
	if opts.OwnerColumn != "" {
		i, ok := index[opts.OwnerColumn]
		if !ok {
			return nil, fmt.Errorf("missing required column %q", opts.OwnerColumn)
		}
		ownerIdx = i
	}

	get := func(rec []string, i int) string {
		if i < 0 || i >= len(rec) {
			return ""
		}
		return rec[i]
	}

	seen := make(map[string]struct{})
	var names []string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return names, nil
		}
		if err != nil {
			return nil, err
		}

		if ownerIdx >= 0 && get(rec, ownerIdx) != opts.OwnerValue {
			continue
		}
		name := get(rec, nameIdx)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
}

// Remaining returns items not present in done, preserving order, along with
// their 1-based positions in items
func Remaining(items []string, done map[string]struct{}) ([]string, []int) {
	var rest []string
	var positions []int
	for i, item := range items {
		if _, ok := done[item]; ok {
			continue
		}
		rest = append(rest, item)
		positions = append(positions, i+1)
	}
	return rest, positions
}
