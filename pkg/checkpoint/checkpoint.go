package checkpoint

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"reviewscraper/pkg/logger"
	"reviewscraper/pkg/models"
	"reviewscraper/pkg/storage"
)

// Column names of the results and error tables. The Korean names match the
// files produced by earlier runs so that those files resume cleanly.
const (
	ColCompanyID     = "company_id"
	ColName          = "name"
	ColSearchRating  = "search_rating"
	ColReviewCount   = "review_count"
	ColOverallRating = "overall_rating"
	ColQuery         = "검색기업명"

	ColCompany = "기업명"
	ColError   = "error"
)

var fixedColumns = []string{ColCompanyID, ColName, ColSearchRating, ColReviewCount, ColOverallRating}

const bom = "\ufeff"

// Store persists the results and error tables of a crawl
type Store struct {
	storage      *storage.Manager
	progressFile string
	errorFile    string
	logger       logger.Logger
}

// NewStore creates a Store writing progressFile and errorFile through s
func NewStore(s *storage.Manager, progressFile, errorFile string) *Store {
	return &Store{
		storage:      s,
		progressFile: progressFile,
		errorFile:    errorFile,
		logger:       logger.GetLogger().WithField("component", "checkpoint"),
	}
}

// SetLogger replaces the store's logger
func (s *Store) SetLogger(l logger.Logger) {
	s.logger = l
}

// Load reads both canonical tables. A missing file yields an empty table.
func (s *Store) Load() ([]models.Result, []models.Failure, error) {
	results, err := s.loadResults()
	if err != nil {
		return nil, nil, err
	}
	failures, err := s.loadFailures()
	if err != nil {
		return nil, nil, err
	}

	s.logger.InfoWithFields("Progress loaded", map[string]interface{}{
		"results":  len(results),
		"failures": len(failures),
	})
	return results, failures, nil
}

// Save writes both tables. With an empty suffix the canonical files are
// overwritten; otherwise a suffix-qualified snapshot pair is written and the
// canonical files are left alone.
func (s *Store) Save(results []models.Result, failures []models.Failure, suffix string) error {
	progressName, errorName := s.names(suffix)

	if err := s.storage.WriteFile(progressName, func(w io.Writer) error {
		return writeResults(w, results)
	}); err != nil {
		return fmt.Errorf("failed to save results: %w", err)
	}
	if err := s.storage.WriteFile(errorName, func(w io.Writer) error {
		return writeFailures(w, failures)
	}); err != nil {
		return fmt.Errorf("failed to save errors: %w", err)
	}

	logger.LogFlush(s.logger, s.storage.Path(progressName), len(results), len(failures))
	return nil
}

// DoneSet returns the company names that need no further processing
func (s *Store) DoneSet(results []models.Result, failures []models.Failure) map[string]struct{} {
	return models.DoneSet(results, failures)
}

// Exists reports whether either canonical table is on disk
func (s *Store) Exists() bool {
	return s.storage.Exists(s.progressFile) || s.storage.Exists(s.errorFile)
}

// Paths returns the progress and error file paths for suffix
func (s *Store) Paths(suffix string) (string, string) {
	progressName, errorName := s.names(suffix)
	return s.storage.Path(progressName), s.storage.Path(errorName)
}

// Snapshots returns the names of snapshot results files on disk
func (s *Store) Snapshots() ([]string, error) {
	ext := filepath.Ext(s.progressFile)
	return s.storage.Glob(strings.TrimSuffix(s.progressFile, ext) + "_*" + ext)
}

func (s *Store) names(suffix string) (string, string) {
	return SnapshotName(s.progressFile, suffix), SnapshotName(s.errorFile, suffix)
}

// SnapshotName inserts _suffix before the extension of name
func SnapshotName(name, suffix string) string {
	if suffix == "" {
		return name
	}
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + "_" + suffix + ext
}

func (s *Store) loadResults() ([]models.Result, error) {
	header, rows, err := s.readTable(s.progressFile)
	if err != nil || header == nil {
		return nil, err
	}

	results := make([]models.Result, 0, len(rows))
	for _, row := range rows {
		var r models.Result
		for i, col := range header {
			value := ""
			if i < len(row) {
				value = row[i]
			}
			switch col {
			case ColCompanyID:
				r.CompanyID = models.Str(value)
			case ColName:
				r.Name = models.Str(value)
			case ColSearchRating:
				r.SearchRating = models.Str(value)
			case ColReviewCount:
				r.ReviewCount = models.Str(value)
			case ColOverallRating:
				r.OverallRating = models.Str(value)
			case ColQuery:
				r.Query = value
			default:
				if r.Stats == nil {
					r.Stats = make(map[string]string)
				}
				r.Stats[col] = value
			}
		}
		results = append(results, r)
	}
	return results, nil
}

func (s *Store) loadFailures() ([]models.Failure, error) {
	header, rows, err := s.readTable(s.errorFile)
	if err != nil || header == nil {
		return nil, err
	}

	failures := make([]models.Failure, 0, len(rows))
	for _, row := range rows {
		var f models.Failure
		for i, col := range header {
			if i >= len(row) {
				break
			}
			switch col {
			case ColCompany:
				f.Company = row[i]
			case ColError:
				f.Error = row[i]
			}
		}
		failures = append(failures, f)
	}
	return failures, nil
}

// readTable returns a nil header when the file does not exist or is empty
func (s *Store) readTable(name string) ([]string, [][]string, error) {
	file, err := s.storage.Open(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer file.Close()

	header, rows, err := readCSV(file)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return header, rows, nil
}

func readCSV(r io.Reader) ([]string, [][]string, error) {
	br := bufio.NewReader(r)
	if prefix, err := br.Peek(len(bom)); err == nil && string(prefix) == bom {
		br.Discard(len(bom))
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, nil
	}
	return records[0], records[1:], nil
}

// ResultColumns returns the results table header for results: the fixed
// fields, the sorted stat labels, then the query column
func ResultColumns(results []models.Result) []string {
	cols := append([]string{}, fixedColumns...)
	cols = append(cols, models.StatLabels(results)...)
	return append(cols, ColQuery)
}

func writeResults(w io.Writer, results []models.Result) error {
	if _, err := io.WriteString(w, bom); err != nil {
		return err
	}

	labels := models.StatLabels(results)
	cw := csv.NewWriter(w)
	if err := cw.Write(ResultColumns(results)); err != nil {
		return err
	}

	for _, r := range results {
		row := []string{
			models.Value(r.CompanyID),
			models.Value(r.Name),
			models.Value(r.SearchRating),
			models.Value(r.ReviewCount),
			models.Value(r.OverallRating),
		}
		for _, label := range labels {
			row = append(row, r.Stats[label])
		}
		row = append(row, r.Query)
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func writeFailures(w io.Writer, failures []models.Failure) error {
	if _, err := io.WriteString(w, bom); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{ColCompany, ColError}); err != nil {
		return err
	}
	for _, f := range failures {
		if err := cw.Write([]string{f.Company, f.Error}); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
