// Package jobplanet fetches company review statistics from Jobplanet.
package jobplanet

import (
	"context"
	stderrors "errors"
	"net/url"
	"strings"
	"time"

	"reviewscraper/pkg/browser"
	"reviewscraper/pkg/config"
	"reviewscraper/pkg/errors"
	"reviewscraper/pkg/logger"
	"reviewscraper/pkg/models"
)

// searchURLFragment must appear in the URL once the search page has settled
const searchURLFragment = "/search/companies"

// Options locate the site and bound every wait
type Options struct {
	BaseURL    string
	SearchPath string
	DetailPath string

	WaitTimeout time.Duration
	URLTimeout  time.Duration
}

// OptionsFromConfig builds Options from the site and browser sections
func OptionsFromConfig(site *config.SiteConfig, b *config.BrowserConfig) Options {
	return Options{
		BaseURL:     strings.TrimRight(site.BaseURL, "/"),
		SearchPath:  site.SearchPath,
		DetailPath:  site.DetailPath,
		WaitTimeout: b.WaitTimeout,
		URLTimeout:  b.URLTimeout,
	}
}

// Fetcher resolves one company name into a result record
type Fetcher struct {
	open   browser.Factory
	opts   Options
	logger logger.Logger
}

// NewFetcher creates a Fetcher opening sessions through open
func NewFetcher(open browser.Factory, opts Options) *Fetcher {
	return &Fetcher{
		open:   open,
		opts:   opts,
		logger: logger.GetLogger().WithField("component", "jobplanet"),
	}
}

// SetLogger replaces the fetcher's logger
func (f *Fetcher) SetLogger(l logger.Logger) {
	f.logger = l
}

// SearchURL returns the search page address for company
func (f *Fetcher) SearchURL(company string) string {
	return f.opts.BaseURL + f.opts.SearchPath + escapeQuery(company)
}

// DetailURL returns the company page address for id
func (f *Fetcher) DetailURL(id string) string {
	return f.opts.BaseURL + f.opts.DetailPath + id
}

// escapeQuery percent-encodes s with spaces as %20
func escapeQuery(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// Fetch searches for company, takes the first candidate and, when it has an
// id, merges the statistics of its detail page. Exactly one browser session
// is opened and it is closed on every return path.
func (f *Fetcher) Fetch(ctx context.Context, company string) (*models.Result, error) {
	session, err := f.open(ctx)
	if err != nil {
		return nil, errors.Transport(errors.StageSearch, company, err)
	}
	defer session.Close()

	candidates, err := f.search(session, company)
	if err != nil {
		return nil, err
	}

	chosen, ok := SelectCandidate(candidates)
	if !ok {
		return nil, errors.NoResults(company)
	}

	result := &models.Result{
		CompanyID:    chosen.CompanyID,
		Name:         chosen.Name,
		SearchRating: chosen.Rating,
		Query:        company,
	}

	if chosen.CompanyID == nil {
		f.logger.WithField("company", company).Debug("First candidate has no company id, skipping detail page")
		return result, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stats, err := f.detail(session, company, *chosen.CompanyID)
	if err != nil {
		return nil, err
	}
	result.ReviewCount = stats.ReviewCount
	result.OverallRating = stats.OverallRating
	if len(stats.Labels) > 0 {
		result.Stats = stats.Labels
	}
	return result, nil
}

func (f *Fetcher) search(s browser.Session, company string) ([]models.Candidate, error) {
	if err := s.Navigate(f.SearchURL(company)); err != nil {
		return nil, errors.Classify(errors.StageSearch, company, err)
	}
	if err := s.WaitURLContains(searchURLFragment, f.opts.URLTimeout); err != nil {
		return nil, waitFailure(errors.StageSearch, company, searchURLFragment, err)
	}
	if err := s.WaitPresent(SearchCardSelector, f.opts.WaitTimeout); err != nil {
		return nil, waitFailure(errors.StageSearch, company, SearchCardSelector, err)
	}

	html, err := s.HTML()
	if err != nil {
		return nil, errors.Classify(errors.StageSearch, company, err)
	}
	candidates, err := ParseCandidates(html)
	if err != nil {
		return nil, errors.Parse(errors.StageSearch, company, err)
	}

	f.logger.DebugWithFields("Search results parsed", map[string]interface{}{
		"company":    company,
		"candidates": len(candidates),
	})
	return candidates, nil
}

func (f *Fetcher) detail(s browser.Session, company, id string) (Stats, error) {
	if err := s.Navigate(f.DetailURL(id)); err != nil {
		return Stats{}, errors.Classify(errors.StageDetail, company, err)
	}
	if err := s.WaitPresent(DetailMarkerSelector, f.opts.WaitTimeout); err != nil {
		return Stats{}, waitFailure(errors.StageDetail, company, DetailMarkerSelector, err)
	}

	html, err := s.HTML()
	if err != nil {
		return Stats{}, errors.Classify(errors.StageDetail, company, err)
	}
	stats, err := ParseStats(html)
	if err != nil {
		return Stats{}, errors.Parse(errors.StageDetail, company, err)
	}
	return stats, nil
}

func waitFailure(stage errors.Stage, company, selector string, err error) error {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.Timeout(stage, company, selector, err)
	}
	return errors.Classify(stage, company, err)
}
