package scraper

import (
	"context"

	"reviewscraper/pkg/models"
)

// Fetcher resolves one company name into a result record
type Fetcher interface {
	Fetch(ctx context.Context, company string) (*models.Result, error)
}

// Store persists the accumulated tables
type Store interface {
	Load() ([]models.Result, []models.Failure, error)
	Save(results []models.Result, failures []models.Failure, suffix string) error

	// DoneSet returns the companies that need no further processing
	DoneSet(results []models.Result, failures []models.Failure) map[string]struct{}
}
