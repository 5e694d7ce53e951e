package news

import (
	"context"
	"time"

	"reviewscraper/pkg/logger"
	"reviewscraper/pkg/models"
	"reviewscraper/pkg/ratelimit"
)

// Searcher looks up the articles for one company
type Searcher interface {
	Search(ctx context.Context, company string) ([]models.Article, error)
}

// Stats counts what a collection run did
type Stats struct {
	Companies int
	Failed    int
	Articles  int
	Elapsed   time.Duration
}

// Collector runs one search per company and gathers the articles
type Collector struct {
	searcher Searcher
	limiter  ratelimit.Limiter
	logger   logger.Logger
}

// NewCollector creates a collector. limiter is waited on before every request.
func NewCollector(searcher Searcher, limiter ratelimit.Limiter) *Collector {
	if limiter == nil {
		limiter = ratelimit.Nop{}
	}
	return &Collector{
		searcher: searcher,
		limiter:  limiter,
		logger:   logger.GetLogger().WithField("component", "news"),
	}
}

// SetLogger replaces the collector's logger
func (c *Collector) SetLogger(l logger.Logger) {
	c.logger = l
}

// Collect searches every company in order. A failed request is logged and
// the company skipped; only cancellation stops the loop, in which case the
// articles gathered so far are returned with ctx.Err().
func (c *Collector) Collect(ctx context.Context, companies []string) ([]models.Article, Stats, error) {
	start := time.Now()
	var (
		articles []models.Article
		stats    Stats
	)

	for _, company := range companies {
		if err := c.limiter.Wait(ctx); err != nil {
			stats.Elapsed = time.Since(start)
			return articles, stats, err
		}

		found, err := c.searcher.Search(ctx, company)
		if ctxErr := ctx.Err(); ctxErr != nil {
			stats.Elapsed = time.Since(start)
			return articles, stats, ctxErr
		}

		stats.Companies++
		if err != nil {
			stats.Failed++
			c.logger.WithError(err).WarnWithFields("News request failed", map[string]interface{}{
				"company": company,
			})
			continue
		}

		c.logger.DebugWithFields("News collected", map[string]interface{}{
			"company":  company,
			"articles": len(found),
		})
		articles = append(articles, found...)
		stats.Articles += len(found)
	}

	stats.Elapsed = time.Since(start)
	return articles, stats, nil
}
