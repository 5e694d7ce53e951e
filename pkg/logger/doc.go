// Package logger provides the structured logging interface used across
// reviewscraper.
//
// It wraps zerolog with a small Logger interface so that components can
// carry fields (company, position, run_id) without depending on zerolog
// directly, and so that tests can swap in NewNopLogger or NewTestLogger.
//
//	log := logger.GetLogger().WithField("run_id", runID)
//	log.InfoWithFields("Crawl started", map[string]interface{}{
//	    "total": len(items),
//	})
//
// Console output is written to stderr. When a log file is configured the
// same events are also appended to that file.
package logger
