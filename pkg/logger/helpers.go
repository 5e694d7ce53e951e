package logger

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// LogFetch logs the outcome of one company fetch
func LogFetch(l Logger, company string, pos, total int, elapsed time.Duration, err error) {
	fields := map[string]interface{}{
		"company":  company,
		"position": pos,
		"total":    total,
		"elapsed":  elapsed,
	}
	if err != nil {
		l.WithError(err).WarnWithFields("Company fetch failed", fields)
		return
	}
	l.InfoWithFields("Company fetched", fields)
}

// LogFlush logs a progress store write
func LogFlush(l Logger, path string, results, failures int) {
	l.DebugWithFields("Progress saved", map[string]interface{}{
		"path":     path,
		"results":  results,
		"failures": failures,
	})
}

// LogRequest logs one HTTP API call
func LogRequest(l Logger, method, url string, statusCode int, duration time.Duration) {
	fields := map[string]interface{}{
		"method":      method,
		"url":         url,
		"status_code": statusCode,
		"duration":    duration,
	}

	switch {
	case statusCode >= 200 && statusCode < 300:
		l.DebugWithFields("HTTP request completed", fields)
	case statusCode >= 500:
		l.ErrorWithFields("HTTP request server error", fields)
	default:
		l.WarnWithFields("HTTP request failed", fields)
	}
}

// LogRunSummary logs the final counts of a run
func LogRunSummary(l Logger, command string, counts map[string]int, elapsed time.Duration) {
	fields := map[string]interface{}{
		"command": command,
		"elapsed": elapsed.Round(time.Millisecond),
	}
	for k, v := range counts {
		fields[k] = v
	}
	l.InfoWithFields(fmt.Sprintf("%s finished", command), fields)
}

// NewNopLogger creates a no-operation logger for testing
func NewNopLogger() Logger {
	return &nopLogger{}
}

type nopLogger struct{}

func (n *nopLogger) Debug(msg string) {}
func (n *nopLogger) Info(msg string) {}
func (n *nopLogger) Warn(msg string) {}
func (n *nopLogger) Error(msg string) {}
func (n *nopLogger) Fatal(msg string) {}
func (n *nopLogger) WithField(key string, value interface{}) Logger { return n }
func (n *nopLogger) WithFields(fields map[string]interface{}) Logger { return n }
func (n *nopLogger) WithError(err error) Logger { return n }
func (n *nopLogger) WithContext(ctx context.Context) Logger { return n }
func (n *nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) InfoWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) WarnWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) GetZerolog() *zerolog.Logger {
	nop := zerolog.Nop()
	return &nop
}
