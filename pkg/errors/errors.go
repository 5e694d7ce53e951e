package errors

import (
	"context"
	"errors"
	"fmt"
)

// ErrorType classifies why fetching a single company failed
type ErrorType string

const (
	ErrorTypeNoResults ErrorType = "no_results"
	ErrorTypeTimeout   ErrorType = "timeout"
	ErrorTypeTransport ErrorType = "transport"
	ErrorTypeParsing   ErrorType = "parsing"
)

// Stage names the part of a fetch that failed
type Stage string

const (
	StageSearch Stage = "search"
	StageDetail Stage = "detail"
)

// NoResultsMessage is the error description recorded when a search returns no candidates
const NoResultsMessage = "no results"

// Error is a fetch failure for one company. Every type is terminal for that
// company: callers record it and never retry.
type Error struct {
	Type    ErrorType
	Stage   Stage
	Company string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Type == ErrorTypeNoResults {
		return NoResultsMessage
	}
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Stage != "" {
		return fmt.Sprintf("%s %s: %s", e.Stage, e.Type, msg)
	}
	return fmt.Sprintf("%s: %s", e.Type, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NoResults reports a search that produced zero candidates
func NoResults(company string) *Error {
	return &Error{
		Type:    ErrorTypeNoResults,
		Stage:   StageSearch,
		Company: company,
		Message: NoResultsMessage,
	}
}

// Timeout reports an expired wait bound
func Timeout(stage Stage, company, selector string, err error) *Error {
	return &Error{
		Type:    ErrorTypeTimeout,
		Stage:   stage,
		Company: company,
		Message: fmt.Sprintf("timed out waiting for %q", selector),
		Err:     err,
	}
}

// Transport reports a browser or network failure
func Transport(stage Stage, company string, err error) *Error {
	return &Error{
		Type:    ErrorTypeTransport,
		Stage:   stage,
		Company: company,
		Err:     err,
	}
}

// Parse reports markup that could not be read
func Parse(stage Stage, company string, err error) *Error {
	return &Error{
		Type:    ErrorTypeParsing,
		Stage:   stage,
		Company: company,
		Err:     err,
	}
}

// Classify converts an arbitrary error into a fetch error. Errors that are
// already typed are returned unchanged.
func Classify(stage Stage, company string, err error) *Error {
	if err == nil {
		return nil
	}
	var fe *Error
	if errors.As(err, &fe) {
		return fe
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{
			Type:    ErrorTypeTimeout,
			Stage:   stage,
			Company: company,
			Err:     err,
		}
	}
	return Transport(stage, company, err)
}

// TypeOf returns the error type of err, or "" when err is not a fetch error
func TypeOf(err error) ErrorType {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Type
	}
	return ""
}

// IsNoResults reports whether err is a no-results failure
func IsNoResults(err error) bool {
	return TypeOf(err) == ErrorTypeNoResults
}

// IsTimeout reports whether err is an expired wait
func IsTimeout(err error) bool {
	return TypeOf(err) == ErrorTypeTimeout
}
