package utils

import (
	"errors"
	"fmt"
)

// Common application errors used across services.
var (
	ErrNotFound        = errors.New("NOT_FOUND")
	ErrRunInProgress   = errors.New("RUN_IN_PROGRESS")
	ErrLockUnavailable = errors.New("LOCK_UNAVAILABLE")
	ErrMissingElement  = errors.New("MISSING_ELEMENT")
	ErrUnexpectedState = errors.New("UNEXPECTED_STATE")
)

// FetchError reports a remote resource that could not be retrieved:
// a transport failure or a non-2xx response.
type FetchError struct {
	Op         string
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: GET %s: status %d", e.Op, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s: GET %s: %v", e.Op, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError reports a payload that was fetched but did not have the
// expected shape (undecodable JSON, missing markup element).
type ParseError struct {
	Op    string
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: parse %q: %v", e.Op, e.Input, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// StoreError reports a failed entity-store lookup, create or media upload.
type StoreError struct {
	Op    string
	Kind  string
	Input string
	Err   error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s %s %q: %v", e.Op, e.Kind, e.Input, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// ErrorClass names the taxonomy bucket of err for logs and metrics.
func ErrorClass(err error) string {
	var (
		fe *FetchError
		pe *ParseError
		se *StoreError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &fe):
		return "fetch"
	case errors.As(err, &pe):
		return "parse"
	case errors.As(err, &se):
		return "store"
	}
	return "other"
}
