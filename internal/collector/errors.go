package collector

import (
	"errors"
	"fmt"
)

// News-volume response failures. Each is wrapped with the keyword.
var (
	ErrInvalidResponse = errors.New("invalid response")
	ErrMalformedJSON   = errors.New("failed to parse JSON")
	ErrNoTimeline      = errors.New("no timeline data")
	ErrNoData          = errors.New("no 'data' field")
	ErrMissingDate     = errors.New("missing 'date' field")
)

// ErrEmptyResult is returned when an upstream call succeeds with no rows.
var ErrEmptyResult = errors.New("empty result")

// FetchError ties an upstream failure to the source and key that produced it.
type FetchError struct {
	Source string
	Key    string
	Err    error
}

func (e *FetchError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s fetch %q: %v", e.Source, e.Key, e.Err)
	}
	return fmt.Sprintf("%s fetch: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
