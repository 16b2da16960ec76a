package model

import "fmt"

// FetchStatus reports how a source request was resolved.
type FetchStatus string

const (
	StatusFetched FetchStatus = "FETCHED"
	StatusCached  FetchStatus = "CACHED"
	StatusSkipped FetchStatus = "SKIPPED"
	StatusFailed  FetchStatus = "FAILED"
)

// FailureMode selects what a source failure does to the run.
type FailureMode string

const (
	// FailSkip logs the failure and omits the entry from the result.
	FailSkip FailureMode = "skip"
	// FailAbort stops the whole run.
	FailAbort FailureMode = "abort"
)

// Valid reports whether m is a known mode.
func (m FailureMode) Valid() bool {
	return m == FailSkip || m == FailAbort
}

// Resolve maps an error to the status this mode assigns it.
func (m FailureMode) Resolve() FetchStatus {
	if m == FailSkip {
		return StatusSkipped
	}
	return StatusFailed
}

// Outcome is the per-source, per-key result of a fetch.
type Outcome struct {
	Source string
	Key    string
	Path   string
	Status FetchStatus
	Rows   int
	Err    error
}

// OK reports whether the outcome produced a table.
func (o Outcome) OK() bool {
	return o.Status == StatusFetched || o.Status == StatusCached
}

func (o Outcome) String() string {
	if o.Err != nil {
		return fmt.Sprintf("%s[%s] %s: %v", o.Source, o.Key, o.Status, o.Err)
	}
	return fmt.Sprintf("%s[%s] %s (%d rows)", o.Source, o.Key, o.Status, o.Rows)
}
