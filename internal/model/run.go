package model

import "time"

// ChartResult describes one rendered comparison chart.
type ChartResult struct {
	Name        string
	Title       string
	Path        string // empty for display-only charts
	Bytes       int
	Width       int
	Height      int
	LeftPoints  int
	RightPoints int
	WindowStart time.Time
	WindowEnd   time.Time
}

// Saved reports whether the chart was written to disk.
func (c ChartResult) Saved() bool { return c.Path != "" }

// RunSummary reports what a single run fetched and rendered.
type RunSummary struct {
	RunID      string
	Outcomes   []Outcome
	Charts     []ChartResult
	StartedAt  time.Time
	FinishedAt time.Time
	Err        error
}

// Count returns how many outcomes have the given status.
func (s *RunSummary) Count(status FetchStatus) int {
	n := 0
	for _, o := range s.Outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}
