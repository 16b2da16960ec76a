package recorder

import (
	"time"

	"HypeChart/internal/model"
)

// Run statuses.
const (
	RunRunning   = "RUNNING"
	RunSucceeded = "SUCCEEDED"
	RunAborted   = "ABORTED"
)

// RunRecord holds one orchestrator run.
type RunRecord struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Status     string
	Error      string
}

// ChartRecord describes one rendered chart.
type ChartRecord struct {
	Name        string
	Path        string // empty for display-only charts
	Bytes       int
	LeftPoints  int
	RightPoints int
	WindowStart time.Time
	WindowEnd   time.Time
}

// Recorder persists run history for later inspection.
type Recorder interface {
	RecordRunStart(run *RunRecord) error
	RecordOutcome(runID string, o model.Outcome) error
	RecordChart(runID string, c *ChartRecord) error
	RecordRunEnd(run *RunRecord) error
	// LastRun returns the most recent run, or nil when none is recorded.
	LastRun() (*RunRecord, error)
	Close() error
}
