package recorder

import "HypeChart/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordRunStart(_ *RunRecord) error             { return nil }
func (n *NoopRecorder) RecordOutcome(_ string, _ model.Outcome) error { return nil }
func (n *NoopRecorder) RecordChart(_ string, _ *ChartRecord) error    { return nil }
func (n *NoopRecorder) RecordRunEnd(_ *RunRecord) error               { return nil }
func (n *NoopRecorder) LastRun() (*RunRecord, error)                  { return nil, nil }
func (n *NoopRecorder) Close() error                                  { return nil }
