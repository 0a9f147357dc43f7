package recorder

import "github.com/haruquant/swingrisk/pkg/types"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordDecision(_ types.Decision) error { return nil }
func (n *NoopRecorder) RecordCycle(_ *CycleRecord) error      { return nil }
func (n *NoopRecorder) Close() error                          { return nil }
