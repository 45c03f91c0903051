package recorder

import (
	"context"

	"ValueZone/internal/model"
)

// NoopRecorder is used when no database is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (NoopRecorder) RecordAnalysis(context.Context, *model.Analysis) error         { return nil }
func (NoopRecorder) RecordTransition(context.Context, *model.ZoneTransition) error { return nil }
func (NoopRecorder) History(context.Context, string, int) ([]Snapshot, error)      { return nil, nil }
func (NoopRecorder) Close() error                                                  { return nil }
