package parser

import "fmt"

// TraceEvent is one diagnostic emitted while walking a grid.
type TraceEvent struct {
	Stage   string `json:"stage"`   // header/columns/bounds/row
	Message string `json:"message"`
}

// Tracer observes extraction progress. Implementations must be cheap; the
// extractor calls it on every strategy decision and row skip.
type Tracer interface {
	Trace(stage, format string, args ...interface{})
}

// NopTracer discards all events.
type NopTracer struct{}

func (NopTracer) Trace(stage, format string, args ...interface{}) {}

// RecordingTracer collects events for inclusion in API diagnostics.
type RecordingTracer struct {
	Events []TraceEvent
}

// NewRecordingTracer creates a tracer that keeps every event.
func NewRecordingTracer() *RecordingTracer {
	return &RecordingTracer{Events: []TraceEvent{}}
}

func (t *RecordingTracer) Trace(stage, format string, args ...interface{}) {
	t.Events = append(t.Events, TraceEvent{
		Stage:   stage,
		Message: fmt.Sprintf(format, args...),
	})
}
