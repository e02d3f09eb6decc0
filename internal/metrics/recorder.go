package metrics

import "time"

// OutcomeLabel enumerates run outcomes for counters.
type OutcomeLabel string

const (
	OutcomePassed OutcomeLabel = "passed"
	OutcomeFailed OutcomeLabel = "failed"
	OutcomeError  OutcomeLabel = "error"
)

// Recorder defines observability hooks for continuity runs. Implementations
// must be safe for concurrent use.
type Recorder interface {
	ObserveCheckDuration(check string, d time.Duration)
	ObserveRunDuration(d time.Duration)
	AddIssues(kind string, n int)
	IncRunOutcome(outcome OutcomeLabel)
	SetDocuments(analyzed, unreadable int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveCheckDuration(string, time.Duration) {}
func (NoopRecorder) ObserveRunDuration(time.Duration)           {}
func (NoopRecorder) AddIssues(string, int)                      {}
func (NoopRecorder) IncRunOutcome(OutcomeLabel)                 {}
func (NoopRecorder) SetDocuments(int, int)                      {}
