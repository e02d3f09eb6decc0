package metrics

import (
	"sync"
	"testing"
	"time"
)

var (
	_ Recorder = NoopRecorder{}
	_ Recorder = (*PrometheusRecorder)(nil)
)

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveCheckDuration("links", time.Second)
	r.ObserveRunDuration(time.Second)
	r.AddIssues("broken_anchor", 3)
	r.IncRunOutcome(OutcomePassed)
	r.SetDocuments(1, 0)
}

func TestPrometheusRecorder_NilSafe(t *testing.T) {
	var p *PrometheusRecorder
	p.ObserveCheckDuration("links", time.Second)
	p.AddIssues("broken_anchor", 1)
	p.IncRunOutcome(OutcomeError)
}

func TestPrometheusRecorder_Concurrent(t *testing.T) {
	p := NewPrometheusRecorder(nil)
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.AddIssues("invalid_url", 1)
			p.ObserveCheckDuration("links", time.Millisecond)
		}()
	}
	wg.Wait()
}
