package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveCheckDuration("links", 150*time.Millisecond)
	pr.ObserveRunDuration(500 * time.Millisecond)
	pr.AddIssues("broken_anchor", 2)
	pr.AddIssues("broken_anchor", 1)
	pr.AddIssues("invalid_url", 0)
	pr.IncRunOutcome(OutcomeFailed)
	pr.SetDocuments(12, 1)

	mfs, err := reg.Gather()
	require.NoError(t, err)

	byName := make(map[string]*dto.MetricFamily)
	for _, mf := range mfs {
		byName[mf.GetName()] = mf
	}

	issues := byName["continuity_issues_total"]
	require.NotNil(t, issues)
	require.Len(t, issues.GetMetric(), 1, "zero counts are not recorded")
	assert.InDelta(t, 3, issues.GetMetric()[0].GetCounter().GetValue(), 0)

	outcomes := byName["continuity_run_outcomes_total"]
	require.NotNil(t, outcomes)
	assert.InDelta(t, 1, outcomes.GetMetric()[0].GetCounter().GetValue(), 0)

	docs := byName["continuity_documents"]
	require.NotNil(t, docs)
	assert.Len(t, docs.GetMetric(), 2)
}

func TestWriteTextfile(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.IncRunOutcome(OutcomePassed)

	path := filepath.Join(t.TempDir(), "continuity.prom")
	require.NoError(t, WriteTextfile(path, reg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `continuity_run_outcomes_total{outcome="passed"} 1`))
}

func TestWriteTextfile_BadPath(t *testing.T) {
	err := WriteTextfile(filepath.Join(t.TempDir(), "missing", "dir", "x.prom"), prom.NewRegistry())
	require.Error(t, err)
}
