package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/continuity/internal/config"
	"git.home.luguber.info/inful/continuity/internal/continuity"
	"git.home.luguber.info/inful/continuity/internal/report"
)

func testChecker() *continuity.Checker {
	return continuity.New(&config.Config{
		Series:   config.SeriesConfig{Extension: ".md"},
		Style:    config.StyleConfig{MaxHeadingDepth: 6},
		Analysis: config.AnalysisConfig{Workers: 1},
	})
}

func writeDoc(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestRunOnce_SkipsUnchangedDigest(t *testing.T) {
	root := t.TempDir()
	doc := filepath.Join(root, "a.md")
	writeDoc(t, doc, "[x](#missing)\n")

	var got []*report.Report
	w := New(Options{SeriesPath: root}, testChecker(), func(_ context.Context, r *report.Report, _ string) {
		got = append(got, r)
	})

	ctx := context.Background()
	require.NoError(t, w.runOnce(ctx, "initial"))
	require.NoError(t, w.runOnce(ctx, "interval"))
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].TotalIssues)

	writeDoc(t, doc, "# Missing\n[x](#missing)\n")
	require.NoError(t, w.runOnce(ctx, "change"))
	require.Len(t, got, 2)
	assert.Equal(t, 0, got[1].TotalIssues)
}

func TestRunOnce_MissingSeries(t *testing.T) {
	w := New(Options{SeriesPath: filepath.Join(t.TempDir(), "none")}, testChecker(), nil)
	require.Error(t, w.runOnce(context.Background(), "initial"))
}

func TestRun_RechecksUntilCancelled(t *testing.T) {
	root := t.TempDir()
	doc := filepath.Join(root, "a.md")
	writeDoc(t, doc, "[x](#missing)\n")

	reports := make(chan *report.Report, 16)
	w := New(Options{SeriesPath: root, Debounce: 20 * time.Millisecond, Interval: 100 * time.Millisecond},
		testChecker(),
		func(_ context.Context, r *report.Report, _ string) { reports <- r })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	select {
	case r := <-reports:
		assert.Equal(t, 1, r.TotalIssues)
	case <-time.After(5 * time.Second):
		t.Fatal("no initial report")
	}

	writeDoc(t, doc, "# Missing\n[x](#missing)\n")
	select {
	case r := <-reports:
		assert.Equal(t, 0, r.TotalIssues)
	case <-time.After(5 * time.Second):
		t.Fatal("no report after change")
	}

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestTrigger_Debounces(t *testing.T) {
	w := New(Options{Debounce: 30 * time.Millisecond}, testChecker(), nil)
	w.Trigger("change")
	w.Trigger("change")
	w.Trigger("interval")

	select {
	case reason := <-w.requests:
		assert.Equal(t, "interval", reason)
	case <-time.After(time.Second):
		t.Fatal("no debounced request")
	}
	select {
	case <-w.requests:
		t.Fatal("burst produced more than one request")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestShouldIgnoreEvent(t *testing.T) {
	ignored := []string{"a.md~", ".a.md.swp", "x.swx", ".#a.md", "#a.md#"}
	for _, p := range ignored {
		assert.True(t, shouldIgnoreEvent(filepath.Join("series", p)), p)
	}
	assert.False(t, shouldIgnoreEvent("series/01-intro.md"))
	assert.False(t, shouldIgnoreEvent("series/.drafts"))
}
