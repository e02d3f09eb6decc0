// Package continuity runs the link, consistency and dependency checks over a
// series and aggregates their results into one report.
package continuity

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/continuity/internal/config"
	"git.home.luguber.info/inful/continuity/internal/consistency"
	"git.home.luguber.info/inful/continuity/internal/corpus"
	"git.home.luguber.info/inful/continuity/internal/depgraph"
	"git.home.luguber.info/inful/continuity/internal/linkcheck"
	"git.home.luguber.info/inful/continuity/internal/logfields"
	"git.home.luguber.info/inful/continuity/internal/metrics"
	"git.home.luguber.info/inful/continuity/internal/report"
)

// RevisionFunc returns the version-control revision of a series directory.
type RevisionFunc func(path string) (string, error)

// Checker owns one instance of each check and runs them in sequence.
type Checker struct {
	basePath    string
	loader      *corpus.Loader
	links       *linkcheck.Checker
	consistency *consistency.Checker
	deps        *depgraph.Builder
	recorder    metrics.Recorder
	revision    RevisionFunc
	now         func() time.Time
}

// Option configures a Checker.
type Option func(*Checker)

// WithBasePath sets the directory relative series paths are resolved against.
func WithBasePath(dir string) Option {
	return func(c *Checker) { c.basePath = dir }
}

// WithRecorder injects a metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(c *Checker) {
		if r != nil {
			c.recorder = r
		}
	}
}

// WithRevision stamps reports using fn. Errors from fn are logged and the
// report is left unstamped.
func WithRevision(fn RevisionFunc) Option {
	return func(c *Checker) { c.revision = fn }
}

// New builds a checker from cfg.
func New(cfg *config.Config, opts ...Option) *Checker {
	loader := corpus.NewLoader(corpus.Options{
		Extension:   cfg.Series.Extension,
		Workers:     cfg.Analysis.Workers,
		FileTimeout: cfg.Analysis.FileTimeout,
	})
	c := &Checker{
		basePath:    ".",
		loader:      loader,
		links:       linkcheck.New(loader),
		consistency: consistency.New(loader, consistency.RulesFromConfig(cfg)),
		deps:        depgraph.NewBuilder(loader),
		recorder:    metrics.NoopRecorder{},
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Resolve returns the directory analyzed for seriesPath.
func (c *Checker) Resolve(seriesPath string) string {
	if filepath.IsAbs(seriesPath) || c.basePath == "" {
		return seriesPath
	}
	return filepath.Join(c.basePath, seriesPath)
}

// Load reads the series once. The same snapshot feeds every check of a run.
func (c *Checker) Load(ctx context.Context, seriesPath string) (*corpus.Corpus, error) {
	return c.loader.Load(ctx, c.Resolve(seriesPath))
}

// Check loads the series and runs every check over it.
func (c *Checker) Check(ctx context.Context, seriesPath string) (*report.Report, error) {
	cor, err := c.Load(ctx, seriesPath)
	if err != nil {
		c.recorder.IncRunOutcome(metrics.OutcomeError)
		return nil, err
	}
	return c.CheckCorpus(ctx, seriesPath, cor)
}

// CheckCorpus runs the link, consistency and dependency checks in sequence
// over an already loaded corpus. Cycle and missing-dependency detection share
// one graph.
func (c *Checker) CheckCorpus(ctx context.Context, seriesPath string, cor *corpus.Corpus) (*report.Report, error) {
	slog.Info("Starting continuity check", logfields.Series(seriesPath), logfields.Documents(len(cor.Documents)))
	timestamp := c.now()
	start := time.Now()

	links, err := timed(c, "links", func() ([]report.LinkIssue, error) {
		return c.links.CheckCorpus(ctx, cor)
	})
	if err != nil {
		return nil, c.fail(err)
	}

	cons, err := timed(c, "consistency", func() ([]report.ConsistencyIssue, error) {
		return c.consistency.CheckCorpus(ctx, cor)
	})
	if err != nil {
		return nil, c.fail(err)
	}

	deps, err := timed(c, "dependencies", func() ([]report.DependencyIssue, error) {
		g, err := c.deps.BuildCorpus(ctx, cor)
		if err != nil {
			return nil, err
		}
		return depgraph.Analyze(cor.Root, g), nil
	})
	if err != nil {
		return nil, c.fail(err)
	}

	r := report.New(report.Input{
		SeriesPath:  seriesPath,
		Revision:    c.stamp(cor.Root),
		Documents:   len(cor.Documents),
		Timestamp:   timestamp,
		Links:       links,
		Consistency: cons,
		Dependency:  deps,
		Unreadable:  unreadable(cor),
	})
	c.recorder.ObserveRunDuration(time.Since(start))
	c.record(r)

	slog.Info("Continuity check complete",
		logfields.RunID(r.RunID),
		logfields.Series(seriesPath),
		logfields.Issues(r.TotalIssues),
		slog.Int("unreadable", len(r.UnreadableDocuments)))
	return r, nil
}

// Graph loads the series and returns its dependency graph.
func (c *Checker) Graph(ctx context.Context, seriesPath string) (*depgraph.Graph, error) {
	cor, err := c.Load(ctx, seriesPath)
	if err != nil {
		return nil, err
	}
	return c.deps.BuildCorpus(ctx, cor)
}

func timed[T any](c *Checker, check string, fn func() ([]T, error)) ([]T, error) {
	start := time.Now()
	issues, err := fn()
	d := time.Since(start)
	c.recorder.ObserveCheckDuration(check, d)
	slog.Debug("Check finished", logfields.Check(check), logfields.DurationMS(float64(d.Microseconds())/1000))
	return issues, err
}

func (c *Checker) fail(err error) error {
	c.recorder.IncRunOutcome(metrics.OutcomeError)
	return err
}

func (c *Checker) stamp(root string) string {
	if c.revision == nil {
		return ""
	}
	rev, err := c.revision(root)
	if err != nil {
		slog.Warn("Could not determine series revision", logfields.Path(root), logfields.Error(err))
		return ""
	}
	return rev
}

func (c *Checker) record(r *report.Report) {
	for kind, n := range r.CountByKind() {
		c.recorder.AddIssues(string(kind), n)
	}
	c.recorder.SetDocuments(r.Documents, len(r.UnreadableDocuments))
	if r.Failed() {
		c.recorder.IncRunOutcome(metrics.OutcomeFailed)
	} else {
		c.recorder.IncRunOutcome(metrics.OutcomePassed)
	}
}

func unreadable(cor *corpus.Corpus) []report.UnreadableDocument {
	out := make([]report.UnreadableDocument, 0, len(cor.Failures))
	for _, f := range cor.Failures {
		out = append(out, report.UnreadableDocument{FilePath: f.Path, Error: f.Err.Error()})
	}
	return out
}
