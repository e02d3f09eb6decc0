// Package commands implements the continuity command line.
package commands

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/continuity/internal/config"
	"git.home.luguber.info/inful/continuity/internal/continuity"
	"git.home.luguber.info/inful/continuity/internal/history"
	"git.home.luguber.info/inful/continuity/internal/logfields"
	"git.home.luguber.info/inful/continuity/internal/metrics"
	"git.home.luguber.info/inful/continuity/internal/notify"
	"git.home.luguber.info/inful/continuity/internal/report"
	"git.home.luguber.info/inful/continuity/internal/vcs"
)

// ErrIssuesFound is returned by check when the report contains issues.
// main exits 1 without printing an error line for it.
var ErrIssuesFound = stderrors.New("continuity issues found")

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
	// Out receives command output; nil means os.Stdout.
	Out io.Writer
}

func (g *Global) out() io.Writer {
	if g == nil || g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path (defaults to continuity.yaml when present)"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Check   CheckCmd   `cmd:"" help:"Check a series for broken links, inconsistencies and dependency problems"`
	Graph   GraphCmd   `cmd:"" help:"Render the dependency graph of a series (text, mermaid, dot, json)"`
	Watch   WatchCmd   `cmd:"" help:"Re-check a series whenever it changes"`
	History HistoryCmd `cmd:"" help:"List previous runs from the history database"`
	Init    InitCmd    `cmd:"" help:"Initialize a new configuration file"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// sinks are the optional destinations a finished report is delivered to.
// Only a failed report file write is returned; history, notification and
// metrics failures are logged.
type sinks struct {
	reportPath string
	store      history.Store
	publisher  *notify.Publisher
	registry   *prom.Registry
	textfile   string
}

func openSinks(cfg *config.Config, reportPath string) *sinks {
	s := &sinks{reportPath: reportPath, textfile: cfg.Metrics.Textfile}
	if s.reportPath == "" {
		s.reportPath = cfg.Report.Path
	}
	if cfg.History.Path != "" {
		store, err := history.NewSQLiteStore(cfg.History.Path)
		if err != nil {
			slog.Warn("History disabled", logfields.Path(cfg.History.Path), logfields.Error(err))
		} else {
			s.store = store
		}
	}
	if cfg.Notify.NATSURL != "" {
		pub, err := notify.Connect(cfg.Notify.NATSURL, cfg.Notify.Subject)
		if err != nil {
			slog.Warn("Notifications disabled", logfields.Error(err))
		} else {
			s.publisher = pub
		}
	}
	if s.textfile != "" {
		s.registry = prom.NewRegistry()
	}
	return s
}

// recorder returns the metrics recorder for the checker.
func (s *sinks) recorder() metrics.Recorder {
	if s.registry == nil {
		return metrics.NoopRecorder{}
	}
	return metrics.NewPrometheusRecorder(s.registry)
}

func (s *sinks) deliver(ctx context.Context, r *report.Report, digest string) error {
	var writeErr error
	if s.reportPath != "" {
		if writeErr = r.WriteJSON(s.reportPath); writeErr == nil {
			slog.Info("Report written", logfields.Path(s.reportPath))
		}
	}
	if s.store != nil {
		if err := s.store.Record(ctx, r, digest); err != nil {
			slog.Warn("Failed to record run", logfields.RunID(r.RunID), logfields.Error(err))
		}
	}
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, r); err != nil {
			slog.Warn("Failed to publish run summary", logfields.RunID(r.RunID), logfields.Error(err))
		}
	}
	s.flushMetrics()
	return writeErr
}

func (s *sinks) flushMetrics() {
	if s.registry == nil {
		return
	}
	if err := metrics.WriteTextfile(s.textfile, s.registry); err != nil {
		slog.Warn("Failed to write metrics", logfields.Path(s.textfile), logfields.Error(err))
	}
}

func (s *sinks) close() {
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			slog.Warn("Failed to close history", logfields.Error(err))
		}
	}
	if s.publisher != nil {
		s.publisher.Close()
	}
}

func newChecker(cfg *config.Config, basePath string, rec metrics.Recorder) *continuity.Checker {
	return continuity.New(cfg,
		continuity.WithBasePath(basePath),
		continuity.WithRecorder(rec),
		continuity.WithRevision(vcs.Revision),
	)
}
