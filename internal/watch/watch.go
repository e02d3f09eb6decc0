// Package watch re-runs the continuity check when a series changes.
//
// File system events are debounced; an optional interval re-check catches
// changes fsnotify cannot see (network mounts, editors that swap directories).
// A run is skipped when the corpus digest equals the last analyzed one.
package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/continuity/internal/corpus"
	"git.home.luguber.info/inful/continuity/internal/foundation/errors"
	"git.home.luguber.info/inful/continuity/internal/logfields"
	"git.home.luguber.info/inful/continuity/internal/report"
)

const defaultDebounce = 300 * time.Millisecond

// Checker loads and checks a series; *continuity.Checker implements it.
type Checker interface {
	Resolve(seriesPath string) string
	Load(ctx context.Context, seriesPath string) (*corpus.Corpus, error)
	CheckCorpus(ctx context.Context, seriesPath string, cor *corpus.Corpus) (*report.Report, error)
}

// Handler receives the report of every run that analyzed changed content.
type Handler func(ctx context.Context, r *report.Report, digest string)

// Options configures a Watcher.
type Options struct {
	SeriesPath string
	Debounce   time.Duration
	// Interval schedules a periodic re-check; zero disables it.
	Interval time.Duration
}

// Watcher drives repeated checks of one series.
type Watcher struct {
	opts    Options
	checker Checker
	handle  Handler

	mu         sync.Mutex
	timer      *time.Timer
	reason     string
	lastDigest string

	requests chan string
}

// New creates a watcher. Run starts it.
func New(opts Options, checker Checker, handle Handler) *Watcher {
	if opts.Debounce <= 0 {
		opts.Debounce = defaultDebounce
	}
	return &Watcher{
		opts:     opts,
		checker:  checker,
		handle:   handle,
		requests: make(chan string, 1),
	}
}

// Run checks the series once and then again after every debounced change
// until ctx is cancelled. It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	root := w.checker.Resolve(w.opts.SeriesPath)

	if err := w.runOnce(ctx, "initial"); err != nil {
		return err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.WrapError(err, errors.CategoryRuntime, "failed to create file watcher").Build()
	}
	defer func() { _ = fsw.Close() }()
	addDirsRecursive(fsw, root)

	if w.opts.Interval > 0 {
		s, err := w.startScheduler()
		if err != nil {
			return err
		}
		defer func() { _ = s.Shutdown() }()
	}

	slog.Info("Watching series for changes", logfields.Series(w.opts.SeriesPath), logfields.Path(root))
	for {
		select {
		case <-ctx.Done():
			w.stopTimer()
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(fsw, ev)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("File watcher error", logfields.Error(err))
		case reason := <-w.requests:
			if err := w.runOnce(ctx, reason); err != nil {
				slog.Error("Continuity check failed", logfields.Series(w.opts.SeriesPath), logfields.Error(err))
			}
		}
	}
}

// runOnce loads the series and checks it unless its digest is unchanged.
func (w *Watcher) runOnce(ctx context.Context, reason string) error {
	cor, err := w.checker.Load(ctx, w.opts.SeriesPath)
	if err != nil {
		return err
	}

	digest := cor.Digest()
	w.mu.Lock()
	unchanged := digest == w.lastDigest
	w.mu.Unlock()
	if unchanged {
		slog.Debug("Series unchanged, skipping check", slog.String("reason", reason))
		return nil
	}

	r, err := w.checker.CheckCorpus(ctx, w.opts.SeriesPath, cor)
	if err != nil {
		return err
	}

	w.mu.Lock()
	w.lastDigest = digest
	w.mu.Unlock()

	slog.Info("Series re-checked", slog.String("reason", reason), logfields.Issues(r.TotalIssues))
	if w.handle != nil {
		w.handle(ctx, r, digest)
	}
	return nil
}

// Trigger requests a debounced re-check.
func (w *Watcher) Trigger(reason string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.reason = reason
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.opts.Debounce, func() {
		w.mu.Lock()
		r := w.reason
		w.mu.Unlock()
		select {
		case w.requests <- r:
		default:
		}
	})
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

func (w *Watcher) startScheduler() (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryRuntime, "failed to create scheduler").Build()
	}
	_, err = s.NewJob(
		gocron.DurationJob(w.opts.Interval),
		gocron.NewTask(func() { w.Trigger("interval") }),
		gocron.WithName("continuity-recheck"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, errors.WrapError(err, errors.CategoryRuntime, "failed to schedule periodic check").
			WithContext("interval", w.opts.Interval.String()).
			Build()
	}
	s.Start()
	return s, nil
}

func (w *Watcher) handleEvent(fsw *fsnotify.Watcher, ev fsnotify.Event) {
	if shouldIgnoreEvent(ev.Name) {
		return
	}
	if ev.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			addDirsRecursive(fsw, ev.Name)
		}
	}
	slog.Debug("File change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
	w.Trigger("change")
}

func addDirsRecursive(fsw *fsnotify.Watcher, root string) {
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if err := fsw.Add(path); err != nil {
				slog.Warn("Watch add failed", logfields.Path(path), logfields.Error(err))
			}
		}
		return nil
	})
}

// shouldIgnoreEvent returns true for editor swap and backup files.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)
	return strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, ".#") ||
		(strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#"))
}
