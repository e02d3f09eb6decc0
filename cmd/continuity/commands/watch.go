package commands

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/continuity/internal/config"
	"git.home.luguber.info/inful/continuity/internal/logfields"
	"git.home.luguber.info/inful/continuity/internal/report"
	"git.home.luguber.info/inful/continuity/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	SeriesPath string        `name:"series-path" required:"" help:"Series directory to watch"`
	BasePath   string        `name:"base-path" default:"." help:"Directory relative series paths are resolved against"`
	Output     string        `short:"o" help:"Rewrite the JSON report at this path after every run (overrides report.path)"`
	Details    bool          `short:"d" help:"List every issue after the summary"`
	Debounce   time.Duration `default:"300ms" help:"Quiet period after a change before re-checking"`
	Interval   time.Duration `help:"Also re-check on this interval (0 disables)"`
}

// Run executes the watch command until interrupted.
func (w *WatchCmd) Run(g *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return w.run(ctx, g, cfg)
}

func (w *WatchCmd) run(ctx context.Context, g *Global, cfg *config.Config) error {
	s := openSinks(cfg, w.Output)
	defer s.close()

	formatter := &report.TextFormatter{Details: w.Details}
	handle := func(ctx context.Context, r *report.Report, digest string) {
		if err := formatter.Format(g.out(), r); err != nil {
			slog.Warn("Failed to print report", logfields.Error(err))
		}
		if err := s.deliver(ctx, r, digest); err != nil {
			slog.Warn("Failed to write report", logfields.Error(err))
		}
	}

	watcher := watch.New(watch.Options{
		SeriesPath: w.SeriesPath,
		Debounce:   w.Debounce,
		Interval:   w.Interval,
	}, newChecker(cfg, w.BasePath, s.recorder()), handle)
	return watcher.Run(ctx)
}
