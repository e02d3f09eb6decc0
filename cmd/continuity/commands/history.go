package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"git.home.luguber.info/inful/continuity/internal/config"
	"git.home.luguber.info/inful/continuity/internal/foundation/errors"
	"git.home.luguber.info/inful/continuity/internal/history"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Series string `short:"s" help:"Only list runs of this series path"`
	Limit  int    `short:"n" default:"20" help:"Maximum number of runs to list"`
}

// Run executes the history command.
func (h *HistoryCmd) Run(g *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}
	return h.run(context.Background(), g, cfg)
}

func (h *HistoryCmd) run(ctx context.Context, g *Global, cfg *config.Config) error {
	if cfg.History.Path == "" {
		return errors.ConfigError("history.path is not configured").Build()
	}
	store, err := history.NewSQLiteStore(cfg.History.Path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	runs, err := store.List(ctx, history.Query{SeriesPath: h.Series, Limit: h.Limit})
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		_, err := fmt.Fprintln(g.out(), "No runs recorded")
		return err
	}

	tw := tabwriter.NewWriter(g.out(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "TIMESTAMP\tSERIES\tREVISION\tDOCS\tTOTAL\tLINKS\tCONSISTENCY\tDEPENDENCIES")
	for _, run := range runs {
		rev := run.Revision
		if rev == "" {
			rev = "-"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%d\n",
			run.Timestamp.Local().Format("2006-01-02 15:04:05"),
			run.SeriesPath, rev, run.Documents,
			run.TotalIssues, run.LinkIssues, run.ConsistencyIssues, run.DependencyIssues)
	}
	return tw.Flush()
}
