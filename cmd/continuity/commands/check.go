package commands

import (
	"context"

	"git.home.luguber.info/inful/continuity/internal/config"
	"git.home.luguber.info/inful/continuity/internal/report"
)

// CheckCmd implements the 'check' command.
type CheckCmd struct {
	SeriesPath string `name:"series-path" required:"" help:"Series directory to check"`
	BasePath   string `name:"base-path" default:"." help:"Directory relative series paths are resolved against"`
	Output     string `short:"o" help:"Write the JSON report to this path (overrides report.path)"`
	Format     string `short:"f" default:"text" enum:"text,json" help:"Output format (text or json)"`
	Details    bool   `short:"d" help:"List every issue after the summary (text format)"`
}

func (c *CheckCmd) Run(g *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}
	return c.run(context.Background(), g, cfg)
}

func (c *CheckCmd) run(ctx context.Context, g *Global, cfg *config.Config) error {
	formatter, err := report.NewFormatter(c.Format, c.Details)
	if err != nil {
		return err
	}

	s := openSinks(cfg, c.Output)
	defer s.close()

	checker := newChecker(cfg, c.BasePath, s.recorder())
	cor, err := checker.Load(ctx, c.SeriesPath)
	if err != nil {
		s.flushMetrics()
		return err
	}
	r, err := checker.CheckCorpus(ctx, c.SeriesPath, cor)
	if err != nil {
		s.flushMetrics()
		return err
	}

	if err := formatter.Format(g.out(), r); err != nil {
		return err
	}
	if err := s.deliver(ctx, r, cor.Digest()); err != nil {
		return err
	}

	if r.Failed() {
		return ErrIssuesFound
	}
	return nil
}
