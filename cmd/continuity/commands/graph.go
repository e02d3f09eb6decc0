package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"git.home.luguber.info/inful/continuity/internal/config"
	"git.home.luguber.info/inful/continuity/internal/depgraph"
	"git.home.luguber.info/inful/continuity/internal/foundation/errors"
	"git.home.luguber.info/inful/continuity/internal/metrics"
)

// GraphCmd implements the 'graph' command.
type GraphCmd struct {
	SeriesPath string `name:"series-path" required:"" help:"Series directory to analyze"`
	BasePath   string `name:"base-path" default:"." help:"Directory relative series paths are resolved against"`
	Format     string `short:"f" help:"Output format: text, mermaid, dot, json" default:"text" enum:"text,mermaid,dot,json"`
	Output     string `short:"o" help:"Output file path (optional, prints to stdout if not specified)"`
}

// Run executes the graph command.
func (cmd *GraphCmd) Run(g *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}
	return cmd.run(context.Background(), g, cfg)
}

func (cmd *GraphCmd) run(ctx context.Context, g *Global, cfg *config.Config) error {
	graph, err := newChecker(cfg, cmd.BasePath, metrics.NoopRecorder{}).Graph(ctx, cmd.SeriesPath)
	if err != nil {
		return err
	}

	output, err := depgraph.Render(graph, depgraph.Format(cmd.Format))
	if err != nil {
		return err
	}

	if cmd.Output != "" {
		// #nosec G306 -- rendered graphs are meant to be shared.
		if err := os.WriteFile(cmd.Output, []byte(output), 0o644); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "failed to write graph").
				WithContext("path", cmd.Output).
				Build()
		}
		slog.Info("Dependency graph written", "file", cmd.Output, "format", cmd.Format)
		return nil
	}
	_, err = fmt.Fprint(g.out(), output)
	return err
}
