package main

import (
	stderrors "errors"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/continuity/cmd/continuity/commands"
	"git.home.luguber.info/inful/continuity/internal/foundation/errors"
	"git.home.luguber.info/inful/continuity/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("continuity"),
		kong.Description("Checks a documentation series for broken links, terminology drift and dependency problems."),
		kong.Vars{"version": version.String()},
	)

	err := parser.Run(&commands.Global{Logger: slog.Default()}, cli)
	if err == nil {
		return
	}
	if stderrors.Is(err, commands.ErrIssuesFound) {
		os.Exit(errors.ExitFailure)
	}
	errors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
}
