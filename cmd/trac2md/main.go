package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/trac2md/cmd/trac2md/commands"
	"git.home.luguber.info/inful/trac2md/internal/foundation/errors"
	"git.home.luguber.info/inful/trac2md/internal/version"
)

func main() {
	cli := &commands.CLI{}
	ctx := kong.Parse(cli,
		kong.Name("trac2md"),
		kong.Description("Convert Trac wiki pages to Markdown."),
		kong.UsageOnError(),
		kong.Vars{"version": version.Version + " (" + version.GitCommit + ", " + version.BuildTime + ")"},
	)

	global := &commands.Global{Logger: slog.Default(), Stdout: os.Stdout}
	if err := ctx.Run(global, cli); err != nil {
		errors.NewCLIErrorAdapter(cli.Verbose, global.Logger).HandleError(err)
	}
}
