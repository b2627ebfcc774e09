package commands

import (
	"fmt"
	"io"

	"git.home.luguber.info/inful/trac2md/internal/config"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite existing configuration file"`
}

func (i *InitCmd) Run(g *Global, root *CLI) error {
	return RunInit(g.Stdout, root.Config, i.Force)
}

// RunInit writes an example configuration to configPath.
func RunInit(out io.Writer, configPath string, force bool) error {
	_, _ = fmt.Fprintf(out, "Writing configuration to %s\n", configPath)
	if err := config.Init(configPath, force); err != nil {
		_, _ = fmt.Fprintln(out, "Initialization failed")
		return err
	}
	_, _ = fmt.Fprintln(out, "Edit trac.environment, output.directory and the links section before converting.")
	return nil
}
