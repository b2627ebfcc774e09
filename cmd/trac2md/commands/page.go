package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/trac2md/internal/migrate"
)

// PageCmd implements the 'page' command, a shorthand for convert --page.
type PageCmd struct {
	Target `embed:""`
	Name   string `arg:"" help:"Wiki page name, e.g. Dev/Setup"`
	Strict bool   `help:"Fail when the page has warnings"`
}

func (p *PageCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(g, root, p.Target)
	if err != nil {
		return err
	}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return RunConvert(ctx, cfg, migrate.Selection{Page: p.Name}, p.Strict, g.Stdout, g.Logger)
}
