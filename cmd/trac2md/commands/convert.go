package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/trac2md/internal/config"
	"git.home.luguber.info/inful/trac2md/internal/foundation/errors"
	"git.home.luguber.info/inful/trac2md/internal/migrate"
)

// ConvertCmd implements the 'convert' command.
type ConvertCmd struct {
	Target `embed:""`
	Since  string `help:"Only convert pages modified after this date (YYYY-MM-DD or RFC 3339)"`
	Page   string `short:"p" help:"Convert only this page"`
	Strict bool   `help:"Fail the run when any page has warnings"`
	Report string `help:"Write the run report as JSON to this file (overrides report.json)" type:"path"`
}

func (c *ConvertCmd) Run(g *Global, root *CLI) error {
	since, err := ParseSince(c.Since)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(g, root, c.Target)
	if err != nil {
		return err
	}
	if c.Report != "" {
		cfg.Report.JSON = c.Report
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return RunConvert(ctx, cfg, migrate.Selection{Since: since, Page: c.Page}, c.Strict, g.Stdout, g.Logger)
}

// RunConvert performs one run and prints its summary to out.
func RunConvert(ctx context.Context, cfg *config.Config, sel migrate.Selection, strict bool, out io.Writer, logger *slog.Logger) error {
	m, err := migrate.Open(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			logger.Warn("Failed to release resources", "error", err)
		}
	}()

	rep, err := m.Run(ctx, sel)
	if rep != nil {
		if werr := rep.WriteText(out); werr != nil {
			logger.Warn("Failed to print run summary", "error", werr)
		}
	}
	if err != nil {
		return err
	}

	if failed := len(rep.Failed()); failed > 0 {
		return errors.ConversionError(fmt.Sprintf("%d of %d pages could not be written", failed, len(rep.Pages))).
			WithContext("run_id", rep.RunID).
			Build()
	}
	if strict && rep.WarningCount() > 0 {
		return errors.ConversionError(fmt.Sprintf("%d warnings with --strict", rep.WarningCount())).
			WithContext("run_id", rep.RunID).
			Build()
	}
	return nil
}
