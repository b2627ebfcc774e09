package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/trac2md/internal/daemon"
	"git.home.luguber.info/inful/trac2md/internal/migrate"
	"git.home.luguber.info/inful/trac2md/internal/trac"
)

// SyncCmd implements the 'sync' command.
type SyncCmd struct {
	Target `embed:""`
	Interval time.Duration `help:"Time between runs (overrides sync.interval)"`
	Watch    bool          `help:"Also run when the Trac database changes"`
}

func (s *SyncCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(g, root, s.Target)
	if err != nil {
		return err
	}
	if s.Interval > 0 {
		cfg.Sync.Interval = s.Interval
	}

	m, err := migrate.Open(cfg, g.Logger)
	if err != nil {
		return err
	}
	defer func() { _ = m.Close() }()

	d, err := daemon.New(m, daemon.Config{
		Interval:     cfg.Sync.Interval,
		Watch:        s.Watch,
		DatabasePath: trac.DatabasePath(cfg.Trac.Environment),
		StateFile:    cfg.Sync.StateFile,
	}, g.Logger)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return d.Run(ctx)
}
