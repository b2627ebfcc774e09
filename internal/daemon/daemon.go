package daemon

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/trac2md/internal/foundation/errors"
	"git.home.luguber.info/inful/trac2md/internal/logfields"
	"git.home.luguber.info/inful/trac2md/internal/migrate"
	"git.home.luguber.info/inful/trac2md/internal/report"
)

// Runner executes one conversion run.
type Runner interface {
	Run(ctx context.Context, sel migrate.Selection) (*report.Report, error)
}

// Config controls when the daemon runs.
type Config struct {
	Interval     time.Duration
	Watch        bool
	DatabasePath string // watched when Watch is set
	StateFile    string
	Debounce     time.Duration
}

// Trigger reasons.
const (
	ReasonStartup  = "startup"
	ReasonSchedule = "schedule"
	ReasonWatch    = "watch"
)

// Daemon re-runs conversions until its context is canceled.
type Daemon struct {
	runner   Runner
	cfg      Config
	state    *StateStore
	logger   *slog.Logger
	triggers chan string

	// OnRun, when set, observes every finished run.
	OnRun func(reason string, rep *report.Report, err error)
}

// New validates cfg and creates a Daemon.
func New(runner Runner, cfg Config, logger *slog.Logger) (*Daemon, error) {
	if runner == nil {
		return nil, errors.ValidationError("runner is required").Build()
	}
	if cfg.Interval <= 0 {
		return nil, errors.ValidationError("sync interval must be positive").Build()
	}
	if cfg.StateFile == "" {
		return nil, errors.ValidationError("state file is required").Build()
	}
	if cfg.Watch && cfg.DatabasePath == "" {
		return nil, errors.ValidationError("database path is required to watch for changes").Build()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Daemon{
		runner:   runner,
		cfg:      cfg,
		state:    NewStateStore(cfg.StateFile),
		logger:   logger,
		triggers: make(chan string, 1),
	}, nil
}

// Trigger requests a run. Requests arriving while one is already pending are
// merged into it.
func (d *Daemon) Trigger(reason string) {
	select {
	case d.triggers <- reason:
	default:
		d.logger.Debug("Sync already pending", slog.String("reason", reason))
	}
}

// Run performs a startup sync and then serves scheduled and watch triggers
// until ctx is canceled. Runs happen on the calling goroutine one at a time.
func (d *Daemon) Run(ctx context.Context) error {
	if _, err := d.state.Load(); err != nil {
		return err
	}

	scheduler, err := NewScheduler(d.logger)
	if err != nil {
		return err
	}
	if _, err := scheduler.ScheduleEvery("sync", d.cfg.Interval, func() { d.Trigger(ReasonSchedule) }); err != nil {
		return err
	}

	var watcher *DatabaseWatcher
	if d.cfg.Watch {
		watcher, err = NewDatabaseWatcher(d.cfg.DatabasePath, d.cfg.Debounce, func() { d.Trigger(ReasonWatch) }, d.logger)
		if err != nil {
			return err
		}
		if err := watcher.Start(ctx); err != nil {
			_ = watcher.Stop()
			return err
		}
	}

	d.logger.Info("Sync daemon started",
		slog.Duration("interval", d.cfg.Interval),
		slog.Bool("watch", d.cfg.Watch),
		logfields.Path(d.state.Path()))

	scheduler.Start()
	defer func() {
		if err := scheduler.Stop(); err != nil {
			d.logger.Warn("Scheduler shutdown failed", logfields.Error(err))
		}
		if watcher != nil {
			if err := watcher.Stop(); err != nil {
				d.logger.Warn("Watcher shutdown failed", logfields.Error(err))
			}
		}
	}()

	d.Trigger(ReasonStartup)
	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Sync daemon stopped")
			return nil
		case reason := <-d.triggers:
			d.syncOnce(ctx, reason)
		}
	}
}

// syncOnce runs the conversion for pages changed since the last successful
// run and advances the stored bound when the run completed.
func (d *Daemon) syncOnce(ctx context.Context, reason string) {
	st, err := d.state.Load()
	if err != nil {
		d.logger.Error("Cannot read sync state", logfields.Error(err))
		return
	}

	d.logger.Info("Sync started", slog.String("reason", reason), slog.Time("since", st.LastRun))
	rep, err := d.runner.Run(ctx, migrate.Selection{Since: st.LastRun})
	if d.OnRun != nil {
		d.OnRun(reason, rep, err)
	}
	if err != nil {
		if stderrors.Is(err, context.Canceled) {
			return
		}
		d.logger.Error("Sync failed", slog.String("reason", reason), logfields.Error(err))
		return
	}

	next := State{
		LastRun:   rep.Started,
		LastRunID: rep.RunID,
		Pages:     rep.Converted(),
		Failed:    len(rep.Failed()),
	}
	if next.Failed > 0 {
		// Failed pages must be selected again next time.
		next.LastRun = st.LastRun
	}
	if err := d.state.Save(next); err != nil {
		d.logger.Error("Cannot store sync state", logfields.Error(err))
		return
	}
	d.logger.Info("Sync finished",
		slog.String("reason", reason),
		slog.String("outcome", rep.Outcome()),
		logfields.Count(rep.Converted()))
}
