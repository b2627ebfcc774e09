package migrate

import (
	stderrors "errors"
	"log/slog"

	"git.home.luguber.info/inful/trac2md/internal/config"
	"git.home.luguber.info/inful/trac2md/internal/metrics"
	"git.home.luguber.info/inful/trac2md/internal/notify"
	"git.home.luguber.info/inful/trac2md/internal/output"
	"git.home.luguber.info/inful/trac2md/internal/trac"
)

// Open wires a Migrator from a validated configuration: the Trac store, the
// output writer and, when configured, the Prometheus recorder and the NATS
// publisher. Close releases what Open acquired.
func Open(cfg *config.Config, logger *slog.Logger) (*Migrator, error) {
	if logger == nil {
		logger = slog.Default()
	}

	store, err := trac.OpenSQLiteStore(cfg.Trac.Environment, logger)
	if err != nil {
		return nil, err
	}
	writer, err := output.NewWriter(cfg.Output.Directory,
		output.WithFrontMatter(cfg.Output.FrontMatter),
		output.WithLogger(logger))
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	opts := []Option{WithLogger(logger)}
	if cfg.Metrics.Textfile != "" {
		opts = append(opts, WithRecorder(metrics.NewPrometheusRecorder(nil)))
	}
	var publisher notify.Publisher
	if cfg.Notify.NATSURL != "" {
		p, err := notify.NewNATSPublisher(cfg.Notify.NATSURL, cfg.Notify.Subject, logger)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		publisher = p
		opts = append(opts, WithPublisher(p))
	}

	m := New(cfg, store, writer, opts...)
	m.closers = append(m.closers, store.Close)
	if publisher != nil {
		m.closers = append(m.closers, publisher.Close)
	}
	return m, nil
}

// Close releases the store and publisher opened by Open.
func (m *Migrator) Close() error {
	var errs []error
	for i := len(m.closers) - 1; i >= 0; i-- {
		if err := m.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	m.closers = nil
	return stderrors.Join(errs...)
}
