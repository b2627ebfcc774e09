package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/trac2md/internal/foundation/errors"
	"git.home.luguber.info/inful/trac2md/internal/logfields"
)

// RunSubjectSuffix is appended to the page subject for run events.
const RunSubjectSuffix = ".run"

var _ Publisher = (*NATSPublisher)(nil)

// conn is the part of *nats.Conn the publisher uses.
type conn interface {
	Publish(subject string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Drain() error
}

// NATSPublisher publishes JSON events with core NATS.
type NATSPublisher struct {
	conn    conn
	subject string
	logger  *slog.Logger
	now     func() time.Time
}

// NewNATSPublisher connects to url. Page events go to subject and run events
// to subject+RunSubjectSuffix.
func NewNATSPublisher(url, subject string, logger *slog.Logger) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("trac2md"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(3),
	)
	if err != nil {
		return nil, errors.NotifyError("failed to connect to NATS").
			WithCause(err).
			WithContext("url", url).
			Build()
	}
	p := newPublisher(nc, subject, logger)
	p.logger.Info("NATS publisher connected", slog.String("url", url), slog.String("subject", subject))
	return p, nil
}

func newPublisher(c conn, subject string, logger *slog.Logger) *NATSPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &NATSPublisher{conn: c, subject: subject, logger: logger, now: time.Now}
}

// PublishPage publishes event on the page subject.
func (p *NATSPublisher) PublishPage(ctx context.Context, event *PageEvent) error {
	event.Timestamp = p.now().UTC()
	if err := p.publish(ctx, p.subject, event); err != nil {
		return err
	}
	p.logger.Debug("Published page event", logfields.Page(event.Page), logfields.RunID(event.RunID))
	return nil
}

// PublishRun publishes event on the run subject and waits for the server to
// acknowledge everything sent so far.
func (p *NATSPublisher) PublishRun(ctx context.Context, event *RunEvent) error {
	event.Timestamp = p.now().UTC()
	if err := p.publish(ctx, p.subject+RunSubjectSuffix, event); err != nil {
		return err
	}
	flushCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := p.conn.FlushWithContext(flushCtx); err != nil {
		return errors.NotifyError("failed to flush NATS connection").WithCause(err).Build()
	}
	return nil
}

func (p *NATSPublisher) publish(ctx context.Context, subject string, event any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return errors.InternalError("failed to marshal event").WithCause(err).Build()
	}
	if err := p.conn.Publish(subject, data); err != nil {
		return errors.NotifyError("failed to publish event").
			WithCause(err).
			WithContext("subject", subject).
			Build()
	}
	return nil
}

// Close drains pending messages and closes the connection.
func (p *NATSPublisher) Close() error {
	if p.conn == nil {
		return nil
	}
	if err := p.conn.Drain(); err != nil {
		return errors.NotifyError("failed to drain NATS connection").WithCause(err).Build()
	}
	return nil
}
