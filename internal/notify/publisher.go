package notify

import "context"

// Publisher receives run progress.
type Publisher interface {
	PublishPage(ctx context.Context, event *PageEvent) error
	PublishRun(ctx context.Context, event *RunEvent) error
	Close() error
}

// NoopPublisher drops every event (default when notify.nats_url is unset).
type NoopPublisher struct{}

func (NoopPublisher) PublishPage(context.Context, *PageEvent) error { return nil }
func (NoopPublisher) PublishRun(context.Context, *RunEvent) error   { return nil }
func (NoopPublisher) Close() error                                  { return nil }
