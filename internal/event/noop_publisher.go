package event

import (
	"context"
	"log/slog"
)

// NoopPublisher drops events. It stands in when no broker is reachable at
// startup so the API and batch job keep working.
type NoopPublisher struct {
	logger *slog.Logger
}

var _ EventPublisher = (*NoopPublisher)(nil)

func NewNoopPublisher(logger *slog.Logger) *NoopPublisher {
	return &NoopPublisher{logger: logger.With("component", "NoopPublisher")}
}

func (p *NoopPublisher) PublishCustomerCreated(ctx context.Context, event CustomerCreatedEvent) error {
	p.logger.DebugContext(ctx, "Dropping customer created event", slog.Int64("customerId", event.Payload.CustomerID))
	return nil
}

func (p *NoopPublisher) PublishClassificationChanged(ctx context.Context, event ClassificationChangedEvent) error {
	p.logger.DebugContext(ctx, "Dropping classification changed event", slog.Int64("customerId", event.CustomerID))
	return nil
}
