package service

import (
	"context"
	"time"

	"poultry-diagnose-be/internal/pkg/logger"
	"poultry-diagnose-be/pkg/events"
)

const publishTimeout = 3 * time.Second

// Publisher is the transport an IEventPublisher delivers through (NATS in production).
type Publisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// IEventPublisher delivers domain events best-effort: failures are logged, never returned.
type IEventPublisher interface {
	Publish(ctx context.Context, event events.Event)
}

type eventPublisher struct {
	transport Publisher
	logger    logger.ILogger
}

// NewEventPublisher wraps transport; a nil transport drops events.
func NewEventPublisher(transport Publisher, log logger.ILogger) IEventPublisher {
	return &eventPublisher{transport: transport, logger: log}
}

func (p *eventPublisher) Publish(ctx context.Context, event events.Event) {
	if p.transport == nil {
		p.logger.Debug("EVENTS", "Event dropped, no transport configured", map[string]interface{}{"type": event.EventType()})
		return
	}

	// the request context may already be done once the response is written
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := p.transport.Publish(pubCtx, event); err != nil {
		p.logger.Warn("EVENTS", "Failed to publish event", map[string]interface{}{
			"type":  event.EventType(),
			"error": err.Error(),
		})
	}
}
