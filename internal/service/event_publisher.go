package service

import (
	"context"

	"summarizer-session-be/internal/pkg/logger"
	"summarizer-session-be/pkg/events"
)

// eventPublisher sends session events when a bus is configured. Publishing is
// best effort: a failure is logged and never fails the operation.
type eventPublisher struct {
	publisher events.Publisher
	logger    logger.ILogger
}

func newEventPublisher(publisher events.Publisher, log logger.ILogger) *eventPublisher {
	return &eventPublisher{publisher: publisher, logger: log}
}

func (p *eventPublisher) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if p == nil || p.publisher == nil {
		return
	}
	if err := p.publisher.Publish(ctx, events.New(eventType, data)); err != nil {
		p.logger.Warn("EVENTS", "Failed to publish event", map[string]interface{}{
			"type":  eventType,
			"error": err.Error(),
		})
	}
}
