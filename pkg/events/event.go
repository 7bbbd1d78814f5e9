package events

import (
	"context"
	"time"
)

// Session event types. They double as the NATS subject suffix: events.<TYPE>.
const (
	AssignmentCreated         = "ASSIGNMENT_CREATED"
	AssignmentActivated       = "ASSIGNMENT_ACTIVATED"
	FeedbackRecorded          = "FEEDBACK_RECORDED"
	IterationAdvanced         = "ITERATION_ADVANCED"
	TemplatesCreated          = "TEMPLATES_CREATED"
	TemplateWarmupRequested   = "TEMPLATE_WARMUP_REQUESTED"
	TemplateWarmupSubjectName = "events." + TemplateWarmupRequested
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "ITERATION_ADVANCED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Publisher sends events to a bus.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func New(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{Type: eventType, Data: data, OccurredAt: time.Now()}
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}
