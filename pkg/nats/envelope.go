package nats

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"summarizer-session-be/pkg/events"
)

// envelope is the wire form of an event. Type and time travel with the data so
// subscribers do not have to derive them from the subject.
type envelope struct {
	Type       string                 `json:"type"`
	OccurredAt time.Time              `json:"occurred_at"`
	Data       map[string]interface{} `json:"data"`
}

func encode(event events.Event) ([]byte, error) {
	return json.Marshal(envelope{
		Type:       event.EventType(),
		OccurredAt: event.Timestamp(),
		Data:       event.Payload(),
	})
}

func decode(subject string, raw []byte) (events.BaseEvent, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return events.BaseEvent{}, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	if env.Type == "" {
		env.Type = strings.TrimPrefix(subject, "events.")
	}
	if env.OccurredAt.IsZero() {
		env.OccurredAt = time.Now()
	}
	if env.Data == nil {
		env.Data = map[string]interface{}{}
	}
	return events.BaseEvent{Type: env.Type, Data: env.Data, OccurredAt: env.OccurredAt}, nil
}

func Subject(eventType string) string {
	return fmt.Sprintf("events.%s", eventType)
}
