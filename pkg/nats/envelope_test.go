package nats

import (
	"testing"
	"time"

	"summarizer-session-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelope_CarriesTypeAndTime(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	raw, err := encode(events.BaseEvent{
		Type:       events.IterationAdvanced,
		Data:       map[string]interface{}{"iteration": 2},
		OccurredAt: at,
	})
	require.NoError(t, err)

	event, err := decode("events.SOMETHING_ELSE", raw)
	require.NoError(t, err)
	assert.Equal(t, events.IterationAdvanced, event.EventType())
	assert.True(t, at.Equal(event.Timestamp()))
	assert.Equal(t, float64(2), event.Payload()["iteration"])
}

func TestDecode_FallsBackToSubject(t *testing.T) {
	event, err := decode("events.TEMPLATE_WARMUP_REQUESTED", []byte(`{"data":{"topic":"D31"}}`))
	require.NoError(t, err)
	assert.Equal(t, events.TemplateWarmupRequested, event.EventType())
	assert.Equal(t, "D31", event.Payload()["topic"])
	assert.False(t, event.Timestamp().IsZero())
}

func TestDecode_RejectsGarbage(t *testing.T) {
	_, err := decode("events.X", []byte("not json"))
	assert.Error(t, err)
}

func TestSubject(t *testing.T) {
	assert.Equal(t, events.TemplateWarmupSubjectName, Subject(events.TemplateWarmupRequested))
}
