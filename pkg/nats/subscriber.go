package nats

import (
	"context"
	"fmt"
	"log"
	"time"

	"summarizer-session-be/pkg/events"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// EventHandler is a function that processes an event.
type EventHandler func(ctx context.Context, event events.Event) error

// Subscriber handles listening for events from NATS.
type Subscriber struct {
	nc       *nats.Conn
	js       jetstream.JetStream
	consumes []jetstream.ConsumeContext
}

// NewSubscriber creates a new NATS subscriber.
func NewSubscriber(url string) (*Subscriber, error) {
	nc, js, err := connect(url)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := ensureStream(ctx, js); err != nil {
		log.Printf("Warn: Failed to ensure stream '%s': %v", StreamName, err)
	}

	return &Subscriber{nc: nc, js: js}, nil
}

// Subscribe registers a handler for a subject pattern on a durable consumer, so
// no message is lost across restarts. handlerTimeout bounds each handler call;
// a failed handler naks the message for redelivery.
func (s *Subscriber) Subscribe(ctx context.Context, subject, durableName string, handlerTimeout time.Duration, handler EventHandler) error {
	consumer, err := s.js.CreateOrUpdateConsumer(ctx, StreamName, jetstream.ConsumerConfig{
		Durable:       durableName,
		FilterSubject: subject,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       handlerTimeout + 30*time.Second,
		MaxDeliver:    5,
	})
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}

	cc, err := consumer.Consume(func(msg jetstream.Msg) {
		event, err := decode(msg.Subject(), msg.Data())
		if err != nil {
			log.Printf("Error decoding event on %s: %v", msg.Subject(), err)
			// malformed payloads never become valid, so drop them
			msg.Term()
			return
		}

		hctx, cancel := context.WithTimeout(ctx, handlerTimeout)
		defer cancel()

		if err := handler(hctx, event); err != nil {
			log.Printf("Handler failed for event %s: %v", msg.Subject(), err)
			msg.Nak()
			return
		}
		msg.Ack()
	})
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}
	s.consumes = append(s.consumes, cc)

	log.Printf("Subscribed to %s with durable %s", subject, durableName)
	return nil
}

// Close stops all consumers and closes the connection.
func (s *Subscriber) Close() {
	for _, cc := range s.consumes {
		cc.Stop()
	}
	if s.nc != nil {
		s.nc.Close()
	}
}
