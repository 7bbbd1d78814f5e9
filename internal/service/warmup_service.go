package service

import (
	"context"
	"encoding/json"

	"summarizer-session-be/internal/dto"
	"summarizer-session-be/internal/entity"
	"summarizer-session-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const WarmupTopic = "template.warmup"

// IWarmupService cold starts topics in the background, one at a time, so that
// the first assignment of a topic does not wait for the engine.
type IWarmupService interface {
	Consume(ctx context.Context) error
	Request(ctx context.Context, topics ...entity.Topic) error
}

type warmupService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	templates ITemplateService
	logger    logger.ILogger
}

func NewWarmupService(
	pubSub *gochannel.GoChannel,
	topicName string,
	templates ITemplateService,
	log logger.ILogger,
) IWarmupService {
	return &warmupService{
		pubSub:    pubSub,
		topicName: topicName,
		templates: templates,
		logger:    log,
	}
}

func (ws *warmupService) Request(ctx context.Context, topics ...entity.Topic) error {
	msgs := make([]*message.Message, 0, len(topics))
	for _, topic := range topics {
		if err := dto.ValidateTopic(string(topic)); err != nil {
			return err
		}
		payload, err := json.Marshal(dto.TemplateWarmupMessage{Topic: string(topic)})
		if err != nil {
			return err
		}
		msg := message.NewMessage(watermill.NewUUID(), payload)
		msg.SetContext(ctx)
		msgs = append(msgs, msg)
	}
	return ws.pubSub.Publish(ws.topicName, msgs...)
}

func (ws *warmupService) Consume(ctx context.Context) error {
	messages, err := ws.pubSub.Subscribe(ctx, ws.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			ws.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (ws *warmupService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.TemplateWarmupMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		ws.logger.Error("WARMUP", "Failed to unmarshal message", map[string]interface{}{"error": err.Error()})
		msg.Ack()
		return
	}
	if err := dto.Validate(&payload); err != nil {
		ws.logger.Error("WARMUP", "Rejected warm-up request", map[string]interface{}{"error": err.Error()})
		msg.Ack()
		return
	}

	templates, err := ws.templates.GetOrCreateTemplates(ctx, entity.Topic(payload.Topic))
	if err != nil {
		ws.logger.Error("WARMUP", "Template warm-up failed", map[string]interface{}{
			"topic": payload.Topic,
			"error": err.Error(),
		})
		// shutting down: let the message go back to the queue
		if ctx.Err() != nil {
			msg.Nack()
			return
		}
		msg.Ack()
		return
	}

	ws.logger.Info("WARMUP", "Topic warm", map[string]interface{}{
		"topic":     payload.Topic,
		"templates": len(templates),
	})
	msg.Ack()
}
