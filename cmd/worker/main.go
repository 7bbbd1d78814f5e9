package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"summarizer-session-be/internal/bootstrap"
	"summarizer-session-be/internal/config"
	"summarizer-session-be/internal/entity"
	"summarizer-session-be/internal/tracer"
	"summarizer-session-be/pkg/events"
	"summarizer-session-be/pkg/metrics"
	pktNats "summarizer-session-be/pkg/nats"
)

const (
	warmupDurable        = "summarizer-template-warmup"
	warmupHandlerTimeout = 5 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 0. Tracing (enabled with OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer("summarizer-worker")
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(ctx, cfg, bootstrap.Options{})
	if err != nil {
		log.Panicf("Unable to bootstrap: %v", err)
	}
	defer container.Close()

	if err := container.Gateway.Prepare(ctx); err != nil {
		log.Panicf("Engine setup failed: %v", err)
	}

	// 3. Background warm-up queue
	log.Println("Background: Starting Warmup Service...")
	if err := container.WarmupService.Consume(ctx); err != nil {
		log.Panicf("Warmup consumer failed: %v", err)
	}

	// 4. NATS requests feed the queue
	if cfg.App.NatsURL != "" {
		sub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
		if err != nil {
			log.Printf("Warn: NATS subscriber unavailable, warm-up requests disabled: %v", err)
		} else {
			defer sub.Close()
			err := sub.Subscribe(ctx, events.TemplateWarmupSubjectName, warmupDurable, warmupHandlerTimeout, func(ctx context.Context, event events.Event) error {
				return container.WarmupService.Request(ctx, topicsOf(event)...)
			})
			if err != nil {
				log.Printf("Warn: Failed to subscribe to %s: %v", events.TemplateWarmupSubjectName, err)
			}
		}
	}

	// 5. Metrics
	srv := metrics.NewServer(cfg.App.MetricsAddr)
	go func() {
		log.Printf("Metrics listening on %s", cfg.App.MetricsAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Metrics server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Metrics shutdown error: %v", err)
	}
}

// topicsOf reads "topic" or "topics" from a warm-up request.
func topicsOf(event events.Event) []entity.Topic {
	payload := event.Payload()
	var topics []entity.Topic
	if t, ok := payload["topic"].(string); ok && t != "" {
		topics = append(topics, entity.Topic(t))
	}
	if list, ok := payload["topics"].([]interface{}); ok {
		for _, v := range list {
			if t, ok := v.(string); ok && t != "" {
				topics = append(topics, entity.Topic(t))
			}
		}
	}
	return topics
}
