package service

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"summarizer-session-be/internal/dto"
	"summarizer-session-be/internal/entity"
	"summarizer-session-be/internal/pkg/apperror"
	"summarizer-session-be/internal/pkg/logger"
	"summarizer-session-be/internal/repository/memory"
	"summarizer-session-be/internal/repository/specification"
	"summarizer-session-be/internal/repository/unitofwork"
	"summarizer-session-be/internal/tracer"
	"summarizer-session-be/pkg/engine"
	"summarizer-session-be/pkg/events"
	"summarizer-session-be/pkg/lock"
	"summarizer-session-be/pkg/metrics"
	"summarizer-session-be/pkg/snapshot"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

type ITemplateService interface {
	// GetOrCreateTemplates returns the templates of a topic, cold starting the
	// topic once per configured variant when it has none.
	GetOrCreateTemplates(ctx context.Context, topic entity.Topic) ([]*entity.AssignmentTemplate, error)
	PickTemplate(templates []*entity.AssignmentTemplate) *entity.AssignmentTemplate
	ListTemplates(ctx context.Context, topic entity.Topic) ([]*dto.TemplateResponse, error)
}

// TemplatePicker chooses uniformly among templates. It is safe for concurrent use.
type TemplatePicker struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewTemplatePicker returns a picker; seed 0 seeds from the clock.
func NewTemplatePicker(seed int64) *TemplatePicker {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &TemplatePicker{rng: rand.New(rand.NewSource(seed))}
}

func (p *TemplatePicker) Pick(templates []*entity.AssignmentTemplate) *entity.AssignmentTemplate {
	if len(templates) == 0 {
		return nil
	}
	p.mu.Lock()
	i := p.rng.Intn(len(templates))
	p.mu.Unlock()
	return templates[i]
}

type templateService struct {
	uowFactory unitofwork.RepositoryFactory
	gateway    engine.Gateway
	snapshots  snapshot.Store
	locker     lock.Locker
	cache      *memory.TemplateCache
	picker     *TemplatePicker
	variants   []entity.Variant
	events     *eventPublisher
	logger     logger.ILogger
	group      singleflight.Group
}

func NewTemplateService(
	uowFactory unitofwork.RepositoryFactory,
	gateway engine.Gateway,
	snapshots snapshot.Store,
	locker lock.Locker,
	cache *memory.TemplateCache,
	picker *TemplatePicker,
	variants []entity.Variant,
	publisher events.Publisher,
	log logger.ILogger,
) ITemplateService {
	if len(variants) == 0 {
		variants = []entity.Variant{entity.DefaultVariant}
	}
	return &templateService{
		uowFactory: uowFactory,
		gateway:    gateway,
		snapshots:  snapshots,
		locker:     locker,
		cache:      cache,
		picker:     picker,
		variants:   variants,
		events:     newEventPublisher(publisher, log),
		logger:     log,
	}
}

func templateLockKey(topic entity.Topic) string {
	return "template:" + string(topic)
}

func (s *templateService) GetOrCreateTemplates(ctx context.Context, topic entity.Topic) ([]*entity.AssignmentTemplate, error) {
	if err := dto.ValidateTopic(string(topic)); err != nil {
		return nil, err
	}
	if templates, ok := s.cache.Get(topic); ok {
		metrics.TemplateCacheLookups.WithLabelValues("hit").Inc()
		return templates, nil
	}
	metrics.TemplateCacheLookups.WithLabelValues("miss").Inc()

	// The flight outlives any single caller: each caller only stops waiting on
	// its own context, and the engine calls inside are bounded by the gateway.
	ch := s.group.DoChan(string(topic), func() (interface{}, error) {
		return s.loadOrCreate(context.WithoutCancel(ctx), topic)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]*entity.AssignmentTemplate), nil
	case <-ctx.Done():
		return nil, fmt.Errorf("templates for %s: %w", topic, ctx.Err())
	}
}

func (s *templateService) PickTemplate(templates []*entity.AssignmentTemplate) *entity.AssignmentTemplate {
	return s.picker.Pick(templates)
}

func (s *templateService) ListTemplates(ctx context.Context, topic entity.Topic) ([]*dto.TemplateResponse, error) {
	if err := dto.ValidateTopic(string(topic)); err != nil {
		return nil, err
	}
	templates, err := s.findTemplates(ctx, topic)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.TemplateResponse, 0, len(templates))
	for _, t := range templates {
		out = append(out, toTemplateResponse(t))
	}
	return out, nil
}

func (s *templateService) findTemplates(ctx context.Context, topic entity.Topic) ([]*entity.AssignmentTemplate, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.AssignmentTemplateRepository().FindAll(ctx,
		specification.ByTopic{Topic: topic},
		specification.OrderBy{Field: "created_at"},
	)
}

// loadOrCreate runs once per topic and process at a time. The topic lock
// extends that to other processes sharing the database; whoever waited on it
// finds the winner's templates on the second read.
func (s *templateService) loadOrCreate(ctx context.Context, topic entity.Topic) ([]*entity.AssignmentTemplate, error) {
	templates, err := s.findTemplates(ctx, topic)
	if err != nil {
		return nil, err
	}
	if len(templates) > 0 {
		s.cache.Save(topic, templates)
		return templates, nil
	}

	unlock, err := s.locker.Lock(ctx, templateLockKey(topic))
	if err != nil {
		return nil, err
	}
	defer unlock()

	templates, err = s.findTemplates(ctx, topic)
	if err != nil {
		return nil, err
	}
	if len(templates) > 0 {
		s.cache.Save(topic, templates)
		return templates, nil
	}

	templates, err = s.create(ctx, topic)
	if err != nil {
		return nil, err
	}
	s.cache.Save(topic, templates)
	return templates, nil
}

// create cold starts every variant concurrently. Templates are only written
// once all of them succeeded, in a single transaction.
func (s *templateService) create(ctx context.Context, topic entity.Topic) (_ []*entity.AssignmentTemplate, err error) {
	ctx, span := tracer.Start(ctx, "service", "templates.create", attribute.String("topic", string(topic)))
	defer func() { tracer.End(span, err) }()

	s.logger.Info("TEMPLATE", "Cold starting topic", map[string]interface{}{
		"topic":    topic,
		"variants": len(s.variants),
	})

	templates := make([]*pendingTemplate, len(s.variants))
	g, gctx := errgroup.WithContext(ctx)
	for i, variant := range s.variants {
		g.Go(func() error {
			res, err := s.gateway.ColdStart(gctx, topic, variant)
			if err != nil {
				metrics.TemplateColdStarts.WithLabelValues(variant.String(), metrics.OutcomeFailed).Inc()
				return fmt.Errorf("cold start %s with %s: %w", topic, variant, err)
			}
			metrics.TemplateColdStarts.WithLabelValues(variant.String(), metrics.OutcomeSuccess).Inc()
			templates[i] = newTemplate(topic, variant, res)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error("TEMPLATE", "Cold start failed", map[string]interface{}{
			"topic": topic,
			"error": err.Error(),
		})
		return nil, fmt.Errorf("%w: %w", apperror.ErrEngineUnavailable, err)
	}

	for _, t := range templates {
		if err := s.snapshots.Put(ctx, t.SnapshotHandle, t.snapshot); err != nil {
			return nil, fmt.Errorf("store template snapshot: %w", err)
		}
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	for _, t := range templates {
		if err := uow.AssignmentTemplateRepository().Create(ctx, &t.AssignmentTemplate); err != nil {
			return nil, err
		}
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	out := make([]*entity.AssignmentTemplate, 0, len(templates))
	ids := make([]string, 0, len(templates))
	for _, t := range templates {
		out = append(out, &t.AssignmentTemplate)
		ids = append(ids, t.Id.String())
	}
	s.events.publish(ctx, events.TemplatesCreated, map[string]interface{}{
		"topic":        string(topic),
		"template_ids": ids,
	})
	s.logger.Info("TEMPLATE", "Templates created", map[string]interface{}{
		"topic":        topic,
		"template_ids": ids,
	})
	return out, nil
}

// pendingTemplate is a template whose snapshot has not been stored yet.
type pendingTemplate struct {
	entity.AssignmentTemplate
	snapshot []byte
}

func newTemplate(topic entity.Topic, variant entity.Variant, res *engine.Result) *pendingTemplate {
	id := uuid.New()
	interactions := make([]*entity.Interaction, 0, len(res.Interactions))
	seen := make(map[entity.InteractionKey]bool, len(res.Interactions))
	for _, in := range res.Interactions {
		if seen[in.Key()] {
			continue
		}
		seen[in.Key()] = true
		interactions = append(interactions, entity.NewInteraction(entity.InteractionParams{
			Concept:     in.Concept,
			Iteration:   in.Iteration,
			Value:       in.Value,
			Weight:      in.Weight,
			Uncertainty: in.Uncertainty,
		}))
	}
	return &pendingTemplate{
		AssignmentTemplate: entity.AssignmentTemplate{
			Id:                  id,
			Topic:               topic,
			Variant:             variant,
			Summary:             res.Summary,
			SentenceIds:         res.SentenceIds,
			ConfirmatorySummary: res.ConfirmatorySummary,
			ExploratorySummary:  res.ExploratorySummary,
			Weights:             res.Weights,
			Interactions:        interactions,
			SnapshotHandle:      snapshot.TemplateHandle(id),
			RunId:               res.RunId,
			CreatedAt:           time.Now(),
		},
		snapshot: res.Snapshot,
	}
}
