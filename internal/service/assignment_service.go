package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"summarizer-session-be/internal/dto"
	"summarizer-session-be/internal/entity"
	"summarizer-session-be/internal/pkg/apperror"
	"summarizer-session-be/internal/pkg/logger"
	"summarizer-session-be/internal/repository/specification"
	"summarizer-session-be/internal/repository/unitofwork"
	"summarizer-session-be/internal/tracer"
	"summarizer-session-be/pkg/engine"
	"summarizer-session-be/pkg/events"
	"summarizer-session-be/pkg/feedback"
	"summarizer-session-be/pkg/lock"
	"summarizer-session-be/pkg/metrics"
	"summarizer-session-be/pkg/snapshot"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

type IAssignmentService interface {
	GetOrCreateAssignment(ctx context.Context, userId uuid.UUID, topic entity.Topic) (*dto.AssignmentResponse, error)
	ActivateAssignment(ctx context.Context, assignmentId, userId uuid.UUID) (*dto.AssignmentResponse, error)
	RecordFeedback(ctx context.Context, assignmentId, userId uuid.UUID, req *dto.RecordFeedbackRequest) (*dto.AssignmentResponse, error)
	ListAssignments(ctx context.Context, userId uuid.UUID) ([]*dto.AssignmentResponse, error)
	GetAssignment(ctx context.Context, assignmentId, userId uuid.UUID) (*dto.AssignmentResponse, error)
	GetActiveAssignment(ctx context.Context, userId uuid.UUID) (*dto.AssignmentResponse, error)
	ScoreText(ctx context.Context, req *dto.ScoreRequest) (*dto.ScoreResponse, error)
}

type assignmentService struct {
	uowFactory unitofwork.RepositoryFactory
	templates  ITemplateService
	gateway    engine.Gateway
	snapshots  snapshot.Store
	reconciler *feedback.Reconciler
	locker     lock.Locker
	events     *eventPublisher
	logger     logger.ILogger
}

func NewAssignmentService(
	uowFactory unitofwork.RepositoryFactory,
	templates ITemplateService,
	gateway engine.Gateway,
	snapshots snapshot.Store,
	locker lock.Locker,
	publisher events.Publisher,
	log logger.ILogger,
) IAssignmentService {
	return &assignmentService{
		uowFactory: uowFactory,
		templates:  templates,
		gateway:    gateway,
		snapshots:  snapshots,
		reconciler: feedback.NewReconciler(),
		locker:     locker,
		events:     newEventPublisher(publisher, log),
		logger:     log,
	}
}

func userLockKey(userId uuid.UUID) string {
	return "user:" + userId.String()
}

func assignmentLockKey(assignmentId uuid.UUID) string {
	return "assignment:" + assignmentId.String()
}

func (s *assignmentService) GetOrCreateAssignment(ctx context.Context, userId uuid.UUID, topic entity.Topic) (_ *dto.AssignmentResponse, err error) {
	ctx, span := tracer.Start(ctx, "service", "assignment.GetOrCreate", attribute.String("topic", string(topic)))
	defer func() { tracer.End(span, err) }()

	if err := dto.Validate(&dto.GetOrCreateAssignmentRequest{Topic: string(topic)}); err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := s.requireUser(ctx, uow, userId); err != nil {
		return nil, err
	}

	existing, err := s.findByTopic(ctx, uow, userId, topic)
	if err != nil {
		return nil, err
	}

	// Cold starts can take minutes, so they happen before the user lock is taken.
	var templates []*entity.AssignmentTemplate
	if existing == nil {
		templates, err = s.templates.GetOrCreateTemplates(ctx, topic)
		if err != nil {
			return nil, err
		}
	}

	unlock, err := s.locker.Lock(ctx, userLockKey(userId))
	if err != nil {
		return nil, err
	}
	defer unlock()

	existing, err = s.findByTopic(ctx, uow, userId, topic)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return s.activate(ctx, uow, existing)
	}
	if templates == nil {
		if templates, err = s.templates.GetOrCreateTemplates(ctx, topic); err != nil {
			return nil, err
		}
	}

	template := s.templates.PickTemplate(templates)
	if template == nil {
		return nil, fmt.Errorf("topic %s has no templates: %w", topic, apperror.ErrNotFound)
	}

	now := time.Now()
	assignment := &entity.Assignment{
		Id:         uuid.New(),
		UserId:     userId,
		TemplateId: template.Id,
		Topic:      topic,
		IsActive:   true,
		CreatedAt:  now,
	}
	first := entity.NewIteration(entity.IterationParams{
		AssignmentId:        assignment.Id,
		Number:              0,
		Summary:             template.Summary,
		SentenceIds:         template.SentenceIds,
		ConfirmatorySummary: template.ConfirmatorySummary,
		ExploratorySummary:  template.ExploratorySummary,
		Weights:             template.Weights,
		Interactions:        cloneTemplateInteractions(template.Interactions),
		SnapshotHandle:      template.SnapshotHandle,
		CreatedAt:           now,
	})

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.AssignmentRepository().DeactivateAllByUserId(ctx, userId); err != nil {
		return nil, err
	}
	if err := uow.AssignmentRepository().Create(ctx, assignment); err != nil {
		return nil, err
	}
	if err := uow.IterationRepository().Create(ctx, first); err != nil {
		return nil, err
	}
	if err := uow.InteractionRepository().SaveAll(ctx, first.Id, first.Interactions); err != nil {
		return nil, err
	}
	if err := uow.AssignmentTemplateRepository().IncrementReuseCount(ctx, template.Id); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	assignment.Iterations = []*entity.Iteration{first}

	s.logger.Info("ASSIGNMENT", "Assignment created", map[string]interface{}{
		"assignment_id": assignment.Id,
		"user_id":       userId,
		"topic":         topic,
		"template_id":   template.Id,
	})
	s.events.publish(ctx, events.AssignmentCreated, map[string]interface{}{
		"assignment_id": assignment.Id.String(),
		"user_id":       userId.String(),
		"topic":         string(topic),
		"template_id":   template.Id.String(),
	})

	return toAssignmentResponse(assignment), nil
}

// cloneTemplateInteractions copies template interactions under fresh ids.
// Template-derived interactions (negative iteration) live at iteration 0.
func cloneTemplateInteractions(src []*entity.Interaction) []*entity.Interaction {
	out := make([]*entity.Interaction, 0, len(src))
	seen := make(map[entity.InteractionKey]bool, len(src))
	for _, in := range src {
		c := in.Clone()
		if c.Iteration < 0 {
			c.Iteration = 0
		}
		if seen[c.Key()] {
			continue
		}
		seen[c.Key()] = true
		out = append(out, c)
	}
	return out
}

func (s *assignmentService) ActivateAssignment(ctx context.Context, assignmentId, userId uuid.UUID) (_ *dto.AssignmentResponse, err error) {
	ctx, span := tracer.Start(ctx, "service", "assignment.Activate", attribute.String("assignment_id", assignmentId.String()))
	defer func() { tracer.End(span, err) }()

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := s.requireUser(ctx, uow, userId); err != nil {
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx, userLockKey(userId))
	if err != nil {
		return nil, err
	}
	defer unlock()

	assignment, err := s.findOwned(ctx, uow, assignmentId, userId)
	if err != nil {
		return nil, err
	}
	return s.activate(ctx, uow, assignment)
}

// activate flips the active flag to assignment. The caller holds the user lock.
func (s *assignmentService) activate(ctx context.Context, uow unitofwork.UnitOfWork, assignment *entity.Assignment) (*dto.AssignmentResponse, error) {
	active, err := uow.AssignmentRepository().Count(ctx,
		specification.UserOwnedBy{UserID: assignment.UserId},
		specification.IsActive{},
	)
	if err != nil {
		return nil, err
	}
	if active > 1 {
		s.logger.Error("ASSIGNMENT", "More than one active assignment", map[string]interface{}{
			"user_id": assignment.UserId,
			"active":  active,
		})
		return nil, fmt.Errorf("user %s has %d active assignments: %w", assignment.UserId, active, apperror.ErrConflictingActiveSession)
	}

	if !assignment.IsActive || active == 0 {
		if err := uow.Begin(ctx); err != nil {
			return nil, err
		}
		defer uow.Rollback()

		// row lock on the user serializes activations across processes
		if _, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: assignment.UserId}, specification.ForUpdate{}); err != nil {
			return nil, err
		}
		if err := uow.AssignmentRepository().DeactivateAllByUserId(ctx, assignment.UserId); err != nil {
			return nil, err
		}
		if err := uow.AssignmentRepository().SetActive(ctx, assignment.Id, true); err != nil {
			return nil, err
		}
		if err := uow.Commit(); err != nil {
			return nil, err
		}

		s.events.publish(ctx, events.AssignmentActivated, map[string]interface{}{
			"assignment_id": assignment.Id.String(),
			"user_id":       assignment.UserId.String(),
			"topic":         string(assignment.Topic),
		})
	}

	reloaded, err := s.load(ctx, uow, assignment.Id)
	if err != nil {
		return nil, err
	}
	return toAssignmentResponse(reloaded), nil
}

func (s *assignmentService) RecordFeedback(ctx context.Context, assignmentId, userId uuid.UUID, req *dto.RecordFeedbackRequest) (_ *dto.AssignmentResponse, err error) {
	ctx, span := tracer.Start(ctx, "service", "assignment.RecordFeedback", attribute.String("assignment_id", assignmentId.String()))
	defer func() { tracer.End(span, err) }()

	if req == nil {
		req = &dto.RecordFeedbackRequest{}
	}
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	items, err := toFeedbackItems(req.Items)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := s.requireUser(ctx, uow, userId); err != nil {
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx, assignmentLockKey(assignmentId))
	if err != nil {
		return nil, err
	}
	defer unlock()

	assignment, err := s.findOwned(ctx, uow, assignmentId, userId)
	if err != nil {
		return nil, err
	}
	current := assignment.CurrentIteration()
	if current == nil {
		return nil, fmt.Errorf("assignment %s has no iterations", assignment.Id)
	}
	span.SetAttributes(attribute.Int("iteration", current.Number))

	reconciled := s.reconciler.Reconcile(current.Id, current.Number, current.Interactions, items)
	current.Interactions = reconciled.Interactions

	// The first round reads the template's state; the assignment gets its own copy
	// so its chain never depends on the template afterwards.
	var input []byte
	inputHandle := current.SnapshotHandle
	if snapshot.IsTemplateHandle(inputHandle) {
		input, err = s.snapshots.Get(ctx, inputHandle)
		if err != nil {
			return nil, err
		}
		inputHandle, err = snapshot.PutAddressed(ctx, s.snapshots, s.coordinate(assignment, current.Number, snapshot.RoleInput), input)
		if err != nil {
			return nil, err
		}
	}

	if err := s.saveFeedback(ctx, uow, current, inputHandle, len(reconciled.Changed()) > 0); err != nil {
		return nil, err
	}
	current.SnapshotHandle = inputHandle
	s.events.publish(ctx, events.FeedbackRecorded, map[string]interface{}{
		"assignment_id": assignment.Id.String(),
		"iteration":     current.Number,
		"updated":       len(reconciled.Updated),
		"inserted":      len(reconciled.Inserted),
	})

	if input == nil {
		if input, err = s.snapshots.Get(ctx, inputHandle); err != nil {
			return nil, err
		}
	}

	labels := engine.LabelsFrom(current.Labels())
	labelsJSON, err := json.Marshal(labels)
	if err != nil {
		return nil, err
	}
	if _, err := snapshot.PutAddressed(ctx, s.snapshots, s.coordinate(assignment, current.Number, snapshot.RoleLabels), labelsJSON); err != nil {
		return nil, err
	}

	res, err := s.gateway.Continue(ctx, input, labels)
	if err != nil {
		metrics.FeedbackRounds.WithLabelValues(metrics.OutcomeFailed).Inc()
		s.logger.Error("ASSIGNMENT", "Engine continue failed", map[string]interface{}{
			"assignment_id": assignment.Id,
			"iteration":     current.Number,
			"error":         err.Error(),
		})
		return nil, fmt.Errorf("advance assignment %s from iteration %d: %w", assignment.Id, current.Number, err)
	}

	next, err := s.advance(ctx, uow, assignment, current, res)
	if err != nil {
		metrics.FeedbackRounds.WithLabelValues(metrics.OutcomeFailed).Inc()
		return nil, err
	}
	assignment.Iterations = append(assignment.Iterations, next)

	metrics.FeedbackRounds.WithLabelValues(metrics.OutcomeSuccess).Inc()
	metrics.IterationsAdvanced.Inc()
	s.logger.Info("ASSIGNMENT", "Iteration advanced", map[string]interface{}{
		"assignment_id": assignment.Id,
		"iteration":     next.Number,
		"labels":        len(labels),
		"proposals":     len(next.Interactions),
		"run_id":        res.RunId,
	})
	s.events.publish(ctx, events.IterationAdvanced, map[string]interface{}{
		"assignment_id": assignment.Id.String(),
		"user_id":       assignment.UserId.String(),
		"iteration":     next.Number,
	})

	return toAssignmentResponse(assignment), nil
}

func (s *assignmentService) coordinate(a *entity.Assignment, iteration int, role snapshot.Role) snapshot.Coordinate {
	return snapshot.Coordinate{
		UserId:       a.UserId,
		AssignmentId: a.Id,
		Iteration:    iteration,
		Role:         role,
	}
}

// saveFeedback commits the reconciled interactions of the current iteration,
// together with its own snapshot handle after a copy-on-first-use.
func (s *assignmentService) saveFeedback(ctx context.Context, uow unitofwork.UnitOfWork, current *entity.Iteration, inputHandle string, changed bool) error {
	if !changed && inputHandle == current.SnapshotHandle {
		return nil
	}
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if inputHandle != current.SnapshotHandle {
		if err := uow.IterationRepository().UpdateSnapshotHandle(ctx, current.Id, inputHandle); err != nil {
			return err
		}
	}
	if changed {
		if err := uow.InteractionRepository().SaveAll(ctx, current.Id, current.Interactions); err != nil {
			return err
		}
	}
	return uow.Commit()
}

// advance stores the engine's output state and appends the next iteration in one
// transaction. A snapshot written here by a round that fails to commit is left
// orphaned under its own content handle.
func (s *assignmentService) advance(ctx context.Context, uow unitofwork.UnitOfWork, assignment *entity.Assignment, current *entity.Iteration, res *engine.Result) (*entity.Iteration, error) {
	number := current.Number + 1
	outputHandle, err := snapshot.PutAddressed(ctx, s.snapshots, s.coordinate(assignment, number, snapshot.RoleOutput), res.Snapshot)
	if err != nil {
		return nil, err
	}

	proposals := res.Proposals()
	interactions := make([]*entity.Interaction, 0, len(proposals))
	for _, p := range proposals {
		interactions = append(interactions, entity.NewInteraction(entity.InteractionParams{
			Concept:     p.Concept,
			Iteration:   number,
			Value:       entity.InteractionRecommendation,
			Weight:      p.Weight,
			Uncertainty: p.Uncertainty,
		}))
	}

	next := entity.NewIteration(entity.IterationParams{
		AssignmentId:        assignment.Id,
		Number:              number,
		Summary:             res.Summary,
		SentenceIds:         res.SentenceIds,
		ConfirmatorySummary: res.ConfirmatorySummary,
		ExploratorySummary:  res.ExploratorySummary,
		Weights:             res.Weights,
		Interactions:        interactions,
		SnapshotHandle:      outputHandle,
		CreatedAt:           time.Now(),
	})

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.IterationRepository().Create(ctx, next); err != nil {
		return nil, err
	}
	if err := uow.InteractionRepository().SaveAll(ctx, next.Id, next.Interactions); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("append iteration %d: %w", number, err)
	}
	return next, nil
}

func toFeedbackItems(items []dto.FeedbackItem) ([]feedback.Item, error) {
	out := make([]feedback.Item, 0, len(items))
	for _, item := range items {
		value, err := entity.ParseInteractionValue(item.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperror.ErrInvalidInput, err)
		}
		out = append(out, feedback.Item{
			Concept:   item.Concept,
			Iteration: item.Iteration,
			Value:     value,
			Weight:    item.Weight,
		})
	}
	return out, nil
}

func (s *assignmentService) ListAssignments(ctx context.Context, userId uuid.UUID) ([]*dto.AssignmentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := s.requireUser(ctx, uow, userId); err != nil {
		return nil, err
	}

	assignments, err := uow.AssignmentRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.AssignmentResponse, 0, len(assignments))
	for _, a := range assignments {
		if err := s.loadIterations(ctx, uow, a); err != nil {
			return nil, err
		}
		out = append(out, toAssignmentResponse(a))
	}
	return out, nil
}

func (s *assignmentService) GetAssignment(ctx context.Context, assignmentId, userId uuid.UUID) (*dto.AssignmentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := s.requireUser(ctx, uow, userId); err != nil {
		return nil, err
	}
	assignment, err := s.findOwned(ctx, uow, assignmentId, userId)
	if err != nil {
		return nil, err
	}
	return toAssignmentResponse(assignment), nil
}

func (s *assignmentService) GetActiveAssignment(ctx context.Context, userId uuid.UUID) (*dto.AssignmentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := s.requireUser(ctx, uow, userId); err != nil {
		return nil, err
	}

	active, err := uow.AssignmentRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.IsActive{},
	)
	if err != nil {
		return nil, err
	}
	switch len(active) {
	case 0:
		return nil, fmt.Errorf("active assignment of user %s: %w", userId, apperror.ErrNotFound)
	case 1:
	default:
		return nil, fmt.Errorf("user %s has %d active assignments: %w", userId, len(active), apperror.ErrConflictingActiveSession)
	}

	if err := s.loadIterations(ctx, uow, active[0]); err != nil {
		return nil, err
	}
	return toAssignmentResponse(active[0]), nil
}

func (s *assignmentService) ScoreText(ctx context.Context, req *dto.ScoreRequest) (*dto.ScoreResponse, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	score, err := s.gateway.Score(ctx, entity.Topic(req.Topic), req.Text)
	if err != nil {
		return nil, err
	}
	return &dto.ScoreResponse{R1: score.R1, R2: score.R2, R4: score.R4}, nil
}

func (s *assignmentService) requireUser(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID) error {
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("user %s: %w", userId, apperror.ErrNotFound)
	}
	return nil
}

func (s *assignmentService) findByTopic(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, topic entity.Topic) (*entity.Assignment, error) {
	return uow.AssignmentRepository().FindOne(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.ByTopic{Topic: topic},
	)
}

// findOwned loads an assignment with its iterations after checking the owner.
func (s *assignmentService) findOwned(ctx context.Context, uow unitofwork.UnitOfWork, assignmentId, userId uuid.UUID) (*entity.Assignment, error) {
	assignment, err := s.load(ctx, uow, assignmentId)
	if err != nil {
		return nil, err
	}
	if assignment.UserId != userId {
		return nil, fmt.Errorf("assignment %s: %w", assignmentId, apperror.ErrUnauthorized)
	}
	return assignment, nil
}

func (s *assignmentService) load(ctx context.Context, uow unitofwork.UnitOfWork, assignmentId uuid.UUID) (*entity.Assignment, error) {
	assignment, err := uow.AssignmentRepository().FindOne(ctx, specification.ByID{ID: assignmentId})
	if err != nil {
		return nil, err
	}
	if assignment == nil {
		return nil, fmt.Errorf("assignment %s: %w", assignmentId, apperror.ErrNotFound)
	}
	if err := s.loadIterations(ctx, uow, assignment); err != nil {
		return nil, err
	}
	return assignment, nil
}

func (s *assignmentService) loadIterations(ctx context.Context, uow unitofwork.UnitOfWork, assignment *entity.Assignment) error {
	iterations, err := uow.IterationRepository().FindAll(ctx,
		specification.ByAssignmentID{AssignmentID: assignment.Id},
		specification.OrderBy{Field: "number"},
	)
	if err != nil {
		return err
	}
	for _, it := range iterations {
		interactions, err := uow.InteractionRepository().FindAll(ctx, specification.ByIterationID{IterationID: it.Id})
		if err != nil {
			return err
		}
		it.Interactions = interactions
	}
	assignment.Iterations = iterations
	return nil
}
