package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"summarizer-session-be/internal/dto"
	"summarizer-session-be/internal/entity"
	"summarizer-session-be/internal/pkg/logger"
	"summarizer-session-be/internal/repository/memory"
	"summarizer-session-be/internal/repository/unitofwork"
	"summarizer-session-be/pkg/engine"
	"summarizer-session-be/pkg/events"
	"summarizer-session-be/pkg/lock"
	"summarizer-session-be/pkg/snapshot"
	"summarizer-session-be/pkg/snapshot/filestore"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type continueCall struct {
	snapshot []byte
	labels   []engine.Label
}

// fakeGateway answers like the engine without running it. Cold starts return
// the seed used in the session scenarios; continues append "+" to the state.
type fakeGateway struct {
	coldStartDelay time.Duration
	coldStartErr   error
	continueErr    error

	coldStarts atomic.Int32

	mu        sync.Mutex
	continues []continueCall
}

func (g *fakeGateway) ColdStart(ctx context.Context, topic entity.Topic, variant entity.Variant) (*engine.Result, error) {
	g.coldStarts.Add(1)
	if g.coldStartDelay > 0 {
		time.Sleep(g.coldStartDelay)
	}
	if g.coldStartErr != nil {
		return nil, g.coldStartErr
	}
	return &engine.Result{
		Summary:             []string{"s1", "s2"},
		SentenceIds:         []int{1, 2},
		ConfirmatorySummary: []int64{1},
		ExploratorySummary:  []int64{2},
		Weights:             map[string]float64{"c1": 0.5},
		Interactions: []*entity.Interaction{
			{Concept: "c1", Iteration: -1, Value: entity.InteractionRecommendation, Weight: 0.5, Uncertainty: 0.9},
		},
		Snapshot: []byte("state:" + string(topic) + ":" + variant.String()),
		RunId:    "cold-" + string(topic),
	}, nil
}

func (g *fakeGateway) Continue(ctx context.Context, state []byte, labels []engine.Label) (*engine.Result, error) {
	g.mu.Lock()
	g.continues = append(g.continues, continueCall{snapshot: append([]byte{}, state...), labels: labels})
	round := len(g.continues)
	err := g.continueErr
	g.mu.Unlock()
	if err != nil {
		return nil, err
	}
	concept := fmt.Sprintf("c%d", round+1)
	return &engine.Result{
		Summary:     []string{"s1"},
		SentenceIds: []int{1},
		Weights:     map[string]float64{"c1": 1},
		Interactions: []*entity.Interaction{
			// echoed known interaction, ignored
			{Concept: "c1", Iteration: 0, Value: entity.InteractionAccept},
			{Concept: concept, Iteration: -2, Value: entity.InteractionRecommendation, Weight: 0.3, Uncertainty: 0.6},
		},
		Snapshot: append(append([]byte{}, state...), '+'),
	}, nil
}

func (g *fakeGateway) Score(ctx context.Context, topic entity.Topic, text string) (*engine.RougeScore, error) {
	return &engine.RougeScore{R1: 0.5, R2: 0.25, R4: 0.125}, nil
}

func (g *fakeGateway) setContinueErr(err error) {
	g.mu.Lock()
	g.continueErr = err
	g.mu.Unlock()
}

func (g *fakeGateway) continueCalls() []continueCall {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]continueCall{}, g.continues...)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

type fixture struct {
	store       *memory.Store
	factory     unitofwork.RepositoryFactory
	gateway     *fakeGateway
	snapshots   snapshot.Store
	publisher   *recordingPublisher
	templates   ITemplateService
	assignments IAssignmentService
	users       IUserService
}

func newFixture(t *testing.T, variants ...entity.Variant) *fixture {
	t.Helper()
	snapshots, err := filestore.New(t.TempDir())
	require.NoError(t, err)

	f := &fixture{
		store:     memory.NewStore(),
		gateway:   &fakeGateway{},
		snapshots: snapshots,
		publisher: &recordingPublisher{},
	}
	f.factory = memory.NewRepositoryFactory(f.store)
	log := logger.NewNopLogger()
	locker := lock.NewLocalLocker()

	f.templates = NewTemplateService(
		f.factory,
		f.gateway,
		f.snapshots,
		locker,
		memory.NewTemplateCache(time.Minute),
		NewTemplatePicker(1),
		variants,
		f.publisher,
		log,
	)
	f.assignments = NewAssignmentService(f.factory, f.templates, f.gateway, f.snapshots, locker, f.publisher, log)
	f.users = NewUserService(f.factory, log)
	return f
}

func (f *fixture) registerUser(t *testing.T) uuid.UUID {
	t.Helper()
	u, err := f.users.Register(context.Background(), &dto.RegisterUserRequest{Name: "reviewer"})
	require.NoError(t, err)
	return u.Id
}

func accept(concept string) dto.FeedbackItem {
	return dto.FeedbackItem{Concept: concept, Value: "accept"}
}

func reject(concept string) dto.FeedbackItem {
	return dto.FeedbackItem{Concept: concept, Value: "reject"}
}

func feedbackOf(items ...dto.FeedbackItem) *dto.RecordFeedbackRequest {
	return &dto.RecordFeedbackRequest{Items: items}
}

func findInteraction(it *dto.IterationResponse, concept string) *dto.InteractionResponse {
	for i := range it.Interactions {
		if it.Interactions[i].Concept == concept {
			return &it.Interactions[i]
		}
	}
	return nil
}
