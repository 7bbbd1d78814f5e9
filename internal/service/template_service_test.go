package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"summarizer-session-be/internal/entity"
	"summarizer-session-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreateTemplates_OneColdStartPerVariant(t *testing.T) {
	ctx := context.Background()
	variants := []entity.Variant{
		entity.DefaultVariant,
		{Propagation: entity.PropagationWEGFG, Concept: entity.ConceptParse},
	}
	f := newFixture(t, variants...)

	templates, err := f.templates.GetOrCreateTemplates(ctx, "T")
	require.NoError(t, err)
	require.Len(t, templates, 2)
	assert.Equal(t, int32(2), f.gateway.coldStarts.Load())
	assert.Equal(t, variants[0], templates[0].Variant)
	assert.Equal(t, variants[1], templates[1].Variant)

	for _, tmpl := range templates {
		state, err := f.snapshots.Get(ctx, tmpl.SnapshotHandle)
		require.NoError(t, err)
		assert.Equal(t, []byte("state:T:"+tmpl.Variant.String()), state)
	}

	again, err := f.templates.GetOrCreateTemplates(ctx, "T")
	require.NoError(t, err)
	assert.Len(t, again, 2)
	assert.Equal(t, int32(2), f.gateway.coldStarts.Load())
}

func TestGetOrCreateTemplates_ConcurrentFirstAccess(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.gateway.coldStartDelay = 50 * time.Millisecond

	users := make([]uuid.UUID, 10)
	for i := range users {
		users[i] = f.registerUser(t)
	}

	var wg sync.WaitGroup
	for _, userId := range users {
		wg.Add(1)
		go func(userId uuid.UUID) {
			defer wg.Done()
			_, err := f.assignments.GetOrCreateAssignment(ctx, userId, "T")
			assert.NoError(t, err)
		}(userId)
	}
	wg.Wait()

	assert.Equal(t, int32(1), f.gateway.coldStarts.Load())
	templates, err := f.templates.ListTemplates(ctx, "T")
	require.NoError(t, err)
	require.Len(t, templates, 1)
	assert.Equal(t, len(users), templates[0].ReuseCount)
}

func TestGetOrCreateTemplates_FailureIsNotCached(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.gateway.coldStartErr = assert.AnError

	_, err := f.templates.GetOrCreateTemplates(ctx, "T")
	require.Error(t, err)

	f.gateway.coldStartErr = nil
	templates, err := f.templates.GetOrCreateTemplates(ctx, "T")
	require.NoError(t, err)
	assert.Len(t, templates, 1)
	assert.Equal(t, int32(2), f.gateway.coldStarts.Load())
}

func TestGetOrCreateTemplates_CancelledCallerDoesNotFailOthers(t *testing.T) {
	f := newFixture(t)
	f.gateway.coldStartDelay = 100 * time.Millisecond

	first, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := f.templates.GetOrCreateTemplates(first, "T")
		firstErr <- err
	}()

	require.Eventually(t, func() bool { return f.gateway.coldStarts.Load() == 1 }, time.Second, 5*time.Millisecond)
	secondDone := make(chan struct{})
	var templates []*entity.AssignmentTemplate
	var err error
	go func() {
		defer close(secondDone)
		templates, err = f.templates.GetOrCreateTemplates(context.Background(), "T")
	}()
	cancel()

	assert.ErrorIs(t, <-firstErr, context.Canceled)
	<-secondDone
	require.NoError(t, err)
	assert.Len(t, templates, 1)
	assert.Equal(t, int32(1), f.gateway.coldStarts.Load())

	stored, err := f.templates.ListTemplates(context.Background(), "T")
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestTemplatePicker_Uniform(t *testing.T) {
	templates := []*entity.AssignmentTemplate{{Id: uuid.New()}, {Id: uuid.New()}}
	picker := NewTemplatePicker(7)

	counts := map[uuid.UUID]int{}
	for i := 0; i < 1000; i++ {
		counts[picker.Pick(templates).Id]++
	}

	assert.Len(t, counts, 2)
	for _, tmpl := range templates {
		assert.InDelta(t, 500, counts[tmpl.Id], 100)
	}
}

func TestTemplatePicker_SeedIsReproducible(t *testing.T) {
	templates := []*entity.AssignmentTemplate{{Id: uuid.New()}, {Id: uuid.New()}, {Id: uuid.New()}}
	a, b := NewTemplatePicker(42), NewTemplatePicker(42)

	for i := 0; i < 20; i++ {
		assert.Same(t, a.Pick(templates), b.Pick(templates))
	}
	assert.Nil(t, a.Pick(nil))
}

func TestWarmupService_ColdStartsRequestedTopics(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f := newFixture(t)

	pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 8}, watermill.NopLogger{})
	defer pubSub.Close()
	warmup := NewWarmupService(pubSub, WarmupTopic, f.templates, logger.NewNopLogger())
	require.NoError(t, warmup.Consume(ctx))

	require.NoError(t, warmup.Request(ctx, "T1", "T2"))

	assert.Eventually(t, func() bool {
		return f.gateway.coldStarts.Load() == 2
	}, 5*time.Second, 10*time.Millisecond)

	assert.Error(t, warmup.Request(ctx, "not a topic"))
}
