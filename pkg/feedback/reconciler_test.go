package feedback

import (
	"testing"

	"summarizer-session-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int { return &i }

func floatPtr(f float64) *float64 { return &f }

func interaction(concept string, iteration int, value entity.InteractionValue) *entity.Interaction {
	return entity.NewInteraction(entity.InteractionParams{
		Concept:     concept,
		Iteration:   iteration,
		Value:       value,
		Weight:      0.5,
		Uncertainty: 0.8,
	})
}

func TestReconcile_AnswersKnownInteraction(t *testing.T) {
	existing := []*entity.Interaction{
		interaction("alpha", 0, entity.InteractionRecommendation),
		interaction("beta", 0, entity.InteractionRecommendation),
	}

	res := NewReconciler().Reconcile(uuid.New(), 0, existing, []Item{
		{Concept: "alpha", Iteration: intPtr(0), Value: entity.InteractionAccept},
	})

	require.Len(t, res.Interactions, 2)
	assert.Equal(t, entity.InteractionAccept, existing[0].Value)
	assert.Equal(t, 0.0, existing[0].Uncertainty)
	// weight is kept when the item does not carry one
	assert.Equal(t, 0.5, existing[0].Weight)
	assert.Equal(t, entity.InteractionRecommendation, existing[1].Value)
	assert.Equal(t, []*entity.Interaction{existing[0]}, res.Updated)
	assert.Empty(t, res.Inserted)
}

func TestReconcile_TemplateIterationMapsToZero(t *testing.T) {
	existing := []*entity.Interaction{interaction("alpha", 0, entity.InteractionRecommendation)}

	res := NewReconciler().Reconcile(uuid.New(), 0, existing, []Item{
		{Concept: "alpha", Iteration: intPtr(-1), Value: entity.InteractionReject, Weight: floatPtr(2)},
	})

	assert.Len(t, res.Interactions, 1)
	assert.Equal(t, entity.InteractionReject, existing[0].Value)
	assert.Equal(t, 2.0, existing[0].Weight)
}

func TestReconcile_InlineFeedbackIsInserted(t *testing.T) {
	iterationId := uuid.New()
	existing := []*entity.Interaction{interaction("alpha", 0, entity.InteractionRecommendation)}

	res := NewReconciler().Reconcile(iterationId, 2, existing, []Item{
		{Concept: "gamma", Value: entity.InteractionAccept, Weight: floatPtr(0.4)},
	})

	require.Len(t, res.Inserted, 1)
	in := res.Inserted[0]
	assert.Equal(t, "gamma", in.Concept)
	assert.Equal(t, 2, in.Iteration)
	assert.Equal(t, iterationId, in.IterationId)
	assert.Equal(t, 0.4, in.Weight)
	assert.Equal(t, 0.0, in.Uncertainty)
	assert.Len(t, res.Interactions, 2)
	assert.Same(t, in, res.Interactions[1])
}

func TestReconcile_UnknownKeyFallsBackToCurrentIteration(t *testing.T) {
	existing := []*entity.Interaction{interaction("gamma", 3, entity.InteractionAccept)}

	res := NewReconciler().Reconcile(uuid.New(), 3, existing, []Item{
		{Concept: "gamma", Iteration: intPtr(7), Value: entity.InteractionReject},
	})

	assert.Empty(t, res.Inserted)
	assert.Equal(t, entity.InteractionReject, existing[0].Value)
}

func TestReconcile_ReplayConverges(t *testing.T) {
	existing := []*entity.Interaction{
		interaction("alpha", 0, entity.InteractionRecommendation),
		interaction("beta", 1, entity.InteractionRecommendation),
	}
	items := []Item{
		{Concept: "alpha", Iteration: intPtr(0), Value: entity.InteractionAccept},
		{Concept: "beta", Iteration: intPtr(1), Value: entity.InteractionReject},
		{Concept: "delta", Value: entity.InteractionAccept},
	}
	r := NewReconciler()

	first := r.Reconcile(uuid.New(), 1, existing, items)
	second := r.Reconcile(uuid.New(), 1, first.Interactions, items)

	assert.Len(t, second.Interactions, 3)
	assert.Empty(t, second.Inserted)
	for i := range first.Interactions {
		assert.Equal(t, first.Interactions[i].Key(), second.Interactions[i].Key())
		assert.Equal(t, first.Interactions[i].Value, second.Interactions[i].Value)
	}
}

func TestReconcile_DuplicateItemsInOneBatch(t *testing.T) {
	res := NewReconciler().Reconcile(uuid.New(), 0, nil, []Item{
		{Concept: "delta", Value: entity.InteractionAccept},
		{Concept: "delta", Value: entity.InteractionReject},
	})

	require.Len(t, res.Inserted, 1)
	assert.Empty(t, res.Updated)
	assert.Equal(t, entity.InteractionReject, res.Inserted[0].Value)
	assert.Len(t, res.Changed(), 1)
}

func TestReconcile_NeverRemoves(t *testing.T) {
	existing := []*entity.Interaction{
		interaction("alpha", 0, entity.InteractionRecommendation),
		interaction("beta", 0, entity.InteractionAccept),
	}

	res := NewReconciler().Reconcile(uuid.New(), 1, existing, nil)

	assert.Equal(t, existing, res.Interactions)
	assert.Empty(t, res.Changed())
}
