// Package feedback merges user feedback into the interaction set of an iteration.
//
// Interactions are matched by their (concept, iteration introduced) key through an
// explicit index. A match is answered in place; anything else the user labelled is
// inserted as inline feedback tagged with the current iteration. Nothing is ever
// removed, and replaying a batch converges to the same set.
package feedback

import (
	"summarizer-session-be/internal/entity"

	"github.com/google/uuid"
)

// Item is one piece of incoming feedback. A nil Iteration means the current
// iteration; a negative one refers to a template-derived interaction, which lives
// at iteration 0 once cloned into an assignment.
type Item struct {
	Concept   string
	Iteration *int
	Value     entity.InteractionValue
	Weight    *float64
}

type Result struct {
	// Interactions is the full set: the existing ones in their original order
	// followed by the inserted ones.
	Interactions []*entity.Interaction
	Updated      []*entity.Interaction
	Inserted     []*entity.Interaction
}

// Changed returns updated and inserted interactions, without duplicates.
func (r *Result) Changed() []*entity.Interaction {
	seen := make(map[*entity.Interaction]bool, len(r.Updated)+len(r.Inserted))
	out := make([]*entity.Interaction, 0, len(r.Updated)+len(r.Inserted))
	for _, in := range append(append([]*entity.Interaction{}, r.Updated...), r.Inserted...) {
		if seen[in] {
			continue
		}
		seen[in] = true
		out = append(out, in)
	}
	return out
}

type Reconciler struct{}

func NewReconciler() *Reconciler {
	return &Reconciler{}
}

// Reconcile applies items to the interactions of iteration current. The existing
// interactions are mutated in place.
func (r *Reconciler) Reconcile(iterationId uuid.UUID, current int, existing []*entity.Interaction, items []Item) *Result {
	index := make(map[entity.InteractionKey]*entity.Interaction, len(existing)+len(items))
	res := &Result{Interactions: make([]*entity.Interaction, 0, len(existing)+len(items))}
	for _, in := range existing {
		if _, dup := index[in.Key()]; !dup {
			index[in.Key()] = in
		}
		res.Interactions = append(res.Interactions, in)
	}

	updated := make(map[*entity.Interaction]bool)
	for _, item := range items {
		key := entity.InteractionKey{Concept: item.Concept, Iteration: normalizeIteration(item.Iteration, current)}

		match, ok := index[key]
		if !ok {
			// a replayed inline item was stored under the current iteration
			match, ok = index[entity.InteractionKey{Concept: item.Concept, Iteration: current}]
		}

		if ok {
			match.Value = item.Value
			match.Uncertainty = 0
			if item.Weight != nil {
				match.Weight = *item.Weight
			}
			if !updated[match] && !isInserted(res.Inserted, match) {
				updated[match] = true
				res.Updated = append(res.Updated, match)
			}
			continue
		}

		weight := 0.0
		if item.Weight != nil {
			weight = *item.Weight
		}
		in := entity.NewInteraction(entity.InteractionParams{
			IterationId: iterationId,
			Concept:     item.Concept,
			Iteration:   current,
			Value:       item.Value,
			Weight:      weight,
			Uncertainty: 0,
		})
		index[in.Key()] = in
		res.Interactions = append(res.Interactions, in)
		res.Inserted = append(res.Inserted, in)
	}
	return res
}

func normalizeIteration(it *int, current int) int {
	if it == nil {
		return current
	}
	if *it < 0 {
		return 0
	}
	return *it
}

func isInserted(inserted []*entity.Interaction, in *entity.Interaction) bool {
	for _, i := range inserted {
		if i == in {
			return true
		}
	}
	return false
}
