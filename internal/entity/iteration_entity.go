package entity

import (
	"time"

	"github.com/google/uuid"
)

type Iteration struct {
	Id                  uuid.UUID
	AssignmentId        uuid.UUID
	Number              int
	Summary             []string
	SentenceIds         []int
	ConfirmatorySummary []int64
	ExploratorySummary  []int64
	Weights             map[string]float64
	Interactions        []*Interaction
	// SnapshotHandle names the solver state the engine continues from when
	// feedback is recorded against this iteration.
	SnapshotHandle string
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}

type IterationParams struct {
	AssignmentId        uuid.UUID
	Number              int
	Summary             []string
	SentenceIds         []int
	ConfirmatorySummary []int64
	ExploratorySummary  []int64
	Weights             map[string]float64
	Interactions        []*Interaction
	SnapshotHandle      string
	CreatedAt           time.Time
}

// NewIteration copies every slice and map it is given and points the
// interactions at the new iteration.
func NewIteration(p IterationParams) *Iteration {
	it := &Iteration{
		Id:                  uuid.New(),
		AssignmentId:        p.AssignmentId,
		Number:              p.Number,
		Summary:             append([]string{}, p.Summary...),
		SentenceIds:         append([]int{}, p.SentenceIds...),
		ConfirmatorySummary: append([]int64{}, p.ConfirmatorySummary...),
		ExploratorySummary:  append([]int64{}, p.ExploratorySummary...),
		Weights:             make(map[string]float64, len(p.Weights)),
		Interactions:        make([]*Interaction, 0, len(p.Interactions)),
		SnapshotHandle:      p.SnapshotHandle,
		CreatedAt:           p.CreatedAt,
	}
	for k, v := range p.Weights {
		it.Weights[k] = v
	}
	for _, in := range p.Interactions {
		in.IterationId = it.Id
		it.Interactions = append(it.Interactions, in)
	}
	return it
}

// Labels returns the answered interactions introduced at this iteration, in order.
func (it *Iteration) Labels() []*Interaction {
	labels := make([]*Interaction, 0)
	for _, in := range it.Interactions {
		if in.Value.IsLabel() && in.Iteration >= it.Number {
			labels = append(labels, in)
		}
	}
	return labels
}
