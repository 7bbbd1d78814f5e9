// Package engine drives the external summarization engine as a batch process.
// Every invocation runs in its own temp directory, blocks until the process
// exits, and yields either a complete result or an *Error.
package engine

import (
	"context"

	"summarizer-session-be/internal/entity"
)

type Gateway interface {
	// ColdStart computes the first summary of a topic.
	ColdStart(ctx context.Context, topic entity.Topic, variant entity.Variant) (*Result, error)
	// Continue advances a session from snapshot using the given labels.
	Continue(ctx context.Context, snapshot []byte, labels []Label) (*Result, error)
	// Score rates text against the topic's reference summaries.
	Score(ctx context.Context, topic entity.Topic, text string) (*RougeScore, error)
}

// Label is one answered interaction in the labels file handed to the engine.
type Label struct {
	Concept   string                  `json:"concept"`
	Value     entity.InteractionValue `json:"value"`
	Iteration int                     `json:"iteration"`
	Weight    float64                 `json:"weight"`
}

func LabelsFrom(interactions []*entity.Interaction) []Label {
	labels := make([]Label, 0, len(interactions))
	for _, in := range interactions {
		labels = append(labels, Label{
			Concept:   in.Concept,
			Value:     in.Value,
			Iteration: in.Iteration,
			Weight:    in.Weight,
		})
	}
	return labels
}

type Result struct {
	Summary             []string
	SentenceIds         []int
	ConfirmatorySummary []int64
	ExploratorySummary  []int64
	Weights             map[string]float64
	// Interactions as reported by the engine. New proposals carry a negative
	// iteration; echoed known interactions keep theirs.
	Interactions []*entity.Interaction
	Snapshot     []byte
	RunId        string
}

// Proposals returns the engine's new recommendations, one per concept, in
// result order.
func (r *Result) Proposals() []*entity.Interaction {
	seen := make(map[string]bool)
	out := make([]*entity.Interaction, 0)
	for _, in := range r.Interactions {
		if in.Iteration >= 0 || seen[in.Concept] {
			continue
		}
		seen[in.Concept] = true
		out = append(out, in)
	}
	return out
}

type RougeScore struct {
	R1 float64 `json:"R1"`
	R2 float64 `json:"R2"`
	R4 float64 `json:"R4"`
}
