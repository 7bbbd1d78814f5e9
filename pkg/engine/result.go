package engine

import (
	"encoding/json"
	"errors"
	"fmt"

	"summarizer-session-be/internal/entity"
)

// recommendationIteration is what the engine means when it leaves the iteration out.
const recommendationIteration = -2

type rawInteraction struct {
	Concept      string   `json:"concept"`
	Iteration    *int     `json:"iteration"`
	Value        string   `json:"value"`
	Weight       *float64 `json:"weight"`
	Uncertainty  *float64 `json:"uncertainty"`
	Uncertainity *float64 `json:"uncertainity"`
}

type rawResult struct {
	Summary             *[]string          `json:"summary"`
	SentenceIds         []int              `json:"sentence_ids"`
	ConfirmatorySummary []int64            `json:"confirmatory_summary"`
	ExploratorySummary  []int64            `json:"exploratory_summary"`
	Weights             map[string]float64 `json:"weights"`
	FbsWeights          map[string]float64 `json:"fbs_weights"`
	Interactions        []rawInteraction   `json:"interactions"`
	Details             []rawInteraction   `json:"details"`
	RunId               string             `json:"run_id"`
}

var errMissingSummary = errors.New("result has no summary")

func parseResult(data []byte) (*Result, error) {
	var raw rawResult
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	if raw.Summary == nil {
		return nil, errMissingSummary
	}

	weights := raw.Weights
	if len(weights) == 0 {
		weights = raw.FbsWeights
	}
	if weights == nil {
		weights = map[string]float64{}
	}

	items := raw.Interactions
	if len(items) == 0 {
		items = raw.Details
	}
	interactions := make([]*entity.Interaction, 0, len(items))
	for i, item := range items {
		in, err := item.toEntity()
		if err != nil {
			return nil, fmt.Errorf("interaction %d: %w", i, err)
		}
		interactions = append(interactions, in)
	}

	return &Result{
		Summary:             append([]string{}, (*raw.Summary)...),
		SentenceIds:         nonNil(raw.SentenceIds),
		ConfirmatorySummary: nonNil(raw.ConfirmatorySummary),
		ExploratorySummary:  nonNil(raw.ExploratorySummary),
		Weights:             weights,
		Interactions:        interactions,
		RunId:               raw.RunId,
	}, nil
}

func (r rawInteraction) toEntity() (*entity.Interaction, error) {
	if r.Concept == "" {
		return nil, errors.New("concept is empty")
	}
	value := entity.InteractionRecommendation
	if r.Value != "" {
		v, err := entity.ParseInteractionValue(r.Value)
		if err != nil {
			return nil, err
		}
		value = v
	}
	iteration := recommendationIteration
	if r.Iteration != nil {
		iteration = *r.Iteration
	}
	in := &entity.Interaction{
		Concept:   r.Concept,
		Iteration: iteration,
		Value:     value,
	}
	if r.Weight != nil {
		in.Weight = *r.Weight
	}
	switch {
	case r.Uncertainty != nil:
		in.Uncertainty = *r.Uncertainty
	case r.Uncertainity != nil:
		in.Uncertainty = *r.Uncertainity
	}
	return in, nil
}

type rawRouge struct {
	R1 *float64 `json:"R1"`
	R2 *float64 `json:"R2"`
	R4 *float64 `json:"R4"`
}

func parseRouge(data []byte) (*RougeScore, error) {
	var raw rawRouge
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode rouge result: %w", err)
	}
	if raw.R1 == nil || raw.R2 == nil || raw.R4 == nil {
		return nil, errors.New("rouge result needs R1, R2 and R4")
	}
	return &RougeScore{R1: *raw.R1, R2: *raw.R2, R4: *raw.R4}, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
