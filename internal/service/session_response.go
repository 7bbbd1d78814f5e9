package service

import (
	"summarizer-session-be/internal/dto"
	"summarizer-session-be/internal/entity"
)

func toInteractionResponses(interactions []*entity.Interaction) []dto.InteractionResponse {
	out := make([]dto.InteractionResponse, 0, len(interactions))
	for _, in := range interactions {
		out = append(out, dto.InteractionResponse{
			Concept:     in.Concept,
			Iteration:   in.Iteration,
			Value:       string(in.Value),
			Weight:      in.Weight,
			Uncertainty: in.Uncertainty,
		})
	}
	return out
}

func toIterationResponse(it *entity.Iteration) dto.IterationResponse {
	return dto.IterationResponse{
		Id:                  it.Id,
		Number:              it.Number,
		Summary:             it.Summary,
		SentenceIds:         it.SentenceIds,
		ConfirmatorySummary: it.ConfirmatorySummary,
		ExploratorySummary:  it.ExploratorySummary,
		Weights:             it.Weights,
		Interactions:        toInteractionResponses(it.Interactions),
		SnapshotHandle:      it.SnapshotHandle,
		CreatedAt:           it.CreatedAt,
	}
}

func toAssignmentResponse(a *entity.Assignment) *dto.AssignmentResponse {
	iterations := make([]dto.IterationResponse, 0, len(a.Iterations))
	for _, it := range a.Iterations {
		iterations = append(iterations, toIterationResponse(it))
	}
	return &dto.AssignmentResponse{
		Id:         a.Id,
		UserId:     a.UserId,
		TemplateId: a.TemplateId,
		Topic:      string(a.Topic),
		IsActive:   a.IsActive,
		Iterations: iterations,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}

func toTemplateResponse(t *entity.AssignmentTemplate) *dto.TemplateResponse {
	return &dto.TemplateResponse{
		Id:             t.Id,
		Topic:          string(t.Topic),
		Variant:        t.Variant.String(),
		Summary:        t.Summary,
		SentenceIds:    t.SentenceIds,
		Weights:        t.Weights,
		Interactions:   toInteractionResponses(t.Interactions),
		SnapshotHandle: t.SnapshotHandle,
		RunId:          t.RunId,
		ReuseCount:     t.ReuseCount,
		CreatedAt:      t.CreatedAt,
	}
}
