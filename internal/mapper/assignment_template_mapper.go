package mapper

import (
	"summarizer-session-be/internal/entity"
	"summarizer-session-be/internal/model"

	"gorm.io/datatypes"
)

type AssignmentTemplateMapper struct{}

func NewAssignmentTemplateMapper() *AssignmentTemplateMapper {
	return &AssignmentTemplateMapper{}
}

func (m *AssignmentTemplateMapper) ToEntity(t *model.AssignmentTemplate) *entity.AssignmentTemplate {
	if t == nil {
		return nil
	}
	interactions := make([]*entity.Interaction, 0, len(t.Interactions))
	for _, in := range t.Interactions {
		interactions = append(interactions, &entity.Interaction{
			Concept:     in.Concept,
			Iteration:   in.Iteration,
			Value:       entity.InteractionValue(in.Value),
			Weight:      in.Weight,
			Uncertainty: in.Uncertainty,
		})
	}
	return &entity.AssignmentTemplate{
		Id:    t.Id,
		Topic: entity.Topic(t.Topic),
		Variant: entity.Variant{
			Propagation: entity.PropagationType(t.Propagation),
			Concept:     entity.ConceptType(t.ConceptType),
		},
		Summary:             append([]string{}, t.Summary...),
		SentenceIds:         append([]int{}, t.SentenceIds...),
		ConfirmatorySummary: append([]int64{}, t.ConfirmatorySummary...),
		ExploratorySummary:  append([]int64{}, t.ExploratorySummary...),
		Weights:             copyWeights(t.Weights.Data()),
		Interactions:        interactions,
		SnapshotHandle:      t.SnapshotHandle,
		RunId:               t.RunId,
		ReuseCount:          t.ReuseCount,
		CreatedAt:           t.CreatedAt,
	}
}

func (m *AssignmentTemplateMapper) ToModel(t *entity.AssignmentTemplate) *model.AssignmentTemplate {
	if t == nil {
		return nil
	}
	interactions := make([]model.TemplateInteraction, 0, len(t.Interactions))
	for _, in := range t.Interactions {
		interactions = append(interactions, model.TemplateInteraction{
			Concept:     in.Concept,
			Iteration:   in.Iteration,
			Value:       string(in.Value),
			Weight:      in.Weight,
			Uncertainty: in.Uncertainty,
		})
	}
	return &model.AssignmentTemplate{
		Id:                  t.Id,
		Topic:               string(t.Topic),
		Propagation:         string(t.Variant.Propagation),
		ConceptType:         string(t.Variant.Concept),
		Summary:             datatypes.NewJSONSlice(t.Summary),
		SentenceIds:         datatypes.NewJSONSlice(t.SentenceIds),
		ConfirmatorySummary: datatypes.NewJSONSlice(t.ConfirmatorySummary),
		ExploratorySummary:  datatypes.NewJSONSlice(t.ExploratorySummary),
		Weights:             datatypes.NewJSONType(copyWeights(t.Weights)),
		Interactions:        datatypes.NewJSONSlice(interactions),
		SnapshotHandle:      t.SnapshotHandle,
		RunId:               t.RunId,
		ReuseCount:          t.ReuseCount,
		CreatedAt:           t.CreatedAt,
	}
}

func (m *AssignmentTemplateMapper) ToEntities(templates []*model.AssignmentTemplate) []*entity.AssignmentTemplate {
	entities := make([]*entity.AssignmentTemplate, len(templates))
	for i, t := range templates {
		entities[i] = m.ToEntity(t)
	}
	return entities
}

func copyWeights(w map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(w))
	for k, v := range w {
		out[k] = v
	}
	return out
}
