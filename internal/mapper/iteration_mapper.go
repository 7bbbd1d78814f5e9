package mapper

import (
	"time"

	"summarizer-session-be/internal/entity"
	"summarizer-session-be/internal/model"

	"gorm.io/datatypes"
)

type IterationMapper struct{}

func NewIterationMapper() *IterationMapper {
	return &IterationMapper{}
}

// ToEntity maps the iteration row; Interactions stays empty until the
// interaction repository fills it.
func (m *IterationMapper) ToEntity(it *model.Iteration) *entity.Iteration {
	if it == nil {
		return nil
	}
	var updatedAt *time.Time
	if !it.UpdatedAt.IsZero() {
		t := it.UpdatedAt
		updatedAt = &t
	}
	return &entity.Iteration{
		Id:                  it.Id,
		AssignmentId:        it.AssignmentId,
		Number:              it.Number,
		Summary:             append([]string{}, it.Summary...),
		SentenceIds:         append([]int{}, it.SentenceIds...),
		ConfirmatorySummary: append([]int64{}, it.ConfirmatorySummary...),
		ExploratorySummary:  append([]int64{}, it.ExploratorySummary...),
		Weights:             copyWeights(it.Weights.Data()),
		Interactions:        []*entity.Interaction{},
		SnapshotHandle:      it.SnapshotHandle,
		CreatedAt:           it.CreatedAt,
		UpdatedAt:           updatedAt,
	}
}

func (m *IterationMapper) ToModel(it *entity.Iteration) *model.Iteration {
	if it == nil {
		return nil
	}
	var updatedAt time.Time
	if it.UpdatedAt != nil {
		updatedAt = *it.UpdatedAt
	}
	return &model.Iteration{
		Id:                  it.Id,
		AssignmentId:        it.AssignmentId,
		Number:              it.Number,
		Summary:             datatypes.NewJSONSlice(it.Summary),
		SentenceIds:         datatypes.NewJSONSlice(it.SentenceIds),
		ConfirmatorySummary: datatypes.NewJSONSlice(it.ConfirmatorySummary),
		ExploratorySummary:  datatypes.NewJSONSlice(it.ExploratorySummary),
		Weights:             datatypes.NewJSONType(copyWeights(it.Weights)),
		SnapshotHandle:      it.SnapshotHandle,
		CreatedAt:           it.CreatedAt,
		UpdatedAt:           updatedAt,
	}
}

func (m *IterationMapper) ToEntities(iterations []*model.Iteration) []*entity.Iteration {
	entities := make([]*entity.Iteration, len(iterations))
	for i, it := range iterations {
		entities[i] = m.ToEntity(it)
	}
	return entities
}

type InteractionMapper struct{}

func NewInteractionMapper() *InteractionMapper {
	return &InteractionMapper{}
}

func (m *InteractionMapper) ToEntity(in *model.Interaction) *entity.Interaction {
	if in == nil {
		return nil
	}
	return &entity.Interaction{
		Id:          in.Id,
		IterationId: in.IterationId,
		Concept:     in.Concept,
		Iteration:   in.IntroducedAt,
		Value:       entity.InteractionValue(in.Value),
		Weight:      in.Weight,
		Uncertainty: in.Uncertainty,
	}
}

// ToModel maps an interaction; position is its index in the iteration's ordered set.
func (m *InteractionMapper) ToModel(in *entity.Interaction, position int) *model.Interaction {
	if in == nil {
		return nil
	}
	return &model.Interaction{
		Id:           in.Id,
		IterationId:  in.IterationId,
		Concept:      in.Concept,
		IntroducedAt: in.Iteration,
		Value:        string(in.Value),
		Weight:       in.Weight,
		Uncertainty:  in.Uncertainty,
		Position:     position,
	}
}

func (m *InteractionMapper) ToEntities(interactions []*model.Interaction) []*entity.Interaction {
	entities := make([]*entity.Interaction, len(interactions))
	for i, in := range interactions {
		entities[i] = m.ToEntity(in)
	}
	return entities
}
