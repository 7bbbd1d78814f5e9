package mapper

import (
	"time"

	"summarizer-session-be/internal/entity"
	"summarizer-session-be/internal/model"
)

type AssignmentMapper struct{}

func NewAssignmentMapper() *AssignmentMapper {
	return &AssignmentMapper{}
}

// ToEntity maps the assignment row only; iterations are loaded separately.
func (m *AssignmentMapper) ToEntity(a *model.Assignment) *entity.Assignment {
	if a == nil {
		return nil
	}
	var updatedAt *time.Time
	if !a.UpdatedAt.IsZero() {
		t := a.UpdatedAt
		updatedAt = &t
	}
	return &entity.Assignment{
		Id:         a.Id,
		UserId:     a.UserId,
		TemplateId: a.TemplateId,
		Topic:      entity.Topic(a.Topic),
		IsActive:   a.IsActive,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  updatedAt,
	}
}

func (m *AssignmentMapper) ToModel(a *entity.Assignment) *model.Assignment {
	if a == nil {
		return nil
	}
	var updatedAt time.Time
	if a.UpdatedAt != nil {
		updatedAt = *a.UpdatedAt
	}
	return &model.Assignment{
		Id:         a.Id,
		UserId:     a.UserId,
		TemplateId: a.TemplateId,
		Topic:      string(a.Topic),
		IsActive:   a.IsActive,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  updatedAt,
	}
}

func (m *AssignmentMapper) ToEntities(assignments []*model.Assignment) []*entity.Assignment {
	entities := make([]*entity.Assignment, len(assignments))
	for i, a := range assignments {
		entities[i] = m.ToEntity(a)
	}
	return entities
}
