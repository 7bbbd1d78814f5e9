package mapper

import (
	"time"

	"summarizer-session-be/internal/entity"
	"summarizer-session-be/internal/model"
)

type UserMapper struct{}

func NewUserMapper() *UserMapper {
	return &UserMapper{}
}

func (m *UserMapper) ToEntity(u *model.User) *entity.User {
	if u == nil {
		return nil
	}
	var updatedAt *time.Time
	if !u.UpdatedAt.IsZero() {
		t := u.UpdatedAt
		updatedAt = &t
	}
	return &entity.User{
		Id:        u.Id,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

func (m *UserMapper) ToModel(u *entity.User) *model.User {
	if u == nil {
		return nil
	}
	var updatedAt time.Time
	if u.UpdatedAt != nil {
		updatedAt = *u.UpdatedAt
	}
	return &model.User{
		Id:        u.Id,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

func (m *UserMapper) ToEntities(users []*model.User) []*entity.User {
	entities := make([]*entity.User, len(users))
	for i, u := range users {
		entities[i] = m.ToEntity(u)
	}
	return entities
}
