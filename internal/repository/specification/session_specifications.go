package specification

import (
	"summarizer-session-be/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByTopic struct {
	Topic entity.Topic
}

func (s ByTopic) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("topic = ?", string(s.Topic))
}

type IsActive struct{}

func (s IsActive) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_active = ?", true)
}

type ByAssignmentID struct {
	AssignmentID uuid.UUID
}

func (s ByAssignmentID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("assignment_id = ?", s.AssignmentID)
}

type ByIterationID struct {
	IterationID uuid.UUID
}

func (s ByIterationID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("iteration_id = ?", s.IterationID)
}

type ByIterationNumber struct {
	Number int
}

func (s ByIterationNumber) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("number = ?", s.Number)
}
