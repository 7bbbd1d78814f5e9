package model

import (
	"time"

	"github.com/google/uuid"
)

// Assignment is unique per (user, topic). At most one row per user has
// is_active set; cmd/migrate backs that with a partial unique index.
type Assignment struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_assignments_user_topic"`
	Topic      string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_assignments_user_topic"`
	TemplateId uuid.UUID `gorm:"type:uuid;not null;index"`
	IsActive   bool      `gorm:"not null;default:false"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

func (Assignment) TableName() string {
	return "assignments"
}
