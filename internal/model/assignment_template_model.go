package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// TemplateInteraction is the JSON form of a template's seed interactions. They are
// stored inline because templates never change after creation.
type TemplateInteraction struct {
	Concept     string  `json:"concept"`
	Iteration   int     `json:"iteration"`
	Value       string  `json:"value"`
	Weight      float64 `json:"weight"`
	Uncertainty float64 `json:"uncertainty"`
}

type AssignmentTemplate struct {
	Id                  uuid.UUID                                `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Topic               string                                   `gorm:"type:varchar(255);not null;index"`
	Propagation         string                                   `gorm:"type:varchar(16);not null"`
	ConceptType         string                                   `gorm:"type:varchar(16);not null"`
	Summary             datatypes.JSONSlice[string]              `gorm:"type:jsonb"`
	SentenceIds         datatypes.JSONSlice[int]                 `gorm:"type:jsonb"`
	ConfirmatorySummary datatypes.JSONSlice[int64]               `gorm:"type:jsonb"`
	ExploratorySummary  datatypes.JSONSlice[int64]               `gorm:"type:jsonb"`
	Weights             datatypes.JSONType[map[string]float64]   `gorm:"type:jsonb"`
	Interactions        datatypes.JSONSlice[TemplateInteraction] `gorm:"type:jsonb"`
	SnapshotHandle      string                                   `gorm:"type:varchar(512);not null"`
	RunId               string                                   `gorm:"type:varchar(255)"`
	ReuseCount          int                                      `gorm:"not null;default:0"`
	CreatedAt           time.Time                                `gorm:"autoCreateTime"`
}

func (AssignmentTemplate) TableName() string {
	return "assignment_templates"
}
