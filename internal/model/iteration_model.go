package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Iteration struct {
	Id                  uuid.UUID                              `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	AssignmentId        uuid.UUID                              `gorm:"type:uuid;not null;uniqueIndex:idx_iterations_assignment_number"`
	Number              int                                    `gorm:"not null;uniqueIndex:idx_iterations_assignment_number"`
	Summary             datatypes.JSONSlice[string]            `gorm:"type:jsonb"`
	SentenceIds         datatypes.JSONSlice[int]               `gorm:"type:jsonb"`
	ConfirmatorySummary datatypes.JSONSlice[int64]             `gorm:"type:jsonb"`
	ExploratorySummary  datatypes.JSONSlice[int64]             `gorm:"type:jsonb"`
	Weights             datatypes.JSONType[map[string]float64] `gorm:"type:jsonb"`
	SnapshotHandle      string                                 `gorm:"type:varchar(512);not null"`
	CreatedAt           time.Time                              `gorm:"autoCreateTime"`
	UpdatedAt           time.Time                              `gorm:"autoUpdateTime"`
}

func (Iteration) TableName() string {
	return "iterations"
}

type Interaction struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	IterationId uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_interactions_key"`
	Concept     string    `gorm:"type:text;not null;uniqueIndex:idx_interactions_key"`
	// IntroducedAt is the iteration the concept was first proposed or labelled at.
	IntroducedAt int     `gorm:"not null;uniqueIndex:idx_interactions_key"`
	Value        string  `gorm:"type:varchar(32);not null"`
	Weight       float64 `gorm:"not null;default:0"`
	Uncertainty  float64 `gorm:"not null;default:0"`
	Position     int     `gorm:"not null"`
}

func (Interaction) TableName() string {
	return "interactions"
}
