package dto

import (
	"time"

	"github.com/google/uuid"
)

type GetOrCreateAssignmentRequest struct {
	Topic string `json:"topic" validate:"required,topic"`
}

type FeedbackItem struct {
	Concept string `json:"concept" validate:"required,max=512"`
	// Iteration is the iteration the concept was introduced at. Omit it for
	// inline feedback on the current iteration.
	Iteration *int     `json:"iteration,omitempty"`
	Value     string   `json:"value" validate:"required,interaction_value"`
	Weight    *float64 `json:"weight,omitempty"`
}

type RecordFeedbackRequest struct {
	Items []FeedbackItem `json:"items" validate:"max=1000,dive"`
}

type ScoreRequest struct {
	Topic string `json:"topic" validate:"required,topic"`
	Text  string `json:"text" validate:"required"`
}

type ScoreResponse struct {
	R1 float64 `json:"R1"`
	R2 float64 `json:"R2"`
	R4 float64 `json:"R4"`
}

type InteractionResponse struct {
	Concept     string  `json:"concept"`
	Iteration   int     `json:"iteration"`
	Value       string  `json:"value"`
	Weight      float64 `json:"weight"`
	Uncertainty float64 `json:"uncertainty"`
}

type IterationResponse struct {
	Id                  uuid.UUID             `json:"id"`
	Number              int                   `json:"number"`
	Summary             []string              `json:"summary"`
	SentenceIds         []int                 `json:"sentence_ids"`
	ConfirmatorySummary []int64               `json:"confirmatory_summary"`
	ExploratorySummary  []int64               `json:"exploratory_summary"`
	Weights             map[string]float64    `json:"weights"`
	Interactions        []InteractionResponse `json:"interactions"`
	SnapshotHandle      string                `json:"snapshot_handle"`
	CreatedAt           time.Time             `json:"created_at"`
}

type AssignmentResponse struct {
	Id         uuid.UUID           `json:"id"`
	UserId     uuid.UUID           `json:"user_id"`
	TemplateId uuid.UUID           `json:"template_id"`
	Topic      string              `json:"topic"`
	IsActive   bool                `json:"is_active"`
	Iterations []IterationResponse `json:"iterations"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  *time.Time          `json:"updated_at,omitempty"`
}

// Current returns the latest iteration, or nil if none were loaded.
func (r *AssignmentResponse) Current() *IterationResponse {
	if len(r.Iterations) == 0 {
		return nil
	}
	return &r.Iterations[len(r.Iterations)-1]
}

type TemplateResponse struct {
	Id             uuid.UUID             `json:"id"`
	Topic          string                `json:"topic"`
	Variant        string                `json:"variant"`
	Summary        []string              `json:"summary"`
	SentenceIds    []int                 `json:"sentence_ids"`
	Weights        map[string]float64    `json:"weights"`
	Interactions   []InteractionResponse `json:"interactions"`
	SnapshotHandle string                `json:"snapshot_handle"`
	RunId          string                `json:"run_id,omitempty"`
	ReuseCount     int                   `json:"reuse_count"`
	CreatedAt      time.Time             `json:"created_at"`
}

// TemplateWarmupMessage is the payload of the in-process warm-up queue.
type TemplateWarmupMessage struct {
	Topic string `json:"topic" validate:"required,topic"`
}
