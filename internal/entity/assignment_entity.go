package entity

import (
	"time"

	"github.com/google/uuid"
)

// Assignment is one user's session against one template.
type Assignment struct {
	Id         uuid.UUID
	UserId     uuid.UUID
	TemplateId uuid.UUID
	Topic      Topic
	IsActive   bool
	Iterations []*Iteration
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}

// CurrentIteration returns the last iteration, or nil for an assignment that was loaded without them.
func (a *Assignment) CurrentIteration() *Iteration {
	if len(a.Iterations) == 0 {
		return nil
	}
	return a.Iterations[len(a.Iterations)-1]
}
