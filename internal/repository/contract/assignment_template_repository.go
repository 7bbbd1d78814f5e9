package contract

import (
	"context"

	"summarizer-session-be/internal/entity"
	"summarizer-session-be/internal/repository/specification"

	"github.com/google/uuid"
)

// AssignmentTemplateRepository has no Update: templates are immutable apart from the reuse counter.
type AssignmentTemplateRepository interface {
	Create(ctx context.Context, template *entity.AssignmentTemplate) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.AssignmentTemplate, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AssignmentTemplate, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	IncrementReuseCount(ctx context.Context, id uuid.UUID) error
}
