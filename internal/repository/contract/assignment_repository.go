package contract

import (
	"context"

	"summarizer-session-be/internal/entity"
	"summarizer-session-be/internal/repository/specification"

	"github.com/google/uuid"
)

// AssignmentRepository persists assignment rows. Iterations are not written or
// loaded through it.
type AssignmentRepository interface {
	Create(ctx context.Context, assignment *entity.Assignment) error
	Update(ctx context.Context, assignment *entity.Assignment) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Assignment, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Assignment, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	DeactivateAllByUserId(ctx context.Context, userId uuid.UUID) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}
