package contract

import (
	"context"

	"summarizer-session-be/internal/entity"
	"summarizer-session-be/internal/repository/specification"

	"github.com/google/uuid"
)

type IterationRepository interface {
	Create(ctx context.Context, iteration *entity.Iteration) error
	UpdateSnapshotHandle(ctx context.Context, id uuid.UUID, handle string) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Iteration, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Iteration, error)
}

type InteractionRepository interface {
	// SaveAll upserts the ordered interaction set of one iteration. Rows are
	// matched by id; the slice order becomes the stored order.
	SaveAll(ctx context.Context, iterationId uuid.UUID, interactions []*entity.Interaction) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Interaction, error)
}
