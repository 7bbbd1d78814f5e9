package unitofwork

import (
	"context"

	"summarizer-session-be/internal/repository/contract"
)

// RepositoryFactory hands out a fresh unit of work per operation. Units of
// work are not safe for concurrent use.
type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}

// UnitOfWork groups the session repositories. Outside Begin/Commit every call
// runs on its own; inside, all repositories share one transaction.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	AssignmentTemplateRepository() contract.AssignmentTemplateRepository
	AssignmentRepository() contract.AssignmentRepository
	IterationRepository() contract.IterationRepository
	InteractionRepository() contract.InteractionRepository
}
