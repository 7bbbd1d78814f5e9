package memory

import (
	"context"
	"fmt"

	"summarizer-session-be/internal/repository/contract"
	"summarizer-session-be/internal/repository/unitofwork"
)

type UnitOfWork struct {
	store   *Store
	inTx    bool
	pending []op
}

func (u *UnitOfWork) Begin(ctx context.Context) error {
	if u.inTx {
		return fmt.Errorf("transaction already started")
	}
	u.inTx = true
	u.pending = nil
	return nil
}

func (u *UnitOfWork) Commit() error {
	if !u.inTx {
		return fmt.Errorf("no transaction to commit")
	}
	ops := u.pending
	u.inTx = false
	u.pending = nil
	return u.store.apply(ops)
}

// Rollback is a no-op after Commit, so it can always be deferred.
func (u *UnitOfWork) Rollback() error {
	if !u.inTx {
		return nil
	}
	u.inTx = false
	u.pending = nil
	return nil
}

// write queues o inside a transaction and applies it at once otherwise.
// Reads always see committed state only.
func (u *UnitOfWork) write(o op) error {
	if u.inTx {
		u.pending = append(u.pending, o)
		return nil
	}
	return u.store.apply([]op{o})
}

func (u *UnitOfWork) UserRepository() contract.UserRepository {
	return &userRepository{uow: u}
}

func (u *UnitOfWork) AssignmentTemplateRepository() contract.AssignmentTemplateRepository {
	return &assignmentTemplateRepository{uow: u}
}

func (u *UnitOfWork) AssignmentRepository() contract.AssignmentRepository {
	return &assignmentRepository{uow: u}
}

func (u *UnitOfWork) IterationRepository() contract.IterationRepository {
	return &iterationRepository{uow: u}
}

func (u *UnitOfWork) InteractionRepository() contract.InteractionRepository {
	return &interactionRepository{uow: u}
}

type RepositoryFactory struct {
	store *Store
}

func NewRepositoryFactory(store *Store) unitofwork.RepositoryFactory {
	return &RepositoryFactory{store: store}
}

func (f *RepositoryFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &UnitOfWork{store: f.store}
}
