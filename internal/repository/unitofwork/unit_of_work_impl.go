package unitofwork

import (
	"context"
	"errors"

	"summarizer-session-be/internal/repository/contract"
	"summarizer-session-be/internal/repository/implementation"

	"gorm.io/gorm"
)

var (
	errTxStarted = errors.New("transaction already started")
	errNoTx      = errors.New("no transaction in progress")
)

type gormRepositoryFactory struct {
	db *gorm.DB
}

func NewRepositoryFactory(db *gorm.DB) RepositoryFactory {
	return &gormRepositoryFactory{db: db}
}

func (f *gormRepositoryFactory) NewUnitOfWork(ctx context.Context) UnitOfWork {
	return &gormUnitOfWork{db: f.db.WithContext(ctx)}
}

type gormUnitOfWork struct {
	db *gorm.DB
	tx *gorm.DB
}

func (u *gormUnitOfWork) conn() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *gormUnitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return errTxStarted
	}
	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	u.tx = tx
	return nil
}

func (u *gormUnitOfWork) Commit() error {
	if u.tx == nil {
		return errNoTx
	}
	err := u.tx.Commit().Error
	u.tx = nil
	return err
}

// Rollback is a no-op after Commit, so it can always be deferred.
func (u *gormUnitOfWork) Rollback() error {
	if u.tx == nil {
		return nil
	}
	err := u.tx.Rollback().Error
	u.tx = nil
	return err
}

func (u *gormUnitOfWork) UserRepository() contract.UserRepository {
	return implementation.NewUserRepository(u.conn())
}

func (u *gormUnitOfWork) AssignmentTemplateRepository() contract.AssignmentTemplateRepository {
	return implementation.NewAssignmentTemplateRepository(u.conn())
}

func (u *gormUnitOfWork) AssignmentRepository() contract.AssignmentRepository {
	return implementation.NewAssignmentRepository(u.conn())
}

func (u *gormUnitOfWork) IterationRepository() contract.IterationRepository {
	return implementation.NewIterationRepository(u.conn())
}

func (u *gormUnitOfWork) InteractionRepository() contract.InteractionRepository {
	return implementation.NewInteractionRepository(u.conn())
}
