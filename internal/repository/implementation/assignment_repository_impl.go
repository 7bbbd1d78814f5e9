package implementation

import (
	"context"
	"errors"

	"summarizer-session-be/internal/entity"
	"summarizer-session-be/internal/mapper"
	"summarizer-session-be/internal/model"
	"summarizer-session-be/internal/repository/contract"
	"summarizer-session-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AssignmentRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.AssignmentMapper
}

func NewAssignmentRepository(db *gorm.DB) contract.AssignmentRepository {
	return &AssignmentRepositoryImpl{
		db:     db,
		mapper: mapper.NewAssignmentMapper(),
	}
}

func (r *AssignmentRepositoryImpl) Create(ctx context.Context, assignment *entity.Assignment) error {
	m := r.mapper.ToModel(assignment)
	// is_active has a column default, so a false value must be written explicitly
	if err := r.db.WithContext(ctx).Select("*").Create(m).Error; err != nil {
		return err
	}
	iterations := assignment.Iterations
	*assignment = *r.mapper.ToEntity(m)
	assignment.Iterations = iterations
	return nil
}

func (r *AssignmentRepositoryImpl) Update(ctx context.Context, assignment *entity.Assignment) error {
	m := r.mapper.ToModel(assignment)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	iterations := assignment.Iterations
	*assignment = *r.mapper.ToEntity(m)
	assignment.Iterations = iterations
	return nil
}

func (r *AssignmentRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Assignment, error) {
	var m model.Assignment
	query := specification.ApplyAll(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *AssignmentRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Assignment, error) {
	var models []*model.Assignment
	query := specification.ApplyAll(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *AssignmentRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := specification.ApplyAll(r.db.WithContext(ctx).Model(&model.Assignment{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *AssignmentRepositoryImpl) DeactivateAllByUserId(ctx context.Context, userId uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Assignment{}).
		Where("user_id = ? AND is_active = ?", userId, true).
		Update("is_active", false).Error
}

func (r *AssignmentRepositoryImpl) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	res := r.db.WithContext(ctx).Model(&model.Assignment{}).
		Where("id = ?", id).
		Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
