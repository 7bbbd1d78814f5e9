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

type AssignmentTemplateRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.AssignmentTemplateMapper
}

func NewAssignmentTemplateRepository(db *gorm.DB) contract.AssignmentTemplateRepository {
	return &AssignmentTemplateRepositoryImpl{
		db:     db,
		mapper: mapper.NewAssignmentTemplateMapper(),
	}
}

func (r *AssignmentTemplateRepositoryImpl) Create(ctx context.Context, template *entity.AssignmentTemplate) error {
	m := r.mapper.ToModel(template)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*template = *r.mapper.ToEntity(m)
	return nil
}

func (r *AssignmentTemplateRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.AssignmentTemplate, error) {
	var m model.AssignmentTemplate
	query := specification.ApplyAll(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *AssignmentTemplateRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AssignmentTemplate, error) {
	var models []*model.AssignmentTemplate
	query := specification.ApplyAll(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *AssignmentTemplateRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := specification.ApplyAll(r.db.WithContext(ctx).Model(&model.AssignmentTemplate{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *AssignmentTemplateRepositoryImpl) IncrementReuseCount(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&model.AssignmentTemplate{}).
		Where("id = ?", id).
		UpdateColumn("reuse_count", gorm.Expr("reuse_count + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
