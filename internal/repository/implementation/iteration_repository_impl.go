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
	"gorm.io/gorm/clause"
)

type IterationRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.IterationMapper
}

func NewIterationRepository(db *gorm.DB) contract.IterationRepository {
	return &IterationRepositoryImpl{
		db:     db,
		mapper: mapper.NewIterationMapper(),
	}
}

// Create inserts the iteration row. Its interactions are written through the
// interaction repository.
func (r *IterationRepositoryImpl) Create(ctx context.Context, iteration *entity.Iteration) error {
	m := r.mapper.ToModel(iteration)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	interactions := iteration.Interactions
	*iteration = *r.mapper.ToEntity(m)
	iteration.Interactions = interactions
	return nil
}

func (r *IterationRepositoryImpl) UpdateSnapshotHandle(ctx context.Context, id uuid.UUID, handle string) error {
	res := r.db.WithContext(ctx).Model(&model.Iteration{}).
		Where("id = ?", id).
		Update("snapshot_handle", handle)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *IterationRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Iteration, error) {
	var m model.Iteration
	query := specification.ApplyAll(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *IterationRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Iteration, error) {
	var models []*model.Iteration
	query := specification.ApplyAll(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

type InteractionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.InteractionMapper
}

func NewInteractionRepository(db *gorm.DB) contract.InteractionRepository {
	return &InteractionRepositoryImpl{
		db:     db,
		mapper: mapper.NewInteractionMapper(),
	}
}

func (r *InteractionRepositoryImpl) SaveAll(ctx context.Context, iterationId uuid.UUID, interactions []*entity.Interaction) error {
	if len(interactions) == 0 {
		return nil
	}
	models := make([]*model.Interaction, 0, len(interactions))
	for i, in := range interactions {
		in.IterationId = iterationId
		models = append(models, r.mapper.ToModel(in, i))
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "weight", "uncertainty", "position"}),
		}).
		Create(&models).Error
}

func (r *InteractionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Interaction, error) {
	var models []*model.Interaction
	query := specification.ApplyAll(r.db.WithContext(ctx), specs...)
	if err := query.Order("position ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}
