package memory

import (
	"context"
	"testing"

	"summarizer-session-be/internal/entity"
	"summarizer-session-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAssignment(userId uuid.UUID, topic string, active bool) *entity.Assignment {
	return &entity.Assignment{
		Id:         uuid.New(),
		UserId:     userId,
		TemplateId: uuid.New(),
		Topic:      entity.Topic(topic),
		IsActive:   active,
	}
}

func TestUnitOfWork_CommitAppliesAllWrites(t *testing.T) {
	ctx := context.Background()
	factory := NewRepositoryFactory(NewStore())
	userId := uuid.New()

	uow := factory.NewUnitOfWork(ctx)
	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, uow.AssignmentRepository().Create(ctx, newAssignment(userId, "D31", true)))
	require.NoError(t, uow.AssignmentRepository().Create(ctx, newAssignment(userId, "D32", false)))

	// nothing is visible before commit
	count, err := factory.NewUnitOfWork(ctx).AssignmentRepository().Count(ctx, specification.UserOwnedBy{UserID: userId})
	require.NoError(t, err)
	assert.Zero(t, count)

	require.NoError(t, uow.Commit())

	count, err = factory.NewUnitOfWork(ctx).AssignmentRepository().Count(ctx, specification.UserOwnedBy{UserID: userId})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestUnitOfWork_RollbackDiscardsWrites(t *testing.T) {
	ctx := context.Background()
	factory := NewRepositoryFactory(NewStore())
	userId := uuid.New()

	uow := factory.NewUnitOfWork(ctx)
	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, uow.AssignmentRepository().Create(ctx, newAssignment(userId, "D31", true)))
	require.NoError(t, uow.Rollback())

	all, err := factory.NewUnitOfWork(ctx).AssignmentRepository().FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestUnitOfWork_ConstraintViolationRejectsWholeBatch(t *testing.T) {
	ctx := context.Background()
	factory := NewRepositoryFactory(NewStore())
	userId := uuid.New()

	uow := factory.NewUnitOfWork(ctx)
	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, uow.AssignmentRepository().Create(ctx, newAssignment(userId, "D31", true)))
	require.NoError(t, uow.AssignmentRepository().Create(ctx, newAssignment(userId, "D32", true)))
	err := uow.Commit()
	assert.ErrorIs(t, err, ErrConstraintViolation)

	all, err := factory.NewUnitOfWork(ctx).AssignmentRepository().FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestUnitOfWork_DuplicateUserTopicRejected(t *testing.T) {
	ctx := context.Background()
	uow := NewRepositoryFactory(NewStore()).NewUnitOfWork(ctx)
	userId := uuid.New()

	require.NoError(t, uow.AssignmentRepository().Create(ctx, newAssignment(userId, "D31", false)))
	err := uow.AssignmentRepository().Create(ctx, newAssignment(userId, "D31", false))
	assert.ErrorIs(t, err, ErrConstraintViolation)
}

func TestInteractionRepository_SaveAllKeepsOrderAndUpserts(t *testing.T) {
	ctx := context.Background()
	uow := NewRepositoryFactory(NewStore()).NewUnitOfWork(ctx)

	it := entity.NewIteration(entity.IterationParams{AssignmentId: uuid.New(), Number: 0})
	require.NoError(t, uow.IterationRepository().Create(ctx, it))

	a := entity.NewInteraction(entity.InteractionParams{Concept: "a", Value: entity.InteractionRecommendation})
	b := entity.NewInteraction(entity.InteractionParams{Concept: "b", Value: entity.InteractionRecommendation})
	require.NoError(t, uow.InteractionRepository().SaveAll(ctx, it.Id, []*entity.Interaction{a, b}))

	a.Value = entity.InteractionAccept
	c := entity.NewInteraction(entity.InteractionParams{Concept: "c", Value: entity.InteractionReject})
	require.NoError(t, uow.InteractionRepository().SaveAll(ctx, it.Id, []*entity.Interaction{a, b, c}))

	stored, err := uow.InteractionRepository().FindAll(ctx, specification.ByIterationID{IterationID: it.Id})
	require.NoError(t, err)
	require.Len(t, stored, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{stored[0].Concept, stored[1].Concept, stored[2].Concept})
	assert.Equal(t, entity.InteractionAccept, stored[0].Value)
	assert.Equal(t, it.Id, stored[2].IterationId)
}

func TestRepositories_UnsupportedSpecification(t *testing.T) {
	ctx := context.Background()
	uow := NewRepositoryFactory(NewStore()).NewUnitOfWork(ctx)
	require.NoError(t, uow.UserRepository().Create(ctx, &entity.User{Name: "alice"}))

	_, err := uow.UserRepository().FindOne(ctx, specification.ByTopic{Topic: "D31"})
	assert.Error(t, err)
}
