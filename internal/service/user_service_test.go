package service

import (
	"context"
	"testing"

	"summarizer-session-be/internal/dto"
	"summarizer-session-be/internal/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_RegisterAndGet(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	created, err := f.users.Register(ctx, &dto.RegisterUserRequest{Name: "ana"})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.Id)

	got, err := f.users.GetUser(ctx, created.Id)
	require.NoError(t, err)
	assert.Equal(t, "ana", got.Name)

	all, err := f.users.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestUserService_Errors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.users.Register(ctx, &dto.RegisterUserRequest{})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, err = f.users.GetUser(ctx, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
