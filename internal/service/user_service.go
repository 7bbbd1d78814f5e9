package service

import (
	"context"
	"fmt"
	"time"

	"summarizer-session-be/internal/dto"
	"summarizer-session-be/internal/entity"
	"summarizer-session-be/internal/pkg/apperror"
	"summarizer-session-be/internal/pkg/logger"
	"summarizer-session-be/internal/repository/specification"
	"summarizer-session-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IUserService interface {
	Register(ctx context.Context, req *dto.RegisterUserRequest) (*dto.UserResponse, error)
	GetUser(ctx context.Context, userId uuid.UUID) (*dto.UserResponse, error)
	ListUsers(ctx context.Context) ([]*dto.UserResponse, error)
}

type userService struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewUserService(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) IUserService {
	return &userService{
		uowFactory: uowFactory,
		logger:     log,
	}
}

func (s *userService) Register(ctx context.Context, req *dto.RegisterUserRequest) (*dto.UserResponse, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}

	user := &entity.User{
		Id:        uuid.New(),
		Name:      req.Name,
		CreatedAt: time.Now(),
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.UserRepository().Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("USER", "User registered", map[string]interface{}{"user_id": user.Id})
	return toUserResponse(user), nil
}

func (s *userService) GetUser(ctx context.Context, userId uuid.UUID) (*dto.UserResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %s: %w", userId, apperror.ErrNotFound)
	}
	return toUserResponse(user), nil
}

func (s *userService) ListUsers(ctx context.Context) ([]*dto.UserResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	users, err := uow.UserRepository().FindAll(ctx, specification.OrderBy{Field: "created_at"})
	if err != nil {
		return nil, err
	}
	out := make([]*dto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out, nil
}

func toUserResponse(u *entity.User) *dto.UserResponse {
	return &dto.UserResponse{
		Id:        u.Id,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
	}
}
