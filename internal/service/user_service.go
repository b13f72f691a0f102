package service

import (
	"context"

	"voicenotes-be/internal/dto"
	"voicenotes-be/internal/pkg/apperror"
	"voicenotes-be/internal/repository/specification"
	"voicenotes-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IUserService interface {
	Profile(ctx context.Context, userId uuid.UUID) (*dto.ProfileResponse, error)
}

type userService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewUserService(uowFactory unitofwork.RepositoryFactory) IUserService {
	return &userService{
		uowFactory: uowFactory,
	}
}

func (s *userService) Profile(ctx context.Context, userId uuid.UUID) (*dto.ProfileResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NotFound("user not found")
	}

	return &dto.ProfileResponse{
		Id:        user.Id,
		Email:     user.Email,
		FullName:  user.FullName,
		CreatedAt: user.CreatedAt,
	}, nil
}
