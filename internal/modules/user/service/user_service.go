package service

import (
	"context"

	"anoa.com/eventhub/internal/modules/user/repository"
	commonDto "anoa.com/eventhub/pkg/dto"
	"github.com/google/uuid"
)

// UserService backs the invitee picker.
type UserService interface {
	Search(ctx context.Context, callerID uuid.UUID, query string, limit int) ([]commonDto.UserSummary, error)
}

type userService struct {
	repo repository.UserRepository
}

func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

func (s *userService) Search(ctx context.Context, callerID uuid.UUID, query string, limit int) ([]commonDto.UserSummary, error) {
	if limit <= 0 {
		limit = 10
	}

	users, err := s.repo.Search(ctx, query, callerID, limit)
	if err != nil {
		return nil, err
	}

	result := make([]commonDto.UserSummary, 0, len(users))
	for _, u := range users {
		result = append(result, commonDto.UserSummary{
			ID:        u.ID,
			Name:      u.DisplayName(),
			Email:     u.Email,
			AvatarURL: u.AvatarURL,
		})
	}
	return result, nil
}
