package event

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/eventhub/internal/entity"
	"anoa.com/eventhub/internal/modules/event/dto"
	"anoa.com/eventhub/internal/modules/event/repository"
	userRepo "anoa.com/eventhub/internal/modules/user/repository"
	"anoa.com/eventhub/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrganizerService interface {
	ListOrganizers(ctx context.Context, userID, eventID uuid.UUID) ([]dto.OrganizerResponse, error)
	AddOrganizer(ctx context.Context, userID, eventID uuid.UUID, req dto.AddOrganizerRequest) (*dto.OrganizerResponse, error)
	RemoveOrganizer(ctx context.Context, userID, eventID, targetID uuid.UUID) error
}

type organizerService struct {
	organizerRepo repository.OrganizerRepository
	userRepo      userRepo.UserRepository
	access        Authorizer
}

func NewOrganizerService(organizerRepo repository.OrganizerRepository, userRepo userRepo.UserRepository, access Authorizer) OrganizerService {
	return &organizerService{
		organizerRepo: organizerRepo,
		userRepo:      userRepo,
		access:        access,
	}
}

func toOrganizerResponse(user *entity.User, role string) dto.OrganizerResponse {
	return dto.OrganizerResponse{
		UserID: user.ID,
		Name:   user.DisplayName(),
		Email:  user.Email,
		Role:   role,
	}
}

func (s *organizerService) ListOrganizers(ctx context.Context, userID, eventID uuid.UUID) ([]dto.OrganizerResponse, error) {
	if _, _, err := s.access.RequireRole(ctx, eventID, userID, entity.OrganizerRoleOrganizer, entity.OrganizerRoleNormal); err != nil {
		return nil, err
	}

	organizers, err := s.organizerRepo.List(ctx, eventID)
	if err != nil {
		return nil, err
	}

	res := make([]dto.OrganizerResponse, 0, len(organizers))
	for _, o := range organizers {
		if o.User == nil {
			continue
		}
		res = append(res, toOrganizerResponse(o.User, o.Role))
	}
	return res, nil
}

func (s *organizerService) AddOrganizer(ctx context.Context, userID, eventID uuid.UUID, req dto.AddOrganizerRequest) (*dto.OrganizerResponse, error) {
	if _, _, err := s.access.RequireRole(ctx, eventID, userID, entity.OrganizerRoleOrganizer); err != nil {
		return nil, err
	}

	var (
		target *entity.User
		err    error
	)
	if req.UserID != nil {
		target, err = s.userRepo.FindByID(ctx, *req.UserID)
	} else {
		target, err = s.userRepo.FindByEmail(ctx, req.Email)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	organizer := &entity.EventOrganizer{
		EventID: eventID,
		UserID:  target.ID,
		Role:    req.Role,
	}
	if err := s.organizerRepo.Add(ctx, organizer); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("user already manages this event: %w", apperror.ErrConflict)
		}
		return nil, err
	}

	res := toOrganizerResponse(target, req.Role)
	return &res, nil
}

func (s *organizerService) RemoveOrganizer(ctx context.Context, userID, eventID, targetID uuid.UUID) error {
	event, _, err := s.access.RequireRole(ctx, eventID, userID, entity.OrganizerRoleOrganizer)
	if err != nil {
		return err
	}

	if event.OrganizerID == targetID {
		return fmt.Errorf("the event creator cannot be removed: %w", apperror.ErrBadRequest)
	}

	if err := s.organizerRepo.Remove(ctx, eventID, targetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("organizer not found: %w", apperror.ErrNotFound)
		}
		return err
	}
	return nil
}
