package preference

import (
	"context"
	"errors"

	"anoa.com/eventhub/internal/entity"
	"anoa.com/eventhub/internal/modules/preference/dto"
	"anoa.com/eventhub/internal/modules/preference/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PreferenceService interface {
	Get(ctx context.Context, userID uuid.UUID) (*dto.PreferenceResponse, error)
	Update(ctx context.Context, userID uuid.UUID, req dto.UpdatePreferenceRequest) (*dto.PreferenceResponse, error)
}

type preferenceService struct {
	repo repository.PreferenceRepository
}

func NewPreferenceService(repo repository.PreferenceRepository) PreferenceService {
	return &preferenceService{repo: repo}
}

// Get returns the stored theme, or "system" for users who never chose one.
func (s *preferenceService) Get(ctx context.Context, userID uuid.UUID) (*dto.PreferenceResponse, error) {
	pref, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &dto.PreferenceResponse{Theme: entity.ThemeSystem}, nil
		}
		return nil, err
	}
	return &dto.PreferenceResponse{Theme: pref.Theme}, nil
}

func (s *preferenceService) Update(ctx context.Context, userID uuid.UUID, req dto.UpdatePreferenceRequest) (*dto.PreferenceResponse, error) {
	pref := &entity.UserPreference{UserID: userID, Theme: req.Theme}
	if err := s.repo.Upsert(ctx, pref); err != nil {
		return nil, err
	}
	return &dto.PreferenceResponse{Theme: pref.Theme}, nil
}
