package profile

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"anoa.com/eventhub/internal/entity"
	profileDto "anoa.com/eventhub/internal/modules/profile/dto"
	userRepo "anoa.com/eventhub/internal/modules/user/repository"
	"anoa.com/eventhub/pkg/apperror"
	commonDto "anoa.com/eventhub/pkg/dto"
	"anoa.com/eventhub/pkg/storage"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const avatarSize = 256

type ProfileService interface {
	GetCurrentProfile(ctx context.Context, userID uuid.UUID) (*profileDto.ProfileResponse, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input profileDto.UpdateProfileInput) (*profileDto.ProfileResponse, error)
	UploadAvatar(ctx context.Context, userID uuid.UUID, avatar commonDto.UploadFile, crop profileDto.AvatarCrop) (*profileDto.ProfileResponse, error)
}

type profileService struct {
	repo         userRepo.UserRepository
	imageStorage storage.ImageStorage
}

func NewProfileService(repo userRepo.UserRepository, imageStorage storage.ImageStorage) ProfileService {
	return &profileService{
		repo:         repo,
		imageStorage: imageStorage,
	}
}

func (s *profileService) findUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return user, nil
}

func (s *profileService) GetCurrentProfile(ctx context.Context, userID uuid.UUID) (*profileDto.ProfileResponse, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return profileDto.NewProfileResponse(user), nil
}

// UpdateProfile edits the live profile. Registrations keep their own snapshot and are not touched.
func (s *profileService) UpdateProfile(ctx context.Context, userID uuid.UUID, input profileDto.UpdateProfileInput) (*profileDto.ProfileResponse, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile := user.Profile
	if profile == nil {
		profile = &entity.Profile{UserID: user.ID}
	}
	input.Apply(profile)
	if profile.Name == "" {
		return nil, apperror.New(http.StatusBadRequest, "name is required", apperror.ErrInvalidInput)
	}

	if input.Password != nil && *input.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = string(hashed)
	}

	user.Profile = nil
	if err := s.repo.Update(ctx, user, profile); err != nil {
		return nil, err
	}
	user.Profile = profile

	return profileDto.NewProfileResponse(user), nil
}

func (s *profileService) UploadAvatar(ctx context.Context, userID uuid.UUID, avatar commonDto.UploadFile, crop profileDto.AvatarCrop) (*profileDto.ProfileResponse, error) {
	if s.imageStorage == nil {
		return nil, fmt.Errorf("image storage is not configured: %w", apperror.ErrUnavailable)
	}
	if avatar.Reader == nil {
		return nil, apperror.New(http.StatusBadRequest, "avatar file is required", apperror.ErrBadRequest)
	}

	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	box := storage.CropBox{X: crop.X, Y: crop.Y, Width: crop.Width, Height: crop.Height}
	url, err := s.imageStorage.UploadCroppedImage(ctx, avatar.Reader, "avatars", avatar.FileName, box, avatarSize)
	if err != nil {
		return nil, apperror.New(http.StatusBadRequest, err.Error(), apperror.ErrBadRequest)
	}

	if err := s.repo.UpdateAvatar(ctx, user.ID, url); err != nil {
		return nil, err
	}

	if user.AvatarURL != nil && *user.AvatarURL != "" {
		if err := s.imageStorage.DeleteImage(ctx, *user.AvatarURL); err != nil {
			log.Printf("failed to delete old avatar of %s: %v", user.ID, err)
		}
	}
	user.AvatarURL = &url

	return profileDto.NewProfileResponse(user), nil
}
