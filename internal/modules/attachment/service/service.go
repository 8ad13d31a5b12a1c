package attachment

import (
	"context"
	"fmt"
	"log"
	"mime/multipart"
	"strings"
	"time"

	"anoa.com/eventhub/internal/entity"
	"anoa.com/eventhub/internal/modules/attachment/repository"
	"anoa.com/eventhub/pkg/apperror"
	commonDto "anoa.com/eventhub/pkg/dto"
	"anoa.com/eventhub/pkg/storage"
	"github.com/google/uuid"
)

const orphanTTL = 24 * time.Hour

type AttachmentService interface {
	UploadImage(ctx context.Context, userID uuid.UUID, file *multipart.FileHeader) (*commonDto.ImageResponse, error)
	CleanupOrphanImages(ctx context.Context) (int, error)
}

type attachmentService struct {
	imageRepo   repository.ImageRepository
	fileStorage storage.ImageStorage
}

func NewAttachmentService(imageRepo repository.ImageRepository, fileStorage storage.ImageStorage) AttachmentService {
	return &attachmentService{
		imageRepo:   imageRepo,
		fileStorage: fileStorage,
	}
}

func (s *attachmentService) UploadImage(ctx context.Context, userID uuid.UUID, file *multipart.FileHeader) (*commonDto.ImageResponse, error) {
	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("only image uploads are allowed: %w", apperror.ErrInvalidInput)
	}

	f, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	url, err := s.fileStorage.UploadImage(ctx, f, "events", file.Filename)
	if err != nil {
		return nil, err
	}

	image := &entity.EventImage{
		UserID:   userID,
		FileURL:  url,
		FileType: contentType,
	}

	if err := s.imageRepo.Create(ctx, image); err != nil {
		return nil, err
	}

	return &commonDto.ImageResponse{
		ID:       image.ID,
		FileURL:  image.FileURL,
		FileType: image.FileType,
	}, nil
}

// CleanupOrphanImages deletes images never bound to an event (or released
// by one) once they are older than a day.
func (s *attachmentService) CleanupOrphanImages(ctx context.Context) (int, error) {
	orphans, err := s.imageRepo.FindOrphans(ctx, time.Now().Add(-orphanTTL))
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, orphan := range orphans {
		if err := s.fileStorage.DeleteImage(ctx, orphan.FileURL); err != nil {
			log.Printf("Failed to delete image %d from storage: %v", orphan.ID, err)
			continue
		}

		// a failed row delete is retried on the next run
		if err := s.imageRepo.Delete(ctx, orphan.ID); err != nil {
			log.Printf("Failed to delete image %d: %v", orphan.ID, err)
			continue
		}
		removed++
	}
	return removed, nil
}
