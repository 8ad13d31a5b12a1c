package repository

import (
	"context"
	"time"

	"anoa.com/eventhub/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ImageRepository interface {
	Create(ctx context.Context, image *entity.EventImage) error
	BindToEvent(ctx context.Context, imageIDs []uint, eventID uuid.UUID, userID uuid.UUID) error
	ReplaceEventImages(ctx context.Context, imageIDs []uint, eventID uuid.UUID, userID uuid.UUID) error
	UnbindEvent(ctx context.Context, eventID uuid.UUID) error
	FindOrphans(ctx context.Context, cutoffTime time.Time) ([]entity.EventImage, error)
	Delete(ctx context.Context, id uint) error
}

type imageRepository struct {
	db *gorm.DB
}

func NewImageRepository(db *gorm.DB) ImageRepository {
	return &imageRepository{db: db}
}

func (r *imageRepository) Create(ctx context.Context, image *entity.EventImage) error {
	return r.db.WithContext(ctx).Create(image).Error
}

// BindToEvent only claims images uploaded by the same user that are not
// bound to another event.
func (r *imageRepository) BindToEvent(ctx context.Context, imageIDs []uint, eventID uuid.UUID, userID uuid.UUID) error {
	if len(imageIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&entity.EventImage{}).
		Where("id IN ? AND user_id = ?", imageIDs, userID).
		Where("event_id IS NULL OR event_id = ?", eventID).
		Update("event_id", eventID).Error
}

// ReplaceEventImages releases every image of the event that is not listed
// and binds the listed ones.
func (r *imageRepository) ReplaceEventImages(ctx context.Context, imageIDs []uint, eventID uuid.UUID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		release := tx.Model(&entity.EventImage{}).Where("event_id = ?", eventID)
		if len(imageIDs) > 0 {
			release = release.Where("id NOT IN ?", imageIDs)
		}
		if err := release.Update("event_id", nil).Error; err != nil {
			return err
		}

		if len(imageIDs) == 0 {
			return nil
		}
		return tx.Model(&entity.EventImage{}).
			Where("id IN ? AND user_id = ?", imageIDs, userID).
			Where("event_id IS NULL OR event_id = ?", eventID).
			Update("event_id", eventID).Error
	})
}

func (r *imageRepository) UnbindEvent(ctx context.Context, eventID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&entity.EventImage{}).
		Where("event_id = ?", eventID).
		Update("event_id", nil).Error
}

func (r *imageRepository) FindOrphans(ctx context.Context, cutoffTime time.Time) ([]entity.EventImage, error) {
	var images []entity.EventImage
	err := r.db.WithContext(ctx).
		Where("event_id IS NULL AND created_at < ?", cutoffTime).
		Find(&images).Error
	return images, err
}

func (r *imageRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&entity.EventImage{}, id).Error
}
