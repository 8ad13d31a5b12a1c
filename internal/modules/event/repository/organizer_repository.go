package repository

import (
	"context"

	"anoa.com/eventhub/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrganizerRepository interface {
	FindRole(ctx context.Context, eventID, userID uuid.UUID) (string, error)
	List(ctx context.Context, eventID uuid.UUID) ([]*entity.EventOrganizer, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*entity.EventOrganizer, error)
	UserIDs(ctx context.Context, eventID uuid.UUID, role string) ([]uuid.UUID, error)
	Add(ctx context.Context, organizer *entity.EventOrganizer) error
	Remove(ctx context.Context, eventID, userID uuid.UUID) error
}

type organizerRepository struct {
	db *gorm.DB
}

func NewOrganizerRepository(db *gorm.DB) OrganizerRepository {
	return &organizerRepository{db: db}
}

func (r *organizerRepository) FindRole(ctx context.Context, eventID, userID uuid.UUID) (string, error) {
	var organizer entity.EventOrganizer
	if err := r.db.WithContext(ctx).
		Select("role").
		Where("event_id = ? AND user_id = ?", eventID, userID).
		First(&organizer).Error; err != nil {
		return "", err
	}
	return organizer.Role, nil
}

func (r *organizerRepository) List(ctx context.Context, eventID uuid.UUID) ([]*entity.EventOrganizer, error) {
	var organizers []*entity.EventOrganizer
	err := r.db.WithContext(ctx).
		Preload("User.Profile").
		Where("event_id = ?", eventID).
		Order("created_at asc").
		Find(&organizers).Error
	return organizers, err
}

func (r *organizerRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entity.EventOrganizer, error) {
	var organizers []*entity.EventOrganizer
	err := r.db.WithContext(ctx).
		Preload("Event").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&organizers).Error
	return organizers, err
}

func (r *organizerRepository) UserIDs(ctx context.Context, eventID uuid.UUID, role string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	query := r.db.WithContext(ctx).Model(&entity.EventOrganizer{}).Where("event_id = ?", eventID)
	if role != "" {
		query = query.Where("role = ?", role)
	}
	err := query.Pluck("user_id", &ids).Error
	return ids, err
}

func (r *organizerRepository) Add(ctx context.Context, organizer *entity.EventOrganizer) error {
	return r.db.WithContext(ctx).Create(organizer).Error
}

func (r *organizerRepository) Remove(ctx context.Context, eventID, userID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Delete(&entity.EventOrganizer{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
