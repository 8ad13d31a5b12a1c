package repository

import (
	"context"
	"time"

	"anoa.com/eventhub/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RegistrationRepository interface {
	Create(ctx context.Context, registration *entity.Registration) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Registration, error)
	FindByEventAndUser(ctx context.Context, eventID, userID uuid.UUID) (*entity.Registration, error)
	Exists(ctx context.Context, eventID, userID uuid.UUID) (bool, error)
	UpdateSubmission(ctx context.Context, registration *entity.Registration) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status, note string) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*entity.Registration, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Registration, error)
	CountByStatus(ctx context.Context, eventID uuid.UUID) (map[string]int64, error)
	// UpcomingDeadlines lists events the user registered for whose deadline is after now.
	UpcomingDeadlines(ctx context.Context, userID uuid.UUID, now time.Time) ([]*entity.Event, error)
}

type registrationRepository struct {
	db *gorm.DB
}

func NewRegistrationRepository(db *gorm.DB) RegistrationRepository {
	return &registrationRepository{db: db}
}

// Create relies on the (event_id, user_id) unique index; a second submission
// surfaces as gorm.ErrDuplicatedKey.
func (r *registrationRepository) Create(ctx context.Context, registration *entity.Registration) error {
	return r.db.WithContext(ctx).Omit("Event", "User").Create(registration).Error
}

func (r *registrationRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Registration, error) {
	var registration entity.Registration
	if err := r.db.WithContext(ctx).
		Preload("User.Profile").
		First(&registration, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &registration, nil
}

func (r *registrationRepository) FindByEventAndUser(ctx context.Context, eventID, userID uuid.UUID) (*entity.Registration, error) {
	var registration entity.Registration
	if err := r.db.WithContext(ctx).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		First(&registration).Error; err != nil {
		return nil, err
	}
	return &registration, nil
}

func (r *registrationRepository) Exists(ctx context.Context, eventID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Registration{}).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Count(&count).Error
	return count > 0, err
}

// UpdateSubmission rewrites the snapshot and answers of an existing registration.
func (r *registrationRepository) UpdateSubmission(ctx context.Context, registration *entity.Registration) error {
	return r.db.WithContext(ctx).Model(&entity.Registration{}).
		Where("id = ?", registration.ID).
		Updates(map[string]any{
			"user_info_snapshot": registration.UserInfoSnapshot,
			"answers":            registration.Answers,
			"updated_at":         time.Now(),
		}).Error
}

func (r *registrationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status, note string) error {
	res := r.db.WithContext(ctx).Model(&entity.Registration{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":      status,
			"review_note": note,
			"updated_at":  time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *registrationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.Registration{}, "id = ?", id).Error
}

func (r *registrationRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*entity.Registration, error) {
	var registrations []*entity.Registration
	err := r.db.WithContext(ctx).
		Preload("User.Profile").
		Where("event_id = ?", eventID).
		Order("created_at asc").
		Find(&registrations).Error
	return registrations, err
}

func (r *registrationRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Registration, error) {
	var registrations []*entity.Registration
	err := r.db.WithContext(ctx).
		Preload("Event").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&registrations).Error
	return registrations, err
}

func (r *registrationRepository) CountByStatus(ctx context.Context, eventID uuid.UUID) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&entity.Registration{}).
		Select("status, COUNT(*) AS count").
		Where("event_id = ?", eventID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *registrationRepository) UpcomingDeadlines(ctx context.Context, userID uuid.UUID, now time.Time) ([]*entity.Event, error) {
	var events []*entity.Event
	err := r.db.WithContext(ctx).
		Joins("JOIN registrations ON registrations.event_id = events.id").
		Where("registrations.user_id = ? AND events.deadline > ?", userID, now).
		Order("events.deadline asc").
		Find(&events).Error
	return events, err
}
