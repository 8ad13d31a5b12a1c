package repository

import (
	"context"
	"time"

	"anoa.com/eventhub/internal/entity"
	"anoa.com/eventhub/internal/formschema"
	commonDto "anoa.com/eventhub/pkg/dto"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type EventRepository interface {
	Create(ctx context.Context, event *entity.Event, organizer *entity.EventOrganizer) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Event, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Event, error)
	Update(ctx context.Context, event *entity.Event) error
	UpdateFormSchema(ctx context.Context, id uuid.UUID, schema formschema.Schema) error
	UpdateCover(ctx context.Context, id uuid.UUID, coverURL string) error
	AddViews(ctx context.Context, id uuid.UUID, n int64) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter commonDto.EventFilter) ([]*entity.Event, int64, error)
	FindDeadlineBetween(ctx context.Context, from, to time.Time) ([]*entity.Event, error)
	HasParticipant(ctx context.Context, eventID, userID uuid.UUID) (bool, error)
}

type eventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(ctx context.Context, event *entity.Event, organizer *entity.EventOrganizer) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Images", "Organizer").Create(event).Error; err != nil {
			return err
		}

		organizer.EventID = event.ID
		return tx.Create(organizer).Error
	})
}

func (r *eventRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Event, error) {
	var event entity.Event
	if err := r.db.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("id asc")
		}).
		Preload("Organizer.Profile").
		First(&event, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Event, error) {
	var events []*entity.Event
	if len(ids) == 0 {
		return events, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&events).Error
	return events, err
}

// Update writes the editable details only; form_schema, cover and views
// have their own writers.
func (r *eventRepository) Update(ctx context.Context, event *entity.Event) error {
	return r.db.WithContext(ctx).Model(&entity.Event{}).
		Where("id = ?", event.ID).
		Updates(map[string]any{
			"title":       event.Title,
			"description": event.Description,
			"location":    event.Location,
			"start_at":    event.StartAt,
			"end_at":      event.EndAt,
			"deadline":    event.Deadline,
			"categories":  event.Categories,
			"is_public":   event.IsPublic,
			"updated_at":  time.Now(),
		}).Error
}

func (r *eventRepository) UpdateFormSchema(ctx context.Context, id uuid.UUID, schema formschema.Schema) error {
	res := r.db.WithContext(ctx).Model(&entity.Event{}).
		Where("id = ?", id).
		Update("form_schema", datatypes.NewJSONType(schema))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *eventRepository) UpdateCover(ctx context.Context, id uuid.UUID, coverURL string) error {
	return r.db.WithContext(ctx).Model(&entity.Event{}).
		Where("id = ?", id).
		Update("cover_image_url", coverURL).Error
}

func (r *eventRepository) AddViews(ctx context.Context, id uuid.UUID, n int64) error {
	return r.db.WithContext(ctx).Model(&entity.Event{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", n)).Error
}

func (r *eventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.Event{}, "id = ?", id).Error
}

func (r *eventRepository) List(ctx context.Context, filter commonDto.EventFilter) ([]*entity.Event, int64, error) {
	var events []*entity.Event
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Event{}).Where("is_public = ?", true)

	if filter.Category != "" {
		query = query.Where("categories @> ?", datatypes.JSONSlice[string]{filter.Category})
	}

	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ? OR location ILIKE ?", like, like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	switch filter.SortBy {
	case "popular":
		query = query.Order("views desc").Order("created_at desc")
	case "deadline":
		query = query.Order("deadline asc")
	default:
		query = query.Order("created_at desc")
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := query.Offset(offset).Limit(filter.Limit).Find(&events).Error; err != nil {
		return nil, 0, err
	}

	return events, total, nil
}

func (r *eventRepository) FindDeadlineBetween(ctx context.Context, from, to time.Time) ([]*entity.Event, error) {
	var events []*entity.Event
	err := r.db.WithContext(ctx).
		Where("deadline > ? AND deadline <= ?", from, to).
		Order("deadline asc").
		Find(&events).Error
	return events, err
}

// HasParticipant reports whether the user manages, was invited to or
// registered for the event.
func (r *eventRepository) HasParticipant(ctx context.Context, eventID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			(SELECT COUNT(*) FROM event_organizers WHERE event_id = ? AND user_id = ?) +
			(SELECT COUNT(*) FROM invitations WHERE event_id = ? AND invitee_id = ?) +
			(SELECT COUNT(*) FROM registrations WHERE event_id = ? AND user_id = ?)`,
		eventID, userID, eventID, userID, eventID, userID).
		Scan(&count).Error
	return count > 0, err
}
