package repository

import (
	"context"
	"encoding/json"

	"anoa.com/eventhub/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	FindBySlug(ctx context.Context, slug string) (*entity.Category, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Category, error)
	CountBySlugs(ctx context.Context, slugs []string) (int64, error)
	FindAll(ctx context.Context, search string) ([]*entity.Category, error)
	// EventCounts returns how many events are filed under each slug.
	EventCounts(ctx context.Context) (map[string]int64, error)
	CountEventsUsing(ctx context.Context, slug string) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *entity.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *categoryRepository) FindBySlug(ctx context.Context, slug string) (*entity.Category, error) {
	var category entity.Category
	if err := r.db.WithContext(ctx).First(&category, "slug = ?", slug).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	var category entity.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) CountBySlugs(ctx context.Context, slugs []string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Category{}).Where("slug IN ?", slugs).Count(&count).Error
	return count, err
}

func (r *categoryRepository) FindAll(ctx context.Context, search string) ([]*entity.Category, error) {
	var categories []*entity.Category
	query := r.db.WithContext(ctx).Order("name asc")
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("name ILIKE ? OR slug ILIKE ?", like, like)
	}
	err := query.Find(&categories).Error
	return categories, err
}

func (r *categoryRepository) EventCounts(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Slug  string
		Count int64
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT c.slug AS slug, COUNT(*) AS count
		FROM events, jsonb_array_elements_text(events.categories::jsonb) AS c(slug)
		GROUP BY c.slug`).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Slug] = row.Count
	}
	return counts, nil
}

func (r *categoryRepository) CountEventsUsing(ctx context.Context, slug string) (int64, error) {
	needle, err := json.Marshal([]string{slug})
	if err != nil {
		return 0, err
	}
	var count int64
	err = r.db.WithContext(ctx).Model(&entity.Event{}).
		Where("categories::jsonb @> ?::jsonb", string(needle)).
		Count(&count).Error
	return count, err
}

func (r *categoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.Category{}, "id = ?", id).Error
}
