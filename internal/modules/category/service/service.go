package category

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"anoa.com/eventhub/internal/entity"
	"anoa.com/eventhub/internal/modules/category/dto"
	"anoa.com/eventhub/internal/modules/category/repository"
	"anoa.com/eventhub/pkg/apperror"
)

type CategoryService interface {
	CreateCategory(ctx context.Context, req dto.CreateCategoryRequest) (*dto.CategoryResponse, error)
	GetAllCategories(ctx context.Context, filter dto.CategoryFilter) ([]dto.CategoryResponse, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	ValidateSlugs(ctx context.Context, slugs []string) error
}

type categoryService struct {
	repo repository.CategoryRepository
}

func NewCategoryService(repo repository.CategoryRepository) CategoryService {
	return &categoryService{repo: repo}
}

// Slugify lowercases the name and joins words with dashes.
func Slugify(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}

func (s *categoryService) CreateCategory(ctx context.Context, req dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	slug := Slugify(req.Name)
	if slug == "" {
		return nil, fmt.Errorf("category name is required: %w", apperror.ErrInvalidInput)
	}

	existing, _ := s.repo.FindBySlug(ctx, slug)
	if existing != nil {
		return nil, fmt.Errorf("category with name %s already exists: %w", req.Name, apperror.ErrConflict)
	}

	category := &entity.Category{
		Name:        strings.TrimSpace(req.Name),
		Slug:        slug,
		Description: req.Description,
	}

	if err := s.repo.Create(ctx, category); err != nil {
		return nil, err
	}
	return toResponse(category), nil
}

func (s *categoryService) GetAllCategories(ctx context.Context, filter dto.CategoryFilter) ([]dto.CategoryResponse, error) {
	categories, err := s.repo.FindAll(ctx, strings.TrimSpace(filter.Search))
	if err != nil {
		return nil, err
	}

	counts, err := s.repo.EventCounts(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]dto.CategoryResponse, 0, len(categories))
	for _, cat := range categories {
		res := toResponse(cat)
		res.EventCount = counts[cat.Slug]
		result = append(result, *res)
	}
	return result, nil
}

// DeleteCategory refuses while events are still filed under the category.
func (s *categoryService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	cat, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("category not found: %w", apperror.ErrNotFound)
		}
		return err
	}

	inUse, err := s.repo.CountEventsUsing(ctx, cat.Slug)
	if err != nil {
		return err
	}
	if inUse > 0 {
		return fmt.Errorf("category %s is used by %d events: %w", cat.Slug, inUse, apperror.ErrConflict)
	}

	return s.repo.Delete(ctx, id)
}

// ValidateSlugs fails unless every slug names an existing category.
func (s *categoryService) ValidateSlugs(ctx context.Context, slugs []string) error {
	if len(slugs) == 0 {
		return nil
	}

	unique := map[string]bool{}
	for _, slug := range slugs {
		unique[slug] = true
	}
	list := make([]string, 0, len(unique))
	for slug := range unique {
		list = append(list, slug)
	}

	count, err := s.repo.CountBySlugs(ctx, list)
	if err != nil {
		return err
	}
	if count != int64(len(list)) {
		return fmt.Errorf("unknown category: %w", apperror.ErrInvalidInput)
	}
	return nil
}

func toResponse(c *entity.Category) *dto.CategoryResponse {
	return &dto.CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
	}
}
