package event

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"anoa.com/eventhub/internal/entity"
	"anoa.com/eventhub/internal/formschema"
	attachmentRepo "anoa.com/eventhub/internal/modules/attachment/repository"
	category "anoa.com/eventhub/internal/modules/category/service"
	"anoa.com/eventhub/internal/modules/event/dto"
	"anoa.com/eventhub/internal/modules/event/repository"
	search "anoa.com/eventhub/internal/modules/search/service"
	view "anoa.com/eventhub/internal/modules/view/service"
	"anoa.com/eventhub/pkg/apperror"
	commonDto "anoa.com/eventhub/pkg/dto"
	"anoa.com/eventhub/pkg/storage"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const mapsEmbedBase = "https://www.google.com/maps/embed/v1/place"

type EventService interface {
	CreateEvent(ctx context.Context, userID uuid.UUID, req dto.CreateEventRequest) (*entity.Event, error)
	UpdateEvent(ctx context.Context, userID, eventID uuid.UUID, req dto.UpdateEventRequest) (*entity.Event, error)
	DeleteEvent(ctx context.Context, userID, eventID uuid.UUID) error
	GetEvent(ctx context.Context, userID, eventID uuid.UUID) (*dto.EventDetailResponse, error)
	ListEvents(ctx context.Context, filter commonDto.EventFilter) (*dto.EventListResponse, error)
	GetManagedEvents(ctx context.Context, userID uuid.UUID) ([]dto.ManagedEventResponse, error)
	UploadCover(ctx context.Context, userID, eventID uuid.UUID, file commonDto.UploadFile) (*entity.Event, error)
	SearchToken() (string, error)
}

type eventService struct {
	eventRepo     repository.EventRepository
	organizerRepo repository.OrganizerRepository
	imageRepo     attachmentRepo.ImageRepository
	categories    category.CategoryService
	access        Authorizer
	fileStorage   storage.ImageStorage
	meili         search.MeiliSearchService
	views         view.ViewService
	sanitizer     *bluemonday.Policy
	mapsAPIKey    string
}

// NewEventService wires the event use cases. meili, views and fileStorage may
// be nil; search then falls back to the database and views are not counted.
func NewEventService(
	eventRepo repository.EventRepository,
	organizerRepo repository.OrganizerRepository,
	imageRepo attachmentRepo.ImageRepository,
	categories category.CategoryService,
	fileStorage storage.ImageStorage,
	meili search.MeiliSearchService,
	views view.ViewService,
	mapsAPIKey string,
) EventService {
	return &eventService{
		eventRepo:     eventRepo,
		organizerRepo: organizerRepo,
		imageRepo:     imageRepo,
		categories:    categories,
		access:        NewAuthorizer(eventRepo, organizerRepo),
		fileStorage:   fileStorage,
		meili:         meili,
		views:         views,
		sanitizer:     bluemonday.UGCPolicy(),
		mapsAPIKey:    mapsAPIKey,
	}
}

// MapEmbedURL builds a Google Maps embed link for an address.
func MapEmbedURL(apiKey, location string) string {
	location = strings.TrimSpace(location)
	if apiKey == "" || location == "" {
		return ""
	}
	q := url.Values{}
	q.Set("key", apiKey)
	q.Set("q", location)
	return mapsEmbedBase + "?" + q.Encode()
}

func validateSchedule(startAt, endAt, deadline time.Time) error {
	if !endAt.After(startAt) {
		return fmt.Errorf("end_at must be after start_at: %w", apperror.ErrInvalidInput)
	}
	if deadline.After(endAt) {
		return fmt.Errorf("deadline must not be after end_at: %w", apperror.ErrInvalidInput)
	}
	return nil
}

func normalizeCategories(slugs []string) []string {
	seen := make(map[string]bool, len(slugs))
	out := make([]string, 0, len(slugs))
	for _, s := range slugs {
		s = strings.TrimSpace(strings.ToLower(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func (s *eventService) CreateEvent(ctx context.Context, userID uuid.UUID, req dto.CreateEventRequest) (*entity.Event, error) {
	if err := validateSchedule(req.StartAt, req.EndAt, req.Deadline); err != nil {
		return nil, err
	}

	categories := normalizeCategories(req.Categories)
	if err := s.categories.ValidateSlugs(ctx, categories); err != nil {
		return nil, err
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	event := &entity.Event{
		OrganizerID: userID,
		Title:       strings.TrimSpace(req.Title),
		Description: s.sanitizer.Sanitize(req.Description),
		Location:    strings.TrimSpace(req.Location),
		StartAt:     req.StartAt,
		EndAt:       req.EndAt,
		Deadline:    req.Deadline,
		Categories:  datatypes.JSONSlice[string](categories),
		FormSchema:  datatypes.NewJSONType(formschema.Empty()),
		IsPublic:    isPublic,
	}

	creator := &entity.EventOrganizer{
		UserID: userID,
		Role:   entity.OrganizerRoleOrganizer,
	}

	if err := s.eventRepo.Create(ctx, event, creator); err != nil {
		return nil, err
	}

	if len(req.ImageIDs) > 0 {
		if err := s.imageRepo.BindToEvent(ctx, req.ImageIDs, event.ID, userID); err != nil {
			return nil, err
		}
	}

	s.index(event)
	return event, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, userID, eventID uuid.UUID, req dto.UpdateEventRequest) (*entity.Event, error) {
	event, _, err := s.access.RequireRole(ctx, eventID, userID, entity.OrganizerRoleOrganizer)
	if err != nil {
		return nil, err
	}

	if err := validateSchedule(req.StartAt, req.EndAt, req.Deadline); err != nil {
		return nil, err
	}

	categories := normalizeCategories(req.Categories)
	if err := s.categories.ValidateSlugs(ctx, categories); err != nil {
		return nil, err
	}

	event.Title = strings.TrimSpace(req.Title)
	event.Description = s.sanitizer.Sanitize(req.Description)
	event.Location = strings.TrimSpace(req.Location)
	event.StartAt = req.StartAt
	event.EndAt = req.EndAt
	event.Deadline = req.Deadline
	event.Categories = datatypes.JSONSlice[string](categories)
	if req.IsPublic != nil {
		event.IsPublic = *req.IsPublic
	}

	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, err
	}

	if req.ImageIDs != nil {
		if err := s.imageRepo.ReplaceEventImages(ctx, *req.ImageIDs, event.ID, userID); err != nil {
			return nil, err
		}
	}

	updated, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if updated.IsPublic {
		s.index(updated)
	} else {
		s.unindex(updated.ID)
	}
	return updated, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, userID, eventID uuid.UUID) error {
	if _, _, err := s.access.RequireRole(ctx, eventID, userID, entity.OrganizerRoleOrganizer); err != nil {
		return err
	}

	// gallery rows survive the event as orphans and are purged by the cleanup job
	if err := s.imageRepo.UnbindEvent(ctx, eventID); err != nil {
		return err
	}

	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		return err
	}

	s.unindex(eventID)
	return nil
}

func (s *eventService) GetEvent(ctx context.Context, userID, eventID uuid.UUID) (*dto.EventDetailResponse, error) {
	event, err := s.access.RequireVisible(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}

	role, err := s.organizerRepo.FindRole(ctx, eventID, userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if s.views != nil {
		if err := s.views.IncrementView(ctx, eventID, userID); err != nil {
			log.Printf("Failed to count view for event %s: %v", eventID, err)
		}
	}

	return &dto.EventDetailResponse{
		Event:       event,
		MyRole:      role,
		MapEmbedURL: MapEmbedURL(s.mapsAPIKey, event.Location),
	}, nil
}

func (s *eventService) ListEvents(ctx context.Context, filter commonDto.EventFilter) (*dto.EventListResponse, error) {
	filter.Normalize()

	var (
		events []*entity.Event
		total  int64
		err    error
	)

	if filter.Search != "" && s.meili != nil {
		events, total, err = s.searchIndexed(ctx, filter)
		if err != nil {
			log.Printf("Meilisearch query failed, falling back to database: %v", err)
			events, total, err = s.eventRepo.List(ctx, filter)
		}
	} else {
		events, total, err = s.eventRepo.List(ctx, filter)
	}
	if err != nil {
		return nil, err
	}

	data := make([]commonDto.EventSummary, 0, len(events))
	for _, e := range events {
		data = append(data, dto.ToSummary(e))
	}

	return &dto.EventListResponse{
		Data: data,
		Meta: commonDto.NewPaginationMeta(filter.Page, filter.Limit, total),
	}, nil
}

// searchIndexed resolves the hit ids from the index and loads them in hit order.
func (s *eventService) searchIndexed(ctx context.Context, filter commonDto.EventFilter) ([]*entity.Event, int64, error) {
	res, err := s.meili.SearchEvents(filter.Search, search.Query{
		Category: filter.Category,
		SortBy:   filter.SortBy,
		Page:     filter.Page,
		Limit:    filter.Limit,
	})
	if err != nil {
		return nil, 0, err
	}

	found, err := s.eventRepo.FindByIDs(ctx, res.IDs)
	if err != nil {
		return nil, 0, err
	}

	byID := make(map[uuid.UUID]*entity.Event, len(found))
	for _, e := range found {
		byID[e.ID] = e
	}

	events := make([]*entity.Event, 0, len(res.IDs))
	for _, id := range res.IDs {
		// the index may lag behind visibility changes
		if e, ok := byID[id]; ok && e.IsPublic {
			events = append(events, e)
		}
	}
	return events, res.Total, nil
}

func (s *eventService) GetManagedEvents(ctx context.Context, userID uuid.UUID) ([]dto.ManagedEventResponse, error) {
	memberships, err := s.organizerRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	res := make([]dto.ManagedEventResponse, 0, len(memberships))
	for _, m := range memberships {
		if m.Event == nil {
			continue
		}
		res = append(res, dto.ManagedEventResponse{
			EventSummary: dto.ToSummary(m.Event),
			Role:         m.Role,
		})
	}
	return res, nil
}

func (s *eventService) UploadCover(ctx context.Context, userID, eventID uuid.UUID, file commonDto.UploadFile) (*entity.Event, error) {
	event, _, err := s.access.RequireRole(ctx, eventID, userID, entity.OrganizerRoleOrganizer)
	if err != nil {
		return nil, err
	}

	if s.fileStorage == nil {
		return nil, fmt.Errorf("image storage is not configured: %w", apperror.ErrInternal)
	}

	fileName := fmt.Sprintf("%s-%d", eventID, time.Now().Unix())
	coverURL, err := s.fileStorage.UploadImage(ctx, file.Reader, "covers", fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to upload cover: %w", err)
	}

	if err := s.eventRepo.UpdateCover(ctx, eventID, coverURL); err != nil {
		return nil, err
	}

	if event.CoverImageURL != nil && *event.CoverImageURL != "" {
		if err := s.fileStorage.DeleteImage(ctx, *event.CoverImageURL); err != nil {
			log.Printf("Failed to delete old cover %s: %v", *event.CoverImageURL, err)
		}
	}

	event.CoverImageURL = &coverURL
	s.index(event)
	return event, nil
}

func (s *eventService) SearchToken() (string, error) {
	if s.meili == nil {
		return "", fmt.Errorf("search is not configured: %w", apperror.ErrNotFound)
	}
	return s.meili.GenerateSearchToken()
}

func (s *eventService) index(event *entity.Event) {
	if s.meili == nil || !event.IsPublic {
		return
	}
	if err := s.meili.IndexEvent(event); err != nil {
		log.Printf("Failed to index event %s: %v", event.ID, err)
	}
}

func (s *eventService) unindex(id uuid.UUID) {
	if s.meili == nil {
		return
	}
	if err := s.meili.DeleteEvent(id.String()); err != nil {
		log.Printf("Failed to remove event %s from index: %v", id, err)
	}
}
