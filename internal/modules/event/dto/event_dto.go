package dto

import (
	"time"

	"anoa.com/eventhub/internal/entity"
	commonDto "anoa.com/eventhub/pkg/dto"
	"github.com/google/uuid"
)

type CreateEventRequest struct {
	Title       string    `json:"title" binding:"required,max=200"`
	Description string    `json:"description"`
	Location    string    `json:"location" binding:"max=255"`
	StartAt     time.Time `json:"start_at" binding:"required"`
	EndAt       time.Time `json:"end_at" binding:"required,gtfield=StartAt"`
	Deadline    time.Time `json:"deadline" binding:"required"`
	Categories  []string  `json:"categories"`
	IsPublic    *bool     `json:"is_public"`
	ImageIDs    []uint    `json:"image_ids"`
}

// UpdateEventRequest replaces the editable details. ImageIDs, when present,
// is the full gallery; images left out are released.
type UpdateEventRequest struct {
	Title       string    `json:"title" binding:"required,max=200"`
	Description string    `json:"description"`
	Location    string    `json:"location" binding:"max=255"`
	StartAt     time.Time `json:"start_at" binding:"required"`
	EndAt       time.Time `json:"end_at" binding:"required,gtfield=StartAt"`
	Deadline    time.Time `json:"deadline" binding:"required"`
	Categories  []string  `json:"categories"`
	IsPublic    *bool     `json:"is_public"`
	ImageIDs    *[]uint   `json:"image_ids"`
}

type EventDetailResponse struct {
	*entity.Event
	MyRole      string `json:"my_role,omitempty"`
	MapEmbedURL string `json:"map_embed_url,omitempty"`
}

type EventListResponse struct {
	Data []commonDto.EventSummary  `json:"data"`
	Meta commonDto.PaginationMeta `json:"meta"`
}

type ManagedEventResponse struct {
	commonDto.EventSummary
	Role string `json:"role"`
}

type AddOrganizerRequest struct {
	UserID *uuid.UUID `json:"user_id" binding:"required_without=Email"`
	Email  string     `json:"email" binding:"omitempty,email"`
	Role   string     `json:"role" binding:"required,oneof=organizer normal"`
}

type OrganizerResponse struct {
	UserID uuid.UUID `json:"user_id"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
	Role   string    `json:"role"`
}

func ToSummary(e *entity.Event) commonDto.EventSummary {
	categories := []string(e.Categories)
	if categories == nil {
		categories = []string{}
	}
	return commonDto.EventSummary{
		ID:            e.ID,
		Title:         e.Title,
		Location:      e.Location,
		StartAt:       e.StartAt,
		EndAt:         e.EndAt,
		Deadline:      e.Deadline,
		Categories:    categories,
		CoverImageURL: e.CoverImageURL,
		IsPublic:      e.IsPublic,
	}
}
