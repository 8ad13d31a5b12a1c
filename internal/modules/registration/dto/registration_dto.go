package dto

import (
	"time"

	"anoa.com/eventhub/internal/entity"
	"anoa.com/eventhub/internal/formschema"
	commonDto "anoa.com/eventhub/pkg/dto"
	"github.com/google/uuid"
)

type RegisterRequest struct {
	Answers map[string]string `json:"answers"`
}

// UpdateRegistrationRequest edits a submission. PersonalInfo changes only the
// registration's snapshot, never the profile.
type UpdateRegistrationRequest struct {
	PersonalInfo map[string]string `json:"personal_info"`
	Answers      map[string]string `json:"answers"`
}

type ReviewRequest struct {
	Status string `json:"status" binding:"required,oneof=approved rejected"`
	Note   string `json:"note" binding:"max=1000"`
}

type PersonalField struct {
	Field string `json:"field"`
	Label string `json:"label"`
	Value string `json:"value"`
}

type RegistrationFormResponse struct {
	Event          commonDto.EventSummary `json:"event"`
	Schema         formschema.Schema      `json:"schema"`
	PersonalInfo   []PersonalField        `json:"personal_info"`
	Registration   *entity.Registration   `json:"registration"`
	DeadlinePassed bool                   `json:"deadline_passed"`
}

type MyRegistrationResponse struct {
	ID         uuid.UUID              `json:"id"`
	Status     string                 `json:"status"`
	ReviewNote string                 `json:"review_note,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
	Event      commonDto.EventSummary `json:"event"`
}

type TableRow struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Status      string    `json:"status"`
	ReviewNote  string    `json:"review_note,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
	Cells       []string  `json:"cells"`
}

type TableResponse struct {
	Columns []string   `json:"columns"`
	Rows    []TableRow `json:"rows"`
}

type ExportFile struct {
	FileName string
	Content  []byte
}
