package entity

import (
	"time"

	"anoa.com/eventhub/internal/formschema"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Event struct {
	ID            uuid.UUID                             `gorm:"type:uuid;primaryKey" json:"id"`
	OrganizerID   uuid.UUID                             `gorm:"type:uuid;not null;index" json:"organizer_id"`
	Organizer     *User                                 `gorm:"foreignKey:OrganizerID;constraint:OnDelete:CASCADE" json:"organizer,omitempty"`
	Title         string                                `gorm:"size:200;not null" json:"title"`
	Description   string                                `gorm:"type:text" json:"description"`
	Location      string                                `gorm:"size:255" json:"location"`
	StartAt       time.Time                             `gorm:"not null" json:"start_at"`
	EndAt         time.Time                             `gorm:"not null" json:"end_at"`
	Deadline      time.Time                             `gorm:"not null;index" json:"deadline"`
	Categories    datatypes.JSONSlice[string]           `gorm:"type:jsonb" json:"categories"`
	CoverImageURL *string                               `gorm:"type:text" json:"cover_image_url,omitempty"`
	FormSchema    datatypes.JSONType[formschema.Schema] `gorm:"type:jsonb;not null" json:"form_schema"`
	IsPublic      bool                                  `gorm:"default:true;index" json:"is_public"`
	Views         int64                                 `gorm:"default:0" json:"views"`
	CreatedAt     time.Time                             `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt     time.Time                             `gorm:"autoUpdateTime" json:"updated_at"`
	Images        []EventImage                          `gorm:"foreignKey:EventID" json:"images,omitempty"`
}

func (e *Event) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == uuid.Nil {
		e.ID, err = uuid.NewV7()
	}
	return
}

func (e *Event) Schema() formschema.Schema {
	return e.FormSchema.Data()
}

// DeadlinePassed reports whether registrations are closed at now.
func (e *Event) DeadlinePassed(now time.Time) bool {
	return !now.Before(e.Deadline)
}

const (
	OrganizerRoleOrganizer = "organizer"
	OrganizerRoleNormal    = "normal"
)

// EventOrganizer grants a user a management role on one event.
type EventOrganizer struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	EventID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_event_organizer,priority:1" json:"event_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_event_organizer,priority:2;index" json:"user_id"`
	Role      string    `gorm:"size:20;not null" json:"role"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	Event     *Event    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	User      *User     `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
}

// EventImage is a gallery image. It is uploaded before the event form is
// submitted, so EventID stays nil until the event binds it.
type EventImage struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null" json:"user_id"`
	EventID   *uuid.UUID `gorm:"type:uuid;index" json:"event_id,omitempty"`
	FileURL   string     `gorm:"type:text;not null" json:"file_url"`
	FileType  string     `gorm:"size:50" json:"file_type"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
}
