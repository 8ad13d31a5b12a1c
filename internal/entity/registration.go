package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	RegistrationPending  = "pending"
	RegistrationApproved = "approved"
	RegistrationRejected = "rejected"
)

type Registration struct {
	ID               uuid.UUID                              `gorm:"type:uuid;primaryKey" json:"id"`
	EventID          uuid.UUID                              `gorm:"type:uuid;not null;uniqueIndex:idx_registration_event_user,priority:1" json:"event_id"`
	UserID           uuid.UUID                              `gorm:"type:uuid;not null;uniqueIndex:idx_registration_event_user,priority:2;index" json:"user_id"`
	UserInfoSnapshot datatypes.JSONType[map[string]string] `gorm:"type:jsonb;not null" json:"user_info_snapshot"`
	Answers          datatypes.JSONType[map[string]string] `gorm:"type:jsonb;not null" json:"answers"`
	Status           string                                 `gorm:"size:20;not null;default:pending;index" json:"status"`
	ReviewNote       string                                 `gorm:"type:text" json:"review_note,omitempty"`
	CreatedAt        time.Time                              `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time                              `gorm:"autoUpdateTime" json:"updated_at"`
	Event            *Event                                 `gorm:"constraint:OnDelete:CASCADE" json:"event,omitempty"`
	User             *User                                  `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
}

func (r *Registration) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID, err = uuid.NewV7()
	}
	return
}
