package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	NotificationInvitation         = "invitation"
	NotificationInvitationAccepted = "invitation_accepted"
	NotificationInvitationRejected = "invitation_rejected"
	NotificationNewRegistration    = "new_registration"
	NotificationRegistrationReview = "registration_review"
	NotificationDeadlineReminder   = "deadline_reminder"
)

type Notification struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"` // receiver
	ActorID   *uuid.UUID `gorm:"type:uuid" json:"actor_id,omitempty"`
	EventID   *uuid.UUID `gorm:"type:uuid" json:"event_id,omitempty"`
	Type      string     `gorm:"type:varchar(50);not null" json:"type"`
	Message   string     `gorm:"type:text" json:"message"`
	IsRead    bool       `gorm:"default:false" json:"is_read"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`

	Actor *User  `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
	Event *Event `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"event,omitempty"`
}
