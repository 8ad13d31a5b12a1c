package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	InvitationPending  = "pending"
	InvitationAccepted = "accepted"
	InvitationRejected = "rejected"
)

// Invitation is unique per (event, invitee); re-inviting reuses the row.
type Invitation struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	EventID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_invitation_event_invitee,priority:1" json:"event_id"`
	InviteeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_invitation_event_invitee,priority:2;index" json:"invitee_id"`
	InviterID uuid.UUID `gorm:"type:uuid;not null" json:"inviter_id"`
	Status    string    `gorm:"size:20;not null;default:pending" json:"status"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
	Event     *Event    `gorm:"constraint:OnDelete:CASCADE" json:"event,omitempty"`
	Inviter   *User     `gorm:"foreignKey:InviterID;constraint:OnDelete:CASCADE" json:"inviter,omitempty"`
	Invitee   *User     `gorm:"foreignKey:InviteeID;constraint:OnDelete:CASCADE" json:"invitee,omitempty"`
}

func (i *Invitation) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == uuid.Nil {
		i.ID, err = uuid.NewV7()
	}
	return
}
