package dto

import (
	"time"

	commonDto "anoa.com/eventhub/pkg/dto"
	"github.com/google/uuid"
)

// InviteRequest names the invitee by account id or by email address.
type InviteRequest struct {
	InviteeID *uuid.UUID `json:"invitee_id" binding:"required_without=Email"`
	Email     string     `json:"email" binding:"omitempty,email"`
}

const (
	DeliveryInvitation = "invitation"
	DeliveryEmail      = "email"
)

// InviteResponse tells whether an invitation row was created or, for an
// address without an account, only an email was sent.
type InviteResponse struct {
	Delivery     string     `json:"delivery"`
	InvitationID *uuid.UUID `json:"invitation_id,omitempty"`
	Email        string     `json:"email,omitempty"`
}

type InvitationResponse struct {
	ID        uuid.UUID              `json:"id"`
	Status    string                 `json:"status"`
	Event     commonDto.EventSummary `json:"event"`
	Inviter   commonDto.UserSummary  `json:"inviter"`
	CreatedAt time.Time              `json:"created_at"`
}
