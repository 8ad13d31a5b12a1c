package dto

import (
	"time"

	commonDto "anoa.com/eventhub/pkg/dto"
	"github.com/google/uuid"
)

type NotificationQuery struct {
	Page  int `form:"page" binding:"omitempty,min=1"`
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

type PanelInvitation struct {
	ID        uuid.UUID              `json:"id"`
	Event     commonDto.EventSummary `json:"event"`
	Inviter   commonDto.UserSummary  `json:"inviter"`
	CreatedAt time.Time              `json:"created_at"`
}

type PanelDeadline struct {
	EventID  uuid.UUID `json:"event_id"`
	Title    string    `json:"title"`
	Deadline time.Time `json:"deadline"`
}

// PanelResponse feeds the notification bell: open invitations and the
// registration deadlines still ahead of the caller.
type PanelResponse struct {
	Invitations []PanelInvitation `json:"invitations"`
	Deadlines   []PanelDeadline   `json:"deadlines"`
}
