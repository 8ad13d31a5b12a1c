package dto

import "github.com/google/uuid"

type StatusCounts struct {
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved,omitempty"`
	Rejected int64 `json:"rejected"`
	Accepted int64 `json:"accepted,omitempty"`
	Total    int64 `json:"total"`
}

type EventStatsResponse struct {
	EventID       uuid.UUID    `json:"event_id"`
	Views         int64        `json:"views"`
	Registrations StatusCounts `json:"registrations"`
	Invitations   StatusCounts `json:"invitations"`
}
