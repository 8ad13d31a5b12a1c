package event

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/eventhub/internal/entity"
	"anoa.com/eventhub/internal/modules/event/repository"
	"anoa.com/eventhub/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Authorizer resolves what a caller may do with an event. Every module that
// exposes event data goes through it.
type Authorizer interface {
	// RequireRole loads the event and fails unless the caller holds one of roles.
	RequireRole(ctx context.Context, eventID, userID uuid.UUID, roles ...string) (*entity.Event, string, error)
	// RequireVisible loads the event if it is public or the caller takes part in it.
	RequireVisible(ctx context.Context, eventID, userID uuid.UUID) (*entity.Event, error)
}

type authorizer struct {
	eventRepo     repository.EventRepository
	organizerRepo repository.OrganizerRepository
}

func NewAuthorizer(eventRepo repository.EventRepository, organizerRepo repository.OrganizerRepository) Authorizer {
	return &authorizer{eventRepo: eventRepo, organizerRepo: organizerRepo}
}

func (a *authorizer) load(ctx context.Context, eventID uuid.UUID) (*entity.Event, error) {
	event, err := a.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("event not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return event, nil
}

func (a *authorizer) RequireRole(ctx context.Context, eventID, userID uuid.UUID, roles ...string) (*entity.Event, string, error) {
	event, err := a.load(ctx, eventID)
	if err != nil {
		return nil, "", err
	}

	role, err := a.organizerRepo.FindRole(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", fmt.Errorf("you do not manage this event: %w", apperror.ErrForbidden)
		}
		return nil, "", err
	}

	for _, allowed := range roles {
		if role == allowed {
			return event, role, nil
		}
	}
	return nil, "", fmt.Errorf("requires %s role on this event: %w", roles[0], apperror.ErrForbidden)
}

func (a *authorizer) RequireVisible(ctx context.Context, eventID, userID uuid.UUID) (*entity.Event, error) {
	event, err := a.load(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.IsPublic {
		return event, nil
	}

	ok, err := a.eventRepo.HasParticipant(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		// private events look missing to outsiders
		return nil, fmt.Errorf("event not found: %w", apperror.ErrNotFound)
	}
	return event, nil
}
