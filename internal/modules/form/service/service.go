package form

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"anoa.com/eventhub/internal/entity"
	"anoa.com/eventhub/internal/formschema"
	eventRepo "anoa.com/eventhub/internal/modules/event/repository"
	event "anoa.com/eventhub/internal/modules/event/service"
	"anoa.com/eventhub/internal/modules/form/dto"
	"anoa.com/eventhub/internal/modules/form/repository"
	"anoa.com/eventhub/pkg/apperror"
	"github.com/google/uuid"
)

type FormService interface {
	GetSchema(ctx context.Context, userID, eventID uuid.UUID) (*dto.SchemaResponse, error)
	SaveSchema(ctx context.Context, userID, eventID uuid.UUID, schema formschema.Schema) (*dto.SchemaResponse, error)

	GetDraft(ctx context.Context, userID, eventID uuid.UUID) (*dto.DraftResponse, error)
	TogglePersonalField(ctx context.Context, userID, eventID uuid.UUID, field string) (*dto.DraftResponse, error)
	AddQuestion(ctx context.Context, userID, eventID uuid.UUID) (*dto.DraftResponse, error)
	UpdateQuestion(ctx context.Context, userID, eventID uuid.UUID, questionID string, req dto.UpdateQuestionRequest) (*dto.DraftResponse, error)
	DeleteQuestion(ctx context.Context, userID, eventID uuid.UUID, questionID string) (*dto.DraftResponse, error)
	DiscardDraft(ctx context.Context, userID, eventID uuid.UUID) error
	SaveDraft(ctx context.Context, userID, eventID uuid.UUID) (*dto.SchemaResponse, error)
}

type formService struct {
	eventRepo eventRepo.EventRepository
	drafts    repository.DraftRepository
	access    event.Authorizer
}

func NewFormService(eventRepo eventRepo.EventRepository, drafts repository.DraftRepository, access event.Authorizer) FormService {
	return &formService{
		eventRepo: eventRepo,
		drafts:    drafts,
		access:    access,
	}
}

// schemaError turns formschema validation failures into client errors.
func schemaError(err error) error {
	if errors.Is(err, formschema.ErrQuestionNotFound) {
		return apperror.New(http.StatusNotFound, err.Error(), apperror.ErrNotFound)
	}
	return apperror.New(http.StatusBadRequest, err.Error(), apperror.ErrInvalidInput)
}

func (s *formService) GetSchema(ctx context.Context, userID, eventID uuid.UUID) (*dto.SchemaResponse, error) {
	ev, _, err := s.access.RequireRole(ctx, eventID, userID, entity.OrganizerRoleOrganizer, entity.OrganizerRoleNormal)
	if err != nil {
		return nil, err
	}
	return &dto.SchemaResponse{Schema: ev.Schema().Normalize()}, nil
}

// SaveSchema overwrites the whole document. Concurrent saves are last write wins.
func (s *formService) SaveSchema(ctx context.Context, userID, eventID uuid.UUID, schema formschema.Schema) (*dto.SchemaResponse, error) {
	if _, _, err := s.access.RequireRole(ctx, eventID, userID, entity.OrganizerRoleOrganizer); err != nil {
		return nil, err
	}

	schema = schema.Normalize()
	if err := schema.ValidateForSave(); err != nil {
		return nil, schemaError(err)
	}

	if err := s.eventRepo.UpdateFormSchema(ctx, eventID, schema); err != nil {
		return nil, fmt.Errorf("failed to save form schema: %w", err)
	}

	return &dto.SchemaResponse{Schema: schema}, nil
}

// loadDraft returns the editor's draft, or a copy of the saved schema when
// there is none.
func (s *formService) loadDraft(ctx context.Context, userID, eventID uuid.UUID) (formschema.Schema, bool, error) {
	ev, _, err := s.access.RequireRole(ctx, eventID, userID, entity.OrganizerRoleOrganizer)
	if err != nil {
		return formschema.Schema{}, false, err
	}

	draft, err := s.drafts.Get(ctx, eventID, userID)
	if err != nil {
		return formschema.Schema{}, false, fmt.Errorf("failed to load draft: %w", err)
	}
	if draft != nil {
		return *draft, true, nil
	}
	return ev.Schema().Normalize(), false, nil
}

func (s *formService) edit(ctx context.Context, userID, eventID uuid.UUID, apply func(*formschema.Schema) error) (*dto.DraftResponse, error) {
	schema, _, err := s.loadDraft(ctx, userID, eventID)
	if err != nil {
		return nil, err
	}

	if err := apply(&schema); err != nil {
		return nil, schemaError(err)
	}

	if err := s.drafts.Put(ctx, eventID, userID, schema); err != nil {
		return nil, fmt.Errorf("failed to store draft: %w", err)
	}
	return &dto.DraftResponse{Schema: schema, Unsaved: true}, nil
}

func (s *formService) GetDraft(ctx context.Context, userID, eventID uuid.UUID) (*dto.DraftResponse, error) {
	schema, held, err := s.loadDraft(ctx, userID, eventID)
	if err != nil {
		return nil, err
	}
	return &dto.DraftResponse{Schema: schema, Unsaved: held}, nil
}

func (s *formService) TogglePersonalField(ctx context.Context, userID, eventID uuid.UUID, field string) (*dto.DraftResponse, error) {
	return s.edit(ctx, userID, eventID, func(schema *formschema.Schema) error {
		return schema.TogglePersonalField(field)
	})
}

func (s *formService) AddQuestion(ctx context.Context, userID, eventID uuid.UUID) (*dto.DraftResponse, error) {
	return s.edit(ctx, userID, eventID, func(schema *formschema.Schema) error {
		schema.AddQuestion()
		return nil
	})
}

func (s *formService) UpdateQuestion(ctx context.Context, userID, eventID uuid.UUID, questionID string, req dto.UpdateQuestionRequest) (*dto.DraftResponse, error) {
	return s.edit(ctx, userID, eventID, func(schema *formschema.Schema) error {
		_, err := schema.UpdateQuestion(questionID, req.Patch())
		return err
	})
}

func (s *formService) DeleteQuestion(ctx context.Context, userID, eventID uuid.UUID, questionID string) (*dto.DraftResponse, error) {
	return s.edit(ctx, userID, eventID, func(schema *formschema.Schema) error {
		return schema.DeleteQuestion(questionID)
	})
}

func (s *formService) DiscardDraft(ctx context.Context, userID, eventID uuid.UUID) error {
	if _, _, err := s.access.RequireRole(ctx, eventID, userID, entity.OrganizerRoleOrganizer); err != nil {
		return err
	}
	return s.drafts.Delete(ctx, eventID, userID)
}

// SaveDraft publishes the draft. The draft is kept when validation fails so
// the editor can fix it.
func (s *formService) SaveDraft(ctx context.Context, userID, eventID uuid.UUID) (*dto.SchemaResponse, error) {
	schema, _, err := s.loadDraft(ctx, userID, eventID)
	if err != nil {
		return nil, err
	}

	res, err := s.SaveSchema(ctx, userID, eventID, schema)
	if err != nil {
		return nil, err
	}

	if err := s.drafts.Delete(ctx, eventID, userID); err != nil {
		return nil, fmt.Errorf("failed to clear draft: %w", err)
	}
	return res, nil
}
