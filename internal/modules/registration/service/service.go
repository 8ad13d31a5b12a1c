package registration

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"anoa.com/eventhub/internal/entity"
	"anoa.com/eventhub/internal/formschema"
	eventRepo "anoa.com/eventhub/internal/modules/event/repository"
	eventDto "anoa.com/eventhub/internal/modules/event/dto"
	event "anoa.com/eventhub/internal/modules/event/service"
	invitationRepo "anoa.com/eventhub/internal/modules/invitation/repository"
	notification "anoa.com/eventhub/internal/modules/notification/service"
	"anoa.com/eventhub/internal/modules/registration/dto"
	"anoa.com/eventhub/internal/modules/registration/repository"
	userRepo "anoa.com/eventhub/internal/modules/user/repository"
	"anoa.com/eventhub/internal/queue"
	"anoa.com/eventhub/internal/templates"
	"anoa.com/eventhub/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var fileNameUnsafe = regexp.MustCompile(`[^a-zA-Z0-9]+`)

type RegistrationService interface {
	GetForm(ctx context.Context, userID, eventID uuid.UUID) (*dto.RegistrationFormResponse, error)
	Register(ctx context.Context, userID, eventID uuid.UUID, req dto.RegisterRequest) (*entity.Registration, error)
	UpdateMine(ctx context.Context, userID, eventID uuid.UUID, req dto.UpdateRegistrationRequest) (*entity.Registration, error)
	CancelMine(ctx context.Context, userID, eventID uuid.UUID) error
	ListMine(ctx context.Context, userID uuid.UUID) ([]dto.MyRegistrationResponse, error)
	ListTable(ctx context.Context, userID, eventID uuid.UUID) (*dto.TableResponse, error)
	ExportCSV(ctx context.Context, userID, eventID uuid.UUID) (*dto.ExportFile, error)
	Review(ctx context.Context, userID, eventID, registrationID uuid.UUID, req dto.ReviewRequest) (*entity.Registration, error)
}

type registrationService struct {
	repo           repository.RegistrationRepository
	userRepo       userRepo.UserRepository
	organizerRepo  eventRepo.OrganizerRepository
	invitationRepo invitationRepo.InvitationRepository
	access         event.Authorizer
	notifications  notification.NotificationService
	dispatcher     queue.Dispatcher
	frontendURL    string
	now            func() time.Time
}

func NewRegistrationService(
	repo repository.RegistrationRepository,
	userRepo userRepo.UserRepository,
	organizerRepo eventRepo.OrganizerRepository,
	invitationRepo invitationRepo.InvitationRepository,
	access event.Authorizer,
	notifications notification.NotificationService,
	dispatcher queue.Dispatcher,
	frontendURL string,
) RegistrationService {
	return &registrationService{
		repo:           repo,
		userRepo:       userRepo,
		organizerRepo:  organizerRepo,
		invitationRepo: invitationRepo,
		access:         access,
		notifications:  notifications,
		dispatcher:     dispatcher,
		frontendURL:    strings.TrimRight(frontendURL, "/"),
		now:            time.Now,
	}
}

func schemaError(err error) error {
	return apperror.New(http.StatusBadRequest, err.Error(), apperror.ErrInvalidInput)
}

func missingError(missing []string) error {
	msg := "please complete the required fields: " + strings.Join(missing, ", ")
	return apperror.New(http.StatusBadRequest, msg, apperror.ErrInvalidInput)
}

func (s *registrationService) eventLink(eventID uuid.UUID) string {
	return fmt.Sprintf("%s/events/%s", s.frontendURL, eventID)
}

func (s *registrationService) findMine(ctx context.Context, eventID, userID uuid.UUID) (*entity.Registration, error) {
	reg, err := s.repo.FindByEventAndUser(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("registration not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return reg, nil
}

func (s *registrationService) GetForm(ctx context.Context, userID, eventID uuid.UUID) (*dto.RegistrationFormResponse, error) {
	ev, err := s.access.RequireVisible(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", apperror.ErrNotFound)
	}

	schema := ev.Schema().Normalize()
	profile := user.PersonalInfo()

	fields := make([]dto.PersonalField, 0, len(schema.PersonalFields))
	for _, f := range schema.PersonalFields {
		fields = append(fields, dto.PersonalField{
			Field: f,
			Label: formschema.FieldLabel(f),
			Value: profile[f],
		})
	}

	res := &dto.RegistrationFormResponse{
		Event:          eventDto.ToSummary(ev),
		Schema:         schema,
		PersonalInfo:   fields,
		DeadlinePassed: ev.DeadlinePassed(s.now()),
	}

	reg, err := s.repo.FindByEventAndUser(ctx, eventID, userID)
	if err == nil {
		res.Registration = reg
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return res, nil
}

func (s *registrationService) Register(ctx context.Context, userID, eventID uuid.UUID, req dto.RegisterRequest) (*entity.Registration, error) {
	ev, err := s.access.RequireVisible(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}

	if ev.DeadlinePassed(s.now()) {
		return nil, fmt.Errorf("registration deadline has passed: %w", apperror.ErrBadRequest)
	}

	schema := ev.Schema()
	if len(schema.PersonalFields) == 0 && len(schema.CustomQuestions) == 0 {
		return nil, fmt.Errorf("registration form is not published yet: %w", apperror.ErrBadRequest)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", apperror.ErrNotFound)
	}

	answers, err := formschema.CleanAnswers(schema, req.Answers)
	if err != nil {
		return nil, schemaError(err)
	}

	// point-in-time copy; later profile edits do not reach this registration
	snapshot := formschema.Snapshot(schema, user.PersonalInfo())

	if missing := formschema.MissingRequired(schema, snapshot, answers); len(missing) > 0 {
		return nil, missingError(missing)
	}

	reg := &entity.Registration{
		EventID:          eventID,
		UserID:           userID,
		UserInfoSnapshot: datatypes.NewJSONType(snapshot),
		Answers:          datatypes.NewJSONType(answers),
		Status:           entity.RegistrationPending,
	}

	if err := s.repo.Create(ctx, reg); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("already registered: %w", apperror.ErrConflict)
		}
		return nil, err
	}

	if _, err := s.invitationRepo.AcceptPending(ctx, eventID, userID); err != nil {
		log.Printf("Failed to accept invitation of %s for event %s: %v", userID, eventID, err)
	}

	s.notifyOrganizers(ctx, ev, user)
	return reg, nil
}

func (s *registrationService) notifyOrganizers(ctx context.Context, ev *entity.Event, registrant *entity.User) {
	organizerIDs, err := s.organizerRepo.UserIDs(ctx, ev.ID, entity.OrganizerRoleOrganizer)
	if err != nil {
		log.Printf("Failed to load organizers of event %s: %v", ev.ID, err)
		return
	}

	for _, id := range organizerIDs {
		if id == registrant.ID {
			continue
		}
		actorID, eventID := registrant.ID, ev.ID
		n := &entity.Notification{
			UserID:  id,
			ActorID: &actorID,
			EventID: &eventID,
			Type:    entity.NotificationNewRegistration,
			Message: fmt.Sprintf("%s registered for %s", registrant.DisplayName(), ev.Title),
		}
		if err := s.notifications.CreateNotification(ctx, n); err != nil {
			log.Printf("Failed to notify organizer %s: %v", id, err)
		}
	}
}

func (s *registrationService) UpdateMine(ctx context.Context, userID, eventID uuid.UUID, req dto.UpdateRegistrationRequest) (*entity.Registration, error) {
	ev, err := s.access.RequireVisible(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}

	reg, err := s.findMine(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}

	if ev.DeadlinePassed(s.now()) {
		return nil, fmt.Errorf("registration deadline has passed: %w", apperror.ErrBadRequest)
	}

	schema := ev.Schema()

	snapshot := map[string]string{}
	for k, v := range reg.UserInfoSnapshot.Data() {
		snapshot[k] = v
	}
	for field, value := range req.PersonalInfo {
		if !schema.HasPersonalField(field) {
			return nil, apperror.New(http.StatusBadRequest, fmt.Sprintf("%s is not collected by this form", field), apperror.ErrInvalidInput)
		}
		snapshot[field] = strings.TrimSpace(value)
	}

	stored := reg.Answers.Data()
	// answers to questions deleted since registering are sent back untouched
	submitted := make(map[string]string, len(req.Answers))
	for k, v := range req.Answers {
		if _, ok := schema.Question(k); !ok {
			if _, kept := stored[k]; kept {
				continue
			}
		}
		submitted[k] = v
	}

	cleaned, err := formschema.CleanAnswers(schema, submitted)
	if err != nil {
		return nil, schemaError(err)
	}
	// a blank answer clears the previous one
	previous := map[string]string{}
	for k, v := range stored {
		if raw, sent := submitted[k]; sent && strings.TrimSpace(raw) == "" {
			continue
		}
		previous[k] = v
	}
	answers := formschema.MergeAnswers(previous, cleaned)

	if missing := formschema.MissingRequired(schema, snapshot, answers); len(missing) > 0 {
		return nil, missingError(missing)
	}

	reg.UserInfoSnapshot = datatypes.NewJSONType(snapshot)
	reg.Answers = datatypes.NewJSONType(answers)
	if err := s.repo.UpdateSubmission(ctx, reg); err != nil {
		return nil, err
	}
	return reg, nil
}

func (s *registrationService) CancelMine(ctx context.Context, userID, eventID uuid.UUID) error {
	ev, err := s.access.RequireVisible(ctx, eventID, userID)
	if err != nil {
		return err
	}

	reg, err := s.findMine(ctx, eventID, userID)
	if err != nil {
		return err
	}

	if ev.DeadlinePassed(s.now()) {
		return fmt.Errorf("registration deadline has passed: %w", apperror.ErrBadRequest)
	}

	return s.repo.Delete(ctx, reg.ID)
}

func (s *registrationService) ListMine(ctx context.Context, userID uuid.UUID) ([]dto.MyRegistrationResponse, error) {
	registrations, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	res := make([]dto.MyRegistrationResponse, 0, len(registrations))
	for _, r := range registrations {
		if r.Event == nil {
			continue
		}
		res = append(res, dto.MyRegistrationResponse{
			ID:         r.ID,
			Status:     r.Status,
			ReviewNote: r.ReviewNote,
			CreatedAt:  r.CreatedAt,
			Event:      eventDto.ToSummary(r.Event),
		})
	}
	return res, nil
}

func (s *registrationService) loadTable(ctx context.Context, userID, eventID uuid.UUID) (*entity.Event, []*entity.Registration, error) {
	ev, _, err := s.access.RequireRole(ctx, eventID, userID, entity.OrganizerRoleOrganizer, entity.OrganizerRoleNormal)
	if err != nil {
		return nil, nil, err
	}

	registrations, err := s.repo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}
	return ev, registrations, nil
}

func record(r *entity.Registration) formschema.Record {
	return formschema.Record{
		Snapshot: r.UserInfoSnapshot.Data(),
		Answers:  r.Answers.Data(),
	}
}

func (s *registrationService) ListTable(ctx context.Context, userID, eventID uuid.UUID) (*dto.TableResponse, error) {
	ev, registrations, err := s.loadTable(ctx, userID, eventID)
	if err != nil {
		return nil, err
	}

	schema := ev.Schema()
	res := &dto.TableResponse{
		Columns: formschema.Columns(schema),
		Rows:    make([]dto.TableRow, 0, len(registrations)),
	}
	for _, r := range registrations {
		res.Rows = append(res.Rows, dto.TableRow{
			ID:          r.ID,
			UserID:      r.UserID,
			Status:      r.Status,
			ReviewNote:  r.ReviewNote,
			SubmittedAt: r.CreatedAt,
			Cells:       formschema.Cells(schema, record(r)),
		})
	}
	return res, nil
}

func (s *registrationService) ExportCSV(ctx context.Context, userID, eventID uuid.UUID) (*dto.ExportFile, error) {
	ev, registrations, err := s.loadTable(ctx, userID, eventID)
	if err != nil {
		return nil, err
	}

	records := make([]formschema.Record, 0, len(registrations))
	for _, r := range registrations {
		records = append(records, record(r))
	}

	var buf bytes.Buffer
	if err := formschema.WriteCSV(&buf, ev.Schema(), records); err != nil {
		return nil, fmt.Errorf("failed to write csv: %w", err)
	}

	return &dto.ExportFile{
		FileName: ExportFileName(ev.Title, s.now()),
		Content:  buf.Bytes(),
	}, nil
}

// ExportFileName is "<title>-registrations-<date>.csv" with the title reduced
// to ASCII letters, digits and dashes.
func ExportFileName(title string, at time.Time) string {
	base := strings.Trim(fileNameUnsafe.ReplaceAllString(title, "-"), "-")
	if base == "" {
		base = "event"
	}
	return fmt.Sprintf("%s-registrations-%s.csv", strings.ToLower(base), at.Format("20060102"))
}

func (s *registrationService) Review(ctx context.Context, userID, eventID, registrationID uuid.UUID, req dto.ReviewRequest) (*entity.Registration, error) {
	ev, _, err := s.access.RequireRole(ctx, eventID, userID, entity.OrganizerRoleOrganizer)
	if err != nil {
		return nil, err
	}

	reg, err := s.repo.FindByID(ctx, registrationID)
	if err != nil || reg.EventID != eventID {
		if err == nil || errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("registration not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	note := strings.TrimSpace(req.Note)
	if err := s.repo.UpdateStatus(ctx, reg.ID, req.Status, note); err != nil {
		return nil, err
	}
	reg.Status = req.Status
	reg.ReviewNote = note

	actorID, evID := userID, ev.ID
	n := &entity.Notification{
		UserID:  reg.UserID,
		ActorID: &actorID,
		EventID: &evID,
		Type:    entity.NotificationRegistrationReview,
		Message: fmt.Sprintf("Your registration for %s was %s", ev.Title, req.Status),
	}
	if err := s.notifications.CreateNotification(ctx, n); err != nil {
		log.Printf("Failed to notify registrant %s: %v", reg.UserID, err)
	}

	if reg.User != nil && s.dispatcher != nil {
		email, err := templates.ReviewEmail(reg.User.Email, ev.Title, req.Status, note, s.eventLink(ev.ID))
		if err != nil {
			log.Printf("Failed to render review email: %v", err)
		} else if err := s.dispatcher.Dispatch(ctx, queue.EmailJob(email)); err != nil {
			log.Printf("Failed to dispatch review email to %s: %v", reg.User.Email, err)
		}
	}

	return reg, nil
}
