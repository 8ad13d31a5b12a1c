package registration

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"anoa.com/eventhub/internal/entity"
	"anoa.com/eventhub/internal/formschema"
	eventRepo "anoa.com/eventhub/internal/modules/event/repository"
	event "anoa.com/eventhub/internal/modules/event/service"
	invitationRepo "anoa.com/eventhub/internal/modules/invitation/repository"
	notification "anoa.com/eventhub/internal/modules/notification/service"
	"anoa.com/eventhub/internal/modules/registration/dto"
	"anoa.com/eventhub/internal/modules/registration/repository"
	userRepo "anoa.com/eventhub/internal/modules/user/repository"
	"anoa.com/eventhub/internal/queue"
	"anoa.com/eventhub/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type fakeRegRepo struct {
	repository.RegistrationRepository
	rows []*entity.Registration
}

func (f *fakeRegRepo) Create(ctx context.Context, r *entity.Registration) error {
	for _, row := range f.rows {
		if row.EventID == r.EventID && row.UserID == r.UserID {
			return gorm.ErrDuplicatedKey
		}
	}
	r.ID = uuid.New()
	r.CreatedAt = time.Now()
	stored := *r
	f.rows = append(f.rows, &stored)
	return nil
}

func (f *fakeRegRepo) FindByEventAndUser(ctx context.Context, eventID, userID uuid.UUID) (*entity.Registration, error) {
	for _, row := range f.rows {
		if row.EventID == eventID && row.UserID == userID {
			clone := *row
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRegRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Registration, error) {
	for _, row := range f.rows {
		if row.ID == id {
			clone := *row
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRegRepo) UpdateSubmission(ctx context.Context, r *entity.Registration) error {
	for _, row := range f.rows {
		if row.ID == r.ID {
			row.UserInfoSnapshot = r.UserInfoSnapshot
			row.Answers = r.Answers
		}
	}
	return nil
}

func (f *fakeRegRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status, note string) error {
	for _, row := range f.rows {
		if row.ID == id {
			row.Status, row.ReviewNote = status, note
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeRegRepo) Delete(ctx context.Context, id uuid.UUID) error {
	for i, row := range f.rows {
		if row.ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeRegRepo) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*entity.Registration, error) {
	var out []*entity.Registration
	for _, row := range f.rows {
		if row.EventID == eventID {
			out = append(out, row)
		}
	}
	return out, nil
}

type fakeUserRepo struct {
	userRepo.UserRepository
	users map[uuid.UUID]*entity.User
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

type fakeEventRepo struct {
	eventRepo.EventRepository
	event *entity.Event
}

func (f *fakeEventRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Event, error) {
	if f.event.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *f.event
	return &clone, nil
}

func (f *fakeEventRepo) HasParticipant(ctx context.Context, eventID, userID uuid.UUID) (bool, error) {
	return false, nil
}

type fakeOrganizerRepo struct {
	eventRepo.OrganizerRepository
	roles map[uuid.UUID]string
}

func (f *fakeOrganizerRepo) FindRole(ctx context.Context, eventID, userID uuid.UUID) (string, error) {
	role, ok := f.roles[userID]
	if !ok {
		return "", gorm.ErrRecordNotFound
	}
	return role, nil
}

func (f *fakeOrganizerRepo) UserIDs(ctx context.Context, eventID uuid.UUID, role string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for id, r := range f.roles {
		if role == "" || r == role {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

type fakeInvitationRepo struct {
	invitationRepo.InvitationRepository
	accepted int
}

func (f *fakeInvitationRepo) AcceptPending(ctx context.Context, eventID, inviteeID uuid.UUID) (bool, error) {
	f.accepted++
	return true, nil
}

type fakeNotifications struct {
	notification.NotificationService
	sent []*entity.Notification
}

func (f *fakeNotifications) CreateNotification(ctx context.Context, n *entity.Notification) error {
	f.sent = append(f.sent, n)
	return nil
}

type fakeDispatcher struct {
	jobs []queue.Job
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, job queue.Job) error {
	f.jobs = append(f.jobs, job)
	return nil
}

type fixture struct {
	regs        *fakeRegRepo
	users       *fakeUserRepo
	event       *entity.Event
	invitations *fakeInvitationRepo
	notes       *fakeNotifications
	dispatcher  *fakeDispatcher
	owner       uuid.UUID
	student     *entity.User
	svc         RegistrationService
}

const sizeQuestion = "q-size"

func newFixture() *fixture {
	owner := uuid.New()
	student := &entity.User{
		ID:      uuid.New(),
		Email:   "budi@example.com",
		Profile: &entity.Profile{Name: "Budi", Phone: "0812", School: "SMA 1"},
	}

	ev := &entity.Event{
		ID:          uuid.New(),
		OrganizerID: owner,
		Title:       "Robotics Camp 2025!",
		Deadline:    time.Now().Add(24 * time.Hour),
		IsPublic:    true,
		FormSchema: datatypes.NewJSONType(formschema.Schema{
			PersonalFields: []string{formschema.FieldName, formschema.FieldSchool},
			CustomQuestions: []formschema.Question{
				{ID: sizeQuestion, Label: "T-shirt size", Type: formschema.QuestionSelect, Required: true, Options: []string{"S", "M", "L"}},
				{ID: "q-note", Label: "Notes", Type: formschema.QuestionTextarea},
			},
		}),
	}

	f := &fixture{
		regs:        &fakeRegRepo{},
		users:       &fakeUserRepo{users: map[uuid.UUID]*entity.User{student.ID: student}},
		event:       ev,
		invitations: &fakeInvitationRepo{},
		notes:       &fakeNotifications{},
		dispatcher:  &fakeDispatcher{},
		owner:       owner,
		student:     student,
	}

	events := &fakeEventRepo{event: ev}
	organizers := &fakeOrganizerRepo{roles: map[uuid.UUID]string{owner: entity.OrganizerRoleOrganizer}}
	f.svc = NewRegistrationService(f.regs, f.users, organizers, f.invitations, event.NewAuthorizer(events, organizers), f.notes, f.dispatcher, "https://hub.example.com/")
	return f
}

func (f *fixture) register(t *testing.T) *entity.Registration {
	t.Helper()
	reg, err := f.svc.Register(context.Background(), f.student.ID, f.event.ID, dto.RegisterRequest{
		Answers: map[string]string{sizeQuestion: " M "},
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return reg
}

func TestRegisterStoresSnapshotAndNotifies(t *testing.T) {
	f := newFixture()
	reg := f.register(t)

	snapshot := reg.UserInfoSnapshot.Data()
	if snapshot[formschema.FieldName] != "Budi" || snapshot[formschema.FieldSchool] != "SMA 1" {
		t.Fatalf("unexpected snapshot %v", snapshot)
	}
	if _, ok := snapshot[formschema.FieldPhone]; ok {
		t.Fatalf("snapshot must only hold the selected fields: %v", snapshot)
	}
	if reg.Answers.Data()[sizeQuestion] != "M" {
		t.Fatalf("answer not trimmed: %v", reg.Answers.Data())
	}
	if f.invitations.accepted != 1 {
		t.Fatalf("pending invitation should be accepted")
	}
	if len(f.notes.sent) != 1 || f.notes.sent[0].UserID != f.owner || f.notes.sent[0].Type != entity.NotificationNewRegistration {
		t.Fatalf("organizer not notified: %+v", f.notes.sent)
	}
}

func TestSnapshotSurvivesProfileEdits(t *testing.T) {
	f := newFixture()
	f.register(t)

	f.student.Profile.Name = "Budi Santoso"
	f.student.Profile.School = "SMA 2"

	table, err := f.svc.ListTable(context.Background(), f.owner, f.event.ID)
	if err != nil {
		t.Fatalf("table: %v", err)
	}
	if got := table.Rows[0].Cells; got[0] != "Budi" || got[1] != "SMA 1" {
		t.Fatalf("snapshot changed with the profile: %v", got)
	}
}

func TestSecondRegistrationIsRejected(t *testing.T) {
	f := newFixture()
	f.register(t)

	_, err := f.svc.Register(context.Background(), f.student.ID, f.event.ID, dto.RegisterRequest{
		Answers: map[string]string{sizeQuestion: "L"},
	})
	if !errors.Is(err, apperror.ErrConflict) || !strings.Contains(err.Error(), "already registered") {
		t.Fatalf("expected already registered conflict, got %v", err)
	}
	if len(f.regs.rows) != 1 {
		t.Fatalf("duplicate row stored")
	}
}

func TestRegisterListsMissingFields(t *testing.T) {
	f := newFixture()
	f.student.Profile.School = "  "

	_, err := f.svc.Register(context.Background(), f.student.ID, f.event.ID, dto.RegisterRequest{})
	if apperror.MapErrorToStatus(err) != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
	if !strings.Contains(err.Error(), "School") || !strings.Contains(err.Error(), "T-shirt size") {
		t.Fatalf("message should name every missing field: %v", err)
	}
}

func TestRegisterRejectsBadAnswers(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Register(context.Background(), f.student.ID, f.event.ID, dto.RegisterRequest{
		Answers: map[string]string{sizeQuestion: "XXL"},
	})
	if !errors.Is(err, apperror.ErrInvalidInput) {
		t.Fatalf("expected invalid option, got %v", err)
	}
}

func TestRegisterAfterDeadline(t *testing.T) {
	f := newFixture()
	f.event.Deadline = time.Now().Add(-time.Minute)

	_, err := f.svc.Register(context.Background(), f.student.ID, f.event.ID, dto.RegisterRequest{
		Answers: map[string]string{sizeQuestion: "S"},
	})
	if !errors.Is(err, apperror.ErrBadRequest) {
		t.Fatalf("expected deadline error, got %v", err)
	}
}

func TestUpdateMineEditsSnapshotNotProfile(t *testing.T) {
	f := newFixture()
	f.register(t)

	reg, err := f.svc.UpdateMine(context.Background(), f.student.ID, f.event.ID, dto.UpdateRegistrationRequest{
		PersonalInfo: map[string]string{formschema.FieldSchool: "SMA 5"},
		Answers:      map[string]string{"q-note": "vegetarian"},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if reg.UserInfoSnapshot.Data()[formschema.FieldSchool] != "SMA 5" {
		t.Fatalf("snapshot not updated")
	}
	if reg.Answers.Data()[sizeQuestion] != "M" || reg.Answers.Data()["q-note"] != "vegetarian" {
		t.Fatalf("answers not merged: %v", reg.Answers.Data())
	}
	if f.student.Profile.School != "SMA 1" {
		t.Fatalf("profile must not change")
	}

	_, err = f.svc.UpdateMine(context.Background(), f.student.ID, f.event.ID, dto.UpdateRegistrationRequest{
		PersonalInfo: map[string]string{formschema.FieldPhone: "0899"},
	})
	if !errors.Is(err, apperror.ErrInvalidInput) {
		t.Fatalf("fields outside the form must be rejected, got %v", err)
	}

	_, err = f.svc.UpdateMine(context.Background(), f.student.ID, f.event.ID, dto.UpdateRegistrationRequest{
		Answers: map[string]string{sizeQuestion: ""},
	})
	if !errors.Is(err, apperror.ErrInvalidInput) {
		t.Fatalf("clearing a required answer must be rejected, got %v", err)
	}
}

func TestUpdateMineKeepsAnswersToDeletedQuestions(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	reg, err := f.svc.Register(ctx, f.student.ID, f.event.ID, dto.RegisterRequest{
		Answers: map[string]string{sizeQuestion: "M", "q-note": "hi"},
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	schema := f.event.Schema()
	if err := schema.DeleteQuestion("q-note"); err != nil {
		t.Fatalf("delete question: %v", err)
	}
	f.event.FormSchema = datatypes.NewJSONType(schema)

	// the client echoes back the stored answers with one edit
	echoed := map[string]string{}
	for k, v := range reg.Answers.Data() {
		echoed[k] = v
	}
	echoed[sizeQuestion] = "L"

	updated, err := f.svc.UpdateMine(ctx, f.student.ID, f.event.ID, dto.UpdateRegistrationRequest{Answers: echoed})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Answers.Data()[sizeQuestion] != "L" || updated.Answers.Data()["q-note"] != "hi" {
		t.Fatalf("unexpected answers %v", updated.Answers.Data())
	}

	_, err = f.svc.UpdateMine(ctx, f.student.ID, f.event.ID, dto.UpdateRegistrationRequest{
		Answers: map[string]string{"q-ghost": "boo"},
	})
	if !errors.Is(err, apperror.ErrInvalidInput) {
		t.Fatalf("ids never stored nor in the form must be rejected, got %v", err)
	}
}

func TestExportCSVQuotesEveryCell(t *testing.T) {
	f := newFixture()
	f.register(t)

	file, err := f.svc.ExportCSV(context.Background(), f.owner, f.event.ID)
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	want := "\ufeff" + `"Name","School","T-shirt size","Notes"` + "\r\n" + `"Budi","SMA 1","M",""` + "\r\n"
	if string(file.Content) != want {
		t.Fatalf("unexpected csv:\n%q\nwant\n%q", file.Content, want)
	}
	if !strings.HasPrefix(file.FileName, "robotics-camp-2025-registrations-") {
		t.Fatalf("unexpected file name %q", file.FileName)
	}
}

func TestExportRequiresEventRole(t *testing.T) {
	f := newFixture()

	if _, err := f.svc.ExportCSV(context.Background(), f.student.ID, f.event.ID); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("registrants cannot export, got %v", err)
	}
}

func TestReviewNotifiesAndEmails(t *testing.T) {
	f := newFixture()
	reg := f.register(t)
	f.regs.rows[0].User = f.student
	f.notes.sent = nil

	res, err := f.svc.Review(context.Background(), f.owner, f.event.ID, reg.ID, dto.ReviewRequest{Status: entity.RegistrationApproved, Note: " see you "})
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if res.Status != entity.RegistrationApproved || res.ReviewNote != "see you" {
		t.Fatalf("unexpected review %+v", res)
	}
	if len(f.notes.sent) != 1 || f.notes.sent[0].UserID != f.student.ID {
		t.Fatalf("registrant not notified")
	}
	if len(f.dispatcher.jobs) != 1 || f.dispatcher.jobs[0].Email == nil || f.dispatcher.jobs[0].Email.To != f.student.Email {
		t.Fatalf("review email not dispatched: %+v", f.dispatcher.jobs)
	}
}

func TestExportFileName(t *testing.T) {
	at := time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)
	if got := ExportFileName("???", at); got != "event-registrations-20250309.csv" {
		t.Fatalf("unexpected name %q", got)
	}
}
