package event

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"anoa.com/eventhub/internal/entity"
	attachmentRepo "anoa.com/eventhub/internal/modules/attachment/repository"
	category "anoa.com/eventhub/internal/modules/category/service"
	"anoa.com/eventhub/internal/modules/event/dto"
	"anoa.com/eventhub/internal/modules/event/repository"
	search "anoa.com/eventhub/internal/modules/search/service"
	"anoa.com/eventhub/pkg/apperror"
	commonDto "anoa.com/eventhub/pkg/dto"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeEventRepo struct {
	repository.EventRepository
	events       map[uuid.UUID]*entity.Event
	participants map[uuid.UUID]bool
	created      *entity.EventOrganizer
	listed       bool
	deleted      []uuid.UUID
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{events: map[uuid.UUID]*entity.Event{}, participants: map[uuid.UUID]bool{}}
}

func (f *fakeEventRepo) Create(ctx context.Context, event *entity.Event, organizer *entity.EventOrganizer) error {
	event.ID = uuid.New()
	organizer.EventID = event.ID
	f.events[event.ID] = event
	f.created = organizer
	return nil
}

func (f *fakeEventRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Event, error) {
	e, ok := f.events[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *e
	return &clone, nil
}

func (f *fakeEventRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Event, error) {
	var out []*entity.Event
	for _, id := range ids {
		if e, ok := f.events[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) Update(ctx context.Context, event *entity.Event) error {
	f.events[event.ID] = event
	return nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id uuid.UUID) error {
	f.deleted = append(f.deleted, id)
	delete(f.events, id)
	return nil
}

func (f *fakeEventRepo) List(ctx context.Context, filter commonDto.EventFilter) ([]*entity.Event, int64, error) {
	f.listed = true
	var out []*entity.Event
	for _, e := range f.events {
		if e.IsPublic {
			out = append(out, e)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeEventRepo) HasParticipant(ctx context.Context, eventID, userID uuid.UUID) (bool, error) {
	return f.participants[userID], nil
}

type fakeOrganizerRepo struct {
	repository.OrganizerRepository
	roles map[uuid.UUID]string
}

func (f *fakeOrganizerRepo) FindRole(ctx context.Context, eventID, userID uuid.UUID) (string, error) {
	role, ok := f.roles[userID]
	if !ok {
		return "", gorm.ErrRecordNotFound
	}
	return role, nil
}

func (f *fakeOrganizerRepo) Remove(ctx context.Context, eventID, userID uuid.UUID) error {
	if _, ok := f.roles[userID]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.roles, userID)
	return nil
}

type fakeImageRepo struct {
	attachmentRepo.ImageRepository
	bound    []uint
	unbound  bool
	replaced *[]uint
}

func (f *fakeImageRepo) BindToEvent(ctx context.Context, ids []uint, eventID, userID uuid.UUID) error {
	f.bound = ids
	return nil
}

func (f *fakeImageRepo) ReplaceEventImages(ctx context.Context, ids []uint, eventID, userID uuid.UUID) error {
	f.replaced = &ids
	return nil
}

func (f *fakeImageRepo) UnbindEvent(ctx context.Context, eventID uuid.UUID) error {
	f.unbound = true
	return nil
}

type fakeCategories struct {
	category.CategoryService
	known map[string]bool
}

func (f *fakeCategories) ValidateSlugs(ctx context.Context, slugs []string) error {
	for _, s := range slugs {
		if !f.known[s] {
			return apperror.ErrInvalidInput
		}
	}
	return nil
}

type fakeSearch struct {
	search.MeiliSearchService
	ids []uuid.UUID
	err error
}

func (f *fakeSearch) SearchEvents(query string, q search.Query) (*search.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &search.Result{IDs: f.ids, Total: int64(len(f.ids))}, nil
}

type fixture struct {
	events     *fakeEventRepo
	organizers *fakeOrganizerRepo
	images     *fakeImageRepo
	svc        EventService
}

func newFixture(meili search.MeiliSearchService) *fixture {
	f := &fixture{
		events:     newFakeEventRepo(),
		organizers: &fakeOrganizerRepo{roles: map[uuid.UUID]string{}},
		images:     &fakeImageRepo{},
	}
	cats := &fakeCategories{known: map[string]bool{"workshop": true, "seminar": true}}
	f.svc = NewEventService(f.events, f.organizers, f.images, cats, nil, meili, nil, "maps-key")
	return f
}

func (f *fixture) addEvent(public bool) *entity.Event {
	e := &entity.Event{
		ID:          uuid.New(),
		OrganizerID: uuid.New(),
		Title:       "Robotics Workshop",
		Location:    "Hall A, Bandung",
		IsPublic:    public,
	}
	f.events.events[e.ID] = e
	return e
}

func validCreateRequest() dto.CreateEventRequest {
	start := time.Now().Add(72 * time.Hour)
	return dto.CreateEventRequest{
		Title:       "  Robotics Workshop ",
		Description: `<p>Bring a laptop</p><script>alert(1)</script>`,
		StartAt:     start,
		EndAt:       start.Add(3 * time.Hour),
		Deadline:    start.Add(-24 * time.Hour),
		Categories:  []string{"Workshop", "workshop"},
		ImageIDs:    []uint{4, 5},
	}
}

func TestCreateEventMakesCreatorOrganizer(t *testing.T) {
	f := newFixture(nil)
	userID := uuid.New()

	event, err := f.svc.CreateEvent(context.Background(), userID, validCreateRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if f.events.created == nil || f.events.created.UserID != userID || f.events.created.Role != entity.OrganizerRoleOrganizer {
		t.Fatalf("creator membership not recorded: %+v", f.events.created)
	}
	if event.Title != "Robotics Workshop" {
		t.Fatalf("title not trimmed: %q", event.Title)
	}
	if strings.Contains(event.Description, "<script>") {
		t.Fatalf("description not sanitized: %q", event.Description)
	}
	if got := []string(event.Categories); len(got) != 1 || got[0] != "workshop" {
		t.Fatalf("categories not normalized: %v", got)
	}
	if schema := event.Schema(); len(schema.PersonalFields) != 0 || len(schema.CustomQuestions) != 0 {
		t.Fatalf("new event must start with an empty schema")
	}
	if !event.IsPublic {
		t.Fatalf("events default to public")
	}
	if len(f.images.bound) != 2 {
		t.Fatalf("gallery images not bound: %v", f.images.bound)
	}
}

func TestCreateEventRejectsBadInput(t *testing.T) {
	f := newFixture(nil)

	late := validCreateRequest()
	late.Deadline = late.EndAt.Add(time.Hour)
	if _, err := f.svc.CreateEvent(context.Background(), uuid.New(), late); !errors.Is(err, apperror.ErrInvalidInput) {
		t.Fatalf("deadline after end should be invalid, got %v", err)
	}

	unknown := validCreateRequest()
	unknown.Categories = []string{"karaoke"}
	if _, err := f.svc.CreateEvent(context.Background(), uuid.New(), unknown); !errors.Is(err, apperror.ErrInvalidInput) {
		t.Fatalf("unknown category should be invalid, got %v", err)
	}
}

func TestUpdateEventRequiresOrganizerRole(t *testing.T) {
	f := newFixture(nil)
	event := f.addEvent(true)
	helper := uuid.New()
	f.organizers.roles[helper] = entity.OrganizerRoleNormal

	req := dto.UpdateEventRequest{
		Title:    "New title",
		StartAt:  time.Now(),
		EndAt:    time.Now().Add(time.Hour),
		Deadline: time.Now(),
	}

	if _, err := f.svc.UpdateEvent(context.Background(), helper, event.ID, req); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("normal role must not edit, got %v", err)
	}
	if _, err := f.svc.UpdateEvent(context.Background(), uuid.New(), event.ID, req); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("outsider must not edit, got %v", err)
	}

	owner := uuid.New()
	f.organizers.roles[owner] = entity.OrganizerRoleOrganizer
	updated, err := f.svc.UpdateEvent(context.Background(), owner, event.ID, req)
	if err != nil {
		t.Fatalf("organizer update: %v", err)
	}
	if updated.Title != "New title" {
		t.Fatalf("title not updated: %q", updated.Title)
	}
	if f.images.replaced != nil {
		t.Fatalf("gallery must be untouched when image_ids is omitted")
	}
}

func TestUpdateEventKeepsVisibilityWhenOmitted(t *testing.T) {
	f := newFixture(nil)
	event := f.addEvent(true)
	owner := uuid.New()
	f.organizers.roles[owner] = entity.OrganizerRoleOrganizer

	req := dto.UpdateEventRequest{
		Title:    "Robotics Workshop",
		StartAt:  time.Now(),
		EndAt:    time.Now().Add(time.Hour),
		Deadline: time.Now(),
	}
	updated, err := f.svc.UpdateEvent(context.Background(), owner, event.ID, req)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.IsPublic {
		t.Fatal("omitted is_public must keep the event public")
	}

	private := false
	req.IsPublic = &private
	updated, err = f.svc.UpdateEvent(context.Background(), owner, event.ID, req)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.IsPublic {
		t.Fatal("explicit is_public=false must hide the event")
	}
}

func TestGetEventHidesPrivateEventsFromOutsiders(t *testing.T) {
	f := newFixture(nil)
	event := f.addEvent(false)

	if _, err := f.svc.GetEvent(context.Background(), uuid.New(), event.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("outsider should get not found, got %v", err)
	}

	invitee := uuid.New()
	f.events.participants[invitee] = true
	res, err := f.svc.GetEvent(context.Background(), invitee, event.ID)
	if err != nil {
		t.Fatalf("participant get: %v", err)
	}
	if res.MyRole != "" {
		t.Fatalf("invitee has no management role, got %q", res.MyRole)
	}
	if !strings.Contains(res.MapEmbedURL, "key=maps-key") || !strings.Contains(res.MapEmbedURL, "q=Hall+A%2C+Bandung") {
		t.Fatalf("unexpected map url %q", res.MapEmbedURL)
	}
}

func TestDeleteEventReleasesGallery(t *testing.T) {
	f := newFixture(nil)
	event := f.addEvent(true)
	owner := uuid.New()
	f.organizers.roles[owner] = entity.OrganizerRoleOrganizer

	if err := f.svc.DeleteEvent(context.Background(), owner, event.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !f.images.unbound || len(f.events.deleted) != 1 {
		t.Fatalf("expected gallery release and delete, got unbound=%v deleted=%v", f.images.unbound, f.events.deleted)
	}
}

func TestListEventsFallsBackWhenSearchFails(t *testing.T) {
	f := newFixture(&fakeSearch{err: errors.New("meili down")})
	f.addEvent(true)
	f.addEvent(false)

	res, err := f.svc.ListEvents(context.Background(), commonDto.EventFilter{Search: "robot"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !f.events.listed {
		t.Fatalf("expected database fallback")
	}
	if len(res.Data) != 1 || res.Meta.TotalItems != 1 || res.Meta.Limit != 12 {
		t.Fatalf("unexpected page %+v", res)
	}
}

func TestListEventsKeepsSearchOrderAndDropsPrivateHits(t *testing.T) {
	meili := &fakeSearch{}
	f := newFixture(meili)
	a := f.addEvent(true)
	b := f.addEvent(true)
	hidden := f.addEvent(false)
	meili.ids = []uuid.UUID{b.ID, hidden.ID, a.ID}

	res, err := f.svc.ListEvents(context.Background(), commonDto.EventFilter{Search: "robot"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if f.events.listed {
		t.Fatalf("database listing should not run when search succeeds")
	}
	if len(res.Data) != 2 || res.Data[0].ID != b.ID || res.Data[1].ID != a.ID {
		t.Fatalf("unexpected order %+v", res.Data)
	}
}

func TestRemoveOrganizerKeepsCreator(t *testing.T) {
	f := newFixture(nil)
	event := f.addEvent(true)
	f.organizers.roles[event.OrganizerID] = entity.OrganizerRoleOrganizer
	helper := uuid.New()
	f.organizers.roles[helper] = entity.OrganizerRoleNormal

	svc := NewOrganizerService(f.organizers, nil, NewAuthorizer(f.events, f.organizers))

	if err := svc.RemoveOrganizer(context.Background(), event.OrganizerID, event.ID, event.OrganizerID); !errors.Is(err, apperror.ErrBadRequest) {
		t.Fatalf("creator removal should be rejected, got %v", err)
	}
	if err := svc.RemoveOrganizer(context.Background(), helper, event.ID, event.OrganizerID); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("normal role cannot remove organizers, got %v", err)
	}
	if err := svc.RemoveOrganizer(context.Background(), event.OrganizerID, event.ID, helper); err != nil {
		t.Fatalf("remove helper: %v", err)
	}
	if _, ok := f.organizers.roles[helper]; ok {
		t.Fatalf("helper still present")
	}
}

func TestMapEmbedURLNeedsKeyAndLocation(t *testing.T) {
	if got := MapEmbedURL("", "Hall A"); got != "" {
		t.Fatalf("expected empty url without key, got %q", got)
	}
	if got := MapEmbedURL("k", "   "); got != "" {
		t.Fatalf("expected empty url without location, got %q", got)
	}
}
