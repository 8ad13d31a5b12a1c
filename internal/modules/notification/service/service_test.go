package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"anoa.com/eventhub/internal/entity"
	invitationRepo "anoa.com/eventhub/internal/modules/invitation/repository"
	"anoa.com/eventhub/internal/modules/notification/dto"
	notifRepo "anoa.com/eventhub/internal/modules/notification/repository"
	registrationRepo "anoa.com/eventhub/internal/modules/registration/repository"
	"anoa.com/eventhub/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeNotifRepo struct {
	notifRepo.NotificationRepository
	created     []*entity.Notification
	limit, skip int
	owned       map[uuid.UUID]uuid.UUID
}

func (f *fakeNotifRepo) Create(ctx context.Context, n *entity.Notification) error {
	f.created = append(f.created, n)
	return nil
}

func (f *fakeNotifRepo) GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.Notification, error) {
	f.limit, f.skip = limit, offset
	return nil, nil
}

func (f *fakeNotifRepo) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error {
	if f.owned[id] != userID {
		return gorm.ErrRecordNotFound
	}
	return nil
}

type fakeInvitations struct {
	invitationRepo.InvitationRepository
	pending []*entity.Invitation
}

func (f *fakeInvitations) ListPendingByInvitee(ctx context.Context, inviteeID uuid.UUID) ([]*entity.Invitation, error) {
	return f.pending, nil
}

type fakeRegistrations struct {
	registrationRepo.RegistrationRepository
	upcoming []*entity.Event
	asOf     time.Time
}

func (f *fakeRegistrations) UpcomingDeadlines(ctx context.Context, userID uuid.UUID, now time.Time) ([]*entity.Event, error) {
	f.asOf = now
	return f.upcoming, nil
}

func TestCreateNotificationWithoutRedis(t *testing.T) {
	repo := &fakeNotifRepo{}
	svc := NewNotificationService(repo, &fakeInvitations{}, &fakeRegistrations{}, nil)

	n := &entity.Notification{UserID: uuid.New(), Type: entity.NotificationInvitation, Message: "hi"}
	if err := svc.CreateNotification(context.Background(), n); err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(repo.created) != 1 {
		t.Fatalf("notification not stored")
	}
}

func TestGetNotificationsPaging(t *testing.T) {
	repo := &fakeNotifRepo{}
	svc := NewNotificationService(repo, &fakeInvitations{}, &fakeRegistrations{}, nil)

	if _, err := svc.GetNotifications(context.Background(), uuid.New(), dto.NotificationQuery{Page: 3, Limit: 10}); err != nil {
		t.Fatalf("get: %v", err)
	}
	if repo.limit != 10 || repo.skip != 20 {
		t.Fatalf("unexpected paging limit=%d offset=%d", repo.limit, repo.skip)
	}

	if _, err := svc.GetNotifications(context.Background(), uuid.New(), dto.NotificationQuery{}); err != nil {
		t.Fatalf("get: %v", err)
	}
	if repo.limit != 20 || repo.skip != 0 {
		t.Fatalf("unexpected default paging limit=%d offset=%d", repo.limit, repo.skip)
	}
}

func TestMarkAsReadOnlyOwnNotifications(t *testing.T) {
	owner := uuid.New()
	id := uuid.New()
	repo := &fakeNotifRepo{owned: map[uuid.UUID]uuid.UUID{id: owner}}
	svc := NewNotificationService(repo, &fakeInvitations{}, &fakeRegistrations{}, nil)

	if err := svc.MarkAsRead(context.Background(), owner, id); err != nil {
		t.Fatalf("owner mark: %v", err)
	}
	if err := svc.MarkAsRead(context.Background(), uuid.New(), id); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("expected not found for other users, got %v", err)
	}
}

func TestGetPanelCombinesInvitationsAndDeadlines(t *testing.T) {
	name := "Rina"
	inviter := &entity.User{ID: uuid.New(), Email: "rina@example.com", Profile: &entity.Profile{Name: name}}
	event := &entity.Event{ID: uuid.New(), Title: "Hackathon", Deadline: time.Now().Add(48 * time.Hour)}

	invitations := &fakeInvitations{pending: []*entity.Invitation{
		{ID: uuid.New(), Event: event, Inviter: inviter},
		{ID: uuid.New()},
	}}
	registrations := &fakeRegistrations{upcoming: []*entity.Event{event}}
	svc := NewNotificationService(&fakeNotifRepo{}, invitations, registrations, nil)

	panel, err := svc.GetPanel(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("panel: %v", err)
	}
	if len(panel.Invitations) != 1 || panel.Invitations[0].Inviter.Name != name || panel.Invitations[0].Event.Title != "Hackathon" {
		t.Fatalf("unexpected invitations %+v", panel.Invitations)
	}
	if len(panel.Deadlines) != 1 || panel.Deadlines[0].EventID != event.ID {
		t.Fatalf("unexpected deadlines %+v", panel.Deadlines)
	}
	if time.Since(registrations.asOf) > time.Minute {
		t.Fatalf("deadlines must be computed against the current time")
	}
}
