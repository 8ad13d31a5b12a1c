package invitation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"anoa.com/eventhub/internal/entity"
	eventDto "anoa.com/eventhub/internal/modules/event/dto"
	event "anoa.com/eventhub/internal/modules/event/service"
	"anoa.com/eventhub/internal/modules/invitation/dto"
	"anoa.com/eventhub/internal/modules/invitation/repository"
	notification "anoa.com/eventhub/internal/modules/notification/service"
	registrationRepo "anoa.com/eventhub/internal/modules/registration/repository"
	userRepo "anoa.com/eventhub/internal/modules/user/repository"
	"anoa.com/eventhub/internal/queue"
	"anoa.com/eventhub/internal/templates"
	"anoa.com/eventhub/pkg/apperror"
	commonDto "anoa.com/eventhub/pkg/dto"
	"anoa.com/eventhub/pkg/ratelimiter"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type InvitationService interface {
	Invite(ctx context.Context, inviterID, eventID uuid.UUID, req dto.InviteRequest) (*dto.InviteResponse, error)
	ListPending(ctx context.Context, userID uuid.UUID) ([]dto.InvitationResponse, error)
	Accept(ctx context.Context, userID, invitationID uuid.UUID) error
	Reject(ctx context.Context, userID, invitationID uuid.UUID) error
}

type invitationService struct {
	repo             repository.InvitationRepository
	userRepo         userRepo.UserRepository
	registrationRepo registrationRepo.RegistrationRepository
	access           event.Authorizer
	notifications    notification.NotificationService
	dispatcher       queue.Dispatcher
	redisClient      *redis.Client
	rateLimit        time.Duration
	frontendURL      string
	now              func() time.Time
}

func NewInvitationService(
	repo repository.InvitationRepository,
	userRepo userRepo.UserRepository,
	registrationRepo registrationRepo.RegistrationRepository,
	access event.Authorizer,
	notifications notification.NotificationService,
	dispatcher queue.Dispatcher,
	redisClient *redis.Client,
	rateLimit time.Duration,
	frontendURL string,
) InvitationService {
	return &invitationService{
		repo:             repo,
		userRepo:         userRepo,
		registrationRepo: registrationRepo,
		access:           access,
		notifications:    notifications,
		dispatcher:       dispatcher,
		redisClient:      redisClient,
		rateLimit:        rateLimit,
		frontendURL:      strings.TrimRight(frontendURL, "/"),
		now:              time.Now,
	}
}

func (s *invitationService) eventLink(eventID uuid.UUID) string {
	return fmt.Sprintf("%s/events/%s", s.frontendURL, eventID)
}

func (s *invitationService) checkRateLimit(ctx context.Context, userID uuid.UUID) error {
	allowed, err := ratelimiter.CheckAndSetRateLimit(ctx, s.redisClient, userID, ratelimiter.ScopeInvite, s.rateLimit)
	if err != nil {
		return fmt.Errorf("failed to check rate limit: %w", err)
	}
	if !allowed {
		ttl, _ := ratelimiter.GetRateLimitTTL(ctx, s.redisClient, userID, ratelimiter.ScopeInvite)
		return &ratelimiter.RateLimitError{
			Message:    fmt.Sprintf("you are sending invitations too fast. Please wait %.0f seconds", ttl.Seconds()),
			RetryAfter: ttl,
		}
	}
	return nil
}

func (s *invitationService) Invite(ctx context.Context, inviterID, eventID uuid.UUID, req dto.InviteRequest) (*dto.InviteResponse, error) {
	if err := s.checkRateLimit(ctx, inviterID); err != nil {
		return nil, err
	}
	invited := false
	defer func() {
		if !invited {
			_ = ratelimiter.ClearRateLimit(ctx, s.redisClient, inviterID, ratelimiter.ScopeInvite)
		}
	}()

	ev, err := s.access.RequireVisible(ctx, eventID, inviterID)
	if err != nil {
		return nil, err
	}
	if ev.DeadlinePassed(s.now()) {
		return nil, fmt.Errorf("registration deadline has passed: %w", apperror.ErrBadRequest)
	}

	inviter, err := s.userRepo.FindByID(ctx, inviterID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", apperror.ErrNotFound)
	}

	invitee, err := s.resolveInvitee(ctx, req)
	if err != nil {
		return nil, err
	}

	if invitee == nil {
		email := strings.ToLower(strings.TrimSpace(req.Email))
		if email == strings.ToLower(inviter.Email) {
			return nil, fmt.Errorf("cannot invite yourself: %w", apperror.ErrBadRequest)
		}
		if err := s.emailInvitation(ctx, email, ev, inviter); err != nil {
			return nil, err
		}
		invited = true
		return &dto.InviteResponse{Delivery: dto.DeliveryEmail, Email: email}, nil
	}

	if invitee.ID == inviterID {
		return nil, fmt.Errorf("cannot invite yourself: %w", apperror.ErrBadRequest)
	}

	registered, err := s.registrationRepo.Exists(ctx, eventID, invitee.ID)
	if err != nil {
		return nil, err
	}
	if registered {
		return nil, fmt.Errorf("already registered: %w", apperror.ErrConflict)
	}

	inv := &entity.Invitation{
		EventID:   eventID,
		InviteeID: invitee.ID,
		InviterID: inviterID,
	}
	created, err := s.repo.Upsert(ctx, inv)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, fmt.Errorf("already invited: %w", apperror.ErrConflict)
	}
	invited = true

	s.notifyInvitee(ctx, ev, inviter, invitee)

	id := inv.ID
	return &dto.InviteResponse{Delivery: dto.DeliveryInvitation, InvitationID: &id}, nil
}

// resolveInvitee returns nil when the email has no account.
func (s *invitationService) resolveInvitee(ctx context.Context, req dto.InviteRequest) (*entity.User, error) {
	if req.InviteeID != nil {
		user, err := s.userRepo.FindByID(ctx, *req.InviteeID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("invitee not found: %w", apperror.ErrNotFound)
			}
			return nil, err
		}
		return user, nil
	}

	email := strings.TrimSpace(req.Email)
	if email == "" {
		return nil, fmt.Errorf("invitee_id or email is required: %w", apperror.ErrInvalidInput)
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

func (s *invitationService) emailInvitation(ctx context.Context, email string, ev *entity.Event, inviter *entity.User) error {
	msg, err := templates.InvitationEmail(email, templates.InvitationData{
		EventTitle:  ev.Title,
		InviterName: inviter.DisplayName(),
		Deadline:    ev.Deadline,
		Link:        s.eventLink(ev.ID),
	})
	if err != nil {
		return fmt.Errorf("failed to render invitation email: %w", err)
	}
	if s.dispatcher == nil {
		return fmt.Errorf("email delivery is not configured: %w", apperror.ErrInternal)
	}
	if err := s.dispatcher.Dispatch(ctx, queue.EmailJob(msg)); err != nil {
		return fmt.Errorf("failed to send invitation email: %w", err)
	}
	return nil
}

// notifyInvitee never fails the invite; delivery problems are logged.
func (s *invitationService) notifyInvitee(ctx context.Context, ev *entity.Event, inviter, invitee *entity.User) {
	actorID, eventID := inviter.ID, ev.ID
	n := &entity.Notification{
		UserID:  invitee.ID,
		ActorID: &actorID,
		EventID: &eventID,
		Type:    entity.NotificationInvitation,
		Message: fmt.Sprintf("%s invited you to %s", inviter.DisplayName(), ev.Title),
	}
	if err := s.notifications.CreateNotification(ctx, n); err != nil {
		log.Printf("Failed to notify invitee %s: %v", invitee.ID, err)
	}

	if !invitee.LineBound() || s.dispatcher == nil {
		return
	}
	card := templates.EventCard(*invitee.LineUserID, ev.Title, ev.CoverImageURL, ev.Location, ev.StartAt, ev.Deadline, s.eventLink(ev.ID))
	if err := s.dispatcher.Dispatch(ctx, queue.LineJob(card)); err != nil {
		log.Printf("Failed to push LINE invitation to %s: %v", invitee.ID, err)
	}
}

func (s *invitationService) ListPending(ctx context.Context, userID uuid.UUID) ([]dto.InvitationResponse, error) {
	invitations, err := s.repo.ListPendingByInvitee(ctx, userID)
	if err != nil {
		return nil, err
	}

	res := make([]dto.InvitationResponse, 0, len(invitations))
	for _, inv := range invitations {
		if inv.Event == nil {
			continue
		}
		item := dto.InvitationResponse{
			ID:        inv.ID,
			Status:    inv.Status,
			Event:     eventDto.ToSummary(inv.Event),
			CreatedAt: inv.CreatedAt,
		}
		if inv.Inviter != nil {
			item.Inviter = commonDto.UserSummary{
				ID:        inv.Inviter.ID,
				Name:      inv.Inviter.DisplayName(),
				Email:     inv.Inviter.Email,
				AvatarURL: inv.Inviter.AvatarURL,
			}
		}
		res = append(res, item)
	}
	return res, nil
}

func (s *invitationService) Accept(ctx context.Context, userID, invitationID uuid.UUID) error {
	return s.respond(ctx, userID, invitationID, entity.InvitationAccepted)
}

func (s *invitationService) Reject(ctx context.Context, userID, invitationID uuid.UUID) error {
	return s.respond(ctx, userID, invitationID, entity.InvitationRejected)
}

func (s *invitationService) respond(ctx context.Context, userID, invitationID uuid.UUID, status string) error {
	inv, err := s.repo.FindByID(ctx, invitationID)
	if err != nil || inv.InviteeID != userID {
		if err == nil || errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("invitation not found: %w", apperror.ErrNotFound)
		}
		return err
	}

	ok, err := s.repo.Respond(ctx, inv.ID, status)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("invitation already answered: %w", apperror.ErrConflict)
	}

	notifType := entity.NotificationInvitationAccepted
	verb := "accepted"
	if status == entity.InvitationRejected {
		notifType = entity.NotificationInvitationRejected
		verb = "declined"
	}

	title := "your event"
	if inv.Event != nil {
		title = inv.Event.Title
	}
	name := "Someone"
	if invitee, err := s.userRepo.FindByID(ctx, userID); err == nil {
		name = invitee.DisplayName()
	}

	actorID, eventID := userID, inv.EventID
	n := &entity.Notification{
		UserID:  inv.InviterID,
		ActorID: &actorID,
		EventID: &eventID,
		Type:    notifType,
		Message: fmt.Sprintf("%s %s your invitation to %s", name, verb, title),
	}
	if err := s.notifications.CreateNotification(ctx, n); err != nil {
		log.Printf("Failed to notify inviter %s: %v", inv.InviterID, err)
	}
	return nil
}
