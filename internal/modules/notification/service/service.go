package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"anoa.com/eventhub/internal/entity"
	eventDto "anoa.com/eventhub/internal/modules/event/dto"
	invitationRepo "anoa.com/eventhub/internal/modules/invitation/repository"
	"anoa.com/eventhub/internal/modules/notification/dto"
	notifRepo "anoa.com/eventhub/internal/modules/notification/repository"
	registrationRepo "anoa.com/eventhub/internal/modules/registration/repository"
	"anoa.com/eventhub/pkg/apperror"
	commonDto "anoa.com/eventhub/pkg/dto"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Channel is the redis pub/sub channel a user's live notifications go to.
func Channel(userID uuid.UUID) string {
	return fmt.Sprintf("user_notifications:%s", userID.String())
}

type NotificationService interface {
	CreateNotification(ctx context.Context, notification *entity.Notification) error
	GetNotifications(ctx context.Context, userID uuid.UUID, query dto.NotificationQuery) ([]entity.Notification, error)
	MarkAsRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
	GetPanel(ctx context.Context, userID uuid.UUID) (*dto.PanelResponse, error)
}

type notificationService struct {
	repo             notifRepo.NotificationRepository
	invitationRepo   invitationRepo.InvitationRepository
	registrationRepo registrationRepo.RegistrationRepository
	redisClient      *redis.Client
	now              func() time.Time
}

func NewNotificationService(repo notifRepo.NotificationRepository, invitationRepo invitationRepo.InvitationRepository, registrationRepo registrationRepo.RegistrationRepository, redisClient *redis.Client) NotificationService {
	return &notificationService{
		repo:             repo,
		invitationRepo:   invitationRepo,
		registrationRepo: registrationRepo,
		redisClient:      redisClient,
		now:              time.Now,
	}
}

func (s *notificationService) CreateNotification(ctx context.Context, notification *entity.Notification) error {
	if err := s.repo.Create(ctx, notification); err != nil {
		return err
	}

	if s.redisClient != nil {
		payload, err := json.Marshal(notification)
		if err == nil {
			if err := s.redisClient.Publish(ctx, Channel(notification.UserID), payload).Err(); err != nil {
				log.Printf("Failed to publish notification %s: %v", notification.ID, err)
			}
		}
	}

	return nil
}

func (s *notificationService) GetNotifications(ctx context.Context, userID uuid.UUID, query dto.NotificationQuery) ([]entity.Notification, error) {
	if query.Page == 0 {
		query.Page = 1
	}
	if query.Limit == 0 {
		query.Limit = 20
	}
	return s.repo.GetByUserID(ctx, userID, query.Limit, (query.Page-1)*query.Limit)
}

func (s *notificationService) MarkAsRead(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.repo.MarkAsRead(ctx, id, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("notification not found: %w", apperror.ErrNotFound)
		}
		return err
	}
	return nil
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

func (s *notificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

func (s *notificationService) GetPanel(ctx context.Context, userID uuid.UUID) (*dto.PanelResponse, error) {
	invitations, err := s.invitationRepo.ListPendingByInvitee(ctx, userID)
	if err != nil {
		return nil, err
	}

	events, err := s.registrationRepo.UpcomingDeadlines(ctx, userID, s.now())
	if err != nil {
		return nil, err
	}

	res := &dto.PanelResponse{
		Invitations: make([]dto.PanelInvitation, 0, len(invitations)),
		Deadlines:   make([]dto.PanelDeadline, 0, len(events)),
	}

	for _, inv := range invitations {
		if inv.Event == nil {
			continue
		}
		item := dto.PanelInvitation{
			ID:        inv.ID,
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
		res.Invitations = append(res.Invitations, item)
	}

	for _, e := range events {
		res.Deadlines = append(res.Deadlines, dto.PanelDeadline{
			EventID:  e.ID,
			Title:    e.Title,
			Deadline: e.Deadline,
		})
	}

	return res, nil
}
