package view

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	eventRepo "anoa.com/eventhub/internal/modules/event/repository"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const pendingKey = "pending:event_views"

type ViewService interface {
	IncrementView(ctx context.Context, eventID uuid.UUID, userID uuid.UUID) error
	StartViewSyncWorker(ctx context.Context)
}

type viewService struct {
	redisClient redis.Cmdable
	eventRepo   eventRepo.EventRepository
}

func NewViewService(redisClient redis.Cmdable, eventRepo eventRepo.EventRepository) ViewService {
	return &viewService{
		redisClient: redisClient,
		eventRepo:   eventRepo,
	}
}

func viewKey(eventID uuid.UUID) string {
	return fmt.Sprintf("event:views:%s", eventID)
}

// IncrementView counts at most one view per user per hour.
func (s *viewService) IncrementView(ctx context.Context, eventID uuid.UUID, userID uuid.UUID) error {
	userViewKey := fmt.Sprintf("event:user_view:%s:%s", eventID, userID)

	fresh, err := s.redisClient.SetNX(ctx, userViewKey, "viewed", time.Hour).Result()
	if err != nil {
		return fmt.Errorf("failed to mark user view: %w", err)
	}
	if !fresh {
		return nil
	}

	if err := s.redisClient.Incr(ctx, viewKey(eventID)).Err(); err != nil {
		return fmt.Errorf("failed to increment view: %w", err)
	}

	if err := s.redisClient.SAdd(ctx, pendingKey, eventID.String()).Err(); err != nil {
		return fmt.Errorf("failed to add to pending: %w", err)
	}

	return nil
}

func (s *viewService) syncViewsToDB(ctx context.Context) {
	eventIDs, err := s.redisClient.SMembers(ctx, pendingKey).Result()
	if err != nil {
		log.Printf("Error getting pending event views: %v", err)
		return
	}

	if len(eventIDs) == 0 {
		return
	}

	synced := 0
	for _, idStr := range eventIDs {
		if err := s.redisClient.SRem(ctx, pendingKey, idStr).Err(); err != nil {
			log.Printf("Failed to pop pending event %s: %v", idStr, err)
			continue
		}

		eventID, err := uuid.Parse(idStr)
		if err != nil {
			log.Printf("Invalid event ID: %s: %v", idStr, err)
			continue
		}

		// GETDEL so views counted during the sync land in the next run
		countStr, err := s.redisClient.GetDel(ctx, viewKey(eventID)).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) {
				log.Printf("Error getting view count for event %s: %v", eventID, err)
			}
			continue
		}

		count, err := strconv.ParseInt(countStr, 10, 64)
		if err != nil || count <= 0 {
			continue
		}

		if err := s.eventRepo.AddViews(ctx, eventID, count); err != nil {
			log.Printf("Failed to update event views in DB: %v", err)
			// put the views back so they are not lost
			s.redisClient.IncrBy(ctx, viewKey(eventID), count)
			s.redisClient.SAdd(ctx, pendingKey, idStr)
			continue
		}
		synced++
	}

	log.Printf("Synced views for %d events", synced)
}

func (s *viewService) StartViewSyncWorker(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.syncViewsToDB(ctx)
		case <-ctx.Done():
			return
		}
	}
}
