package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"anoa.com/eventhub/internal/formschema"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DraftRepository keeps per-editor working copies of an event's form schema.
type DraftRepository interface {
	// Get returns nil when the editor has no draft.
	Get(ctx context.Context, eventID, userID uuid.UUID) (*formschema.Schema, error)
	Put(ctx context.Context, eventID, userID uuid.UUID, schema formschema.Schema) error
	Delete(ctx context.Context, eventID, userID uuid.UUID) error
}

type draftRepository struct {
	redisClient *redis.Client
	ttl         time.Duration
}

func NewDraftRepository(redisClient *redis.Client, ttl time.Duration) DraftRepository {
	return &draftRepository{redisClient: redisClient, ttl: ttl}
}

func draftKey(eventID, userID uuid.UUID) string {
	return fmt.Sprintf("form:draft:%s:%s", eventID, userID)
}

func (r *draftRepository) Get(ctx context.Context, eventID, userID uuid.UUID) (*formschema.Schema, error) {
	raw, err := r.redisClient.Get(ctx, draftKey(eventID, userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var schema formschema.Schema
	if err := json.Unmarshal(raw, &schema); err != nil {
		return nil, fmt.Errorf("corrupt draft: %w", err)
	}
	return &schema, nil
}

// Put refreshes the TTL on every edit.
func (r *draftRepository) Put(ctx context.Context, eventID, userID uuid.UUID, schema formschema.Schema) error {
	raw, err := json.Marshal(schema)
	if err != nil {
		return err
	}
	return r.redisClient.Set(ctx, draftKey(eventID, userID), raw, r.ttl).Err()
}

func (r *draftRepository) Delete(ctx context.Context, eventID, userID uuid.UUID) error {
	return r.redisClient.Del(ctx, draftKey(eventID, userID)).Err()
}
