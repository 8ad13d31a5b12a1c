package view

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"
	"time"

	eventRepo "anoa.com/eventhub/internal/modules/event/repository"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// memRedis implements the handful of commands the view counter uses.
type memRedis struct {
	redis.Cmdable
	values map[string]string
	sets   map[string]map[string]bool
}

func newMemRedis() *memRedis {
	return &memRedis{values: map[string]string{}, sets: map[string]map[string]bool{}}
}

func (m *memRedis) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd {
	if _, ok := m.values[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	m.values[key] = fmt.Sprint(value)
	return redis.NewBoolResult(true, nil)
}

func (m *memRedis) IncrBy(ctx context.Context, key string, value int64) *redis.IntCmd {
	n, _ := strconv.ParseInt(m.values[key], 10, 64)
	n += value
	m.values[key] = strconv.FormatInt(n, 10)
	return redis.NewIntResult(n, nil)
}

func (m *memRedis) Incr(ctx context.Context, key string) *redis.IntCmd {
	return m.IncrBy(ctx, key, 1)
}

func (m *memRedis) GetDel(ctx context.Context, key string) *redis.StringCmd {
	v, ok := m.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	delete(m.values, key)
	return redis.NewStringResult(v, nil)
}

func (m *memRedis) SAdd(ctx context.Context, key string, members ...interface{}) *redis.IntCmd {
	if m.sets[key] == nil {
		m.sets[key] = map[string]bool{}
	}
	for _, member := range members {
		m.sets[key][fmt.Sprint(member)] = true
	}
	return redis.NewIntResult(int64(len(members)), nil)
}

func (m *memRedis) SRem(ctx context.Context, key string, members ...interface{}) *redis.IntCmd {
	for _, member := range members {
		delete(m.sets[key], fmt.Sprint(member))
	}
	return redis.NewIntResult(int64(len(members)), nil)
}

func (m *memRedis) SMembers(ctx context.Context, key string) *redis.StringSliceCmd {
	var out []string
	for member := range m.sets[key] {
		out = append(out, member)
	}
	return redis.NewStringSliceResult(out, nil)
}

type fakeEventRepo struct {
	eventRepo.EventRepository
	views map[uuid.UUID]int64
	fail  bool
}

func (f *fakeEventRepo) AddViews(ctx context.Context, id uuid.UUID, n int64) error {
	if f.fail {
		return errors.New("db down")
	}
	f.views[id] += n
	return nil
}

func TestIncrementViewCountsOncePerUser(t *testing.T) {
	rdb := newMemRedis()
	repo := &fakeEventRepo{views: map[uuid.UUID]int64{}}
	svc := NewViewService(rdb, repo).(*viewService)
	ctx := context.Background()

	eventID, alice, bob := uuid.New(), uuid.New(), uuid.New()
	for _, user := range []uuid.UUID{alice, alice, bob, alice} {
		if err := svc.IncrementView(ctx, eventID, user); err != nil {
			t.Fatalf("increment: %v", err)
		}
	}

	if got := rdb.values[viewKey(eventID)]; got != "2" {
		t.Fatalf("expected 2 counted views, got %q", got)
	}
	if !rdb.sets[pendingKey][eventID.String()] {
		t.Fatal("event should be pending sync")
	}

	svc.syncViewsToDB(ctx)
	if repo.views[eventID] != 2 {
		t.Fatalf("expected 2 views synced, got %d", repo.views[eventID])
	}
	if _, ok := rdb.values[viewKey(eventID)]; ok {
		t.Fatal("counter should be handed off to the database")
	}
	if len(rdb.sets[pendingKey]) != 0 {
		t.Fatal("pending set should be drained")
	}
}

func TestSyncViewsPutsBackOnFailure(t *testing.T) {
	rdb := newMemRedis()
	repo := &fakeEventRepo{views: map[uuid.UUID]int64{}, fail: true}
	svc := NewViewService(rdb, repo).(*viewService)
	ctx := context.Background()

	eventID := uuid.New()
	svc.IncrementView(ctx, eventID, uuid.New())
	svc.IncrementView(ctx, eventID, uuid.New())

	svc.syncViewsToDB(ctx)
	if got := rdb.values[viewKey(eventID)]; got != "2" {
		t.Fatalf("views must be put back, got %q", got)
	}
	if !rdb.sets[pendingKey][eventID.String()] {
		t.Fatal("event must stay pending after a failed sync")
	}

	repo.fail = false
	svc.syncViewsToDB(ctx)
	if repo.views[eventID] != 2 {
		t.Fatalf("expected retry to sync 2 views, got %d", repo.views[eventID])
	}
}
