package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/redact"
	"github.com/phrazzld/taskboard-api/internal/store"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// KeyPrefix namespaces every cache key.
const KeyPrefix = "taskboard:task:"

// Lookup results reported to the Observer.
const (
	ResultHit   = "hit"
	ResultMiss  = "miss"
	ResultError = "error"
)

// Observer receives the result of every cache lookup.
type Observer interface {
	ObserveCache(result string)
}

// CachedTaskStore decorates a store.TaskStore with a read-through cache for
// GetByID. List and search results are not cached.
type CachedTaskStore struct {
	next     store.TaskStore
	client   Client
	ttl      time.Duration
	logger   *slog.Logger
	observer Observer
	group    singleflight.Group

	// mu orders cache fills against invalidations. gen counts
	// invalidations; a fill started before the latest one is dropped.
	mu  sync.Mutex
	gen uint64
}

// Ensure CachedTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*CachedTaskStore)(nil)

// NewCachedTaskStore wraps next. observer may be nil.
func NewCachedTaskStore(
	next store.TaskStore,
	client Client,
	ttl time.Duration,
	logger *slog.Logger,
	observer Observer,
) *CachedTaskStore {
	if next == nil || client == nil {
		panic("cache: next store and client are required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedTaskStore{
		next:     next,
		client:   client,
		ttl:      ttl,
		logger:   logger.With(slog.String("component", "task_cache")),
		observer: observer,
	}
}

func key(id int64) string {
	return KeyPrefix + strconv.FormatInt(id, 10)
}

func (c *CachedTaskStore) observe(result string) {
	if c.observer != nil {
		c.observer.ObserveCache(result)
	}
}

// Create implements store.TaskStore.Create.
func (c *CachedTaskStore) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	return c.next.Create(ctx, task)
}

// GetByID implements store.TaskStore.GetByID. Concurrent misses for the same
// task share a single store read.
func (c *CachedTaskStore) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, c.logger)
	k := key(id)

	data, err := c.client.Get(ctx, k).Bytes()
	switch {
	case err == nil:
		var task domain.Task
		uerr := json.Unmarshal(data, &task)
		if uerr == nil {
			c.observe(ResultHit)
			return &task, nil
		}
		log.Warn("discarding undecodable cache entry",
			slog.String("key", k),
			slog.String("error", uerr.Error()))
		c.observe(ResultError)
	case errors.Is(err, redis.Nil):
		c.observe(ResultMiss)
	default:
		log.Warn("cache read failed, falling back to store",
			slog.String("key", k),
			slog.String("error", redact.Error(err)))
		c.observe(ResultError)
	}

	// A shared flight ignores the cancellation of whichever caller started it.
	flightCtx := context.WithoutCancel(ctx)
	v, err, _ := c.group.Do(k, func() (interface{}, error) {
		gen := c.generation()
		task, err := c.next.GetByID(flightCtx, id)
		if err != nil {
			return nil, err
		}
		c.fill(flightCtx, k, task, gen)
		return task, nil
	})
	if err != nil {
		return nil, err
	}
	// Callers sharing a flight must not share the pointer.
	return v.(*domain.Task).Clone(), nil
}

func (c *CachedTaskStore) generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// fill caches task unless an invalidation happened after gen was read.
func (c *CachedTaskStore) fill(ctx context.Context, k string, task *domain.Task, gen uint64) {
	data, err := json.Marshal(task)
	if err != nil {
		c.logger.Warn("failed to encode task for cache", slog.String("error", err.Error()))
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		logger.FromContextOrDefault(ctx, c.logger).Debug("skipping stale cache fill",
			slog.String("key", k))
		return
	}
	if err := c.client.Set(ctx, k, data, c.ttl).Err(); err != nil {
		logger.FromContextOrDefault(ctx, c.logger).Warn("cache write failed",
			slog.String("key", k),
			slog.String("error", redact.Error(err)))
	}
}

// invalidate drops the cached entry. It runs after every mutation attempt,
// including failed ones: a lost completion race leaves the cached copy stale.
// Reads already in flight for the key are detached and their fills skipped.
func (c *CachedTaskStore) invalidate(ctx context.Context, id int64) {
	k := key(id)
	c.group.Forget(k)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	if err := c.client.Del(ctx, k).Err(); err != nil {
		logger.FromContextOrDefault(ctx, c.logger).Warn("cache invalidation failed",
			slog.String("key", k),
			slog.String("error", redact.Error(err)))
	}
}

// Update implements store.TaskStore.Update.
func (c *CachedTaskStore) Update(ctx context.Context, id int64, patch domain.TaskPatch) (*domain.Task, error) {
	defer c.invalidate(ctx, id)
	return c.next.Update(ctx, id, patch)
}

// Complete implements store.TaskStore.Complete.
func (c *CachedTaskStore) Complete(ctx context.Context, id int64, at time.Time) (*domain.Task, error) {
	defer c.invalidate(ctx, id)
	return c.next.Complete(ctx, id, at)
}

// Delete implements store.TaskStore.Delete.
func (c *CachedTaskStore) Delete(ctx context.Context, id int64) error {
	defer c.invalidate(ctx, id)
	return c.next.Delete(ctx, id)
}

// FindAll implements store.TaskStore.FindAll.
func (c *CachedTaskStore) FindAll(ctx context.Context) ([]*domain.Task, error) {
	return c.next.FindAll(ctx)
}

// Search implements store.TaskStore.Search.
func (c *CachedTaskStore) Search(ctx context.Context, keyword string) ([]*domain.Task, error) {
	return c.next.Search(ctx, keyword)
}
