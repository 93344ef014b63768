// Package cache provides a Redis read-through cache in front of a trainee
// repository. Reads by id and the full listing are cached; every write
// invalidates the touched id and the listing. Cache failures never fail a
// request: they are logged and the repository is used directly.
//
// Every invalidation bumps a generation counter. A read only fills the
// cache if the generation it saw before querying the repository is still
// current, so a row read before a concurrent write is never cached after it.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/survey/backend/internal/domain"
	"github.com/survey/backend/internal/pkg/logger"
	"github.com/survey/backend/internal/service/trainee"
)

const (
	allKey = "all"
	genKey = "gen"
)

// setIfGenScript stores ARGV[2] under KEYS[2] only when KEYS[1] still holds
// ARGV[1] (empty meaning absent). ARGV[3] is the TTL in ms, 0 for none.
var setIfGenScript = redis.NewScript(`
local gen = redis.call("GET", KEYS[1]) or ""
if gen ~= ARGV[1] then
	return 0
end
if tonumber(ARGV[3]) > 0 then
	redis.call("SET", KEYS[2], ARGV[2], "PX", ARGV[3])
else
	redis.call("SET", KEYS[2], ARGV[2])
end
return 1
`)

// TraineeRepo decorates a trainee.Repository with a Redis cache.
type TraineeRepo struct {
	next   trainee.Repository
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewTraineeRepo wraps next. Keys are "<prefix>trainee:<id>" and
// "<prefix>trainee:all".
func NewTraineeRepo(next trainee.Repository, client *redis.Client, prefix string, ttl time.Duration) *TraineeRepo {
	return &TraineeRepo{next: next, client: client, prefix: prefix, ttl: ttl}
}

func (c *TraineeRepo) key(suffix string) string {
	return c.prefix + "trainee:" + suffix
}

func idKey(id int) string { return strconv.Itoa(id) }

// FindAll serves the listing from Redis when present.
func (c *TraineeRepo) FindAll(ctx context.Context) ([]domain.Trainee, error) {
	var cached []domain.Trainee
	if c.get(ctx, c.key(allKey), &cached) {
		return cached, nil
	}
	gen, genOK := c.generation(ctx)
	out, err := c.next.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if genOK {
		c.set(ctx, gen, c.key(allKey), out)
	}
	return out, nil
}

// FindByID serves one trainee from Redis when present. Misses are not cached.
func (c *TraineeRepo) FindByID(ctx context.Context, id int) (*domain.Trainee, error) {
	var cached domain.Trainee
	if c.get(ctx, c.key(idKey(id)), &cached) {
		return &cached, nil
	}
	gen, genOK := c.generation(ctx)
	t, err := c.next.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if genOK {
		c.set(ctx, gen, c.key(idKey(id)), t)
	}
	return t, nil
}

// Search is not cached: criteria combinations are unbounded.
func (c *TraineeRepo) Search(ctx context.Context, f trainee.SearchFilter) ([]domain.Trainee, error) {
	return c.next.Search(ctx, f)
}

// Create writes through and invalidates the listing.
func (c *TraineeRepo) Create(ctx context.Context, t *domain.Trainee) error {
	if err := c.next.Create(ctx, t); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

// Update writes through and invalidates t.ID and the listing.
func (c *TraineeRepo) Update(ctx context.Context, t *domain.Trainee) error {
	if err := c.next.Update(ctx, t); err != nil {
		return err
	}
	c.invalidate(ctx, t.ID)
	return nil
}

// Delete writes through and invalidates id and the listing.
func (c *TraineeRepo) Delete(ctx context.Context, id int) error {
	if err := c.next.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

func (c *TraineeRepo) get(ctx context.Context, key string, dst any) bool {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false
	}
	if err != nil {
		logger.Warn("trainee cache read failed", "key", key, "error", err)
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		logger.Warn("trainee cache entry corrupt", "key", key, "error", err)
		return false
	}
	return true
}

// generation returns the current invalidation generation ("" before the
// first write). ok is false when Redis cannot be read; callers then skip
// filling the cache.
func (c *TraineeRepo) generation(ctx context.Context) (gen string, ok bool) {
	gen, err := c.client.Get(ctx, c.key(genKey)).Result()
	if errors.Is(err, redis.Nil) {
		return "", true
	}
	if err != nil {
		logger.Warn("trainee cache generation read failed", "error", err)
		return "", false
	}
	return gen, true
}

// set stores v under key unless an invalidation happened since gen was read.
func (c *TraineeRepo) set(ctx context.Context, gen, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	keys := []string{c.key(genKey), key}
	if err := setIfGenScript.Run(ctx, c.client, keys, gen, data, c.ttl.Milliseconds()).Err(); err != nil {
		logger.Warn("trainee cache write failed", "key", key, "error", err)
	}
}

func (c *TraineeRepo) invalidate(ctx context.Context, ids ...int) {
	keys := []string{c.key(allKey)}
	for _, id := range ids {
		keys = append(keys, c.key(idKey(id)))
	}
	pipe := c.client.TxPipeline()
	pipe.Incr(ctx, c.key(genKey))
	pipe.Del(ctx, keys...)
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Warn("trainee cache invalidation failed", "keys", len(keys), "error", err)
	}
}
