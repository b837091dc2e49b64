package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/worklog/domain"
	"github.com/fastygo/worklog/repository"
)

// rangeCache stores list results under a generation number. Invalidate bumps the
// generation, so a reader that raced a writer can only fill an entry nobody reads again.
type rangeCache struct {
	client *redislib.Client
	prefix string
	ttl    time.Duration
}

// NewRangeCache creates a Redis-backed cache for date-range task lists.
func NewRangeCache(client *redislib.Client, ttl time.Duration) repository.RangeCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &rangeCache{
		client: client,
		prefix: "worklog:tasks:",
		ttl:    ttl,
	}
}

func (c *rangeCache) Get(ctx context.Context, r domain.DateRange) (repository.CachedList, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		return repository.CachedList{}, err
	}
	out := repository.CachedList{Generation: gen}

	result, err := c.client.Get(ctx, c.rangeKey(gen, r)).Result()
	if err != nil {
		if err == redislib.Nil {
			return out, nil
		}
		return out, err
	}

	if err := json.Unmarshal([]byte(result), &out.Tasks); err != nil {
		return out, err
	}
	out.Hit = true
	return out, nil
}

func (c *rangeCache) Set(ctx context.Context, r domain.DateRange, gen int64, tasks []domain.Task) error {
	if tasks == nil {
		tasks = []domain.Task{}
	}
	payload, err := json.Marshal(tasks)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.rangeKey(gen, r), payload, c.ttl).Err()
}

func (c *rangeCache) Invalidate(ctx context.Context) error {
	return c.client.Incr(ctx, c.generationKey()).Err()
}

func (c *rangeCache) generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, c.generationKey()).Int64()
	if err == redislib.Nil {
		return 0, nil
	}
	return gen, err
}

func (c *rangeCache) generationKey() string {
	return c.prefix + "gen"
}

func (c *rangeCache) rangeKey(gen int64, r domain.DateRange) string {
	return fmt.Sprintf("%srange:%d:%s:%s", c.prefix, gen, r.Start, r.End)
}
