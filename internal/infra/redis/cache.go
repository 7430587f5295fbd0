package redis

import (
	"context"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a Redis-backed implementation of app.Cache. Entries carry a TTL
// with up to 10% jitter to spread expirations across instances.
type Cache struct {
	client *redis.Client
	rnd    *rand.Rand
}

func NewCache(client *redis.Client) *Cache {
	return &Cache{
		client: client,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return raw, true
}

func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	_ = c.client.Set(ctx, key, value, c.ttlWithJitter(ttl)).Err()
}

func (c *Cache) DeleteByPrefix(ctx context.Context, prefix string) {
	keys, err := c.client.Keys(ctx, prefix+"*").Result()
	if err != nil || len(keys) == 0 {
		return
	}
	_ = c.client.Del(ctx, keys...).Err()
}

func (c *Cache) ttlWithJitter(ttl time.Duration) time.Duration {
	jitterMax := int64(ttl) / 10
	if jitterMax <= 0 {
		return ttl
	}
	return ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
