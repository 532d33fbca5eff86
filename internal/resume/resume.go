// Package resume remembers which draft booking a browser started for a
// resource, so an abandoned payment step can be picked up again.  Redis
// is only a hint: callers must re-check the booking before using it.
package resume

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache maps (client id, resource id) to a draft booking id.  A nil Redis
// client turns every call into a no-op.
type Cache struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

func New(rdb *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Cache{rdb: rdb, ttl: ttl, prefix: "resume"}
}

func (c *Cache) key(clientID, resourceID string) string {
	return c.prefix + ":" + clientID + ":" + resourceID
}

// Remember stores the draft id for the pair, replacing any older one.
func (c *Cache) Remember(ctx context.Context, clientID, resourceID, bookingID string) error {
	if c == nil || c.rdb == nil || clientID == "" {
		return nil
	}
	return c.rdb.Set(ctx, c.key(clientID, resourceID), bookingID, c.ttl).Err()
}

// Lookup returns the remembered draft id.  ok is false when nothing is
// stored or the cache is disabled.
func (c *Cache) Lookup(ctx context.Context, clientID, resourceID string) (bookingID string, ok bool, err error) {
	if c == nil || c.rdb == nil || clientID == "" {
		return "", false, nil
	}
	id, err := c.rdb.Get(ctx, c.key(clientID, resourceID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return id, true, nil
}

// Forget drops the pair, typically once the draft moved on.
func (c *Cache) Forget(ctx context.Context, clientID, resourceID string) error {
	if c == nil || c.rdb == nil || clientID == "" {
		return nil
	}
	return c.rdb.Del(ctx, c.key(clientID, resourceID)).Err()
}
