package vibedict

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores looked-up definition lists keyed by headword. On a text
// dictionary, Lookup consults an attached cache before touching the file and
// stores every non-empty result in it; words with no entry are not stored.
// Lookups on resource archives do not use the cache.
type Cache interface {
	Get(ctx context.Context, word string) ([]string, bool)
	Set(ctx context.Context, word string, definitions []string)
}

// RedisCache is a Cache backed by a Redis instance, for hosts serving many
// dictionaries to many clients.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCache wraps an existing Redis client. prefix namespaces the keys
// (one prefix per dictionary); ttl bounds entry lifetime, zero meaning no
// expiry.
func NewRedisCache(client *redis.Client, prefix string, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *RedisCache) key(word string) string {
	return c.prefix + ":" + word
}

// Get fetches a cached definition list.
func (c *RedisCache) Get(ctx context.Context, word string) ([]string, bool) {
	raw, err := c.client.Get(ctx, c.key(word)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Warningf("Redis cache get failed for '%s': %v", word, err)
		}
		return nil, false
	}
	var definitions []string
	if err := json.Unmarshal(raw, &definitions); err != nil {
		log.Warningf("Redis cache entry for '%s' is corrupt: %v", word, err)
		return nil, false
	}
	return definitions, true
}

// Set stores a definition list. Failures are logged and otherwise ignored;
// the cache is an accelerator, not a source of truth.
func (c *RedisCache) Set(ctx context.Context, word string, definitions []string) {
	raw, err := json.Marshal(definitions)
	if err != nil {
		log.Warningf("Redis cache marshal failed for '%s': %v", word, err)
		return
	}
	if err := c.client.Set(ctx, c.key(word), raw, c.ttl).Err(); err != nil {
		log.Warningf("Redis cache set failed for '%s': %v", word, err)
	}
}

var _ Cache = (*RedisCache)(nil)
