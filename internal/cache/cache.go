package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Varun5711/shortlinks/internal/models"
)

const (
	keyPrefix       = "link:"
	tombstonePrefix = "link-tombstone:"

	// TombstoneTTL must outlive any resolve in flight when a link changes,
	// so it is kept above the storage query timeout.
	TombstoneTTL = 10 * time.Second
)

// setUnlessTombstoned writes KEYS[1] only when no tombstone KEYS[2] exists.
var setUnlessTombstoned = redis.NewScript(`
if redis.call("EXISTS", KEYS[2]) == 1 then
	return 0
end
redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
return 1
`)

// LinkCache is the resolve cache: an in-process LRU in front of Redis. The L1
// ttl bounds how long another process's update or delete can go unseen here.
// The Redis tier is optional.
//
// Invalidate leaves a tombstone for TombstoneTTL. While it exists Set is a
// no-op, so a resolve that read the row before a mutation cannot put the old
// row back after the mutation cleared it.
type LinkCache struct {
	mu         sync.Mutex
	l1         *LRUCache[*models.Link]
	tombstones *LRUCache[struct{}]
	l2         *redis.Client
	l2TTL      time.Duration
}

func NewLinkCache(l1Capacity int, l1TTL time.Duration, redisClient *redis.Client, l2TTL time.Duration) *LinkCache {
	return &LinkCache{
		l1:         NewLRUCache[*models.Link](l1Capacity, l1TTL),
		tombstones: NewLRUCache[struct{}](l1Capacity, TombstoneTTL),
		l2:         redisClient,
		l2TTL:      l2TTL,
	}
}

func cacheKey(shortCode string) string {
	return keyPrefix + shortCode
}

func tombstoneKey(shortCode string) string {
	return tombstonePrefix + shortCode
}

func copyLink(link *models.Link) *models.Link {
	cp := *link
	if link.Title != nil {
		title := *link.Title
		cp.Title = &title
	}
	return &cp
}

// Get returns a copy of the cached link. Redis failures count as misses.
func (c *LinkCache) Get(ctx context.Context, shortCode string) (*models.Link, bool) {
	if link, found := c.l1.Get(shortCode); found {
		return copyLink(link), true
	}

	if c.l2 == nil {
		return nil, false
	}

	val, err := c.l2.Get(ctx, cacheKey(shortCode)).Bytes()
	if err != nil {
		return nil, false
	}

	var link models.Link
	if err := json.Unmarshal(val, &link); err != nil {
		return nil, false
	}

	c.mu.Lock()
	if _, tombstoned := c.tombstones.Get(shortCode); !tombstoned {
		c.l1.Set(shortCode, copyLink(&link))
	}
	c.mu.Unlock()
	return &link, true
}

// Set stores link unless its code was invalidated within TombstoneTTL.
func (c *LinkCache) Set(ctx context.Context, link *models.Link) error {
	c.mu.Lock()
	_, tombstoned := c.tombstones.Get(link.ShortCode)
	if !tombstoned {
		c.l1.Set(link.ShortCode, copyLink(link))
	}
	c.mu.Unlock()

	if tombstoned || c.l2 == nil {
		return nil
	}

	data, err := json.Marshal(link)
	if err != nil {
		return fmt.Errorf("failed to encode link: %w", err)
	}
	keys := []string{cacheKey(link.ShortCode), tombstoneKey(link.ShortCode)}
	if err := setUnlessTombstoned.Run(ctx, c.l2, keys, data, c.l2TTL.Milliseconds()).Err(); err != nil {
		return fmt.Errorf("failed to cache link: %w", err)
	}
	return nil
}

// Invalidate tombstones the code and drops it from both tiers.
func (c *LinkCache) Invalidate(ctx context.Context, shortCode string) error {
	c.mu.Lock()
	c.tombstones.Set(shortCode, struct{}{})
	c.l1.Delete(shortCode)
	c.mu.Unlock()

	if c.l2 == nil {
		return nil
	}

	pipe := c.l2.TxPipeline()
	pipe.Set(ctx, tombstoneKey(shortCode), 1, TombstoneTTL)
	pipe.Del(ctx, cacheKey(shortCode))
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to invalidate cached link: %w", err)
	}
	return nil
}
