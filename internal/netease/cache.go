package netease

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/hxnx/ncmbot/internal/redis"
	redislib "github.com/redis/go-redis/v9"
)

const (
	searchCacheTTL       = 5 * time.Minute
	searchCacheKeyPrefix = redis.KeyPrefix + "search:"
)

// SearchCache caches search responses keyed by keyword+limit. Misses are
// cheap; both implementations swallow their own failures so a broken cache
// never breaks a search.
type SearchCache interface {
	Get(ctx context.Context, key string) ([]Song, bool)
	Set(ctx context.Context, key string, songs []Song)
}

// NewSearchCache prefers Redis and falls back to the in-process cache when no
// client is available.
func NewSearchCache(client *redislib.Client) SearchCache {
	if client != nil {
		return &redisCache{client: client}
	}
	return newMemoryCache()
}

type redisCache struct {
	client *redislib.Client
}

func (c *redisCache) Get(ctx context.Context, key string) ([]Song, bool) {
	raw, err := c.client.Get(ctx, searchCacheKeyPrefix+key).Bytes()
	if err != nil {
		if err != redislib.Nil {
			log.Printf("search cache get failed: %v", err)
		}
		return nil, false
	}

	var songs []Song
	if err := json.Unmarshal(raw, &songs); err != nil {
		log.Printf("search cache decode failed: %v", err)
		return nil, false
	}

	return songs, true
}

func (c *redisCache) Set(ctx context.Context, key string, songs []Song) {
	payload, err := json.Marshal(songs)
	if err != nil {
		log.Printf("search cache encode failed: %v", err)
		return
	}

	if err := c.client.Set(ctx, searchCacheKeyPrefix+key, payload, searchCacheTTL).Err(); err != nil {
		log.Printf("search cache set failed: %v", err)
	}
}

type memoryCacheEntry struct {
	songs     []Song
	expiresAt time.Time
}

type memoryCache struct {
	mu   sync.RWMutex
	data map[string]memoryCacheEntry
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string]memoryCacheEntry)}
}

func (c *memoryCache) Get(_ context.Context, key string) ([]Song, bool) {
	c.mu.RLock()
	entry, ok := c.data[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.data, key)
		c.mu.Unlock()
		return nil, false
	}
	return entry.songs, true
}

func (c *memoryCache) Set(_ context.Context, key string, songs []Song) {
	c.mu.Lock()
	c.data[key] = memoryCacheEntry{
		songs:     songs,
		expiresAt: time.Now().Add(searchCacheTTL),
	}
	c.mu.Unlock()
}
