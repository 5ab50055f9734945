package server

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"

	"github.com/mj1618/a11y-audit/internal/audit"
)

// CacheBackend stores encoded report sets by key.
type CacheBackend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

// cacheEntry holds an encoded report set with its expiry.
type cacheEntry struct {
	value   []byte
	expires time.Time
}

// MemoryCache is a TTL cache bounded to size entries. When full, the entry
// closest to expiry is evicted.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	size    int
	now     func() time.Time
}

// NewMemoryCache creates a cache holding at most size entries.
func NewMemoryCache(size int) *MemoryCache {
	if size <= 0 {
		size = 64
	}
	return &MemoryCache{entries: make(map[string]cacheEntry), size: size, now: time.Now}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !c.now().Before(entry.expires) {
		delete(c.entries, key)
		return nil, false, nil
	}
	return entry.value, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok && len(c.entries) >= c.size {
		var oldest string
		var oldestAt time.Time
		for k, e := range c.entries {
			if oldest == "" || e.expires.Before(oldestAt) {
				oldest, oldestAt = k, e.expires
			}
		}
		delete(c.entries, oldest)
	}
	c.entries[key] = cacheEntry{value: value, expires: c.now().Add(ttl)}
	return nil
}

// Len reports the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *MemoryCache) Close() error { return nil }

// RedisCache shares reports between server instances.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache connects to redisURL (redis://[:password@]host:port/db).
func NewRedisCache(ctx context.Context, redisURL, prefix string) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	return &RedisCache{client: client, prefix: prefix}, nil
}

func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, r.prefix+key, value, ttl).Err()
}

func (r *RedisCache) Close() error { return r.client.Close() }

// ReportCache keeps audit results keyed by document content and request
// options. A ttl of 0 disables caching.
type ReportCache struct {
	backend CacheBackend
	ttl     time.Duration
}

func NewReportCache(backend CacheBackend, ttl time.Duration) *ReportCache {
	return &ReportCache{backend: backend, ttl: ttl}
}

// ReportKey fingerprints a document and the request that audits it.
func ReportKey(document []byte, req AuditRequest) string {
	req.HTML = ""
	opts, _ := json.Marshal(req)
	h := xxhash.New()
	h.Write(document)
	h.Write([]byte{0})
	h.Write(opts)
	return fmt.Sprintf("%016x", h.Sum64())
}

// Get returns the cached reports for key. Backend failures count as misses.
func (c *ReportCache) Get(ctx context.Context, key string) (map[string]*audit.AuditReport, bool) {
	if c == nil || c.ttl <= 0 {
		return nil, false
	}
	data, ok, err := c.backend.Get(ctx, key)
	if err != nil || !ok {
		return nil, false
	}
	var reports map[string]*audit.AuditReport
	if err := json.Unmarshal(data, &reports); err != nil {
		return nil, false
	}
	return reports, true
}

func (c *ReportCache) Put(ctx context.Context, key string, reports map[string]*audit.AuditReport) error {
	if c == nil || c.ttl <= 0 {
		return nil
	}
	data, err := json.Marshal(reports)
	if err != nil {
		return fmt.Errorf("encode reports: %w", err)
	}
	return c.backend.Set(ctx, key, data, c.ttl)
}

func (c *ReportCache) Close() error {
	if c == nil {
		return nil
	}
	return c.backend.Close()
}
