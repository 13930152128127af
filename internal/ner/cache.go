package ner

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss indicates a cache miss.
var ErrCacheMiss = errors.New("cache miss")

// Cache stores serialized recognizer results.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

type memoryEntry struct {
	value   []byte
	expires time.Time
}

// MemoryCache is a process-local Cache.
type MemoryCache struct {
	mu    sync.RWMutex
	items map[string]memoryEntry
	now   func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{items: map[string]memoryEntry{}, now: time.Now}
}

func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	e, ok := m.items[key]
	m.mu.RUnlock()
	if !ok || (!e.expires.IsZero() && m.now().After(e.expires)) {
		return nil, ErrCacheMiss
	}
	return e.value, nil
}

func (m *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := memoryEntry{value: value}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}
	m.mu.Lock()
	m.items[key] = e
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache) Close() error { return nil }

// RedisCache shares results between processes.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// NewRedisCache connects and pings the server.
func NewRedisCache(ctx context.Context, cfg RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "contracts:ner:"
	}
	return &RedisCache{client: client, prefix: prefix}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return val, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.prefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// CachingRecognizer memoizes another recognizer by text hash. Cache errors are
// logged and bypassed; they never fail recognition.
type CachingRecognizer struct {
	inner     Recognizer
	cache     Cache
	ttl       time.Duration
	namespace string
	logger    *slog.Logger
}

// NewCachingRecognizer wraps inner. namespace separates providers and models that
// would answer the same text differently.
func NewCachingRecognizer(inner Recognizer, cache Cache, ttl time.Duration, namespace string, logger *slog.Logger) *CachingRecognizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachingRecognizer{inner: inner, cache: cache, ttl: ttl, namespace: namespace, logger: logger}
}

func (c *CachingRecognizer) Recognize(ctx context.Context, text string) ([]Entity, error) {
	key := c.key(text)
	if b, err := c.cache.Get(ctx, key); err == nil {
		var ents []Entity
		if err := json.Unmarshal(b, &ents); err == nil {
			c.logger.Debug("ner.cache.hit", "key", key)
			return ents, nil
		}
		c.logger.Warn("ner.cache.corrupt", "key", key)
	} else if !errors.Is(err, ErrCacheMiss) {
		c.logger.Warn("ner.cache.get_failed", "key", key, "error", err)
	}

	ents, err := c.inner.Recognize(ctx, text)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(ents); err == nil {
		if err := c.cache.Set(ctx, key, b, c.ttl); err != nil {
			c.logger.Warn("ner.cache.set_failed", "key", key, "error", err)
		}
	}
	return ents, nil
}

func (c *CachingRecognizer) key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return c.namespace + ":" + hex.EncodeToString(sum[:])
}
