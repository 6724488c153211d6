package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/disease-predictor/internal/domain"
)

const keyPrefix = "disease-predictor:document:"

// cachedDocument is the JSON envelope stored in Redis
type cachedDocument struct {
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Data        []byte    `json:"data"`
	CachedAt    time.Time `json:"cached_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// RedisCache shares rendered documents between server replicas
type RedisCache struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewRedisCache connects to Redis and verifies the connection
func NewRedisCache(cfg domain.CacheConfig, ttl time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.PoolTimeout > 0 {
		opts.PoolTimeout = cfg.PoolTimeout
	}
	opts.MaxRetries = cfg.MaxRetries

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCache{redis: client, ttl: ttl}, nil
}

// Put stores a document with the cache TTL
func (c *RedisCache) Put(ctx context.Context, id string, doc *domain.Document) error {
	data, err := encodeDocument(doc, time.Now(), c.ttl)
	if err != nil {
		return err
	}
	if err := c.redis.Set(ctx, keyPrefix+id, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache document: %w", err)
	}
	return nil
}

// Get returns a stored document or ErrNotFound
func (c *RedisCache) Get(ctx context.Context, id string) (*domain.Document, error) {
	key := keyPrefix + id

	val, err := c.redis.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read document cache: %w", err)
	}

	doc, err := decodeDocument(val, time.Now())
	if err != nil {
		// Remove corrupted or stale entry
		c.redis.Del(ctx, key)
		return nil, ErrNotFound
	}
	return doc, nil
}

// Close releases the Redis connection pool
func (c *RedisCache) Close() error {
	return c.redis.Close()
}

func encodeDocument(doc *domain.Document, now time.Time, ttl time.Duration) ([]byte, error) {
	data, err := json.Marshal(cachedDocument{
		Filename:    doc.Filename,
		ContentType: doc.ContentType,
		Data:        doc.Data,
		CachedAt:    now,
		ExpiresAt:   now.Add(ttl),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document cache entry: %w", err)
	}
	return data, nil
}

func decodeDocument(data []byte, now time.Time) (*domain.Document, error) {
	var cached cachedDocument
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, err
	}
	if now.After(cached.ExpiresAt) {
		return nil, ErrNotFound
	}
	return &domain.Document{
		Filename:    cached.Filename,
		ContentType: cached.ContentType,
		Data:        cached.Data,
	}, nil
}
