// Package cache keeps rendered documents available for download for a limited
// time after a prediction.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/disease-predictor/internal/domain"
)

// ErrNotFound is returned for unknown or expired document ids
var ErrNotFound = errors.New("document not found or expired")

// DefaultTTL applies when the report TTL is not configured
const DefaultTTL = 15 * time.Minute

// DocumentCache stores rendered documents by id
type DocumentCache interface {
	Put(ctx context.Context, id string, doc *domain.Document) error
	Get(ctx context.Context, id string) (*domain.Document, error)
	Close() error
}

// New returns a Redis-backed cache when a Redis URL is configured and an
// in-process LRU otherwise.
func New(cfg domain.CacheConfig, ttl time.Duration, logger *logrus.Logger) (DocumentCache, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if cfg.RedisURL != "" {
		c, err := NewRedisCache(cfg, ttl)
		if err != nil {
			return nil, err
		}
		logger.WithField("ttl", ttl).Info("Using Redis document cache")
		return c, nil
	}
	logger.WithFields(logrus.Fields{
		"max_items": cfg.MaxItems,
		"ttl":       ttl,
	}).Info("Using in-memory document cache")
	return NewMemoryCache(cfg.MaxItems, ttl), nil
}
