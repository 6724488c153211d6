package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/disease-predictor/internal/domain"
)

const defaultMaxItems = 256

// MemoryCache is a size-bounded in-process cache whose entries expire after a
// fixed TTL.
type MemoryCache struct {
	lru *expirable.LRU[string, *domain.Document]
}

// NewMemoryCache creates a memory cache holding at most maxItems documents
func NewMemoryCache(maxItems int, ttl time.Duration) *MemoryCache {
	if maxItems <= 0 {
		maxItems = defaultMaxItems
	}
	return &MemoryCache{
		lru: expirable.NewLRU[string, *domain.Document](maxItems, nil, ttl),
	}
}

// Put stores a document
func (c *MemoryCache) Put(ctx context.Context, id string, doc *domain.Document) error {
	c.lru.Add(id, doc)
	return nil
}

// Get returns a stored document or ErrNotFound
func (c *MemoryCache) Get(ctx context.Context, id string) (*domain.Document, error) {
	doc, ok := c.lru.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return doc, nil
}

// Len returns the number of live entries
func (c *MemoryCache) Len() int {
	return c.lru.Len()
}

// Close drops every entry
func (c *MemoryCache) Close() error {
	c.lru.Purge()
	return nil
}
