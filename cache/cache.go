// Package cache holds recent search results so callers can honor the
// use_cached_data fallback without re-querying the provider. The
// retrieval client itself never touches this cache.
package cache

import (
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/wrenchwise/autosearch/models"
)

// ResultCache is an in-memory LRU of per-(intent, query) search results
// with a fixed TTL. Safe for concurrent use.
type ResultCache struct {
	lru *expirable.LRU[string, models.SearchResult]
}

// New builds a cache bounded to size entries expiring after ttl.
func New(size int, ttl time.Duration) *ResultCache {
	return &ResultCache{
		lru: expirable.NewLRU[string, models.SearchResult](size, nil, ttl),
	}
}

// Put stores the result of a successful search.
func (c *ResultCache) Put(intent models.Intent, query string, result models.SearchResult) {
	if c == nil {
		return
	}
	c.lru.Add(key(intent, query), result)
}

// Get returns a previously cached result, if one is still live.
func (c *ResultCache) Get(intent models.Intent, query string) (models.SearchResult, bool) {
	if c == nil {
		return models.SearchResult{}, false
	}
	return c.lru.Get(key(intent, query))
}

// Len reports the number of live entries.
func (c *ResultCache) Len() int {
	if c == nil {
		return 0
	}
	return c.lru.Len()
}

func key(intent models.Intent, query string) string {
	return fmt.Sprintf("%s|%s", intent, strings.ToLower(strings.TrimSpace(query)))
}
