// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// catalog.go provides a Valkey-backed cache of the encoded catalog.
// The list endpoint serves the cached JSON directly; every successful
// catalog save invalidates it.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const (
	// catalogKeyPrefix is the Valkey key prefix for cached catalogs.
	catalogKeyPrefix = "catalog:"

	// DefaultCatalogTTL bounds how stale a write from another process can
	// leave the cache.
	DefaultCatalogTTL = 5 * time.Minute
)

// CatalogCache caches one encoded catalog document in Valkey.
type CatalogCache struct {
	client *redis.Client
	key    string
	ttl    time.Duration

	// gen increases on every invalidation. A load that started under an
	// older generation is not written back.
	mu    sync.Mutex
	gen   int64
	group singleflight.Group
}

// NewCatalogCache creates a cache for the catalog stored under name.
func NewCatalogCache(client *redis.Client, name string, ttl time.Duration) *CatalogCache {
	if ttl == 0 {
		ttl = DefaultCatalogTTL
	}
	if name == "" {
		name = "default"
	}
	return &CatalogCache{client: client, key: catalogKeyPrefix + name, ttl: ttl}
}

// Get returns the cached document. Errors count as a miss.
func (cc *CatalogCache) Get(ctx context.Context) ([]byte, bool) {
	val, err := cc.client.Get(ctx, cc.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		slog.Warn("catalog cache get error", "key", cc.key, "error", err)
		return nil, false
	}
	slog.Debug("catalog cache hit", "key", cc.key)
	return val, true
}

// Set stores the document with the configured TTL.
func (cc *CatalogCache) Set(ctx context.Context, data []byte) {
	if err := cc.client.Set(ctx, cc.key, data, cc.ttl).Err(); err != nil {
		slog.Warn("catalog cache set error", "key", cc.key, "error", err)
	}
}

// Fetch returns the cached document or calls load, caching its result.
// Concurrent misses share one load.
func (cc *CatalogCache) Fetch(ctx context.Context, load func(ctx context.Context) ([]byte, error)) ([]byte, error) {
	if data, ok := cc.Get(ctx); ok {
		return data, nil
	}

	cc.mu.Lock()
	gen := cc.gen
	cc.mu.Unlock()

	// The shared load must not die with whichever caller started it.
	loadCtx := context.WithoutCancel(ctx)
	v, err, shared := cc.group.Do(strconv.FormatInt(gen, 10), func() (any, error) {
		data, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		cc.mu.Lock()
		defer cc.mu.Unlock()
		if cc.gen == gen {
			cc.Set(loadCtx, data)
		}
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		slog.Debug("catalog cache load shared", "key", cc.key)
	}
	return v.([]byte), nil
}

// Invalidate drops the cached document.
func (cc *CatalogCache) Invalidate(ctx context.Context) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.gen++
	if err := cc.client.Del(ctx, cc.key).Err(); err != nil {
		slog.Warn("catalog cache invalidate error", "key", cc.key, "error", err)
		return
	}
	slog.Debug("catalog cache invalidated", "key", cc.key)
}

// Ping checks the Valkey connection.
func (cc *CatalogCache) Ping(ctx context.Context) error {
	return cc.client.Ping(ctx).Err()
}
