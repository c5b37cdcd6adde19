// Package viewcache caches rendered list responses keyed by view path and
// invalidates them when photos are added or removed. Invalidation is
// fire-and-forget: errors are logged, never propagated.
package viewcache

import (
	"context"
	"errors"
	"time"

	"github.com/taller/photovault/common/logger"
	"github.com/taller/photovault/common/redis"
)

// InvalidationChannel carries invalidated view paths for any render layer
// that subscribes (e.g. an edge cache purger).
const InvalidationChannel = "photovault:views:invalidated"

const keyPrefix = "photovault:view:"

// ViewCache stores cached view payloads in Redis
type ViewCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

// New creates a view cache with the given default TTL
func New(client *redis.Client, ttl time.Duration, log *logger.Logger) *ViewCache {
	return &ViewCache{
		client: client,
		ttl:    ttl,
		log:    log,
	}
}

// Get returns the cached payload for a view path, if present
func (v *ViewCache) Get(ctx context.Context, path string) ([]byte, bool) {
	val, err := v.client.Get(ctx, keyPrefix+path)
	if errors.Is(err, redis.ErrKeyNotFound) {
		return nil, false
	}
	if err != nil {
		v.log.Warn("view cache read failed", "path", path, "error", err)
		return nil, false
	}
	return []byte(val), true
}

// Set stores a rendered payload for a view path
func (v *ViewCache) Set(ctx context.Context, path string, payload []byte) {
	if err := v.client.Set(ctx, keyPrefix+path, string(payload), v.ttl); err != nil {
		v.log.Warn("view cache write failed", "path", path, "error", err)
	}
}

// Invalidate drops the cached payloads for the given view paths and
// publishes an invalidation event per path. Never returns an error.
func (v *ViewCache) Invalidate(ctx context.Context, paths ...string) {
	if len(paths) == 0 {
		return
	}

	keys := make([]string, len(paths))
	for i, p := range paths {
		keys[i] = keyPrefix + p
	}

	if err := v.client.Delete(ctx, keys...); err != nil {
		v.log.Warn("view invalidation failed", "paths", paths, "error", err)
	}

	for _, p := range paths {
		if err := v.client.PublishEvent(ctx, InvalidationChannel, p); err != nil {
			v.log.Warn("view invalidation publish failed", "path", p, "error", err)
		}
	}
}
