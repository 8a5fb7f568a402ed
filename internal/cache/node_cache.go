// Package cache keeps serialized node responses in Redis.
//
// Any write to the network can change other nodes' responses (supplier
// names, levels after a move, cascaded deletes), so invalidation is global:
// writers bump a version counter and readers only look at keys of the
// current version. Stale keys expire on their own.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tradenet/internal/dto"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const versionKey = "nodes:version"

// NodeCache is a best-effort read-through cache for node detail responses.
// Failures never surface to callers; a miss is always safe.
//
// Get reports the version it looked under, and Set stores under that
// version only. A response loaded after a miss therefore lands under a
// version that an Invalidate in between has already retired.
type NodeCache interface {
	Get(ctx context.Context, id uuid.UUID) (resp *dto.NodeResponse, version int64, ok bool)
	Set(ctx context.Context, version int64, resp *dto.NodeResponse)
	Invalidate(ctx context.Context)
}

// store is the subset of *redis.Client the cache uses.
type store interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
}

type redisNodeCache struct {
	rdb store
	ttl time.Duration
}

// NewRedisNodeCache returns a Redis-backed cache, or a no-op cache when rdb is nil.
func NewRedisNodeCache(rdb *redis.Client, ttl time.Duration) NodeCache {
	if rdb == nil {
		return Noop()
	}
	return &redisNodeCache{rdb: rdb, ttl: ttl}
}

func (c *redisNodeCache) version(ctx context.Context) (int64, error) {
	v, err := c.rdb.Get(ctx, versionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

func (c *redisNodeCache) key(version int64, id uuid.UUID) string {
	return fmt.Sprintf("nodes:v%d:%s", version, id)
}

func (c *redisNodeCache) Get(ctx context.Context, id uuid.UUID) (*dto.NodeResponse, int64, bool) {
	v, err := c.version(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("node cache: version lookup failed")
		return nil, -1, false
	}
	raw, err := c.rdb.Get(ctx, c.key(v, id)).Bytes()
	if err != nil {
		return nil, v, false
	}
	var resp dto.NodeResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, v, false
	}
	return &resp, v, true
}

// Set is a no-op for a negative version, which Get returns when Redis failed.
func (c *redisNodeCache) Set(ctx context.Context, version int64, resp *dto.NodeResponse) {
	if version < 0 {
		return
	}
	b, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, c.key(version, resp.ID), b, c.ttl).Err(); err != nil {
		log.Debug().Err(err).Str("node_id", resp.ID.String()).Msg("node cache: set failed")
	}
}

func (c *redisNodeCache) Invalidate(ctx context.Context) {
	if err := c.rdb.Incr(ctx, versionKey).Err(); err != nil {
		log.Warn().Err(err).Msg("node cache: invalidation failed")
	}
}

type noopCache struct{}

// Noop returns a cache that never hits.
func Noop() NodeCache { return noopCache{} }

func (noopCache) Get(context.Context, uuid.UUID) (*dto.NodeResponse, int64, bool) {
	return nil, -1, false
}
func (noopCache) Set(context.Context, int64, *dto.NodeResponse) {}
func (noopCache) Invalidate(context.Context)                    {}
