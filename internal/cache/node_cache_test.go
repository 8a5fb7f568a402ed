package cache

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"tradenet/internal/dto"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── In-memory store stub ─────────────────────────────────────────────────────

type memStore struct {
	mu      sync.Mutex
	data    map[string]string
	ttls    map[string]time.Duration
	failGet error
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (s *memStore) Get(_ context.Context, key string) *redis.StringCmd {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failGet != nil {
		return redis.NewStringResult("", s.failGet)
	}
	v, ok := s.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (s *memStore) Set(_ context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		s.data[key] = string(v)
	case string:
		s.data[key] = v
	}
	s.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (s *memStore) Incr(_ context.Context, key string) *redis.IntCmd {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, _ := strconv.ParseInt(s.data[key], 10, 64)
	n++
	s.data[key] = strconv.FormatInt(n, 10)
	return redis.NewIntResult(n, nil)
}

func newTestCache() (*redisNodeCache, *memStore) {
	s := newMemStore()
	return &redisNodeCache{rdb: s, ttl: time.Minute}, s
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestNewRedisNodeCache_NilClientIsNoop(t *testing.T) {
	c := NewRedisNodeCache(nil, time.Minute)
	assert.IsType(t, noopCache{}, c)
}

func TestNoop_NeverHits(t *testing.T) {
	ctx := context.Background()
	c := Noop()
	id := uuid.New()

	c.Set(ctx, 0, &dto.NodeResponse{ID: id, Debt: "0.00"})
	c.Invalidate(ctx)

	got, _, ok := c.Get(ctx, id)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestRedisNodeCache_KeyCarriesVersion(t *testing.T) {
	c := &redisNodeCache{}
	id := uuid.MustParse("7b3f1f8e-2f43-4c39-9d1a-0c7f0c5c3a11")
	assert.Equal(t, "nodes:v0:7b3f1f8e-2f43-4c39-9d1a-0c7f0c5c3a11", c.key(0, id))
	assert.Equal(t, "nodes:v12:7b3f1f8e-2f43-4c39-9d1a-0c7f0c5c3a11", c.key(12, id))
}

func TestRedisNodeCache_MissThenHit(t *testing.T) {
	ctx := context.Background()
	c, s := newTestCache()
	id := uuid.New()

	_, version, ok := c.Get(ctx, id)
	require.False(t, ok)
	assert.Equal(t, int64(0), version)

	name := "Northern Plant"
	c.Set(ctx, version, &dto.NodeResponse{ID: id, Debt: "12.50", SupplierName: &name, Level: 1})

	got, version, ok := c.Get(ctx, id)
	require.True(t, ok)
	assert.Equal(t, int64(0), version)
	assert.Equal(t, "12.50", got.Debt)
	assert.Equal(t, 1, got.Level)
	require.NotNil(t, got.SupplierName)
	assert.Equal(t, name, *got.SupplierName)
	assert.Equal(t, time.Minute, s.ttls[c.key(0, id)])
}

func TestRedisNodeCache_InvalidateRetiresEntries(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache()
	id := uuid.New()

	_, version, _ := c.Get(ctx, id)
	c.Set(ctx, version, &dto.NodeResponse{ID: id, Debt: "1.00"})

	c.Invalidate(ctx)

	_, version, ok := c.Get(ctx, id)
	assert.False(t, ok)
	assert.Equal(t, int64(1), version)
}

func TestRedisNodeCache_InvalidateBetweenMissAndSet(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache()
	id := uuid.New()

	// A reader misses and loads the node...
	_, version, ok := c.Get(ctx, id)
	require.False(t, ok)
	loaded := &dto.NodeResponse{ID: id, Debt: "5.00"}

	// ...a writer changes it in the meantime...
	c.Invalidate(ctx)

	// ...and the reader's now outdated copy must not become visible.
	c.Set(ctx, version, loaded)

	_, current, ok := c.Get(ctx, id)
	assert.False(t, ok)
	assert.Equal(t, version+1, current)
}

func TestRedisNodeCache_StoreFailureIsAMiss(t *testing.T) {
	ctx := context.Background()
	c, s := newTestCache()
	id := uuid.New()
	s.failGet = errors.New("connection refused")

	_, version, ok := c.Get(ctx, id)
	assert.False(t, ok)
	assert.Equal(t, int64(-1), version)

	c.Set(ctx, version, &dto.NodeResponse{ID: id})
	s.failGet = nil
	_, _, ok = c.Get(ctx, id)
	assert.False(t, ok)
}
