package sweep

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// memoryStore mimics the redis commands used by RedisLock
type memoryStore struct {
	mu     sync.Mutex
	values map[string]string
	setErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{values: map[string]string{}}
}

func (m *memoryStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return false, m.setErr
	}
	if _, ok := m.values[key]; ok {
		return false, nil
	}
	m.values[key] = value.(string)
	return true, nil
}

func (m *memoryStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.values[key]
	if !ok {
		return "", redis.Nil
	}
	return value, nil
}

func (m *memoryStore) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}

func TestRedisLock_SingleOwner(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemoryStore()
	first, err := NewRedisLock(store, LockKey, time.Minute)
	require.NoError(t, err)
	second, err := NewRedisLock(store, LockKey, time.Minute)
	require.NoError(t, err)

	ok, err := first.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = second.Acquire(ctx)
	require.NoError(t, err)
	require.False(t, ok, "second instance must skip the cycle")

	require.NoError(t, second.Release(ctx))
	_, err = store.Get(ctx, LockKey)
	require.NoError(t, err, "non-owner release keeps the key")

	require.NoError(t, first.Release(ctx))
	_, err = store.Get(ctx, LockKey)
	require.ErrorIs(t, err, redis.Nil)

	ok, err = second.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestRedisLock_ReleaseAfterExpiry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemoryStore()
	lock, err := NewRedisLock(store, LockKey, time.Minute)
	require.NoError(t, err)

	ok, err := lock.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	// the TTL ran out and another instance took over
	store.values[LockKey] = "someone-else"
	require.NoError(t, lock.Release(ctx))
	require.Equal(t, "someone-else", store.values[LockKey])
}

func TestRedisLock_Errors(t *testing.T) {
	t.Parallel()

	_, err := NewRedisLock(nil, LockKey, time.Minute)
	require.Error(t, err)
	_, err = NewRedisLock(newMemoryStore(), "", time.Minute)
	require.Error(t, err)

	store := newMemoryStore()
	store.setErr = errors.New("connection refused")
	lock, err := NewRedisLock(store, LockKey, 0)
	require.NoError(t, err)
	require.Equal(t, defaultLockTTL, lock.ttl)

	_, err = lock.Acquire(context.Background())
	require.ErrorContains(t, err, "connection refused")
}

func TestRedisStore_AdaptsCommands(t *testing.T) {
	t.Parallel()

	client := &fakeCmdable{}
	store := NewRedisStore(client)
	ctx := context.Background()

	ok, err := store.SetNX(ctx, LockKey, "owner", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	value, err := store.Get(ctx, LockKey)
	require.NoError(t, err)
	require.Equal(t, "owner", value)

	require.NoError(t, store.Del(ctx, LockKey))
	require.NoError(t, store.Ping(ctx))
	require.Equal(t, []string{"setnx", "get", "del", "ping"}, client.calls)
}

type fakeCmdable struct {
	calls []string
}

func (f *fakeCmdable) Ping(context.Context) *redis.StatusCmd {
	f.calls = append(f.calls, "ping")
	return redis.NewStatusResult("PONG", nil)
}

func (f *fakeCmdable) SetNX(context.Context, string, any, time.Duration) *redis.BoolCmd {
	f.calls = append(f.calls, "setnx")
	return redis.NewBoolResult(true, nil)
}

func (f *fakeCmdable) Get(context.Context, string) *redis.StringCmd {
	f.calls = append(f.calls, "get")
	return redis.NewStringResult("owner", nil)
}

func (f *fakeCmdable) Del(context.Context, ...string) *redis.IntCmd {
	f.calls = append(f.calls, "del")
	return redis.NewIntResult(1, nil)
}

func TestLocalLock(t *testing.T) {
	t.Parallel()

	var lock LocalLock
	ctx := context.Background()

	ok, err := lock.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = lock.Acquire(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, lock.Release(ctx))
	ok, err = lock.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)
}
