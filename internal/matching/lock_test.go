package matching

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLockStore struct {
	values map[string]string
}

func newFakeLockStore() *fakeLockStore {
	return &fakeLockStore{values: map[string]string{}}
}

func (f *fakeLockStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if _, exists := f.values[key]; exists {
		return false, nil
	}
	f.values[key] = value.(string)
	return true, nil
}

func (f *fakeLockStore) Get(ctx context.Context, key string) (string, error) {
	value, ok := f.values[key]
	if !ok {
		return "", goredis.Nil
	}
	return value, nil
}

func (f *fakeLockStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.values, key)
	}
	return nil
}

func (f *fakeLockStore) LockKey(scope, id string) string {
	return "rc:lock:" + scope + ":" + id
}

func TestPairLockSerializesSamePair(t *testing.T) {
	store := newFakeLockStore()
	lock, err := NewPairLock(store, time.Second)
	require.NoError(t, err)

	ctx := context.Background()
	lostID := uuid.New()
	foundID := uuid.New()

	lease, err := lock.Acquire(ctx, lostID, foundID)
	require.NoError(t, err)
	require.NotNil(t, lease)

	contended, err := lock.Acquire(ctx, lostID, foundID)
	require.NoError(t, err)
	assert.Nil(t, contended)

	require.NoError(t, lease.Release(ctx))

	again, err := lock.Acquire(ctx, lostID, foundID)
	require.NoError(t, err)
	assert.NotNil(t, again)
}

func TestPairLockDistinctPairsAreIndependent(t *testing.T) {
	store := newFakeLockStore()
	lock, err := NewPairLock(store, time.Second)
	require.NoError(t, err)

	ctx := context.Background()
	first, err := lock.Acquire(ctx, uuid.New(), uuid.New())
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := lock.Acquire(ctx, uuid.New(), uuid.New())
	require.NoError(t, err)
	assert.NotNil(t, second)
}

func TestPairLeaseReleaseIgnoresStolenKey(t *testing.T) {
	store := newFakeLockStore()
	lock, err := NewPairLock(store, time.Second)
	require.NoError(t, err)

	ctx := context.Background()
	lostID := uuid.New()
	foundID := uuid.New()

	lease, err := lock.Acquire(ctx, lostID, foundID)
	require.NoError(t, err)
	require.NotNil(t, lease)

	// Simulate expiry plus takeover by another owner.
	key := store.LockKey(pairLockScope, lostID.String()+":"+foundID.String())
	store.values[key] = "someone-else"

	require.NoError(t, lease.Release(ctx))
	assert.Equal(t, "someone-else", store.values[key])
}
