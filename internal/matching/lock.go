package matching

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

const (
	pairLockScope      = "match_pair"
	defaultPairLockTTL = 10 * time.Second
)

// redisStore defines the operations the pair lock needs from pkg/redis.
type redisStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	LockKey(scope, id string) string
}

// PairLock serializes orchestrators working the same (lost, found) pair so
// only one of two concurrent report submissions attempts the insert.
type PairLock struct {
	client redisStore
	ttl    time.Duration
}

// NewPairLock constructs a Redis-backed pair lock.
func NewPairLock(client redisStore, ttl time.Duration) (*PairLock, error) {
	if client == nil {
		return nil, errors.New("redis client required for pair lock")
	}
	if ttl <= 0 {
		ttl = defaultPairLockTTL
	}
	return &PairLock{client: client, ttl: ttl}, nil
}

// Acquire tries to own the pair for the lock TTL. A nil lease with a nil
// error means another orchestrator currently holds the pair.
func (l *PairLock) Acquire(ctx context.Context, lostID, foundID uuid.UUID) (*PairLease, error) {
	key := l.client.LockKey(pairLockScope, lostID.String()+":"+foundID.String())
	owner := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, owner, l.ttl)
	if err != nil {
		return nil, fmt.Errorf("setnx: %w", err)
	}
	if !ok {
		return nil, nil
	}
	return &PairLease{client: l.client, key: key, owner: owner}, nil
}

// PairLease represents ownership of one pair until released or expired.
type PairLease struct {
	client redisStore
	key    string
	owner  string
}

// Release frees the lease only if the owner value still matches.
func (le *PairLease) Release(ctx context.Context) error {
	value, err := le.client.Get(ctx, le.key)
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil
		}
		return fmt.Errorf("read lock owner: %w", err)
	}
	if value != le.owner {
		return nil
	}
	if err := le.client.Del(ctx, le.key); err != nil {
		return fmt.Errorf("delete lock: %w", err)
	}
	return nil
}
