// Package lock serializes ledger mutations per ticket code so two
// staff members scanning the same badge at the same time cannot both
// win contradictory updates.  Locks are scoped to a single code;
// operations on different codes never contend.
package lock

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrLocked is returned when another mutation currently holds the
// lock for the same ticket code.  Handlers translate it into a 409.
var ErrLocked = errors.New("ticket code is locked by another operation")

// TicketLocker acquires an exclusive lock for a ticket code.  The
// returned release function must always be called.
type TicketLocker interface {
	Acquire(ctx context.Context, code string) (release func(), err error)
}

// redisLocker implements TicketLocker with SET NX PX, giving mutual
// exclusion across replicas.  The TTL bounds how long a crashed
// holder can block a code.
type redisLocker struct {
	rdb *redis.Client
	ttl time.Duration
}

// localLocker implements TicketLocker with an in-process keyed mutex.
// It is the fallback for deployments without redis; correct for a
// single replica.
type localLocker struct {
	mu    sync.Mutex
	codes map[string]struct{}
}

// New returns a redis-backed locker when rdb is non-nil and an
// in-process one otherwise, mirroring how the rate limiter degrades
// when redis is unavailable.
func New(rdb *redis.Client, ttl time.Duration) TicketLocker {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	if rdb != nil {
		return &redisLocker{rdb: rdb, ttl: ttl}
	}
	return &localLocker{codes: make(map[string]struct{})}
}

func (l *redisLocker) Acquire(ctx context.Context, code string) (func(), error) {
	key := "ticketlock:" + code
	ok, err := l.rdb.SetNX(ctx, key, 1, l.ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLocked
	}
	return func() {
		// Release outlives the request context on purpose.
		rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = l.rdb.Del(rctx, key).Err()
	}, nil
}

func (l *localLocker) Acquire(_ context.Context, code string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, held := l.codes[code]; held {
		return nil, ErrLocked
	}
	l.codes[code] = struct{}{}
	return func() {
		l.mu.Lock()
		delete(l.codes, code)
		l.mu.Unlock()
	}, nil
}
