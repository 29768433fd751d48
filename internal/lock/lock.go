// Package lock provides a short-lived mutual-exclusion scope on Redis,
// keyed by reservation id.  The cancellation handler holds it across
// the status transition and refund computation so that two concurrent
// cancellation requests serialize before reaching the database.
package lock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only while it still holds our token,
// so an expired lock re-acquired by someone else is never released
// from here.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker acquires per-key locks with a TTL.  A nil Redis client
// disables locking entirely: Acquire then always succeeds, degrading
// to the database's conditional updates as the only defense, the same
// graceful degradation the rate limiter applies when Redis is down.
type Locker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewLocker constructs a Locker.  ttl bounds how long a crashed
// holder can block others; it should comfortably exceed the
// transition + refund computation it protects.
func NewLocker(client *redis.Client, ttl time.Duration) *Locker {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &Locker{client: client, ttl: ttl}
}

// Acquire tries to take the lock for key.  On success it returns a
// release function and true; when the lock is held elsewhere it
// returns false.  Redis errors degrade to an acquired no-op lock
// rather than failing the caller's operation.
func (l *Locker) Acquire(ctx context.Context, key string) (release func(), ok bool) {
	if l.client == nil {
		return func() {}, true
	}
	token := uuid.NewString()
	set, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return func() {}, true
	}
	if !set {
		return nil, false
	}
	return func() {
		rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = releaseScript.Run(rctx, l.client, []string{key}, token).Err()
	}, true
}
