package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"pocketcredit-backend/pkg/id"
)

var ErrLockHeld = errors.New("lock is held by another request")

// release deletes the key only if it still holds our token, so an expired lock that
// someone else re-acquired is left alone.
var release = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker is a SET NX PX mutex keyed per user.
type Locker struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewLocker(rdb *redis.Client, prefix string, ttl time.Duration) *Locker {
	return &Locker{rdb: rdb, prefix: prefix, ttl: ttl}
}

// Acquire takes the lock for key or fails fast with ErrLockHeld. The returned func
// releases it and is safe to call once the context is gone.
func (l *Locker) Acquire(ctx context.Context, key string) (func(), error) {
	k := l.prefix + key
	token := id.NewID32()
	ok, err := l.rdb.SetNX(ctx, k, token, l.ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLockHeld
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = release.Run(ctx, l.rdb, []string{k}, token).Err()
	}, nil
}
