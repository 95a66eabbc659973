// Package synclock serializes sync runs per source. Two concurrent runs of
// the same source would race on the per-run resolution index and on stale
// detection, so a trigger must hold the source's lock for the duration of
// the run.
package synclock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	id "mandata/pkg/domain"
	dErrors "mandata/pkg/domain-errors"
)

// ErrHeld is returned when another run currently holds the source's lock.
var ErrHeld = dErrors.New(dErrors.CodeConflict, "sync already running for source")

// Locker acquires per-source run locks.
type Locker interface {
	// Acquire takes the lock for a source, returning a release func. The
	// ttl bounds how long a crashed run can block the source.
	Acquire(ctx context.Context, src id.Source, ttl time.Duration) (func(), error)
}

// Redis implements Locker with SET NX. The lock value is a per-acquisition
// token so a slow run cannot release a lock it no longer owns.
type Redis struct {
	client redis.Cmdable
}

// NewRedis builds a redis-backed locker.
func NewRedis(client redis.Cmdable) *Redis {
	return &Redis{client: client}
}

var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`)

func (l *Redis) Acquire(ctx context.Context, src id.Source, ttl time.Duration) (func(), error) {
	key := "mandata:sync:" + src.String()
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "acquire sync lock")
	}
	if !ok {
		return nil, ErrHeld
	}
	release := func() {
		// Best effort: the TTL reclaims the lock if this fails.
		_ = releaseScript.Run(context.WithoutCancel(ctx), l.client, []string{key}, token).Err()
	}
	return release, nil
}

// Nop is used when Redis is not configured; every acquisition succeeds.
type Nop struct{}

func (Nop) Acquire(context.Context, id.Source, time.Duration) (func(), error) {
	return func() {}, nil
}
