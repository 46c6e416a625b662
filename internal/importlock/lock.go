package importlock

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const key = "lock:schedule-import"

// ErrLocked means another import is running.
var ErrLocked = errors.New("another import is in progress")

// releaseScript deletes the lock only if it still holds our token, so an
// import that outlived its TTL cannot release a newer holder's lock.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker serializes imports across processes through Redis.
type Locker struct {
	client *redis.Client
	ttl    time.Duration
}

// New returns a Locker. A nil client gives a lock that always succeeds.
func New(client *redis.Client, ttl time.Duration) *Locker {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Locker{client: client, ttl: ttl}
}

// Acquire takes the import lock or returns ErrLocked. The returned func
// releases it and is safe to call once.
func (l *Locker) Acquire(ctx context.Context) (func(), error) {
	if l.client == nil {
		return func() {}, nil
	}

	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLocked
	}

	return func() {
		// the request context may already be done
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
			log.Printf("⚠️ Failed to release import lock: %v", err)
		}
	}, nil
}
