package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/mcoot/homeguess/internal/storage"
)

// releaseScript deletes the lock only if it still carries the caller's token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Ensure Storage implements the interface
var _ storage.Locker = (*Storage)(nil)

func (s *Storage) AcquireLock(ctx context.Context, key string, ttl time.Duration) (storage.LockResult, error) {
	token := uuid.NewString()
	ok, err := s.client.SetNX(ctx, lockKey(key), token, ttl).Result()
	if err != nil {
		return storage.LockResult{Status: storage.LockFailed, Key: key}, unavailable(err)
	}
	if !ok {
		return storage.LockResult{Status: storage.LockHeld, Key: key}, nil
	}
	return storage.LockResult{Status: storage.LockAcquired, Key: key, Token: token}, nil
}

func (s *Storage) ReleaseLock(ctx context.Context, lock storage.LockResult) error {
	if !lock.Acquired() {
		return nil
	}
	if err := releaseScript.Run(ctx, s.client, []string{lockKey(lock.Key)}, lock.Token).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}
