package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mcoot/homeguess/internal/dependencies/clock"
	"github.com/mcoot/homeguess/internal/storage"
)

type heldLock struct {
	token   string
	expires time.Time
}

// Locker is an in-process lock with clock-driven expiry
type Locker struct {
	mu    sync.Mutex
	clock clock.Clock
	locks map[string]heldLock
}

// NewLocker creates a new in-memory locker
func NewLocker(clk clock.Clock) *Locker {
	return &Locker{
		clock: clk,
		locks: make(map[string]heldLock),
	}
}

// Ensure Locker implements the interface
var _ storage.Locker = (*Locker)(nil)

func (l *Locker) AcquireLock(ctx context.Context, key string, ttl time.Duration) (storage.LockResult, error) {
	if err := ctx.Err(); err != nil {
		return storage.LockResult{Status: storage.LockFailed, Key: key}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	if held, ok := l.locks[key]; ok && now.Before(held.expires) {
		return storage.LockResult{Status: storage.LockHeld, Key: key}, nil
	}

	token := uuid.NewString()
	l.locks[key] = heldLock{token: token, expires: now.Add(ttl)}
	return storage.LockResult{Status: storage.LockAcquired, Key: key, Token: token}, nil
}

func (l *Locker) ReleaseLock(ctx context.Context, lock storage.LockResult) error {
	if !lock.Acquired() {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if held, ok := l.locks[lock.Key]; ok && held.token == lock.Token {
		delete(l.locks, lock.Key)
	}
	return nil
}
