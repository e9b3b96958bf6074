package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/mcoot/homeguess/internal/model"
)

// Storage defines the interface for session persistence. Callers own
// read-modify-write atomicity.
type Storage interface {
	GetSession(ctx context.Context, id model.SessionID) (*model.Session, error)
	SaveSession(ctx context.Context, session *model.Session) error
	DeleteSession(ctx context.Context, id model.SessionID) error
}

// LockStatus is the outcome of a lock acquisition attempt
type LockStatus int

const (
	// LockAcquired means the caller holds the lock and must release it
	LockAcquired LockStatus = iota
	// LockHeld means another holder has the lock
	LockHeld
	// LockFailed means the lock backend could not be reached
	LockFailed
)

func (s LockStatus) String() string {
	switch s {
	case LockAcquired:
		return "acquired"
	case LockHeld:
		return "held"
	case LockFailed:
		return "failed"
	default:
		return fmt.Sprintf("LockStatus(%d)", int(s))
	}
}

// LockResult describes a lock acquisition. Token identifies the holder and is
// only set when Status is LockAcquired.
type LockResult struct {
	Status LockStatus
	Key    string
	Token  string
}

// Acquired reports whether the caller now holds the lock
func (r LockResult) Acquired() bool {
	return r.Status == LockAcquired
}

// Locker is a short-TTL mutual exclusion primitive. Acquisition never blocks
// and locks expire on their own if never released.
type Locker interface {
	// AcquireLock attempts a set-if-absent with expiry. A non-nil error is
	// only returned together with LockFailed.
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (LockResult, error)
	// ReleaseLock frees the lock if it is still held under the result's token
	ReleaseLock(ctx context.Context, lock LockResult) error
}

// AdvanceLockKey returns the lock name serializing round advancement for a session
func AdvanceLockKey(id model.SessionID) string {
	return fmt.Sprintf("advance:%s", id)
}
