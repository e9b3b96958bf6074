package redis

import (
	"fmt"

	"github.com/mcoot/homeguess/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "homeguess"

// sessionKey returns the Redis key for a Session
func sessionKey(id model.SessionID) string {
	return fmt.Sprintf("%s:session:%s", keyPrefix, id)
}

// lockKey returns the Redis key for a named lock
func lockKey(name string) string {
	return fmt.Sprintf("%s:lock:%s", keyPrefix, name)
}
