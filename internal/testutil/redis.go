package testutil

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// StartRedis runs an in-process Redis for the test and returns a client for it.
// Both are closed when the test ends.
func StartRedis(t testing.TB) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mini := miniredis.RunT(t)
	return mini, RedisClient(t, mini)
}

// RedisClient opens another client against a running miniredis
func RedisClient(t testing.TB, mini *miniredis.Miniredis) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}
