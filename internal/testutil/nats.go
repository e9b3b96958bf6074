package testutil

import (
	"testing"

	"github.com/nats-io/nats-server/v2/server"
	natstest "github.com/nats-io/nats-server/v2/test"
)

// StartNATS runs an in-process NATS server on a random port. It is shut
// down when the test ends.
func StartNATS(t testing.TB) *server.Server {
	t.Helper()

	opts := natstest.DefaultTestOptions
	opts.Port = -1
	srv := natstest.RunServer(&opts)
	t.Cleanup(srv.Shutdown)
	return srv
}
