package mocks

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Epoch is the fixed start time used by fake clocks in tests
var Epoch = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// NewMockClock creates a fake clock set to the given time
func NewMockClock(t time.Time) *clockwork.FakeClock {
	return clockwork.NewFakeClockAt(t)
}
