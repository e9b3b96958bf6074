package clock

import "github.com/jonboulle/clockwork"

// Clock provides time operations that can be faked in tests
type Clock = clockwork.Clock

// New creates a Clock backed by the system clock
func New() Clock {
	return clockwork.NewRealClock()
}
