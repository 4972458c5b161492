package track

import "time"

// Default notification rate: at most 20 accepted updates per second per key.
// Bounds event volume for fields rewritten every frame by a tight loop.
const (
	defaultUpdatesPerSecond = 20
	defaultUpdateInterval   = time.Second / defaultUpdatesPerSecond
)

// TrackableConfig encapsulates tunables for Trackable construction.
type TrackableConfig struct {
	// Name requested by the caller. May be rewritten on registration if it
	// collides within a mediator; read Name() back after Register.
	Name string
	// UpdateInterval is the minimum time between accepted notifications for
	// the same key. Zero or negative selects the package default (1/20 s).
	UpdateInterval time.Duration
}

func (c TrackableConfig) interval() time.Duration {
	if c.UpdateInterval <= 0 {
		return defaultUpdateInterval
	}
	return c.UpdateInterval
}
