package track

import (
	"sync"

	"trackd/pkg/types"
)

// eventRecorder collects routed events in-memory for tests.
type eventRecorder struct {
	mu     sync.Mutex
	events []types.Event
}

func (r *eventRecorder) callback() Callback {
	return func(trackable, key string, value any, kind types.EventKind) {
		r.mu.Lock()
		r.events = append(r.events, types.Event{Trackable: trackable, Key: key, Value: value, Kind: kind})
		r.mu.Unlock()
	}
}

func (r *eventRecorder) Events() []types.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]types.Event, len(r.events))
	copy(out, r.events)
	return out
}

func (r *eventRecorder) ofKind(kind types.EventKind) []types.Event {
	var out []types.Event
	for _, ev := range r.Events() {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}
