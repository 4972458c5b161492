package types

// EventKind identifies the kind of change a broker reports to observers.
type EventKind string

const (
	// EventSetAttribute reports a scalar attribute write that passed the
	// notification rules (not silent, not reserved, not rate limited).
	EventSetAttribute EventKind = "set_attribute"
	// EventMethodCall reports a tracked method invocation; the event value
	// carries the argument list.
	EventMethodCall EventKind = "method_call"
	// EventTrackableAdded reports a trackable joining a mediator; the event
	// value carries a full Snapshot so late subscribers need no extra round trip.
	EventTrackableAdded EventKind = "trackable_added"
	// EventTrackableRemoved reports a trackable leaving a mediator.
	EventTrackableRemoved EventKind = "trackable_removed"
	// EventWithinThreshold is reserved for wire compatibility and never emitted.
	EventWithinThreshold EventKind = "within_threshold"
)

// Event is a single change notification routed from a trackable through a
// mediator to its observers.
type Event struct {
	Trackable string    `json:"trackable"`
	Key       string    `json:"key"`
	Value     any       `json:"value"`
	Kind      EventKind `json:"kind"`
}

// Snapshot is the full observable state of one trackable: its scalar
// attributes and its method invocation counts. It is the payload of
// EventTrackableAdded.
type Snapshot struct {
	Attributes map[string]any `json:"attributes"`
	Methods    map[string]int `json:"methods"`
}

// IsScalar reports whether v is an observable value: booleans, integers,
// floats, strings, or nil. Anything else (slices, maps, funcs, structs) may be
// stored on a trackable but is excluded from the notification pipeline.
func IsScalar(v any) bool {
	switch v.(type) {
	case nil, bool, string,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	default:
		return false
	}
}
