package track

import (
	"regexp"
	"strconv"
	"sync"

	"trackd/pkg/types"
)

// Mediator is the broker: it owns the name-keyed trackable registry and the
// observer list, and is the single synchronization point for registry
// mutation and event fan-out. Events pass through dispatch under one lock, so
// every observer sees the same order and never a half-updated registry.
type Mediator struct {
	mu         sync.Mutex
	trackables map[string]*Trackable
	observers  []*Observer
}

// NewMediator constructs an empty broker.
func NewMediator() *Mediator {
	return &Mediator{trackables: make(map[string]*Trackable)}
}

var trailingDigits = regexp.MustCompile(`(\d+)$`)

// nextName resolves registry collisions: a trailing digit run is incremented,
// otherwise the literal suffix "2" is appended, until the name is free.
// Caller holds m.mu.
func (m *Mediator) nextName(name string) string {
	for {
		if _, taken := m.trackables[name]; !taken {
			return name
		}
		if loc := trailingDigits.FindStringSubmatchIndex(name); loc != nil {
			n, _ := strconv.Atoi(name[loc[2]:loc[3]])
			name = name[:loc[2]] + strconv.Itoa(n+1)
		} else {
			name += "2"
		}
	}
}

// Register inserts a trackable into the registry under a collision-free name
// and subscribes this mediator to its events. The trackable's name is
// rewritten on collision; callers that depend on the requested name must read
// it back. Every current observer receives one trackable_added event carrying
// the full state snapshot before Register returns.
//
// The mediator lock is held for the whole operation and the trackable lock
// for the naming and attach phase, acquired in that fixed order, so no
// registration interleaves with the trackable's own mutation or with fan-out.
func (m *Mediator) Register(t *Trackable) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.lock()

	name := m.nextName(t.name)
	t.renameLocked(name)
	m.trackables[name] = t
	t.attachLocked(m)
	snap := types.Snapshot{Attributes: t.fieldsLocked(), Methods: t.methodsLocked()}
	t.unlock()

	trackablesGauge.Inc()
	logDebug().Str("trackable", name).Int("observers", len(m.observers)).
		Msg("trackable registered")
	m.dispatchLocked(types.Event{Trackable: name, Key: name, Value: snap, Kind: types.EventTrackableAdded})
}

// Unregister removes the trackable from the registry and detaches it; no
// residual events reach this mediator afterward. Observers receive one
// trackable_removed event. Fails with UnknownTrackable when the trackable is
// not in the registry.
func (m *Mediator) Unregister(t *Trackable) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	name := t.Name()
	cur, ok := m.trackables[name]
	if !ok || cur != t {
		return ErrUnknownTrackable(name)
	}
	delete(m.trackables, name)
	trackablesGauge.Dec()
	m.dispatchLocked(types.Event{Trackable: name, Key: name, Kind: types.EventTrackableRemoved})
	t.detach(m)
	return nil
}

// AddObserver subscribes an observer; it receives all subsequent events in
// registration order relative to other observers.
func (m *Mediator) AddObserver(o *Observer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, o)
	observersGauge.Inc()
}

// RemoveObserver unsubscribes an observer. Fails with UnknownObserver when it
// was never added (or already removed).
func (m *Mediator) RemoveObserver(o *Observer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, cur := range m.observers {
		if cur == o {
			m.observers = append(m.observers[:i], m.observers[i+1:]...)
			observersGauge.Dec()
			return nil
		}
	}
	return ErrUnknownObserver()
}

// dispatch routes one event to every observer, serialized under the mediator
// lock. Called by trackables; never holds any trackable lock at this point.
func (m *Mediator) dispatch(ev types.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dispatchLocked(ev)
}

// dispatchLocked fans out in observer-registration order. Each callback is
// isolated so a panicking observer cannot block delivery to the rest.
// Callbacks run with the mediator lock held and must not re-enter this
// mediator.
func (m *Mediator) dispatchLocked(ev types.Event) {
	dispatchedTotal.WithLabelValues(string(ev.Kind)).Inc()
	for _, o := range m.observers {
		notifyObserver(o, ev)
	}
}

func notifyObserver(o *Observer, ev types.Event) {
	defer func() {
		if r := recover(); r != nil {
			logError().Str("trackable", ev.Trackable).Str("key", ev.Key).
				Interface("panic", r).Msg("observer callback panicked")
			callbackPanicsTotal.Inc()
		}
	}()
	o.onEvent(ev)
}

// lookup returns the named trackable or UnknownTrackable.
func (m *Mediator) lookup(name string) (*Trackable, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.trackables[name]
	if !ok {
		return nil, ErrUnknownTrackable(name)
	}
	return t, nil
}

// SetAttribute writes an attribute on the named trackable. The trackable's
// own notification rules still apply, so the write may be stored without an
// event (rate limit, non-scalar value).
func (m *Mediator) SetAttribute(name, key string, value any) error {
	t, err := m.lookup(name)
	if err != nil {
		return err
	}
	return t.Set(key, value)
}

// SetAttributeSilent writes an attribute without notifying any observer.
func (m *Mediator) SetAttributeSilent(name, key string, value any) error {
	t, err := m.lookup(name)
	if err != nil {
		return err
	}
	return t.SetSilent(key, value)
}

// GetAttribute reads one attribute of the named trackable.
func (m *Mediator) GetAttribute(name, key string) (any, error) {
	t, err := m.lookup(name)
	if err != nil {
		return nil, err
	}
	v, ok := t.Field(key)
	if !ok {
		return nil, ErrUnknownAttribute(name, key)
	}
	return v, nil
}

// InvokeMethod invokes a method on the named trackable.
func (m *Mediator) InvokeMethod(name, method string, args ...any) (any, error) {
	t, err := m.lookup(name)
	if err != nil {
		return nil, err
	}
	return t.Invoke(method, args...)
}

// Snapshot returns the full observable state of one registered trackable.
func (m *Mediator) Snapshot(name string) (types.Snapshot, error) {
	t, err := m.lookup(name)
	if err != nil {
		return types.Snapshot{}, err
	}
	return t.Snapshot(), nil
}

// SnapshotAttributes returns every trackable's attribute snapshot, keyed by
// registry name.
func (m *Mediator) SnapshotAttributes() map[string]map[string]any {
	out := make(map[string]map[string]any)
	for name, t := range m.registryCopy() {
		out[name] = t.Fields()
	}
	return out
}

// SnapshotMethods returns every trackable's method counts, keyed by registry
// name.
func (m *Mediator) SnapshotMethods() map[string]map[string]int {
	out := make(map[string]map[string]int)
	for name, t := range m.registryCopy() {
		out[name] = t.Methods()
	}
	return out
}

// registryCopy snapshots the registry under the lock; per-trackable state is
// then read under each trackable's own lock, preserving the global lock order.
func (m *Mediator) registryCopy() map[string]*Trackable {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]*Trackable, len(m.trackables))
	for name, t := range m.trackables {
		out[name] = t
	}
	return out
}
