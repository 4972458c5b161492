package track

import (
	"sync"
	"time"

	"trackd/pkg/types"
)

// Method is a tracked callable bound to a trackable. Implementations are
// supplied either explicitly via RegisterMethod or reflected from a wrapped
// object's exported methods.
type Method func(args ...any) (any, error)

// Trackable wraps a piece of state and exposes its scalar fields and method
// invocation counts to every mediator it is registered with. Field writes are
// intercepted and routed through the notification rules; method calls are
// counted. A trackable may fan out to more than one mediator.
type Trackable struct {
	mu sync.Mutex

	name  string
	order []string       // attribute insertion order
	attrs map[string]any // scalar and stored-only values

	// accessors write through to a wrapped object's fields; keys present here
	// shadow attrs as the source of truth for reads.
	accessors map[string]fieldAccessor

	lastUpdate  map[string]time.Time
	methodCalls map[string]int
	methods     map[string]Method

	mediators []*Mediator

	interval time.Duration
	now      func() time.Time
}

// New constructs a bare trackable with the given name and default tunables.
func New(name string) *Trackable {
	return NewWithConfig(TrackableConfig{Name: name})
}

// NewWithConfig constructs a Trackable from TrackableConfig.
func NewWithConfig(cfg TrackableConfig) *Trackable {
	name := cfg.Name
	if name == "" {
		name = "trackable"
	}
	return &Trackable{
		name:        name,
		attrs:       make(map[string]any),
		accessors:   make(map[string]fieldAccessor),
		lastUpdate:  make(map[string]time.Time),
		methodCalls: make(map[string]int),
		methods:     make(map[string]Method),
		interval:    cfg.interval(),
		now:         time.Now,
	}
}

// Name returns the current name. After Register it is the collision-resolved
// registry key.
func (t *Trackable) Name() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.name
}

// Set stores value under key and notifies subscribed mediators with a
// set_attribute event, subject to the notification rules: reserved keys
// (leading underscore or "name"), non-scalar values, and writes inside the
// per-key update interval are stored without notification.
func (t *Trackable) Set(key string, value any) error {
	return t.set(key, value, false)
}

// SetSilent stores value under key without ever notifying observers.
func (t *Trackable) SetSilent(key string, value any) error {
	return t.set(key, value, true)
}

func (t *Trackable) set(key string, value any, silent bool) error {
	t.mu.Lock()
	if err := t.storeLocked(key, value); err != nil {
		t.mu.Unlock()
		return err
	}
	if silent {
		t.mu.Unlock()
		return nil
	}
	if reservedKey(key) || !types.IsScalar(value) {
		t.mu.Unlock()
		suppressedTotal.WithLabelValues(suppressReasonFiltered).Inc()
		return nil
	}
	now := t.now()
	if now.Sub(t.lastUpdate[key]) < t.interval {
		t.mu.Unlock()
		suppressedTotal.WithLabelValues(suppressReasonRateLimit).Inc()
		return nil
	}
	t.lastUpdate[key] = now
	name := t.name
	meds := append([]*Mediator(nil), t.mediators...)
	t.mu.Unlock()

	logDebug().Str("trackable", name).Str("key", key).Interface("value", value).
		Msg("set attribute")
	for _, m := range meds {
		m.dispatch(types.Event{Trackable: name, Key: key, Value: value, Kind: types.EventSetAttribute})
	}
	return nil
}

// storeLocked writes the value into the backing store: a reflected accessor
// when the key is bound to a wrapped field, the attribute map otherwise.
func (t *Trackable) storeLocked(key string, value any) error {
	if acc, ok := t.accessors[key]; ok {
		return acc.set(value)
	}
	if _, ok := t.attrs[key]; !ok {
		t.order = append(t.order, key)
	}
	t.attrs[key] = value
	return nil
}

// Declare pre-declares nil-valued attributes, silently. Used to stand up a
// shared variable tracker whose keys are known before any writes happen.
func (t *Trackable) Declare(keys ...string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, key := range keys {
		if _, ok := t.attrs[key]; ok {
			continue
		}
		t.order = append(t.order, key)
		t.attrs[key] = nil
	}
}

// Field returns the current value of one attribute.
func (t *Trackable) Field(key string) (any, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fieldLocked(key)
}

func (t *Trackable) fieldLocked(key string) (any, bool) {
	if acc, ok := t.accessors[key]; ok {
		return acc.get(), true
	}
	v, ok := t.attrs[key]
	return v, ok
}

// Fields returns a copy of the current attribute snapshot, reserved keys
// excluded. Wrapped fields are read live from the underlying object.
func (t *Trackable) Fields() map[string]any {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fieldsLocked()
}

func (t *Trackable) fieldsLocked() map[string]any {
	out := make(map[string]any, len(t.order))
	for _, key := range t.order {
		if reservedKey(key) {
			continue
		}
		v, _ := t.fieldLocked(key)
		out[key] = v
	}
	return out
}

// FieldNames returns the attribute keys in declaration order.
func (t *Trackable) FieldNames() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, 0, len(t.order))
	for _, key := range t.order {
		if !reservedKey(key) {
			out = append(out, key)
		}
	}
	return out
}

// Methods returns a copy of the per-method invocation counts.
func (t *Trackable) Methods() map[string]int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.methodsLocked()
}

func (t *Trackable) methodsLocked() map[string]int {
	out := make(map[string]int, len(t.methodCalls))
	for k, v := range t.methodCalls {
		out[k] = v
	}
	return out
}

// RegisterMethod binds fn under the given method name, making it invokable
// and call-counted. Registering a method does not emit an event.
func (t *Trackable) RegisterMethod(name string, fn Method) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.methodCalls[name]; !ok {
		t.methodCalls[name] = 0
	}
	t.methods[name] = fn
}

// Invoke calls the named bound method, increments its invocation count, and
// emits a method_call event whose value is the argument list.
func (t *Trackable) Invoke(method string, args ...any) (any, error) {
	return t.invoke(method, args, false)
}

// InvokeSilent calls the named method and counts it without emitting an event.
func (t *Trackable) InvokeSilent(method string, args ...any) (any, error) {
	return t.invoke(method, args, true)
}

func (t *Trackable) invoke(method string, args []any, silent bool) (any, error) {
	t.mu.Lock()
	fn, ok := t.methods[method]
	if !ok {
		name := t.name
		t.mu.Unlock()
		return nil, ErrNoSuchMethod(name, method)
	}
	t.methodCalls[method]++
	name := t.name
	meds := append([]*Mediator(nil), t.mediators...)
	t.mu.Unlock()

	logDebug().Str("trackable", name).Str("method", method).Int("args", len(args)).
		Msg("invoke method")
	if !silent {
		payload := append([]any(nil), args...)
		for _, m := range meds {
			m.dispatch(types.Event{Trackable: name, Key: method, Value: payload, Kind: types.EventMethodCall})
		}
	}
	return fn(args...)
}

// Snapshot returns the full observable state: attributes plus method counts.
func (t *Trackable) Snapshot() types.Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return types.Snapshot{Attributes: t.fieldsLocked(), Methods: t.methodsLocked()}
}

// attachLocked subscribes a mediator. Caller must hold t.mu; the mediator's
// lock is already held (lock order is always Mediator before Trackable).
func (t *Trackable) attachLocked(m *Mediator) {
	t.mediators = append(t.mediators, m)
}

// detach unsubscribes a mediator; no further events reach it.
func (t *Trackable) detach(m *Mediator) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, cur := range t.mediators {
		if cur == m {
			t.mediators = append(t.mediators[:i], t.mediators[i+1:]...)
			return
		}
	}
}

// renameLocked assigns the collision-resolved registry name. Caller holds
// both the mediator lock and t.mu, in that order.
func (t *Trackable) renameLocked(name string) {
	t.name = name
}

func (t *Trackable) lock()   { t.mu.Lock() }
func (t *Trackable) unlock() { t.mu.Unlock() }

// reservedKey reports whether a key is internal and excluded from
// notification and snapshots.
func reservedKey(key string) bool {
	return key == "" || key == "name" || key[0] == '_'
}
