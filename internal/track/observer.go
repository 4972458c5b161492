package track

import (
	"sync"

	"trackd/pkg/types"
)

// Callback receives one event per change the mediator routes to this
// observer, in emission order. Callbacks run while the mediator lock is held:
// they may read captured state but must not call back into the same mediator;
// defer any write-back to outside the callback.
type Callback func(trackable, key string, value any, kind types.EventKind)

// Observer is a subscriber handle bound to exactly one mediator. External
// code issues reads, writes, and invocations through it, keeping the
// mediator's lock as the sole synchronization point, and receives a push
// callback for every routed event.
type Observer struct {
	mediator *Mediator

	cbMu sync.Mutex
	cb   Callback
}

// NewObserver constructs an observer bound to m and subscribes it
// immediately. cb may be nil; events are dropped until SetCallback.
func NewObserver(m *Mediator, cb Callback) *Observer {
	o := &Observer{mediator: m, cb: cb}
	m.AddObserver(o)
	return o
}

// SetCallback replaces the event callback.
func (o *Observer) SetCallback(cb Callback) {
	o.cbMu.Lock()
	o.cb = cb
	o.cbMu.Unlock()
}

// onEvent is called by the mediator during fan-out.
func (o *Observer) onEvent(ev types.Event) {
	o.cbMu.Lock()
	cb := o.cb
	o.cbMu.Unlock()
	if cb != nil {
		cb(ev.Trackable, ev.Key, ev.Value, ev.Kind)
	}
}

// Read returns one attribute of a trackable registered with the bound mediator.
func (o *Observer) Read(trackable, key string) (any, error) {
	return o.mediator.GetAttribute(trackable, key)
}

// Write sets an attribute through the bound mediator; the trackable's normal
// notification rules apply.
func (o *Observer) Write(trackable, key string, value any) error {
	return o.mediator.SetAttribute(trackable, key, value)
}

// WriteSilent sets an attribute without producing any event.
func (o *Observer) WriteSilent(trackable, key string, value any) error {
	return o.mediator.SetAttributeSilent(trackable, key, value)
}

// Invoke calls a method on a trackable through the bound mediator.
func (o *Observer) Invoke(trackable, method string, args ...any) (any, error) {
	return o.mediator.InvokeMethod(trackable, method, args...)
}

// Attributes returns the attribute snapshot of one trackable.
func (o *Observer) Attributes(trackable string) (map[string]any, error) {
	snap, err := o.mediator.Snapshot(trackable)
	if err != nil {
		return nil, err
	}
	return snap.Attributes, nil
}

// AllAttributes returns every trackable's attribute snapshot.
func (o *Observer) AllAttributes() map[string]map[string]any {
	return o.mediator.SnapshotAttributes()
}

// AllMethods returns every trackable's method invocation counts.
func (o *Observer) AllMethods() map[string]map[string]int {
	return o.mediator.SnapshotMethods()
}

// Close unsubscribes the observer from its mediator.
func (o *Observer) Close() error {
	return o.mediator.RemoveObserver(o)
}
