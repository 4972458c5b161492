package track

import (
	"testing"
	"time"

	"trackd/pkg/types"
)

// newTestTrackable returns a trackable with a manual clock so rate-limit
// behavior is deterministic.
func newTestTrackable(t *testing.T, name string) (*Trackable, *time.Time) {
	t.Helper()
	tr := New(name)
	now := time.Unix(1000, 0)
	tr.now = func() time.Time { return now }
	return tr, &now
}

func newObservedTrackable(t *testing.T, name string) (*Trackable, *time.Time, *eventRecorder) {
	t.Helper()
	tr, clock := newTestTrackable(t, name)
	m := NewMediator()
	rec := &eventRecorder{}
	NewObserver(m, rec.callback())
	m.Register(tr)
	return tr, clock, rec
}

func TestSetStoresAndNotifies(t *testing.T) {
	tr, _, rec := newObservedTrackable(t, "test")
	if err := tr.Set("x", 1); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if v, ok := tr.Field("x"); !ok || v != 1 {
		t.Fatalf("expected x=1 got %v (ok=%v)", v, ok)
	}
	evts := rec.ofKind(types.EventSetAttribute)
	if len(evts) != 1 {
		t.Fatalf("expected 1 set_attribute event, got %d", len(evts))
	}
	if evts[0].Trackable != "test" || evts[0].Key != "x" || evts[0].Value != 1 {
		t.Fatalf("unexpected event %+v", evts[0])
	}
}

func TestRateLimitSuppressesBurst(t *testing.T) {
	tr, clock, rec := newObservedTrackable(t, "test")
	if err := tr.Set("x", 1); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := tr.Set("x", 2); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if evts := rec.ofKind(types.EventSetAttribute); len(evts) != 1 {
		t.Fatalf("expected 1 event inside interval, got %d", len(evts))
	}
	// value is stored even when the notification is suppressed
	if v, _ := tr.Field("x"); v != 2 {
		t.Fatalf("expected stored x=2 got %v", v)
	}
	*clock = clock.Add(defaultUpdateInterval + time.Millisecond)
	if err := tr.Set("x", 3); err != nil {
		t.Fatalf("Set: %v", err)
	}
	evts := rec.ofKind(types.EventSetAttribute)
	if len(evts) != 2 {
		t.Fatalf("expected 2 events after interval, got %d", len(evts))
	}
	if evts[1].Value != 3 {
		t.Fatalf("expected latest value 3, got %v", evts[1].Value)
	}
}

func TestRateLimitIsPerKey(t *testing.T) {
	tr, _, rec := newObservedTrackable(t, "test")
	if err := tr.Set("x", 1); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := tr.Set("y", 1); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if evts := rec.ofKind(types.EventSetAttribute); len(evts) != 2 {
		t.Fatalf("expected one event per key, got %d", len(evts))
	}
}

func TestNonScalarStoredButNeverNotified(t *testing.T) {
	tr, _, rec := newObservedTrackable(t, "test")
	items := []int{1, 2, 3}
	if err := tr.Set("items", items); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if evts := rec.ofKind(types.EventSetAttribute); len(evts) != 0 {
		t.Fatalf("expected no events for list value, got %d", len(evts))
	}
	v, ok := tr.Field("items")
	if !ok {
		t.Fatal("list value was not stored")
	}
	if got := v.([]int); len(got) != 3 {
		t.Fatalf("stored value mangled: %v", got)
	}
	if got := tr.Fields()["items"]; got == nil {
		t.Fatal("list value missing from Fields()")
	}
}

func TestSilentWriteProducesNoEvents(t *testing.T) {
	tr, _, rec := newObservedTrackable(t, "test")
	if err := tr.SetSilent("x", 5); err != nil {
		t.Fatalf("SetSilent: %v", err)
	}
	if v, _ := tr.Field("x"); v != 5 {
		t.Fatalf("expected stored x=5 got %v", v)
	}
	if evts := rec.ofKind(types.EventSetAttribute); len(evts) != 0 {
		t.Fatalf("expected no events for silent write, got %d", len(evts))
	}
	// silent writes do not touch the rate limiter: the next loud write fires
	if err := tr.Set("x", 6); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if evts := rec.ofKind(types.EventSetAttribute); len(evts) != 1 {
		t.Fatalf("expected 1 event after silent write, got %d", len(evts))
	}
}

func TestReservedKeysNeverNotify(t *testing.T) {
	tr, _, rec := newObservedTrackable(t, "test")
	if err := tr.Set("_internal", 1); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := tr.Set("name", "other"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if evts := rec.ofKind(types.EventSetAttribute); len(evts) != 0 {
		t.Fatalf("expected no events for reserved keys, got %d", len(evts))
	}
	if _, ok := tr.Fields()["_internal"]; ok {
		t.Fatal("reserved key leaked into Fields()")
	}
}

func TestDeclarePreSeedsNilAttributes(t *testing.T) {
	tr, _, rec := newObservedTrackable(t, "vars")
	tr.Declare("timer", "timer2")
	fields := tr.Fields()
	for _, key := range []string{"timer", "timer2"} {
		v, ok := fields[key]
		if !ok || v != nil {
			t.Fatalf("expected declared %s=nil got %v (ok=%v)", key, v, ok)
		}
	}
	if evts := rec.ofKind(types.EventSetAttribute); len(evts) != 0 {
		t.Fatalf("Declare must be silent, got %d events", len(evts))
	}
	names := tr.FieldNames()
	if len(names) != 2 || names[0] != "timer" || names[1] != "timer2" {
		t.Fatalf("declaration order lost: %v", names)
	}
}

func TestInvokeCountsAndNotifies(t *testing.T) {
	tr, _, rec := newObservedTrackable(t, "test")
	jumps := 0
	tr.RegisterMethod("jump", func(args ...any) (any, error) {
		jumps++
		return nil, nil
	})
	for i := 0; i < 3; i++ {
		if _, err := tr.Invoke("jump"); err != nil {
			t.Fatalf("Invoke: %v", err)
		}
	}
	if jumps != 3 {
		t.Fatalf("method body ran %d times", jumps)
	}
	if got := tr.Methods()["jump"]; got != 3 {
		t.Fatalf("expected jump count 3, got %d", got)
	}
	if evts := rec.ofKind(types.EventMethodCall); len(evts) != 3 {
		t.Fatalf("expected 3 method_call events, got %d", len(evts))
	}
}

func TestInvokeSilentCountsWithoutEvents(t *testing.T) {
	tr, _, rec := newObservedTrackable(t, "test")
	tr.RegisterMethod("jump", func(args ...any) (any, error) { return nil, nil })
	if _, err := tr.InvokeSilent("jump"); err != nil {
		t.Fatalf("InvokeSilent: %v", err)
	}
	if got := tr.Methods()["jump"]; got != 1 {
		t.Fatalf("expected jump count 1, got %d", got)
	}
	if evts := rec.ofKind(types.EventMethodCall); len(evts) != 0 {
		t.Fatalf("expected no events, got %d", len(evts))
	}
}

func TestInvokeUnknownMethod(t *testing.T) {
	tr, _, _ := newObservedTrackable(t, "test")
	_, err := tr.Invoke("fly")
	if err == nil || !IsNoSuchMethod(err) {
		t.Fatalf("expected NoSuchMethod, got %v", err)
	}
	if got := tr.Methods()["fly"]; got != 0 {
		t.Fatalf("missing method must not be counted, got %d", got)
	}
}

func TestInvokeArgsArriveInEvent(t *testing.T) {
	tr, _, rec := newObservedTrackable(t, "test")
	tr.RegisterMethod("push", func(args ...any) (any, error) { return len(args), nil })
	res, err := tr.Invoke("push", 1.5, "east")
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if res != 2 {
		t.Fatalf("expected result 2, got %v", res)
	}
	evts := rec.ofKind(types.EventMethodCall)
	if len(evts) != 1 {
		t.Fatalf("expected 1 event, got %d", len(evts))
	}
	args := evts[0].Value.([]any)
	if len(args) != 2 || args[0] != 1.5 || args[1] != "east" {
		t.Fatalf("unexpected event args %v", args)
	}
}

func TestConfigDefaultInterval(t *testing.T) {
	tr := NewWithConfig(TrackableConfig{Name: "t"})
	if tr.interval != defaultUpdateInterval {
		t.Fatalf("expected default interval %v, got %v", defaultUpdateInterval, tr.interval)
	}
	tr = NewWithConfig(TrackableConfig{Name: "t", UpdateInterval: time.Second})
	if tr.interval != time.Second {
		t.Fatalf("expected interval 1s, got %v", tr.interval)
	}
}

func TestEmptyNameGetsDefault(t *testing.T) {
	tr := New("")
	if tr.Name() == "" {
		t.Fatal("name must never be empty")
	}
}
