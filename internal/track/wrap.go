package track

import (
	"fmt"
	"reflect"
	"sync"

	"trackd/pkg/types"
)

// fieldAccessor is a get/set pair routing one wrapped field through the
// trackable's interception layer.
type fieldAccessor struct {
	get func() any
	set func(any) error
}

// Wrap builds a trackable over an existing object without changing its source:
// every exported field of the pointed-to struct becomes an intercepted
// attribute, and every exported method on the pointer becomes a tracked,
// invokable method. obj must be a non-nil pointer to a struct.
//
// Field writes made through Set go through the notification rules and write
// back into the object, so the object's own code keeps seeing its fields.
// Writes the object makes directly to its fields are visible to readers but
// produce no events; route them through Set (or a mediator) to notify.
//
// All accessors and invokers built here share one mutex, so a reflected method
// mutating the struct cannot race a concurrent Fields or Set. Methods that
// mutate the object from outside any tracked invocation are on their own.
func Wrap(obj any, cfg TrackableConfig) (*Trackable, error) {
	rv := reflect.ValueOf(obj)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("track: Wrap wants a non-nil pointer to struct, got %T", obj)
	}
	elem := rv.Elem()
	if cfg.Name == "" {
		cfg.Name = elem.Type().Name()
	}
	t := NewWithConfig(cfg)
	omu := new(sync.Mutex)

	et := elem.Type()
	for i := 0; i < et.NumField(); i++ {
		sf := et.Field(i)
		if !sf.IsExported() {
			continue
		}
		fv := elem.Field(i)
		t.order = append(t.order, sf.Name)
		t.accessors[sf.Name] = makeAccessor(sf.Name, fv, omu)
	}

	pt := rv.Type()
	for i := 0; i < pt.NumMethod(); i++ {
		pm := pt.Method(i)
		t.methods[pm.Name] = makeInvoker(rv.Method(i), omu)
		t.methodCalls[pm.Name] = 0
	}
	return t, nil
}

func makeAccessor(name string, fv reflect.Value, omu *sync.Mutex) fieldAccessor {
	return fieldAccessor{
		get: func() any {
			omu.Lock()
			defer omu.Unlock()
			return fv.Interface()
		},
		set: func(v any) error {
			omu.Lock()
			defer omu.Unlock()
			if v == nil {
				// nil only fits nilable fields
				switch fv.Kind() {
				case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
					fv.Set(reflect.Zero(fv.Type()))
					return nil
				default:
					return ErrUnsupportedValue(name, "nil for non-nilable field")
				}
			}
			nv := reflect.ValueOf(v)
			if nv.Type().AssignableTo(fv.Type()) {
				fv.Set(nv)
				return nil
			}
			if nv.Type().ConvertibleTo(fv.Type()) && convertSafe(nv.Kind(), fv.Kind()) {
				fv.Set(nv.Convert(fv.Type()))
				return nil
			}
			return ErrUnsupportedValue(name, fmt.Sprintf("cannot store %T into %s", v, fv.Type()))
		},
	}
}

// convertSafe limits implicit conversions to numeric widening between
// like kinds, so JSON float64 payloads can land in int/float fields without
// allowing surprises like int->string.
func convertSafe(from, to reflect.Kind) bool {
	return numericKind(from) && numericKind(to)
}

func numericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

// makeInvoker adapts a reflected bound method into a Method. Arguments are
// converted with the same numeric-widening rule as field writes; a trailing
// error return is unwrapped, a single value return is passed through. The
// call itself runs under the wrap mutex so the method body's field writes are
// ordered against accessor reads.
func makeInvoker(mv reflect.Value, omu *sync.Mutex) Method {
	mt := mv.Type()
	return func(args ...any) (any, error) {
		if !mt.IsVariadic() && len(args) != mt.NumIn() {
			return nil, fmt.Errorf("track: method wants %d args, got %d", mt.NumIn(), len(args))
		}
		if mt.IsVariadic() && len(args) < mt.NumIn()-1 {
			return nil, fmt.Errorf("track: method wants at least %d args, got %d", mt.NumIn()-1, len(args))
		}
		in := make([]reflect.Value, len(args))
		for i, a := range args {
			at := mt.In(min(i, mt.NumIn()-1))
			if mt.IsVariadic() && i >= mt.NumIn()-1 {
				at = mt.In(mt.NumIn() - 1).Elem()
			}
			av, err := coerce(a, at)
			if err != nil {
				return nil, err
			}
			in[i] = av
		}
		omu.Lock()
		out := mv.Call(in)
		omu.Unlock()
		return unwrapReturns(out)
	}
}

func coerce(a any, to reflect.Type) (reflect.Value, error) {
	if a == nil {
		return reflect.Zero(to), nil
	}
	av := reflect.ValueOf(a)
	if av.Type().AssignableTo(to) {
		return av, nil
	}
	if av.Type().ConvertibleTo(to) && convertSafe(av.Kind(), to.Kind()) {
		return av.Convert(to), nil
	}
	return reflect.Value{}, fmt.Errorf("track: cannot pass %T as %s", a, to)
}

func unwrapReturns(out []reflect.Value) (any, error) {
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		if err, ok := out[0].Interface().(error); ok {
			return nil, err
		}
		return out[0].Interface(), nil
	default:
		last := out[len(out)-1]
		if err, ok := last.Interface().(error); ok || last.Type() == errType {
			var e error
			if ok {
				e = err
			}
			return out[0].Interface(), e
		}
		return out[0].Interface(), nil
	}
}

var errType = reflect.TypeOf((*error)(nil)).Elem()

// Sync re-reads nothing: wrapped fields are always read live. It exists for
// callers that mutated the object directly and want observers to catch up; it
// notifies every bound field with its current value through the normal rules.
func (t *Trackable) Sync() {
	t.mu.Lock()
	keys := make([]string, 0, len(t.accessors))
	for key := range t.accessors {
		keys = append(keys, key)
	}
	t.mu.Unlock()
	for _, key := range keys {
		if v, ok := t.Field(key); ok && types.IsScalar(v) {
			_ = t.Set(key, v)
		}
	}
}
