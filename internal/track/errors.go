package track

// unknownTrackableError signals an operation referencing a name absent from a
// mediator's registry, for 404 mapping.
type unknownTrackableError struct{ name string }

func (e unknownTrackableError) Error() string { return "unknown trackable: " + e.name }

// ErrUnknownTrackable constructs an unknownTrackableError.
func ErrUnknownTrackable(name string) error { return unknownTrackableError{name: name} }

// IsUnknownTrackable reports whether err indicates a missing trackable name.
func IsUnknownTrackable(err error) bool {
	_, ok := err.(unknownTrackableError)
	return ok
}

// noSuchMethodError signals an invocation target absent on the wrapped object.
type noSuchMethodError struct {
	trackable string
	method    string
}

func (e noSuchMethodError) Error() string {
	return "trackable " + e.trackable + " has no method " + e.method
}

// ErrNoSuchMethod constructs a noSuchMethodError.
func ErrNoSuchMethod(trackable, method string) error {
	return noSuchMethodError{trackable: trackable, method: method}
}

// IsNoSuchMethod reports whether err indicates a missing method.
func IsNoSuchMethod(err error) bool {
	_, ok := err.(noSuchMethodError)
	return ok
}

// unknownObserverError signals removal of an observer that was never added.
type unknownObserverError struct{}

func (unknownObserverError) Error() string { return "observer not registered" }

// ErrUnknownObserver constructs an unknownObserverError.
func ErrUnknownObserver() error { return unknownObserverError{} }

// IsUnknownObserver reports whether err indicates an unregistered observer.
func IsUnknownObserver(err error) bool {
	_, ok := err.(unknownObserverError)
	return ok
}

// unsupportedValueError signals a write whose value cannot be stored on a
// wrapped field (type mismatch). Non-scalar values on map-backed keys are not
// an error; they are stored and simply excluded from notification.
type unsupportedValueError struct {
	key string
	msg string
}

func (e unsupportedValueError) Error() string { return "unsupported value for " + e.key + ": " + e.msg }

// ErrUnsupportedValue constructs an unsupportedValueError.
func ErrUnsupportedValue(key, msg string) error { return unsupportedValueError{key: key, msg: msg} }

// IsUnsupportedValue reports whether err indicates a value/field type mismatch.
func IsUnsupportedValue(err error) bool {
	_, ok := err.(unsupportedValueError)
	return ok
}

// unknownAttributeError signals a read of an attribute key that does not exist.
type unknownAttributeError struct {
	trackable string
	key       string
}

func (e unknownAttributeError) Error() string {
	return "trackable " + e.trackable + " has no attribute " + e.key
}

// ErrUnknownAttribute constructs an unknownAttributeError.
func ErrUnknownAttribute(trackable, key string) error {
	return unknownAttributeError{trackable: trackable, key: key}
}

// IsUnknownAttribute reports whether err indicates a missing attribute key.
func IsUnknownAttribute(err error) bool {
	_, ok := err.(unknownAttributeError)
	return ok
}
