package track

import "github.com/rs/zerolog"

// zlog is an optional structured logger. If unset, the package is silent.
var zlog *zerolog.Logger

// SetLogger installs a structured logger used by trackables and mediators for
// debug-level event tracing.
func SetLogger(l zerolog.Logger) { zlog = &l }

func logDebug() *zerolog.Event {
	if zlog == nil {
		return nil
	}
	return zlog.Debug()
}

func logError() *zerolog.Event {
	if zlog == nil {
		return nil
	}
	return zlog.Error()
}
