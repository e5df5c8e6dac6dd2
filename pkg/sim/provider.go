// Package sim defines the named-variable telemetry provider interface and
// the canonical variable names the sampling engine reads through it.
package sim

import "errors"

var (
	// ErrNotConnected is returned when a provider action requires a session.
	ErrNotConnected = errors.New("simulator not connected")
	// ErrUnreachable is returned by Connect when the simulator cannot be reached.
	ErrUnreachable = errors.New("simulator unreachable")
)

// Value is a single raw telemetry reading. Numeric and boolean variables
// populate Num (booleans as 0/1); string variables populate Str.
type Value struct {
	Num float64
	Str string
}

// Num wraps a numeric reading.
func Num(f float64) Value { return Value{Num: f} }

// Str wraps a string reading.
func Str(s string) Value { return Value{Str: s} }

// Bool wraps a boolean reading as 0/1.
func Bool(b bool) Value {
	if b {
		return Value{Num: 1}
	}
	return Value{}
}

// AsBool interprets the value as a boolean flag.
func (v Value) AsBool() bool { return v.Num != 0 }

// Provider is the simulator's variable read interface. Implementations own
// their transport (UDP, shared memory, scripting); the sampling loop is the
// only caller. A failed single-variable read reports ok=false and must not
// tear down the session.
type Provider interface {
	// Connect establishes the provider session. Idempotent when already
	// connected. Returns an error wrapping ErrUnreachable when the
	// simulator is not there.
	Connect() error
	// Read returns the current value of a canonical variable.
	// ok is false when the variable is unavailable this cycle.
	Read(name string) (v Value, ok bool)
	// Connected reports whether a session is established.
	Connected() bool
	// Close tears down the session. Safe to call when not connected.
	Close() error
	// Name identifies the provider for logging.
	Name() string
}
