// Package rec converts panics into errors at command and request boundaries.
package rec

import (
	"fmt"
	"runtime/debug"
)

// recover only stops a panic when called directly by the deferred function,
// so callers pass its result here.
func rec(r any) error {
	if r == nil {
		return nil
	}
	switch t := r.(type) {
	case error:
		return fmt.Errorf("recovered panic: %w\n%s", t, debug.Stack())
	default:
		return fmt.Errorf("recovered panic: %v\n%s", r, debug.Stack())
	}
}

// Error recovers a panic and assigns it to the provided error.
func Error(err *error) {
	if r := rec(recover()); r != nil {
		*err = r
	}
}

// Wrap recovers a panic with the provided format and arguments
// and assigns it to the provided error.
// The recovered panic is appended to the end of the arguments.
// If no panic was recovered, but the error is not nil, it is wrapped
// with the provided format and arguments as well.
func Wrap(err *error, format string, a ...any) {
	if r := rec(recover()); r != nil {
		*err = fmt.Errorf(format, append(a, r)...)
	} else if *err != nil {
		*err = fmt.Errorf(format, append(a, *err)...)
	}
}

// Do runs f and returns its error, or the panic it raised as an error.
func Do(f func() error) (err error) {
	defer Error(&err)
	return f()
}
