package store

import (
	"errors"
	"fmt"
)

// Kind classifies store failures.
type Kind string

const (
	KindConfiguration    Kind = "configuration"     // store is not set up to perform the operation
	KindInitialization   Kind = "initialization"    // backing store failed to open
	KindPersistence      Kind = "persistence"       // write to the backing store failed
	KindFetch            Kind = "fetch"             // read from the backing store failed
	KindNoData           Kind = "no_data"           // query matched nothing that can be returned
	KindUnauthorized     Kind = "unauthorized"      // access was not granted
	KindInvalidParameter Kind = "invalid_parameter" // caller supplied a bad argument
)

// Error is a classified store failure. Errors compare equal under errors.Is
// when their kinds match, so the package sentinels can be used as targets.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s error: %v", e.Op, e.Kind, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s error", e.Op, e.Kind)
	case e.Err != nil:
		return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
	default:
		return string(e.Kind) + " error"
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports kind equality with another *Error.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is matching.
var (
	ErrConfiguration    = &Error{Kind: KindConfiguration}
	ErrInitialization   = &Error{Kind: KindInitialization}
	ErrPersistence      = &Error{Kind: KindPersistence}
	ErrFetch            = &Error{Kind: KindFetch}
	ErrNoData           = &Error{Kind: KindNoData}
	ErrUnauthorized     = &Error{Kind: KindUnauthorized}
	ErrInvalidParameter = &Error{Kind: KindInvalidParameter}
)

// ConfigurationError returns a configuration error for op.
func ConfigurationError(op string) error {
	return &Error{Kind: KindConfiguration, Op: op}
}

// KindOf returns the kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
