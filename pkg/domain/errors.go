package domain

import (
	"errors"
	"fmt"
)

// Kind classifies a unit operation failure.
type Kind string

const (
	KindInvalidArgument      Kind = "invalid_argument"      // Malformed configuration
	KindInvalidOperation     Kind = "invalid_operation"     // Lifecycle call out of order
	KindFailedInitialization Kind = "failed_initialization" // Initialize without a thermodynamic model
	KindCalculationFailed    Kind = "calculation_failed"    // Numerical or model failure during minimization
)

// Error is the single error type raised by the unit operation.
// Callers discriminate on Kind rather than on the message.
type Error struct {
	Kind    Kind
	Message string
	// Err is the underlying failure when a foreign error was re-tagged.
	Err error
}

// NewError creates a domain error of the given kind.
func NewError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap re-tags a foreign error with kind, preserving its message.
func Wrap(kind Kind, err error) *Error {
	return &Error{Kind: kind, Message: err.Error(), Err: err}
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports a match against a bare sentinel of the same kind,
// so errors.Is(err, ErrInvalidArgument) works for any message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Message == "" && t.Err == nil {
		return e.Kind == t.Kind
	}
	return e == t
}

// Sentinels for errors.Is checks.
var (
	ErrInvalidArgument      = &Error{Kind: KindInvalidArgument}
	ErrInvalidOperation     = &Error{Kind: KindInvalidOperation}
	ErrFailedInitialization = &Error{Kind: KindFailedInitialization}
	ErrCalculationFailed    = &Error{Kind: KindCalculationFailed}
)

// KindOf returns the kind of the first domain error in err's chain, or "".
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// IsDomain reports whether err is (or wraps) a domain error.
func IsDomain(err error) bool {
	return KindOf(err) != ""
}

// ErrRunNotFound is returned when a run ID cannot be found in the store.
var ErrRunNotFound = errors.New("run not found")

// ErrUnitNotFound is returned when a unit ID is not registered with a manager.
var ErrUnitNotFound = errors.New("unit not found")
