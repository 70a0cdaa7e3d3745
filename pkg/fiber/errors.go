package fiber

import (
	"errors"
	"fmt"

	ferrors "github.com/vango-dev/fiber/internal/errors"
)

// Sentinel errors, matched by code with errors.Is.
var (
	ErrHookOutsideRender = ferrors.New("F001")
	ErrTooManyHooks      = ferrors.New("F002")
	ErrTooFewHooks       = ferrors.New("F003")
	ErrDuplicateKey      = ferrors.New("F004")
	ErrUnknownVariant    = ferrors.New("F005")
	ErrRenderFailed      = ferrors.New("F006")
	ErrUnmountedUpdate   = ferrors.New("F007")
	ErrHookOrderChanged  = ferrors.New("F010")
)

// IsInvariantViolation reports whether err is a broken render invariant.
// Those are never retried automatically.
func IsInvariantViolation(err error) bool {
	return errors.Is(err, ErrHookOutsideRender) ||
		errors.Is(err, ErrTooManyHooks) ||
		errors.Is(err, ErrTooFewHooks) ||
		errors.Is(err, ErrHookOrderChanged)
}

// renderPanicError converts a value recovered from a unit of work. Coded
// errors pass through untouched, anything else is wrapped as F006.
func renderPanicError(rec any, f *Fiber) error {
	cause, ok := rec.(error)
	if !ok {
		cause = fmt.Errorf("%v", rec)
	}
	e := ferrors.FromError(cause, "F006")
	if e.Wrapped == cause {
		e.WithSubject("%s", f.Name())
	}
	return e
}
