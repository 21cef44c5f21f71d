// Package errors provides the error types used across the report
// generation SDK. Errors carry a Kind so callers can branch on the
// category (validation, not found, busy, ...) without string matching.
package errors

import (
	"errors"
	"fmt"
)

// Error is the base error type for all SDK errors.
type Error struct {
	// Kind indicates the category of error
	Kind Kind

	// Op is the operation being performed (e.g., "generator.Generate")
	Op string

	// Message is a human-readable description
	Message string

	// Err is the underlying error
	Err error
}

// Kind represents the kind/category of error.
type Kind uint8

const (
	KindUnknown Kind = iota

	// KindValidation covers rejected input: an empty scan selection,
	// a malformed catalog entry, inconsistent finding counts.
	KindValidation

	// KindNotFound covers lookups of unknown scan or report IDs.
	KindNotFound

	// KindBusy is returned when a generation is already in flight.
	KindBusy

	// KindGeneration covers faults raised mid-sequence; no report
	// record is committed when one of these surfaces.
	KindGeneration

	// KindRender covers artifact rendering failures.
	KindRender

	// KindStorage covers store read/write failures.
	KindStorage

	// KindInternal covers programming errors and broken invariants.
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindBusy:
		return "busy"
	case KindGeneration:
		return "generation"
	case KindRender:
		return "render"
	case KindStorage:
		return "storage"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Op != "" {
		if e.Err != nil {
			return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
		}
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	if e.Err != nil {
		if e.Message == "" {
			return e.Err.Error()
		}
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether the error matches the target.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// E constructs an Error from the given arguments.
// Arguments can be: Kind, string (Op first, then Message), error.
func E(args ...interface{}) error {
	e := &Error{}
	for _, arg := range args {
		switch a := arg.(type) {
		case Kind:
			e.Kind = a
		case string:
			if e.Op == "" {
				e.Op = a
			} else {
				e.Message = a
			}
		case error:
			e.Err = a
		}
	}
	return e
}

// New creates a new simple error.
func New(message string) error {
	return &Error{Message: message}
}

// Wrap wraps an error with an operation name.
func Wrap(err error, op string) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

// GetKind returns the Kind of the error, or KindUnknown.
func GetKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return GetKind(err) == KindValidation
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	return GetKind(err) == KindNotFound
}

// IsBusy checks if the error is a busy error.
func IsBusy(err error) bool {
	return GetKind(err) == KindBusy
}

// IsGeneration checks if the error is a generation failure.
func IsGeneration(err error) bool {
	return GetKind(err) == KindGeneration
}

// IsStorage checks if the error is a storage failure.
func IsStorage(err error) bool {
	return GetKind(err) == KindStorage
}

// Common errors.
var (
	// ErrNoScanSelected is returned when generation is requested
	// without a scan selection.
	ErrNoScanSelected = &Error{Kind: KindValidation, Message: "no scan selected"}

	// ErrScanNotFound is returned when the configured scan ID does
	// not resolve in the catalog.
	ErrScanNotFound = &Error{Kind: KindNotFound, Message: "scan not found"}

	// ErrReportNotFound is returned for lookups of unknown report IDs.
	ErrReportNotFound = &Error{Kind: KindNotFound, Message: "report not found"}

	// ErrGenerationInFlight is returned when a second generation is
	// started while one is active.
	ErrGenerationInFlight = &Error{Kind: KindBusy, Message: "a report generation is already in progress"}

	// ErrStoreClosed is returned for operations on a closed store.
	ErrStoreClosed = &Error{Kind: KindStorage, Message: "store is closed"}
)
