// Package errs defines the single error currency of datmig.
//
// Code that talks to the outside world (schema describers, the plan
// store, dialect renderers) translates driver-native failures into
// *Error values carrying an ErrKind. Callers branch on the kind through
// the Is* predicates, or KindOf, and never import pgconn, mysql, or
// minio error types themselves.
//
// The diff engine returns no errors of its own; comparing two
// well-formed snapshots always succeeds.
//
//	snap, err := d.Describe(ctx)
//	if errs.IsConnectionFailed(err) {
//	    // retry with backoff
//	}
package errs

import (
	"errors"
	"fmt"
)

// ErrKind is a coarse classification shared by every backend. Drivers
// map their native codes onto one of these; callers never see the
// native codes.
type ErrKind int

const (
	ErrKindUnknown          ErrKind = iota
	ErrKindNotFound                 // missing row, object, or bucket
	ErrKindConnectionFailed         // backend unreachable
	ErrKindTimeout                  // deadline exceeded or context cancelled
	ErrKindQueryFailed              // SQL or storage operation rejected
	ErrKindInvalidInput             // bad arguments or malformed document
	ErrKindPermissionDenied         // authentication or authorization failure
	ErrKindUnsupported              // the dialect or backend cannot do this
)

var kindNames = [...]string{
	ErrKindUnknown:          "unknown",
	ErrKindNotFound:         "not_found",
	ErrKindConnectionFailed: "connection_failed",
	ErrKindTimeout:          "timeout",
	ErrKindQueryFailed:      "query_failed",
	ErrKindInvalidInput:     "invalid_input",
	ErrKindPermissionDenied: "permission_denied",
	ErrKindUnsupported:      "unsupported",
}

func (k ErrKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return kindNames[ErrKindUnknown]
	}
	return kindNames[k]
}

// Error pairs a kind with a human-readable message and, when wrapping,
// the original driver error. Construct it with New or Wrap; inspect it
// with KindOf or the Is* predicates.
type Error struct {
	kind  ErrKind
	msg   string
	cause error
}

// New returns an error of the given kind with no underlying cause.
func New(kind ErrKind, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

// Wrap returns an error of the given kind that records cause, keeping
// it reachable for errors.Is and errors.As.
func Wrap(kind ErrKind, msg string, cause error) *Error {
	return &Error{kind: kind, msg: msg, cause: cause}
}

// Kind returns the classification this error carries.
func (e *Error) Kind() ErrKind {
	return e.kind
}

func (e *Error) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("[%s] %s", e.kind, e.msg)
	}
	return fmt.Sprintf("[%s] %s: %v", e.kind, e.msg, e.cause)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// KindOf reports the kind of the first *Error in err's chain, or
// ErrKindUnknown when the chain holds none.
func KindOf(err error) ErrKind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return ErrKindUnknown
}

// The Is* predicates accept any error, unwrapping as needed. All of
// them report false for nil and for errors this package did not
// produce.

func IsNotFound(err error) bool {
	return KindOf(err) == ErrKindNotFound
}

func IsConnectionFailed(err error) bool {
	return KindOf(err) == ErrKindConnectionFailed
}

func IsTimeout(err error) bool {
	return KindOf(err) == ErrKindTimeout
}

func IsQueryFailed(err error) bool {
	return KindOf(err) == ErrKindQueryFailed
}

func IsInvalidInput(err error) bool {
	return KindOf(err) == ErrKindInvalidInput
}

func IsPermissionDenied(err error) bool {
	return KindOf(err) == ErrKindPermissionDenied
}

func IsUnsupported(err error) bool {
	return KindOf(err) == ErrKindUnsupported
}
