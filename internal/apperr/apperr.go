// Package apperr defines the typed error returned across the knowledge
// pipeline. Every public operation reports failure through an *Error so
// callers can branch on the Kind instead of probing result fields.
package apperr

import (
	"errors"
	"fmt"
	"runtime/debug"
)

// Kind classifies a failure.
type Kind string

const (
	// KindValidation marks missing or malformed caller input.
	KindValidation Kind = "validation"
	// KindConversion marks a value that could not be converted for comparison.
	KindConversion Kind = "conversion"
	// KindNotFound marks a lookup that matched nothing.
	KindNotFound Kind = "not_found"
	// KindInternal marks an unexpected failure inside the pipeline.
	KindInternal Kind = "internal"
)

// Error is the typed error carried by all pipeline results.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
	case e.Msg != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Msg)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: %s error", e.Op, e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Validation returns a validation error for op.
func Validation(op, msg string) *Error {
	return &Error{Kind: KindValidation, Op: op, Msg: msg}
}

// Conversion returns a conversion error for op wrapping err.
func Conversion(op string, err error) *Error {
	return &Error{Kind: KindConversion, Op: op, Err: err}
}

// NotFound returns a not-found error for op.
func NotFound(op, msg string) *Error {
	return &Error{Kind: KindNotFound, Op: op, Msg: msg}
}

// Internal wraps err as an internal error for op.
func Internal(op string, err error) *Error {
	return &Error{Kind: KindInternal, Op: op, Err: err}
}

// KindOf reports the Kind of err. Errors that are not *Error are internal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// PanicError carries a recovered panic value and the stack at recovery.
type PanicError struct {
	Value any
	Stack []byte
}

func (p *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", p.Value)
}

// Recover converts a panic in the calling function into an internal error
// stored in *errp. It must be deferred directly:
//
//	defer apperr.Recover("assessment.Process", &err)
func Recover(op string, errp *error) {
	if r := recover(); r != nil {
		*errp = Internal(op, &PanicError{Value: r, Stack: debug.Stack()})
	}
}
