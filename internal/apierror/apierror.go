// Package apierror provides the domain error taxonomy and the standardized
// error response structures for the API. All errors returned to clients go
// through this package to ensure consistency and to prevent leaking internal
// details (stack traces, DB errors, etc.).
package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a domain error so callers can decide whether to retry,
// fix their input, or give up.
type Kind int

const (
	// KindValidation — bad input; always rejected before any write.
	KindValidation Kind = iota
	// KindNotFound — referenced customer/invoice/truck does not exist.
	KindNotFound
	// KindConflict — duplicate reconciliation key, invoice-number collision
	// after retries, or a second void/reverse of the same record.
	KindConflict
	// KindConcurrency — a balance-update race exceeded the retry budget;
	// the caller may safely re-issue the operation.
	KindConcurrency
	// KindTransient — storage timeout or connection loss; no partial commit
	// occurred, the caller may safely re-issue the operation.
	KindTransient
)

// Error is the domain error type returned by all engine operations.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

func Concurrency(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConcurrency, Msg: fmt.Sprintf(format, args...)}
}

// Transient wraps a storage-layer failure that left no partial state behind.
func Transient(msg string, err error) *Error {
	return &Error{Kind: KindTransient, Msg: msg, Err: err}
}

// IsKind reports whether err (or anything it wraps) is a domain error of kind k.
func IsKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}

// Retryable reports whether the caller may safely re-issue the same logical
// operation. True only for concurrency and transient failures.
func Retryable(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == KindConcurrency || e.Kind == KindTransient
}

// Status maps a domain error to the HTTP status code handlers respond with.
func Status(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict, KindConcurrency:
		return http.StatusConflict
	case KindTransient:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "validation error", Fields: fields}
}
