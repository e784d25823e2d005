// Package apperr defines the error taxonomy shared by the service layer and
// the HTTP boundary. Every error a handler sees is either one of these kinds
// or gets treated as an internal error.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	// KindValidation is missing or malformed input (400).
	KindValidation Kind = iota
	// KindAuth is a request with no authenticated identity (401).
	KindAuth
	// KindNotFound is an entry that is absent or not owned by the caller (404).
	KindNotFound
	// KindAnalysis is an upstream completion call that failed, timed out,
	// or returned unparsable content (502).
	KindAnalysis
	// KindStore is an unreachable or failing persistence layer (500).
	KindStore
)

// Error carries a kind for status mapping, a user-facing message, and an
// optional detail string surfaced in the JSON envelope.
type Error struct {
	Kind    Kind
	Message string
	Details string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func Auth(message string) *Error {
	return &Error{Kind: KindAuth, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func Analysis(message string, err error) *Error {
	e := &Error{Kind: KindAnalysis, Message: message, Err: err}
	if err != nil {
		e.Details = err.Error()
	}
	return e
}

func Store(err error) *Error {
	e := &Error{Kind: KindStore, Message: "Persistence layer error", Err: err}
	if err != nil {
		e.Details = err.Error()
	}
	return e
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// StatusOf maps an error to its HTTP status code. Unknown errors are 500.
func StatusOf(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindAnalysis:
		return http.StatusBadGateway
	case KindStore:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// MessageOf returns the user-facing message for err, or a generic fallback.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return "Internal server error"
}

// DetailsOf returns the detail string for err, if any.
func DetailsOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Details
	}
	return ""
}
