// Package apperr defines the error taxonomy shared by the request facade, the
// list controllers and the forms. Every failure shown to the operator is one of
// four kinds and is rendered the same way: a dismissible notification.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a failure by where it originated.
type Kind string

const (
	// KindTransport covers connection failures and timeouts.
	KindTransport Kind = "transport"
	// KindBackend covers non-2xx statuses and success:false envelopes.
	KindBackend Kind = "backend"
	// KindDecode covers malformed or unexpected response bodies.
	KindDecode Kind = "decode"
	// KindValidation covers local form checks that never reach the network.
	KindValidation Kind = "validation"
	// KindUnknown is reported for errors outside the taxonomy.
	KindUnknown Kind = "unknown"
)

// Error is a classified failure with an operator-facing message.
type Error struct {
	Kind    Kind
	Message string
	Status  int
	Details []string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if len(e.Details) > 0 {
		msg = msg + ": " + strings.Join(e.Details, "; ")
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Transport wraps a network-level failure.
func Transport(message string, cause error) *Error {
	return &Error{Kind: KindTransport, Message: message, Cause: cause}
}

// Backend reports a rejection from the backend. status is 0 when the HTTP
// exchange succeeded but the envelope carried success:false.
func Backend(message string, status int) *Error {
	return &Error{Kind: KindBackend, Message: message, Status: status}
}

// Decode wraps a response body that could not be interpreted.
func Decode(message string, cause error) *Error {
	return &Error{Kind: KindDecode, Message: message, Cause: cause}
}

// Validation reports one or more local form problems.
func Validation(details ...string) *Error {
	return &Error{Kind: KindValidation, Message: "invalid input", Details: details}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Message returns the text to show the operator for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	if len(e.Details) > 0 {
		return strings.Join(e.Details, "\n")
	}
	if e.Message == "" && e.Cause != nil {
		return e.Cause.Error()
	}
	return e.Message
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
