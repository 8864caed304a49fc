// Package apperrors defines the closed error taxonomy shared by the OAuth
// flows, marketplace clients and the sync pipeline. Every failure that
// crosses a package boundary is one of these kinds so callers can decide
// between "re-authenticate", "retry later" and "give up" without string
// matching.
package apperrors

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindConfig    Kind = "config"    // missing/invalid platform configuration, not retryable
	KindAuth      Kind = "auth"      // nonce mismatch, missing/expired/rejected credentials, never auto-retried
	KindAPI       Kind = "api"       // non-2xx marketplace response that is not an auth failure
	KindTransport Kind = "transport" // network-level failure, eligible for bounded retry
	KindParse     Kind = "parse"     // malformed XML/JSON payload, fatal for that request
)

// Error carries the kind plus whatever the marketplace gave us back.
type Error struct {
	Kind    Kind
	Message string
	Status  int    // HTTP status for KindAPI
	Body    string // raw response body when one was read
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Well-known auth failures. Compared with errors.Is, so they must be
// returned (or wrapped) rather than recreated.
var (
	ErrNotAuthenticated = &Error{Kind: KindAuth, Message: "not authenticated"}
	ErrTokenExpired     = &Error{Kind: KindAuth, Message: "token expired"}
	ErrNonceMismatch    = &Error{Kind: KindAuth, Message: "nonce verification failed"}
)

func Config(msg string, args ...interface{}) *Error {
	return &Error{Kind: KindConfig, Message: fmt.Sprintf(msg, args...)}
}

func Auth(msg string, args ...interface{}) *Error {
	return &Error{Kind: KindAuth, Message: fmt.Sprintf(msg, args...)}
}

// Unauthorized marks a stored credential the marketplace rejected outright.
// It is an auth failure, not an API failure: callers invalidate the
// credential instead of retrying the request.
func Unauthorized(status int, body, msg string) *Error {
	return &Error{Kind: KindAuth, Message: msg, Status: status, Body: body}
}

func AuthWrap(err error, msg string) *Error {
	return &Error{Kind: KindAuth, Message: msg, Err: err}
}

func API(status int, body string, msg string) *Error {
	return &Error{Kind: KindAPI, Message: msg, Status: status, Body: body}
}

func Transport(err error, msg string) *Error {
	return &Error{Kind: KindTransport, Message: msg, Err: err}
}

func Parse(err error, msg string) *Error {
	return &Error{Kind: KindParse, Message: msg, Err: err}
}

// KindOf returns the kind of err, or "" when err is not from this taxonomy.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsAuth reports whether err is an authentication failure, i.e. the caller
// should restart the OAuth flow rather than retry.
func IsAuth(err error) bool {
	return KindOf(err) == KindAuth
}
