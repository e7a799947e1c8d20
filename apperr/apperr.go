// Package apperr defines the failure taxonomy returned across the resolution layer.
//
// Every typed failure is an *Error with one of four kinds. Callers branch with
// errors.Is against the sentinel values or with KindOf.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure by what the caller can do about it.
type Kind int

const (
	// KindResolve means a downstream provider answered with an error or with nothing where content was expected.
	KindResolve Kind = iota
	// KindAuth covers failed logins, expired sessions and missing credentials.
	KindAuth
	// KindNotFound means a search or catalog lookup produced no match.
	KindNotFound
	// KindTransient is a timeout or I/O failure, eligible for the single retry.
	KindTransient
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not_found"
	case KindTransient:
		return "transient"
	default:
		return "resolve"
	}
}

// Error is a typed failure.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	// Expired marks an auth failure caused by an invalidated session.
	Expired bool
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	} else if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Op != "" {
		return e.Op + ": " + msg
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches sentinels by kind, so errors.Is(err, ErrAuth) holds for any auth failure.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.sentinel() && t.Kind == e.Kind
}

func (e *Error) sentinel() bool {
	return e.Op == "" && e.Message == "" && e.Err == nil && !e.Expired
}

// Sentinels for errors.Is.
var (
	ErrAuth      = &Error{Kind: KindAuth}
	ErrResolve   = &Error{Kind: KindResolve}
	ErrNotFound  = &Error{Kind: KindNotFound}
	ErrTransient = &Error{Kind: KindTransient}
)

func Auth(op, msg string) *Error {
	return &Error{Kind: KindAuth, Op: op, Message: msg}
}

// SessionExpired is the auth failure raised when a protected endpoint rejects the current token.
func SessionExpired(op, msg string) *Error {
	return &Error{Kind: KindAuth, Op: op, Message: msg, Expired: true}
}

func Resolve(op, msg string) *Error {
	return &Error{Kind: KindResolve, Op: op, Message: msg}
}

func NotFound(op, msg string) *Error {
	return &Error{Kind: KindNotFound, Op: op, Message: msg}
}

func Transient(op string, err error) *Error {
	return &Error{Kind: KindTransient, Op: op, Err: err}
}

// Wrap attaches a kind to an arbitrary cause. An *Error cause keeps its own kind.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	var typed *Error
	if errors.As(err, &typed) {
		return err
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf reports the kind of err. Untyped errors count as resolve failures.
func KindOf(err error) Kind {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Kind
	}
	return KindResolve
}

func IsSessionExpired(err error) bool {
	var typed *Error
	return errors.As(err, &typed) && typed.Kind == KindAuth && typed.Expired
}

// IsRetryable reports whether err is worth the single retry.
func IsRetryable(err error) bool {
	return KindOf(err) == KindTransient
}
