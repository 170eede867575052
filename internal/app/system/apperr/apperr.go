// Package apperr defines the error kinds the membership and participation
// engine returns to its callers.
//
// Every failure surfaces as an *Error carrying a Kind. Callers match with
// errors.Is against the Err* sentinels (matching is by kind only) or switch
// on KindOf(err).
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an engine error.
type Kind string

const (
	KindNotFound            Kind = "not_found"
	KindForbidden           Kind = "forbidden"
	KindValidation          Kind = "validation_error"
	KindAlreadyMember       Kind = "already_member"
	KindAlreadyInvited      Kind = "already_invited"
	KindNoActiveInvitation  Kind = "no_active_invitation"
	KindNotAMember          Kind = "not_a_member"
	KindNotInvited          Kind = "not_invited"
	KindCreatorCannotLeave  Kind = "creator_cannot_leave"
	KindCannotRemoveCreator Kind = "cannot_remove_creator"
	KindEventNotFound       Kind = "event_not_found"
	KindConflict            Kind = "conflict"
	KindUnavailable         Kind = "unavailable"
	KindInternal            Kind = "internal"
)

// Error is the concrete error type returned by the engine.
type Error struct {
	Kind Kind
	Op   string // operation, e.g. "InviteToGroup"
	Msg  string
	Err  error // underlying cause, may be nil
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same Kind, so
// errors.Is(err, apperr.ErrForbidden) holds for every forbidden error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrNotFound            = &Error{Kind: KindNotFound}
	ErrForbidden           = &Error{Kind: KindForbidden}
	ErrValidation          = &Error{Kind: KindValidation}
	ErrAlreadyMember       = &Error{Kind: KindAlreadyMember}
	ErrAlreadyInvited      = &Error{Kind: KindAlreadyInvited}
	ErrNoActiveInvitation  = &Error{Kind: KindNoActiveInvitation}
	ErrNotAMember          = &Error{Kind: KindNotAMember}
	ErrNotInvited          = &Error{Kind: KindNotInvited}
	ErrCreatorCannotLeave  = &Error{Kind: KindCreatorCannotLeave}
	ErrCannotRemoveCreator = &Error{Kind: KindCannotRemoveCreator}
	ErrEventNotFound       = &Error{Kind: KindEventNotFound}
	ErrConflict            = &Error{Kind: KindConflict}
	ErrUnavailable         = &Error{Kind: KindUnavailable}
)

// New builds an *Error.
func New(kind Kind, op, msg string) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg}
}

// Newf builds an *Error with a formatted message.
func Newf(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches kind and op to a cause.
func Wrap(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of err, KindInternal for foreign errors and ""
// for nil.
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
