package service

import (
	"errors"
	"fmt"

	"github.com/text-materials-api/internal/database"
	"github.com/text-materials-api/internal/models"
	"github.com/text-materials-api/internal/validation"
)

// Kind classifies a service error so the HTTP layer can map it to a status
type Kind string

const (
	KindNotFound          Kind = "not_found"
	KindIllegalTransition Kind = "illegal_transition"
	KindConflict          Kind = "conflict"
	KindValidation        Kind = "validation"
	KindForbidden         Kind = "forbidden"
	KindUnauthorized      Kind = "unauthorized"
	KindNotification      Kind = "notification"
	KindInternal          Kind = "internal"
)

// Error is the single error type returned by services
type Error struct {
	Kind    Kind
	Message string
	Fields  []validation.ValidationError
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err, or KindInternal for foreign errors
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

// IsKind reports whether err is a service error of kind k
func IsKind(err error, k Kind) bool {
	var se *Error
	return errors.As(err, &se) && se.Kind == k
}

func notFound(entity string, id int64) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s with id %d does not exist", entity, id)}
}

func conflict(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func forbidden(format string, args ...interface{}) *Error {
	return &Error{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

func unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

func invalid(errs []validation.ValidationError) *Error {
	return &Error{Kind: KindValidation, Message: validation.Summary(errs), Fields: errs}
}

func invalidf(field, format string, args ...interface{}) *Error {
	msg := fmt.Sprintf(format, args...)
	return &Error{
		Kind:    KindValidation,
		Message: msg,
		Fields:  []validation.ValidationError{{Field: field, Message: msg}},
	}
}

// transition converts a state machine refusal into a service error
func transition(err error) error {
	var te *models.TransitionError
	if errors.As(err, &te) {
		return &Error{Kind: KindIllegalTransition, Message: te.Error(), Err: err}
	}
	return wrap(err, "state transition failed")
}

// wrap rewraps a store error; unique violations become conflicts
func wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	if database.IsUniqueViolation(err) {
		return &Error{Kind: KindConflict, Message: message + ": record already exists", Err: err}
	}
	return &Error{Kind: KindInternal, Message: fmt.Sprintf("%s: %v", message, err), Err: err}
}

// notificationFailed reports a delivery failure after the change was persisted
func notificationFailed(err error) *Error {
	return &Error{Kind: KindNotification, Message: "change saved but notification could not be queued: " + err.Error(), Err: err}
}
