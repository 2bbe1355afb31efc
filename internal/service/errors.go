package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrPermissionDenied   = errors.New("permission denied")
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrConflict           = errors.New("conflict")
	ErrInvalidStatus      = errors.New("invalid status transition")
	ErrUnavailable        = errors.New("backing store unavailable")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type Kind string

const (
	KindNone         Kind = ""
	KindNotFound     Kind = "not_found"
	KindInvalid      Kind = "invalid"
	KindConflict     Kind = "conflict"
	KindUnavailable  Kind = "unavailable"
	KindForbidden    Kind = "forbidden"
	KindUnauthorized Kind = "unauthorized"
)

// KindOf classifies err. Errors that match no sentinel are treated as Unavailable.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidStatus):
		return KindInvalid
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrPermissionDenied):
		return KindForbidden
	case errors.Is(err, ErrInvalidCredentials):
		return KindUnauthorized
	default:
		return KindUnavailable
	}
}

// Result is the outward success/message/payload shape of every operation.
type Result struct {
	OK      bool        `json:"success"`
	Message string      `json:"message"`
	Value   interface{} `json:"data,omitempty"`
}

func Outcome(value interface{}, message string, err error) Result {
	if err != nil {
		return Result{OK: false, Message: err.Error()}
	}
	return Result{OK: true, Message: message, Value: value}
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func conflict(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

func notFound(what string) error {
	return fmt.Errorf("%s %w", what, ErrNotFound)
}

// storeErr translates a repository error into the service error kinds.
func storeErr(op string, err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return notFound(what)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return conflict("%s already exists", what)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return invalid("%s references a missing record", what)
	default:
		return fmt.Errorf("%w: %s: %v", ErrUnavailable, op, err)
	}
}

// affected turns a zero row count into ErrNotFound.
func affected(op string, rows int64, err error, what string) error {
	if err != nil {
		return storeErr(op, err, what)
	}
	if rows == 0 {
		return notFound(what)
	}
	return nil
}
