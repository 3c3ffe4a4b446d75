package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/diewo77/crm-documents/validation"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Error kinds. Match them with errors.Is.
var (
	ErrValidation = errors.New("validation_failed")
	ErrNotFound   = errors.New("not_found")
	ErrConflict   = errors.New("number_conflict")
	ErrDependency = errors.New("dependency_failure")
)

// Error is the structured error returned by services.
type Error struct {
	Kind    error
	Message string
	Fields  validation.Violations
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%v: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%v: %s", e.Kind, e.Message)
}

func (e *Error) Is(target error) bool { return target == e.Kind }

func (e *Error) Unwrap() error { return e.Err }

// Fields returns the field violations carried by err, if any.
func Fields(err error) validation.Violations {
	var e *Error
	if errors.As(err, &e) {
		return e.Fields
	}
	return nil
}

func invalid(v validation.Violations) error {
	return &Error{Kind: ErrValidation, Message: "invalid input", Fields: v}
}

func notFound(what string, id uint) error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf("%s %d not found", what, id)}
}

// classify turns a storage error into the service taxonomy. Errors already
// classified pass through.
func classify(op string, err error) error {
	var e *Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &e):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &Error{Kind: ErrNotFound, Message: op, Err: err}
	case isUniqueViolation(err):
		return &Error{Kind: ErrConflict, Message: op, Err: err}
	default:
		return &Error{Kind: ErrDependency, Message: op, Err: err}
	}
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
