// Package errs holds the error taxonomy shared by the domain packages and the
// command layer. Commands translate these into user-facing replies; anything
// else is reported as an internal failure.
package errs

import (
	"errors"
	"fmt"
)

// ValidationError is a malformed argument. No state was changed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Invalid is shorthand for a *ValidationError.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// NotFoundError is an unknown quest, role, channel or record.
type NotFoundError struct {
	Entity string
	ID     any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %v not found", e.Entity, e.ID)
}

// PermissionError means the issuer, or the bot itself when Bot is set, lacks
// a privilege.
type PermissionError struct {
	Permission string
	Bot        bool
}

func (e *PermissionError) Error() string {
	if e.Bot {
		return fmt.Sprintf("bot is missing permission: %s", e.Permission)
	}
	return fmt.Sprintf("missing permission: %s", e.Permission)
}

// StorageError wraps a durable-store failure. It is the only class that fails
// an XP mutation outright.
type StorageError struct {
	Operation string
	Entity    string
	Err       error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error during %s for %s: %v", e.Operation, e.Entity, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsPermission(err error) bool {
	var target *PermissionError
	return errors.As(err, &target)
}

func IsStorage(err error) bool {
	var target *StorageError
	return errors.As(err, &target)
}
