// Package businessflow contains the core business logic for submission and moderation workflows
package businessflow

import (
	"errors"
	"fmt"

	"github.com/culturemap-ua/culturemap-api/models"
)

// Business flow error constants
var (
	// User-related errors
	ErrUserNotFound          = errors.New("user not found")
	ErrAccountInactive       = errors.New("account is inactive")
	ErrIncorrectPassword     = errors.New("incorrect password")
	ErrUsernameAlreadyExists = errors.New("username already exists")
	ErrEmailAlreadyExists    = errors.New("email already exists")

	// Authorization errors
	ErrForbidden = errors.New("not permitted")

	// Object-related errors
	ErrObjectNotFound    = errors.New("cultural object not found")
	ErrInvalidTransition = errors.New("invalid status transition")

	// Tag-related errors
	ErrTagNotFound = errors.New("tag not found")
	ErrTagConflict = errors.New("tag label already exists")

	// Validation errors
	ErrValidation = errors.New("validation failed")

	// Filter errors
	ErrInvalidPage     = errors.New("page must be at least 1")
	ErrInvalidPageSize = errors.New("page size must be between 1 and 100")
)

// ValidationError carries field-level detail for malformed payloads
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError creates a field-level validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// InvalidTransitionError carries the current and requested status of a
// rejected moderation transition
type InvalidTransitionError struct {
	From models.ObjectStatus
	To   models.ObjectStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition object from %s to %s", e.From, e.To)
}

func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// NewInvalidTransitionError creates a transition error for a (from, to) pair
func NewInvalidTransitionError(from, to models.ObjectStatus) *InvalidTransitionError {
	return &InvalidTransitionError{From: from, To: to}
}

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func IsUserNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound)
}

func IsAccountInactive(err error) bool {
	return errors.Is(err, ErrAccountInactive)
}

func IsIncorrectPassword(err error) bool {
	return errors.Is(err, ErrIncorrectPassword)
}

func IsUsernameAlreadyExists(err error) bool {
	return errors.Is(err, ErrUsernameAlreadyExists)
}

func IsEmailAlreadyExists(err error) bool {
	return errors.Is(err, ErrEmailAlreadyExists)
}

func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

func IsObjectNotFound(err error) bool {
	return errors.Is(err, ErrObjectNotFound)
}

func IsInvalidTransition(err error) bool {
	return errors.Is(err, ErrInvalidTransition)
}

func IsTagNotFound(err error) bool {
	return errors.Is(err, ErrTagNotFound)
}

func IsTagConflict(err error) bool {
	return errors.Is(err, ErrTagConflict)
}

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsInvalidPage(err error) bool {
	return errors.Is(err, ErrInvalidPage)
}

func IsInvalidPageSize(err error) bool {
	return errors.Is(err, ErrInvalidPageSize)
}
