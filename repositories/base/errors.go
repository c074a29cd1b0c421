package base

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ===================================================================
// CUSTOM ERROR TYPES
// ===================================================================

// RepositoryError wraps an unexpected storage failure with its context.
type RepositoryError struct {
	Operation string
	Table     string
	Cause     error
}

func (e *RepositoryError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to %s %s: %v", e.Operation, e.Table, e.Cause)
	}
	return fmt.Sprintf("failed to %s %s", e.Operation, e.Table)
}

func (e *RepositoryError) Unwrap() error {
	return e.Cause
}

// EntityNotFoundError signals that a referenced row does not exist.
type EntityNotFoundError struct {
	Table      string
	Identifier string
}

func (e *EntityNotFoundError) Error() string {
	return fmt.Sprintf("%s with %s not found", e.Table, e.Identifier)
}

// DuplicateEntityError signals a uniqueness violation.
type DuplicateEntityError struct {
	Table string
	Field string
	Value string
}

func (e *DuplicateEntityError) Error() string {
	return fmt.Sprintf("%s with %s '%s' already exists", e.Table, e.Field, e.Value)
}

// ValidationError signals a check-constraint style violation detected
// before the row reaches the database.
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field %s (value: %s): %s", e.Field, e.Value, e.Message)
}

// ===================================================================
// ERROR CONSTRUCTORS
// ===================================================================

func NewRepositoryError(operation, table string, cause error) *RepositoryError {
	return &RepositoryError{Operation: operation, Table: table, Cause: cause}
}

func NewEntityNotFoundError(table, identifier string) *EntityNotFoundError {
	return &EntityNotFoundError{Table: table, Identifier: identifier}
}

func NewDuplicateEntityError(table, field, value string) *DuplicateEntityError {
	return &DuplicateEntityError{Table: table, Field: field, Value: value}
}

func NewValidationError(field, value, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// ===================================================================
// ERROR HANDLING HELPERS
// ===================================================================

// HandleDBError translates GORM errors into the repository taxonomy.
func HandleDBError(operation, table, identifier string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NewEntityNotFoundError(table, identifier)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return NewDuplicateEntityError(table, "key", identifier)
	}
	return NewRepositoryError(operation, table, err)
}

// WrapDBError wraps a database error with operation context.
func WrapDBError(operation, table string, err error) error {
	if err == nil {
		return nil
	}
	return NewRepositoryError(operation, table, err)
}

// IsEntityNotFound checks if error is an entity not found error.
func IsEntityNotFound(err error) bool {
	var target *EntityNotFoundError
	return errors.As(err, &target)
}

// IsDuplicateEntity checks if error is a duplicate entity error.
func IsDuplicateEntity(err error) bool {
	var target *DuplicateEntityError
	return errors.As(err, &target)
}

// IsValidationError checks if error is a validation error.
func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}
