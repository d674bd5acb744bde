package domain

import (
	"errors"
	"fmt"
)

// Rule messages surfaced to clients so the UI can tell the user what to fix.
const (
	ReasonAccountNotApproved = "account must be approved"
	ReasonAccountPending     = "account pending approval"
	ReasonAccountRejected    = "account rejected"
	ReasonAccountSuspended   = "account suspended"
	ReasonNotYourProduct     = "not your product"
	ReasonAdminOnly          = "admin only"
	ReasonSupplierOnly       = "supplier account required"
	ReasonNotYourOrder       = "not your order"
)

// ValidationError reports malformed or missing input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NotFoundError reports a referenced document that does not exist.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Entity + " not found"
	}
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// ForbiddenError reports an identified actor that lacks permission.
type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string { return e.Reason }

// AuthorizationError reports a call without a usable identity.
type AuthorizationError struct {
	Reason string
}

func (e *AuthorizationError) Error() string {
	if e.Reason == "" {
		return "authentication required"
	}
	return e.Reason
}

// ConflictError is returned when a versioned write lost a race with another writer.
type ConflictError struct {
	Entity string
	ID     string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %s was modified concurrently, reload and retry", e.Entity, e.ID)
}

// ErrVersionMismatch is returned by repositories when the conditional update matched nothing
// because the stored version moved on. Services translate it into a ConflictError.
var ErrVersionMismatch = errors.New("version mismatch")

// ErrDuplicateKey is returned by repositories when a unique index rejects a write.
var ErrDuplicateKey = errors.New("duplicate key")

func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func NewNotFoundError(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

func NewForbiddenError(reason string) error {
	return &ForbiddenError{Reason: reason}
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
