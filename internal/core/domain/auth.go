package domain

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleSupplier Role = "supplier"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleSupplier, RoleAdmin:
		return true
	}
	return false
}

// AuthContext is the resolved identity of the caller. It is passed explicitly into every
// service operation; a nil *AuthContext means an anonymous caller.
type AuthContext struct {
	UserID     primitive.ObjectID
	Email      string
	Role       Role
	SupplierID *primitive.ObjectID
}

func (a *AuthContext) IsAdmin() bool {
	return a != nil && a.Role == RoleAdmin
}

func (a *AuthContext) IsSupplier() bool {
	return a != nil && a.Role == RoleSupplier && a.SupplierID != nil
}

// RequireIdentity fails with AuthorizationError for anonymous callers.
func RequireIdentity(a *AuthContext) error {
	if a == nil || a.UserID.IsZero() {
		return &AuthorizationError{}
	}
	return nil
}

// RequireAdmin fails with AuthorizationError for anonymous callers and ForbiddenError for
// everyone who is not an admin.
func RequireAdmin(a *AuthContext) error {
	if err := RequireIdentity(a); err != nil {
		return err
	}
	if !a.IsAdmin() {
		return NewForbiddenError(ReasonAdminOnly)
	}
	return nil
}

// RequireSupplier returns the caller's supplier id.
func RequireSupplier(a *AuthContext) (primitive.ObjectID, error) {
	if err := RequireIdentity(a); err != nil {
		return primitive.NilObjectID, err
	}
	if !a.IsSupplier() {
		return primitive.NilObjectID, NewForbiddenError(ReasonSupplierOnly)
	}
	return *a.SupplierID, nil
}
