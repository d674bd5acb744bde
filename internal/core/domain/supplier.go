package domain

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SupplierStatus string

const (
	SupplierPending   SupplierStatus = "pending"
	SupplierApproved  SupplierStatus = "approved"
	SupplierRejected  SupplierStatus = "rejected"
	SupplierSuspended SupplierStatus = "suspended"
)

// DefaultCommissionRate is the platform cut, in percent, applied to new suppliers.
const DefaultCommissionRate = 15.0

func (s SupplierStatus) Valid() bool {
	switch s {
	case SupplierPending, SupplierApproved, SupplierRejected, SupplierSuspended:
		return true
	}
	return false
}

// supplierTransitions lists the statuses reachable from each status.
// rejected -> pending re-opens an application; the default admin UI never offers it.
var supplierTransitions = map[SupplierStatus][]SupplierStatus{
	SupplierPending:   {SupplierApproved, SupplierRejected},
	SupplierApproved:  {SupplierSuspended},
	SupplierSuspended: {SupplierApproved},
	SupplierRejected:  {SupplierPending},
}

// CanTransition reports whether an admin may move a supplier from one status to another.
func CanTransition(from, to SupplierStatus) bool {
	for _, s := range supplierTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type Address struct {
	Street     string `json:"street" bson:"street"`
	City       string `json:"city" bson:"city"`
	State      string `json:"state,omitempty" bson:"state,omitempty"`
	PostalCode string `json:"postalCode" bson:"postalCode"`
	Country    string `json:"country" bson:"country"`
}

// Supplier is a marketplace vendor account. Only an approved supplier may write products.
type Supplier struct {
	ID     primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID primitive.ObjectID `json:"user" bson:"user"`

	// Business Info
	BusinessName string  `json:"businessName" bson:"businessName"`
	BusinessSlug string  `json:"businessSlug" bson:"businessSlug"`
	ContactEmail string  `json:"contactEmail" bson:"contactEmail"`
	ContactPhone string  `json:"contactPhone" bson:"contactPhone"`
	Description  string  `json:"description,omitempty" bson:"description,omitempty"`
	Logo         string  `json:"logo,omitempty" bson:"logo,omitempty"`
	Address      Address `json:"address" bson:"address"`

	// Verification
	Status          SupplierStatus      `json:"status" bson:"status"`
	RejectionReason string              `json:"rejectionReason,omitempty" bson:"rejectionReason,omitempty"`
	ApprovedAt      *time.Time          `json:"approvedAt,omitempty" bson:"approvedAt,omitempty"`
	ApprovedBy      *primitive.ObjectID `json:"approvedBy,omitempty" bson:"approvedBy,omitempty"`

	// Marketplace
	CommissionRate float64 `json:"commissionRate" bson:"commissionRate"`
	TotalProducts  int     `json:"totalProducts" bson:"totalProducts"`
	Rating         float64 `json:"rating" bson:"rating"`
	NumReviews     int     `json:"numReviews" bson:"numReviews"`

	// Metadata
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
	Version   int       `json:"version" bson:"version"`
}

// CanWrite is the gate every product-mutating operation consults.
func (s *Supplier) CanWrite() bool {
	return s != nil && s.Status == SupplierApproved
}

// WriteDeniedReason explains why CanWrite is false, for the error shown to the supplier.
func (s *Supplier) WriteDeniedReason() string {
	if s == nil {
		return ReasonAccountNotApproved
	}
	switch s.Status {
	case SupplierPending:
		return ReasonAccountPending
	case SupplierRejected:
		return ReasonAccountRejected
	case SupplierSuspended:
		return ReasonAccountSuspended
	}
	return ReasonAccountNotApproved
}

// BusinessInfo is the registration payload for a new supplier.
type BusinessInfo struct {
	BusinessName string  `json:"businessName" validate:"required,max=120"`
	ContactEmail string  `json:"contactEmail" validate:"required,email"`
	ContactPhone string  `json:"contactPhone" validate:"required,min=5,max=32"`
	Description  string  `json:"description" validate:"max=2000"`
	Logo         string  `json:"logo" validate:"omitempty,url"`
	Address      Address `json:"address"`
}

// SupplierProfileUpdate carries the fields a supplier may change on its own record.
// Nil fields are left untouched.
type SupplierProfileUpdate struct {
	ContactEmail *string  `json:"contactEmail" validate:"omitempty,email"`
	ContactPhone *string  `json:"contactPhone" validate:"omitempty,min=5,max=32"`
	Description  *string  `json:"description" validate:"omitempty,max=2000"`
	Logo         *string  `json:"logo" validate:"omitempty,url"`
	Address      *Address `json:"address"`
}

// SupplierRepository defines the persistence port for suppliers.
type SupplierRepository interface {
	// CreateForUser inserts the supplier and switches its owning user to the supplier role
	// as a single unit of work.
	CreateForUser(ctx context.Context, supplier *Supplier) error

	// GetByID returns a NotFoundError when no supplier matches.
	GetByID(ctx context.Context, id primitive.ObjectID) (*Supplier, error)

	// GetByUserID returns nil, nil when the user owns no supplier.
	GetByUserID(ctx context.Context, userID primitive.ObjectID) (*Supplier, error)

	SlugExists(ctx context.Context, slug string) (bool, error)

	// Update writes the mutable fields when the stored version still equals supplier.Version,
	// then bumps the version. totalProducts is never written here.
	Update(ctx context.Context, supplier *Supplier) error

	// SetTotalProducts overwrites the maintained product counter.
	SetTotalProducts(ctx context.Context, id primitive.ObjectID, total int) error

	List(ctx context.Context, filters []SupplierFilter, page Page) ([]Supplier, int64, error)
	Count(ctx context.Context, filters ...SupplierFilter) (int64, error)
}
