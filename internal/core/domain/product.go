package domain

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

func (s ApprovalStatus) Valid() bool {
	switch s {
	case ApprovalPending, ApprovalApproved, ApprovalRejected:
		return true
	}
	return false
}

type AddedBy string

const (
	AddedBySupplier AddedBy = "supplier"
	AddedByAdmin    AddedBy = "admin"
)

type Product struct {
	ID       primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	Slug     string              `json:"slug" bson:"slug"`
	Supplier *primitive.ObjectID `json:"supplier,omitempty" bson:"supplier,omitempty"`
	AddedBy  AddedBy             `json:"addedBy" bson:"addedBy"`

	// Basic Info
	Name        string `json:"name" bson:"name"`
	Description string `json:"description" bson:"description"`
	Brand       string `json:"brand" bson:"brand"`
	Category    string `json:"category" bson:"category"`
	SubCategory string `json:"subCategory,omitempty" bson:"subCategory,omitempty"`
	Image       string `json:"image" bson:"image"`

	// Pricing & Inventory
	Price         float64 `json:"price" bson:"price"`
	DiscountPrice float64 `json:"discountPrice,omitempty" bson:"discountPrice,omitempty"`
	CountInStock  int     `json:"countInStock" bson:"countInStock"`
	DeliveryTime  string  `json:"deliveryTime,omitempty" bson:"deliveryTime,omitempty"`

	// Variants
	Sizes  []string `json:"sizes,omitempty" bson:"sizes,omitempty"`
	Colors []string `json:"colors,omitempty" bson:"colors,omitempty"`

	IsFeatured bool `json:"isFeatured" bson:"isFeatured"`

	// Review
	ApprovalStatus ApprovalStatus `json:"approvalStatus,omitempty" bson:"approvalStatus,omitempty"`
	ApprovalNote   string         `json:"approvalNote,omitempty" bson:"approvalNote,omitempty"`

	Rating     float64 `json:"rating" bson:"rating"`
	NumReviews int     `json:"numReviews" bson:"numReviews"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
	Version   int       `json:"version" bson:"version"`
}

// IsPubliclyListable is the catalog visibility predicate: admin catalog items are always
// visible, supplier items only once approved.
func (p *Product) IsPubliclyListable() bool {
	return p.Supplier == nil || p.ApprovalStatus == ApprovalApproved
}

// OwnedBy reports whether the product belongs to the given supplier.
func (p *Product) OwnedBy(supplierID primitive.ObjectID) bool {
	return p.Supplier != nil && *p.Supplier == supplierID
}

// HasDiscount reports whether the discount price should be shown as a discount.
func (p *Product) HasDiscount() bool {
	return HasDiscount(p.Price, p.DiscountPrice)
}

// ProductInput is the payload of a new product. Supplier submissions ignore IsFeatured.
type ProductInput struct {
	Name          string   `json:"name" validate:"required,max=200"`
	Description   string   `json:"description" validate:"required"`
	Brand         string   `json:"brand" validate:"max=100"`
	Category      string   `json:"category" validate:"required,max=100"`
	SubCategory   string   `json:"subCategory" validate:"max=100"`
	Image         string   `json:"image" validate:"required"`
	Price         float64  `json:"price" validate:"gt=0,cents"`
	DiscountPrice float64  `json:"discountPrice" validate:"gte=0,cents"`
	CountInStock  int      `json:"countInStock" validate:"gte=0"`
	DeliveryTime  string   `json:"deliveryTime" validate:"max=100"`
	Sizes         []string `json:"sizes"`
	Colors        []string `json:"colors"`
	IsFeatured    bool     `json:"isFeatured"`
}

// ProductUpdate carries a partial edit. Nil fields are left untouched.
type ProductUpdate struct {
	Name          *string   `json:"name" validate:"omitempty,min=1,max=200"`
	Description   *string   `json:"description" validate:"omitempty,min=1"`
	Brand         *string   `json:"brand" validate:"omitempty,max=100"`
	Category      *string   `json:"category" validate:"omitempty,min=1,max=100"`
	SubCategory   *string   `json:"subCategory" validate:"omitempty,max=100"`
	Image         *string   `json:"image" validate:"omitempty,min=1"`
	Price         *float64  `json:"price" validate:"omitempty,gt=0,cents"`
	DiscountPrice *float64  `json:"discountPrice" validate:"omitempty,gte=0,cents"`
	CountInStock  *int      `json:"countInStock" validate:"omitempty,gte=0"`
	DeliveryTime  *string   `json:"deliveryTime" validate:"omitempty,max=100"`
	Sizes         *[]string `json:"sizes"`
	Colors        *[]string `json:"colors"`
	IsFeatured    *bool     `json:"isFeatured"`
}

// ReviewDecision is an admin's verdict on a supplier product.
type ReviewDecision struct {
	Decision ApprovalStatus `json:"decision" validate:"required,oneof=approved rejected"`
	Note     string         `json:"note" validate:"max=1000"`
}

// ApprovalCounts tallies a supplier's products by approval status.
type ApprovalCounts struct {
	Approved int64 `json:"approvedProducts"`
	Pending  int64 `json:"pendingProducts"`
	Rejected int64 `json:"rejectedProducts"`
}

func (c ApprovalCounts) Total() int64 { return c.Approved + c.Pending + c.Rejected }

// ProductRepository defines the persistence port for products.
type ProductRepository interface {
	// Create inserts the product. When it belongs to a supplier, the supplier's
	// totalProducts is incremented in the same transaction.
	Create(ctx context.Context, product *Product) error

	// GetByID returns a NotFoundError when no product matches.
	GetByID(ctx context.Context, id primitive.ObjectID) (*Product, error)

	// GetBySlug returns a NotFoundError when no product matches.
	GetBySlug(ctx context.Context, slug string) (*Product, error)

	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]Product, error)

	SlugExists(ctx context.Context, slug string) (bool, error)

	// Update replaces the product when the stored version still equals product.Version and
	// bumps the version, or returns ErrVersionMismatch.
	Update(ctx context.Context, product *Product) error

	// Delete removes the product. When it belongs to a supplier, the supplier's
	// totalProducts is decremented in the same transaction; a supplier that no longer
	// exists is skipped.
	Delete(ctx context.Context, product *Product) error

	// List returns one page, newest first, plus the unpaged total.
	List(ctx context.Context, filters []ProductFilter, page Page) ([]Product, int64, error)

	Count(ctx context.Context, filters ...ProductFilter) (int64, error)

	ApprovalCounts(ctx context.Context, supplierID primitive.ObjectID) (ApprovalCounts, error)
}
