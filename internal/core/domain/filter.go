package domain

import (
	"math"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Query filters are closed sets of tagged variants. Callers compose a slice of them and
// repositories AND them together; an adapter translates each variant with a type switch
// and rejects variants it does not know.

// ProductFilter is implemented by the product filter variants below.
type ProductFilter interface{ isProductFilter() }

type (
	// ProductVisible keeps only products that may appear in the public catalog.
	ProductVisible struct{}
	// ProductBySupplier keeps products owned by one supplier.
	ProductBySupplier struct{ SupplierID primitive.ObjectID }
	// ProductByApproval keeps supplier products with the given approval status.
	ProductByApproval struct{ Status ApprovalStatus }
	// ProductBySearch matches the name case-insensitively.
	ProductBySearch struct{ Term string }
	// ProductByCategory matches the category exactly.
	ProductByCategory struct{ Category string }
	// ProductFeatured keeps products flagged as featured by an admin.
	ProductFeatured struct{}
)

func (ProductVisible) isProductFilter()    {}
func (ProductBySupplier) isProductFilter() {}
func (ProductByApproval) isProductFilter() {}
func (ProductBySearch) isProductFilter()   {}
func (ProductByCategory) isProductFilter() {}
func (ProductFeatured) isProductFilter()   {}

// OrderFilter is implemented by the order filter variants below.
type OrderFilter interface{ isOrderFilter() }

type (
	// OrderActive: not yet paid or not yet delivered.
	OrderActive struct{}
	// OrderPaidUndelivered: paid and awaiting delivery.
	OrderPaidUndelivered struct{}
	// OrderDelivered: delivered, whatever the paid flag says.
	OrderDelivered struct{}
	// OrderByUser keeps orders placed by one user.
	OrderByUser struct{ UserID primitive.ObjectID }
	// OrderBySupplier keeps orders with at least one item from the supplier.
	OrderBySupplier struct{ SupplierID primitive.ObjectID }
)

func (OrderActive) isOrderFilter()          {}
func (OrderPaidUndelivered) isOrderFilter() {}
func (OrderDelivered) isOrderFilter()       {}
func (OrderByUser) isOrderFilter()          {}
func (OrderBySupplier) isOrderFilter()      {}

// SupplierFilter is implemented by the supplier filter variants below.
type SupplierFilter interface{ isSupplierFilter() }

type (
	SupplierByStatus struct{ Status SupplierStatus }
	SupplierBySearch struct{ Term string }
)

func (SupplierByStatus) isSupplierFilter() {}
func (SupplierBySearch) isSupplierFilter() {}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Page is a 1-based offset page request.
type Page struct {
	Number int
	Size   int
}

// NewPage clamps page number and size into their valid ranges.
func NewPage(number, size int) Page {
	if number < 1 {
		number = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	if number > math.MaxInt32/size {
		number = math.MaxInt32 / size
	}
	return Page{Number: number, Size: size}
}

func (p Page) Skip() int64 {
	if p.Number < 1 || p.Size < 1 {
		return 0
	}
	return int64(p.Number-1) * int64(p.Size)
}

func (p Page) Limit() int64 { return int64(p.Size) }

// Pages returns how many pages of this size hold total items.
func (p Page) Pages(total int64) int {
	if total == 0 || p.Size == 0 {
		return 0
	}
	return int((total + int64(p.Size) - 1) / int64(p.Size))
}
