package memory

import (
	"fmt"

	"github.com/developia-II/marketplace-backend/internal/core/domain"
)

func matchProduct(p *domain.Product, filters []domain.ProductFilter) (bool, error) {
	for _, f := range filters {
		var ok bool
		switch f := f.(type) {
		case domain.ProductVisible:
			ok = p.IsPubliclyListable()
		case domain.ProductBySupplier:
			ok = p.OwnedBy(f.SupplierID)
		case domain.ProductByApproval:
			ok = p.Supplier != nil && p.ApprovalStatus == f.Status
		case domain.ProductBySearch:
			ok = f.Term == "" || containsFold(p.Name, f.Term)
		case domain.ProductByCategory:
			ok = f.Category == "" || p.Category == f.Category
		case domain.ProductFeatured:
			ok = p.IsFeatured
		default:
			return false, fmt.Errorf("unsupported product filter %T", f)
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func matchOrder(o *domain.Order, filters []domain.OrderFilter) (bool, error) {
	for _, f := range filters {
		var ok bool
		switch f := f.(type) {
		case domain.OrderActive:
			ok = !o.IsPaid || !o.IsDelivered
		case domain.OrderPaidUndelivered:
			ok = o.IsPaid && !o.IsDelivered
		case domain.OrderDelivered:
			ok = o.IsDelivered
		case domain.OrderByUser:
			ok = o.User != nil && *o.User == f.UserID
		case domain.OrderBySupplier:
			ok = o.HasSupplier(f.SupplierID)
		default:
			return false, fmt.Errorf("unsupported order filter %T", f)
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func matchSupplier(s *domain.Supplier, filters []domain.SupplierFilter) (bool, error) {
	for _, f := range filters {
		var ok bool
		switch f := f.(type) {
		case domain.SupplierByStatus:
			ok = s.Status == f.Status
		case domain.SupplierBySearch:
			ok = f.Term == "" || containsFold(s.BusinessName, f.Term)
		default:
			return false, fmt.Errorf("unsupported supplier filter %T", f)
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}
