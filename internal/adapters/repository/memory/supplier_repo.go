package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/developia-II/marketplace-backend/internal/core/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SupplierRepository implements domain.SupplierRepository on a Store.
type SupplierRepository struct {
	s *Store
}

func (r *SupplierRepository) CreateForUser(ctx context.Context, supplier *domain.Supplier) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user, ok := r.s.users[supplier.UserID]
	if !ok {
		return domain.NewNotFoundError("user", supplier.UserID.Hex())
	}
	for _, existing := range r.s.suppliers {
		if existing.UserID == supplier.UserID || existing.BusinessSlug == supplier.BusinessSlug {
			return fmt.Errorf("supplier: %w", domain.ErrDuplicateKey)
		}
	}

	if supplier.ID.IsZero() {
		supplier.ID = primitive.NewObjectID()
	}
	now := r.s.now()
	supplier.CreatedAt = now
	supplier.UpdatedAt = now
	r.s.suppliers[supplier.ID] = *supplier

	id := supplier.ID
	user.Role = domain.RoleSupplier
	user.Supplier = &id
	user.UpdatedAt = now
	r.s.users[user.ID] = user
	return nil
}

func (r *SupplierRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Supplier, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	s, ok := r.s.suppliers[id]
	if !ok {
		return nil, domain.NewNotFoundError("supplier", id.Hex())
	}
	return &s, nil
}

func (r *SupplierRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.Supplier, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, s := range r.s.suppliers {
		if s.UserID == userID {
			return &s, nil
		}
	}
	return nil, nil
}

func (r *SupplierRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, s := range r.s.suppliers {
		if s.BusinessSlug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (r *SupplierRepository) Update(ctx context.Context, supplier *domain.Supplier) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.suppliers[supplier.ID]
	if !ok {
		return domain.NewNotFoundError("supplier", supplier.ID.Hex())
	}
	if stored.Version != supplier.Version {
		return domain.ErrVersionMismatch
	}

	stored.BusinessName = supplier.BusinessName
	stored.ContactEmail = supplier.ContactEmail
	stored.ContactPhone = supplier.ContactPhone
	stored.Description = supplier.Description
	stored.Logo = supplier.Logo
	stored.Address = supplier.Address
	stored.Status = supplier.Status
	stored.CommissionRate = supplier.CommissionRate
	stored.RejectionReason = supplier.RejectionReason
	if supplier.ApprovedAt != nil {
		stored.ApprovedAt = supplier.ApprovedAt
		stored.ApprovedBy = supplier.ApprovedBy
	}
	stored.UpdatedAt = r.s.now()
	stored.Version++
	r.s.suppliers[stored.ID] = stored

	supplier.Version = stored.Version
	supplier.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *SupplierRepository) SetTotalProducts(ctx context.Context, id primitive.ObjectID, total int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	s, ok := r.s.suppliers[id]
	if !ok {
		return domain.NewNotFoundError("supplier", id.Hex())
	}
	s.TotalProducts = total
	s.UpdatedAt = r.s.now()
	r.s.suppliers[id] = s
	return nil
}

func (r *SupplierRepository) matching(filters []domain.SupplierFilter) ([]domain.Supplier, error) {
	out := []domain.Supplier{}
	for _, s := range r.s.suppliers {
		ok, err := matchSupplier(&s, filters)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *SupplierRepository) List(ctx context.Context, filters []domain.SupplierFilter, page domain.Page) ([]domain.Supplier, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	all, err := r.matching(filters)
	if err != nil {
		return nil, 0, err
	}
	sort.Slice(all, func(i, j int) bool {
		return newestFirst(all[i].CreatedAt, all[j].CreatedAt, all[i].ID, all[j].ID)
	})
	return paginate(all, page), int64(len(all)), nil
}

func (r *SupplierRepository) Count(ctx context.Context, filters ...domain.SupplierFilter) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	all, err := r.matching(filters)
	if err != nil {
		return 0, err
	}
	return int64(len(all)), nil
}
