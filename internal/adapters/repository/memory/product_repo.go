package memory

import (
	"context"
	"fmt"

	"github.com/developia-II/marketplace-backend/internal/core/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductRepository implements domain.ProductRepository on a Store.
type ProductRepository struct {
	s *Store
}

func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, p := range r.s.products {
		if p.Slug == product.Slug {
			return fmt.Errorf("product: %w", domain.ErrDuplicateKey)
		}
	}

	var supplier domain.Supplier
	if product.Supplier != nil {
		var ok bool
		if supplier, ok = r.s.suppliers[*product.Supplier]; !ok {
			return domain.NewNotFoundError("supplier", product.Supplier.Hex())
		}
	}

	if product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}
	now := r.s.now()
	product.CreatedAt = now
	product.UpdatedAt = now
	r.s.products[product.ID] = cloneProduct(*product)

	if product.Supplier != nil {
		supplier.TotalProducts++
		supplier.UpdatedAt = now
		r.s.suppliers[supplier.ID] = supplier
	}
	return nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.products[id]
	if !ok {
		return nil, domain.NewNotFoundError("product", id.Hex())
	}
	p = cloneProduct(p)
	return &p, nil
}

func (r *ProductRepository) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, p := range r.s.products {
		if p.Slug == slug {
			p = cloneProduct(p)
			return &p, nil
		}
	}
	return nil, domain.NewNotFoundError("product", slug)
}

func (r *ProductRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []domain.Product{}
	seen := map[primitive.ObjectID]bool{}
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if p, ok := r.s.products[id]; ok {
			out = append(out, cloneProduct(p))
		}
	}
	return out, nil
}

func (r *ProductRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, p := range r.s.products {
		if p.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (r *ProductRepository) Update(ctx context.Context, product *domain.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.products[product.ID]
	if !ok {
		return domain.NewNotFoundError("product", product.ID.Hex())
	}
	if stored.Version != product.Version {
		return domain.ErrVersionMismatch
	}

	product.Version++
	product.UpdatedAt = r.s.now()
	product.CreatedAt = stored.CreatedAt
	r.s.products[product.ID] = cloneProduct(*product)
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, product *domain.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.products[product.ID]
	if !ok {
		return domain.NewNotFoundError("product", product.ID.Hex())
	}
	if product.Supplier != nil && !stored.OwnedBy(*product.Supplier) {
		return domain.NewNotFoundError("product", product.ID.Hex())
	}

	if stored.Supplier != nil {
		if supplier, ok := r.s.suppliers[*stored.Supplier]; ok {
			supplier.TotalProducts--
			supplier.UpdatedAt = r.s.now()
			r.s.suppliers[supplier.ID] = supplier
		}
	}
	delete(r.s.products, product.ID)
	return nil
}

func (r *ProductRepository) matching(filters []domain.ProductFilter) ([]domain.Product, error) {
	out := []domain.Product{}
	for _, p := range r.s.products {
		ok, err := matchProduct(&p, filters)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, cloneProduct(p))
		}
	}
	return out, nil
}

func (r *ProductRepository) List(ctx context.Context, filters []domain.ProductFilter, page domain.Page) ([]domain.Product, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	all, err := r.matching(filters)
	if err != nil {
		return nil, 0, err
	}
	sortProducts(all)
	return paginate(all, page), int64(len(all)), nil
}

func (r *ProductRepository) Count(ctx context.Context, filters ...domain.ProductFilter) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	all, err := r.matching(filters)
	if err != nil {
		return 0, err
	}
	return int64(len(all)), nil
}

func (r *ProductRepository) ApprovalCounts(ctx context.Context, supplierID primitive.ObjectID) (domain.ApprovalCounts, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var counts domain.ApprovalCounts
	for _, p := range r.s.products {
		if !p.OwnedBy(supplierID) {
			continue
		}
		switch p.ApprovalStatus {
		case domain.ApprovalApproved:
			counts.Approved++
		case domain.ApprovalPending:
			counts.Pending++
		case domain.ApprovalRejected:
			counts.Rejected++
		}
	}
	return counts, nil
}
