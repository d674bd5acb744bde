// Package memory implements the domain repositories in process memory. It backs the
// service tests and STORE_DRIVER=memory local runs. One mutex guards all four collections,
// so the two-write operations are atomic here too.
package memory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/developia-II/marketplace-backend/internal/core/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Store struct {
	mu        sync.RWMutex
	users     map[primitive.ObjectID]domain.User
	suppliers map[primitive.ObjectID]domain.Supplier
	products  map[primitive.ObjectID]domain.Product
	orders    map[primitive.ObjectID]domain.Order

	// now is swapped by tests that need deterministic timestamps.
	now func() time.Time

	Users     *UserRepository
	Suppliers *SupplierRepository
	Products  *ProductRepository
	Orders    *OrderRepository
}

func NewStore() *Store {
	s := &Store{
		users:     map[primitive.ObjectID]domain.User{},
		suppliers: map[primitive.ObjectID]domain.Supplier{},
		products:  map[primitive.ObjectID]domain.Product{},
		orders:    map[primitive.ObjectID]domain.Order{},
		now:       time.Now,
	}
	s.Users = &UserRepository{s: s}
	s.Suppliers = &SupplierRepository{s: s}
	s.Products = &ProductRepository{s: s}
	s.Orders = &OrderRepository{s: s}
	return s
}

// SetClock replaces the time source used for createdAt/updatedAt stamps.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// DropSupplier removes a supplier record without touching its products, the way an
// out-of-band cleanup would.
func (s *Store) DropSupplier(id primitive.ObjectID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.suppliers, id)
}

// newestFirst orders by createdAt descending, then by id descending.
func newestFirst(aCreated, bCreated time.Time, aID, bID primitive.ObjectID) bool {
	if !aCreated.Equal(bCreated) {
		return aCreated.After(bCreated)
	}
	return aID.Hex() > bID.Hex()
}

// paginate slices one page out of an already sorted list.
func paginate[T any](items []T, page domain.Page) []T {
	skip := page.Skip()
	if skip < 0 || skip >= int64(len(items)) {
		return []T{}
	}
	start := int(skip)
	end := len(items)
	if limit := page.Limit(); limit > 0 && limit < int64(end-start) {
		end = start + int(limit)
	}
	return items[start:end]
}

func containsFold(s, term string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(term))
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

func cloneProduct(p domain.Product) domain.Product {
	p.Sizes = cloneStrings(p.Sizes)
	p.Colors = cloneStrings(p.Colors)
	return p
}

func cloneOrder(o domain.Order) domain.Order {
	o.OrderItems = append([]domain.OrderItem(nil), o.OrderItems...)
	if o.PaymentResult != nil {
		pr := *o.PaymentResult
		o.PaymentResult = &pr
	}
	return o
}

func sortProducts(products []domain.Product) {
	sort.Slice(products, func(i, j int) bool {
		return newestFirst(products[i].CreatedAt, products[j].CreatedAt, products[i].ID, products[j].ID)
	})
}
