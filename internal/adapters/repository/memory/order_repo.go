package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/developia-II/marketplace-backend/internal/core/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderRepository implements domain.OrderRepository on a Store.
type OrderRepository struct {
	s *Store
}

func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	now := r.s.now()
	order.CreatedAt = now
	order.UpdatedAt = now
	r.s.orders[order.ID] = cloneOrder(*order)
	return nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	o, ok := r.s.orders[id]
	if !ok {
		return nil, domain.NewNotFoundError("order", id.Hex())
	}
	o = cloneOrder(o)
	return &o, nil
}

func (r *OrderRepository) SetFlags(ctx context.Context, id primitive.ObjectID, flags domain.OrderFlags) (*domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o, ok := r.s.orders[id]
	if !ok {
		return nil, domain.NewNotFoundError("order", id.Hex())
	}
	if flags.Paid != nil && !(flags.Paid.IfUnset && o.IsPaid) {
		o.IsPaid = flags.Paid.Value
		o.PaidAt = flags.Paid.At
	}
	if flags.Delivered != nil && !(flags.Delivered.IfUnset && o.IsDelivered) {
		o.IsDelivered = flags.Delivered.Value
		o.DeliveredAt = flags.Delivered.At
	}
	if flags.PaymentResult != nil {
		pr := *flags.PaymentResult
		o.PaymentResult = &pr
	}
	o.UpdatedAt = r.s.now()
	r.s.orders[id] = o

	out := cloneOrder(o)
	return &out, nil
}

func (r *OrderRepository) matching(filters []domain.OrderFilter) ([]domain.Order, error) {
	out := []domain.Order{}
	for _, o := range r.s.orders {
		ok, err := matchOrder(&o, filters)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, cloneOrder(o))
		}
	}
	return out, nil
}

func (r *OrderRepository) List(ctx context.Context, filters []domain.OrderFilter, page domain.Page) ([]domain.Order, int64, error) {
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

func (r *OrderRepository) Count(ctx context.Context, filters ...domain.OrderFilter) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	all, err := r.matching(filters)
	if err != nil {
		return 0, err
	}
	return int64(len(all)), nil
}

func (r *OrderRepository) Revenue(ctx context.Context, filters ...domain.OrderFilter) (float64, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	all, err := r.matching(filters)
	if err != nil {
		return 0, 0, err
	}
	var total float64
	for _, o := range all {
		total += o.TotalPrice
	}
	return total, int64(len(all)), nil
}

func (r *OrderRepository) Sales(ctx context.Context, period domain.SalesPeriod, filters ...domain.OrderFilter) ([]domain.SalesBucket, error) {
	if !period.Valid() {
		return nil, fmt.Errorf("unsupported sales period %q", period)
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	all, err := r.matching(filters)
	if err != nil {
		return nil, err
	}

	byPeriod := map[string]*domain.SalesBucket{}
	for _, o := range all {
		key := o.CreatedAt.UTC().Format(period.Layout())
		b, ok := byPeriod[key]
		if !ok {
			b = &domain.SalesBucket{Period: key}
			byPeriod[key] = b
		}
		b.Total += o.TotalPrice
		b.Orders++
	}

	buckets := make([]domain.SalesBucket, 0, len(byPeriod))
	for _, b := range byPeriod {
		buckets = append(buckets, *b)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Period < buckets[j].Period })
	return buckets, nil
}
