package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/developia-II/marketplace-backend/internal/core/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// OrderRepository implements domain.OrderRepository using MongoDB.
type OrderRepository struct {
	collection *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{collection: db.Collection(ordersCollection)}
}

func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, order)
	return translate(err, "order", order.ID.Hex())
}

func (r *OrderRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Order, error) {
	var order domain.Order
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&order); err != nil {
		return nil, translate(err, "order", id.Hex())
	}
	return &order, nil
}

// SetFlags applies one fulfillment transition as a single-document update. A change
// marked IfUnset is written by its own update filtered on the flag being false.
func (r *OrderRepository) SetFlags(ctx context.Context, id primitive.ObjectID, flags domain.OrderFlags) (*domain.Order, error) {
	set := bson.M{"updatedAt": time.Now()}
	unset := bson.M{}

	flag := func(change *domain.FlagChange, field, atField string) error {
		if change == nil {
			return nil
		}
		if change.IfUnset {
			return r.setFlagOnce(ctx, id, change, field, atField)
		}
		set[field] = change.Value
		if change.At != nil {
			set[atField] = change.At
		} else {
			unset[atField] = ""
		}
		return nil
	}
	if err := flag(flags.Paid, "isPaid", "paidAt"); err != nil {
		return nil, err
	}
	if err := flag(flags.Delivered, "isDelivered", "deliveredAt"); err != nil {
		return nil, err
	}
	if flags.PaymentResult != nil {
		set["paymentResult"] = flags.PaymentResult
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var order domain.Order
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&order); err != nil {
		return nil, translate(err, "order", id.Hex())
	}
	return &order, nil
}

// setFlagOnce writes the flag only when it is still false. Losing that race is not an
// error: the stored timestamp stays.
func (r *OrderRepository) setFlagOnce(ctx context.Context, id primitive.ObjectID, change *domain.FlagChange, field, atField string) error {
	set := bson.M{field: change.Value, "updatedAt": time.Now()}
	if change.At != nil {
		set[atField] = change.At
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id, field: false}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("set %s: %w", field, err)
	}
	return nil
}

func (r *OrderRepository) List(ctx context.Context, filters []domain.OrderFilter, page domain.Page) ([]domain.Order, int64, error) {
	filter, err := orderFilterDoc(filters)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSkip(page.Skip()).
		SetLimit(page.Limit()).
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find orders: %w", err)
	}
	defer cursor.Close(ctx)

	orders := []domain.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, 0, err
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *OrderRepository) Count(ctx context.Context, filters ...domain.OrderFilter) (int64, error) {
	filter, err := orderFilterDoc(filters)
	if err != nil {
		return 0, err
	}
	return r.collection.CountDocuments(ctx, filter)
}

func (r *OrderRepository) Revenue(ctx context.Context, filters ...domain.OrderFilter) (float64, int64, error) {
	filter, err := orderFilterDoc(filters)
	if err != nil {
		return 0, 0, err
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$group", Value: bson.M{
			"_id":    nil,
			"total":  bson.M{"$sum": "$totalPrice"},
			"orders": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Total  float64 `bson:"total"`
		Orders int64   `bson:"orders"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, 0, err
	}
	if len(rows) == 0 {
		return 0, 0, nil
	}
	return rows[0].Total, rows[0].Orders, nil
}

var periodFormats = map[domain.SalesPeriod]string{
	domain.PeriodDay:   "%Y-%m-%d",
	domain.PeriodMonth: "%Y-%m",
}

func (r *OrderRepository) Sales(ctx context.Context, period domain.SalesPeriod, filters ...domain.OrderFilter) ([]domain.SalesBucket, error) {
	format, ok := periodFormats[period]
	if !ok {
		return nil, fmt.Errorf("unsupported sales period %q", period)
	}
	filter, err := orderFilterDoc(filters)
	if err != nil {
		return nil, err
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$group", Value: bson.M{
			"_id":    bson.M{"$dateToString": bson.M{"format": format, "date": "$createdAt"}},
			"total":  bson.M{"$sum": "$totalPrice"},
			"orders": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	buckets := []domain.SalesBucket{}
	if err := cursor.All(ctx, &buckets); err != nil {
		return nil, err
	}
	return buckets, nil
}
