package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/developia-II/marketplace-backend/internal/core/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SupplierRepository implements domain.SupplierRepository using MongoDB.
type SupplierRepository struct {
	db         *mongo.Database
	collection *mongo.Collection
}

func NewSupplierRepository(db *mongo.Database) *SupplierRepository {
	return &SupplierRepository{
		db:         db,
		collection: db.Collection(suppliersCollection),
	}
}

// CreateForUser inserts the supplier and promotes its owner to the supplier role.
func (r *SupplierRepository) CreateForUser(ctx context.Context, supplier *domain.Supplier) error {
	now := time.Now()
	supplier.CreatedAt = now
	supplier.UpdatedAt = now
	if supplier.ID.IsZero() {
		supplier.ID = primitive.NewObjectID()
	}

	_, err := withTransaction(ctx, r.db, func(sessCtx mongo.SessionContext) (interface{}, error) {
		if _, err := r.collection.InsertOne(sessCtx, supplier); err != nil {
			return nil, err
		}

		users := r.db.Collection(usersCollection)
		update := bson.M{
			"$set": bson.M{
				"role":      domain.RoleSupplier,
				"supplier":  supplier.ID,
				"updatedAt": now,
			},
		}
		res, err := users.UpdateOne(sessCtx, bson.M{"_id": supplier.UserID}, update)
		if err != nil {
			return nil, err
		}
		if res.MatchedCount == 0 {
			return nil, domain.NewNotFoundError("user", supplier.UserID.Hex())
		}
		return nil, nil
	})
	return translate(err, "supplier", supplier.ID.Hex())
}

func (r *SupplierRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Supplier, error) {
	var supplier domain.Supplier
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&supplier); err != nil {
		return nil, translate(err, "supplier", id.Hex())
	}
	return &supplier, nil
}

// GetByUserID finds the supplier owned by a user.
func (r *SupplierRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.Supplier, error) {
	var supplier domain.Supplier
	err := r.collection.FindOne(ctx, bson.M{"user": userID}).Decode(&supplier)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil // Return nil if not found, let Service decide
		}
		return nil, err
	}
	return &supplier, nil
}

func (r *SupplierRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"businessSlug": slug}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Update writes the mutable fields guarded by the version number. totalProducts, rating
// and numReviews are maintained elsewhere and never overwritten here.
func (r *SupplierRepository) Update(ctx context.Context, supplier *domain.Supplier) error {
	now := time.Now()
	set := bson.M{
		"businessName":   supplier.BusinessName,
		"contactEmail":   supplier.ContactEmail,
		"contactPhone":   supplier.ContactPhone,
		"description":    supplier.Description,
		"logo":           supplier.Logo,
		"address":        supplier.Address,
		"status":         supplier.Status,
		"commissionRate": supplier.CommissionRate,
		"updatedAt":      now,
	}
	unset := bson.M{}
	if supplier.RejectionReason != "" {
		set["rejectionReason"] = supplier.RejectionReason
	} else {
		unset["rejectionReason"] = ""
	}
	if supplier.ApprovedAt != nil {
		set["approvedAt"] = supplier.ApprovedAt
		set["approvedBy"] = supplier.ApprovedBy
	}

	update := bson.M{"$set": set, "$inc": bson.M{"version": 1}}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	filter := bson.M{"_id": supplier.ID, "version": supplier.Version}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return r.missOrConflict(ctx, supplier.ID)
	}

	supplier.Version++
	supplier.UpdatedAt = now
	return nil
}

func (r *SupplierRepository) missOrConflict(ctx context.Context, id primitive.ObjectID) error {
	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NewNotFoundError("supplier", id.Hex())
	}
	return domain.ErrVersionMismatch
}

func (r *SupplierRepository) SetTotalProducts(ctx context.Context, id primitive.ObjectID, total int) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"totalProducts": total, "updatedAt": time.Now()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.NewNotFoundError("supplier", id.Hex())
	}
	return nil
}

func (r *SupplierRepository) List(ctx context.Context, filters []domain.SupplierFilter, page domain.Page) ([]domain.Supplier, int64, error) {
	filter, err := supplierFilterDoc(filters)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSkip(page.Skip()).
		SetLimit(page.Limit()).
		SetSort(bson.M{"createdAt": -1})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find suppliers: %w", err)
	}
	defer cursor.Close(ctx)

	suppliers := []domain.Supplier{}
	if err := cursor.All(ctx, &suppliers); err != nil {
		return nil, 0, err
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return suppliers, total, nil
}

func (r *SupplierRepository) Count(ctx context.Context, filters ...domain.SupplierFilter) (int64, error) {
	filter, err := supplierFilterDoc(filters)
	if err != nil {
		return 0, err
	}
	return r.collection.CountDocuments(ctx, filter)
}
