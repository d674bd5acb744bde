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

// ProductRepository implements domain.ProductRepository using MongoDB.
type ProductRepository struct {
	db         *mongo.Database
	collection *mongo.Collection
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{
		db:         db,
		collection: db.Collection(productsCollection),
	}
}

// Create inserts the product and bumps the owning supplier's product count atomically.
func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now
	if product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}

	if product.Supplier == nil {
		_, err := r.collection.InsertOne(ctx, product)
		return translate(err, "product", product.ID.Hex())
	}

	_, err := withTransaction(ctx, r.db, func(sessCtx mongo.SessionContext) (interface{}, error) {
		// 1. Insert product
		if _, err := r.collection.InsertOne(sessCtx, product); err != nil {
			return nil, err
		}

		// 2. Update supplier count
		return nil, r.incTotalProducts(sessCtx, *product.Supplier, 1)
	})
	return translate(err, "product", product.ID.Hex())
}

func (r *ProductRepository) incTotalProducts(ctx context.Context, supplierID primitive.ObjectID, delta int) error {
	suppliers := r.db.Collection(suppliersCollection)
	update := bson.M{
		"$inc": bson.M{"totalProducts": delta},
		"$set": bson.M{"updatedAt": time.Now()},
	}
	res, err := suppliers.UpdateOne(ctx, bson.M{"_id": supplierID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.NewNotFoundError("supplier", supplierID.Hex())
	}
	return nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Product, error) {
	var product domain.Product
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&product); err != nil {
		return nil, translate(err, "product", id.Hex())
	}
	return &product, nil
}

func (r *ProductRepository) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	var product domain.Product
	if err := r.collection.FindOne(ctx, bson.M{"slug": slug}).Decode(&product); err != nil {
		return nil, translate(err, "product", slug)
	}
	return &product, nil
}

func (r *ProductRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Product, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	products := []domain.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *ProductRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"slug": slug}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Update replaces the document only if nobody else wrote it since it was read.
func (r *ProductRepository) Update(ctx context.Context, product *domain.Product) error {
	expected := product.Version
	product.Version = expected + 1
	product.UpdatedAt = time.Now()

	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": product.ID, "version": expected}, product)
	if err != nil {
		product.Version = expected
		return translate(err, "product", product.ID.Hex())
	}
	if res.MatchedCount == 0 {
		product.Version = expected
		n, err := r.collection.CountDocuments(ctx, bson.M{"_id": product.ID})
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.NewNotFoundError("product", product.ID.Hex())
		}
		return domain.ErrVersionMismatch
	}
	return nil
}

// Delete removes the product and decrements the owning supplier's count atomically.
func (r *ProductRepository) Delete(ctx context.Context, product *domain.Product) error {
	if product.Supplier == nil {
		res, err := r.collection.DeleteOne(ctx, bson.M{"_id": product.ID})
		if err != nil {
			return err
		}
		if res.DeletedCount == 0 {
			return domain.NewNotFoundError("product", product.ID.Hex())
		}
		return nil
	}

	_, err := withTransaction(ctx, r.db, func(sessCtx mongo.SessionContext) (interface{}, error) {
		filter := bson.M{"_id": product.ID, "supplier": *product.Supplier}
		res, err := r.collection.DeleteOne(sessCtx, filter)
		if err != nil {
			return nil, err
		}
		if res.DeletedCount == 0 {
			return nil, domain.NewNotFoundError("product", product.ID.Hex())
		}
		// An orphaned product has no counter left to decrement.
		if err := r.incTotalProducts(sessCtx, *product.Supplier, -1); err != nil && !domain.IsNotFound(err) {
			return nil, err
		}
		return nil, nil
	})
	return err
}

func (r *ProductRepository) List(ctx context.Context, filters []domain.ProductFilter, page domain.Page) ([]domain.Product, int64, error) {
	filter, err := productFilterDoc(filters)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSkip(page.Skip()).
		SetLimit(page.Limit()).
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find products: %w", err)
	}
	defer cursor.Close(ctx)

	products := []domain.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, 0, err
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *ProductRepository) Count(ctx context.Context, filters ...domain.ProductFilter) (int64, error) {
	filter, err := productFilterDoc(filters)
	if err != nil {
		return 0, err
	}
	return r.collection.CountDocuments(ctx, filter)
}

func (r *ProductRepository) ApprovalCounts(ctx context.Context, supplierID primitive.ObjectID) (domain.ApprovalCounts, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"supplier": supplierID}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$approvalStatus",
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return domain.ApprovalCounts{}, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status domain.ApprovalStatus `bson:"_id"`
		Count  int64                 `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return domain.ApprovalCounts{}, err
	}

	var counts domain.ApprovalCounts
	for _, row := range rows {
		switch row.Status {
		case domain.ApprovalApproved:
			counts.Approved = row.Count
		case domain.ApprovalPending:
			counts.Pending = row.Count
		case domain.ApprovalRejected:
			counts.Rejected = row.Count
		}
	}
	return counts, nil
}
