package mongodb

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type indexSpec struct {
	collection string
	model      mongo.IndexModel
}

func indexSpecs() []indexSpec {
	return []indexSpec{
		// USERS
		{usersCollection, mongo.IndexModel{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("idx_email").SetUnique(true),
		}},

		// SUPPLIERS
		// One supplier per user.
		{suppliersCollection, mongo.IndexModel{
			Keys:    bson.D{{Key: "user", Value: 1}},
			Options: options.Index().SetName("idx_user").SetUnique(true),
		}},
		{suppliersCollection, mongo.IndexModel{
			Keys:    bson.D{{Key: "businessSlug", Value: 1}},
			Options: options.Index().SetName("idx_business_slug").SetUnique(true),
		}},
		// Admin approval queue
		{suppliersCollection, mongo.IndexModel{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("idx_supplier_status_date"),
		}},

		// PRODUCTS
		{productsCollection, mongo.IndexModel{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetName("idx_slug").SetUnique(true),
		}},
		// Supplier product listing (supplier + createdAt)
		{productsCollection, mongo.IndexModel{
			Keys:    bson.D{{Key: "supplier", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("idx_supplier_products_date"),
		}},
		// Review queue and visibility filter
		{productsCollection, mongo.IndexModel{
			Keys:    bson.D{{Key: "approvalStatus", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("idx_approval_status_date"),
		}},

		// ORDERS
		{ordersCollection, mongo.IndexModel{
			Keys:    bson.D{{Key: "orderItems.supplier", Value: 1}},
			Options: options.Index().SetName("idx_items_supplier"),
		}},
		{ordersCollection, mongo.IndexModel{
			Keys:    bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("idx_user_orders_date"),
		}},
		{ordersCollection, mongo.IndexModel{
			Keys:    bson.D{{Key: "isPaid", Value: 1}, {Key: "isDelivered", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("idx_fulfillment_date"),
		}},
	}
}

// EnsureIndexes creates the indexes the repositories rely on. Existing indexes with the same
// definition are left alone.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for _, spec := range indexSpecs() {
		name, err := db.Collection(spec.collection).Indexes().CreateOne(ctx, spec.model)
		if err != nil {
			return fmt.Errorf("create index on %s: %w", spec.collection, err)
		}
		logrus.WithFields(logrus.Fields{
			"collection": spec.collection,
			"index":      name,
		}).Debug("index ensured")
	}
	return nil
}
