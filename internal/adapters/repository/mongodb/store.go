// Package mongodb implements the domain repositories on MongoDB. Writes that touch two
// collections run inside a session transaction, which requires a replica set deployment.
package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/developia-II/marketplace-backend/internal/core/domain"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	usersCollection     = "users"
	suppliersCollection = "suppliers"
	productsCollection  = "products"
	ordersCollection    = "orders"
)

// Store bundles the repositories that share one database handle.
type Store struct {
	Users     *UserRepository
	Suppliers *SupplierRepository
	Products  *ProductRepository
	Orders    *OrderRepository
}

func NewStore(db *mongo.Database) *Store {
	return &Store{
		Users:     NewUserRepository(db),
		Suppliers: NewSupplierRepository(db),
		Products:  NewProductRepository(db),
		Orders:    NewOrderRepository(db),
	}
}

// withTransaction runs fn inside a session transaction. The driver retries fn on transient
// transaction errors.
func withTransaction(ctx context.Context, db *mongo.Database, fn func(sessCtx mongo.SessionContext) (interface{}, error)) (interface{}, error) {
	session, err := db.Client().StartSession()
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	return session.WithTransaction(ctx, fn)
}

// translate maps driver errors onto domain errors.
func translate(err error, entity, id string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return domain.NewNotFoundError(entity, id)
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%s: %w", entity, domain.ErrDuplicateKey)
	}
	return err
}
