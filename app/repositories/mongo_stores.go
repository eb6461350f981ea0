package repositories

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection     = "users"
	sweetsCollection    = "sweets"
	purchasesCollection = "purchase_history"
)

// MongoUnitOfWork runs Do without a session transaction: writes made before
// a failure inside Do stay applied.
type MongoUnitOfWork struct{}

func (MongoUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (MongoUnitOfWork) Atomic() bool { return false }

// NewMongoStores wires every store to db.
func NewMongoStores(db *mongo.Database) Stores {
	return Stores{
		Users:     NewMongoUserRepository(db),
		Sweets:    NewMongoSweetRepository(db),
		Purchases: NewMongoPurchaseRepository(db),
		Tx:        MongoUnitOfWork{},
	}
}

// EnsureMongoIndexes creates the unique and lookup indexes the stores rely on.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		sweetsCollection: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "category", Value: 1}}},
		},
		purchasesCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}}},
			{Keys: bson.D{{Key: "timestamp", Value: -1}}},
		},
	}

	for name, idx := range specs {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("mongodb: indexes on %s: %w", name, err)
		}
	}
	return nil
}

func translateMongo(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicate
	}
	return err
}
