package repositories

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/sweetshop/app/models"
	"github.com/shashiranjanraj/sweetshop/pkg/metrics"
)

// MongoPurchaseRepository is the MongoDB PurchaseLedger.
type MongoPurchaseRepository struct {
	col *mongo.Collection
}

func NewMongoPurchaseRepository(db *mongo.Database) *MongoPurchaseRepository {
	return &MongoPurchaseRepository{col: db.Collection(purchasesCollection)}
}

func (r *MongoPurchaseRepository) Append(ctx context.Context, p *models.Purchase) error {
	defer metrics.ObserveDBQuery("insert", time.Now())

	if p.ID == "" {
		p.ID = models.NewID()
	}
	if _, err := r.col.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("purchases: append: %w", translateMongo(err))
	}
	return nil
}

func (r *MongoPurchaseRepository) QueryByUser(ctx context.Context, userID string) ([]models.Purchase, error) {
	return r.find(ctx, bson.M{"user_id": userID})
}

func (r *MongoPurchaseRepository) QueryAll(ctx context.Context) ([]models.Purchase, error) {
	return r.find(ctx, bson.M{})
}

func (r *MongoPurchaseRepository) find(ctx context.Context, filter bson.M) ([]models.Purchase, error) {
	defer metrics.ObserveDBQuery("select", time.Now())

	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("purchases: query: %w", translateMongo(err))
	}
	out := []models.Purchase{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("purchases: decode: %w", err)
	}
	return out, nil
}

func (r *MongoPurchaseRepository) AggregateByDateRange(ctx context.Context, start, end *time.Time) (models.Aggregate, error) {
	defer metrics.ObserveDBQuery("select", time.Now())

	pipeline := mongo.Pipeline{}
	if start != nil || end != nil {
		window := bson.M{}
		if start != nil {
			window["$gte"] = start.UTC()
		}
		if end != nil {
			window["$lt"] = end.UTC()
		}
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.M{"timestamp": window}}})
	}
	pipeline = append(pipeline, bson.D{{Key: "$group", Value: bson.M{
		"_id":    nil,
		"sales":  bson.M{"$sum": "$total"},
		"orders": bson.M{"$sum": 1},
		"items":  bson.M{"$sum": "$quantity"},
	}}})

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return models.Aggregate{}, fmt.Errorf("purchases: aggregate: %w", translateMongo(err))
	}
	var rows []models.Aggregate
	if err := cur.All(ctx, &rows); err != nil {
		return models.Aggregate{}, fmt.Errorf("purchases: decode aggregate: %w", err)
	}
	if len(rows) == 0 {
		return models.Aggregate{}, nil
	}
	return rows[0], nil
}

func (r *MongoPurchaseRepository) DistinctCustomers(ctx context.Context) (int64, error) {
	defer metrics.ObserveDBQuery("select", time.Now())

	ids, err := r.col.Distinct(ctx, "user_id", bson.M{})
	if err != nil {
		return 0, fmt.Errorf("purchases: distinct customers: %w", translateMongo(err))
	}
	return int64(len(ids)), nil
}
