package repositories

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/sweetshop/app/models"
	"github.com/shashiranjanraj/sweetshop/pkg/metrics"
)

// MongoSweetRepository is the MongoDB SweetStore.
type MongoSweetRepository struct {
	col *mongo.Collection
}

func NewMongoSweetRepository(db *mongo.Database) *MongoSweetRepository {
	return &MongoSweetRepository{col: db.Collection(sweetsCollection)}
}

func (r *MongoSweetRepository) Create(ctx context.Context, sweet *models.Sweet) error {
	defer metrics.ObserveDBQuery("insert", time.Now())

	if sweet.ID == "" {
		sweet.ID = models.NewID()
	}
	now := time.Now().UTC()
	sweet.CreatedAt, sweet.UpdatedAt = now, now

	if _, err := r.col.InsertOne(ctx, sweet); err != nil {
		return fmt.Errorf("sweets: create: %w", translateMongo(err))
	}
	return nil
}

func (r *MongoSweetRepository) FindByID(ctx context.Context, id string) (models.Sweet, error) {
	defer metrics.ObserveDBQuery("select", time.Now())

	var sweet models.Sweet
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&sweet); err != nil {
		return sweet, fmt.Errorf("sweets: find %s: %w", id, translateMongo(err))
	}
	return sweet, nil
}

func (r *MongoSweetRepository) List(ctx context.Context) ([]models.Sweet, error) {
	return r.Search(ctx, models.SweetFilter{})
}

func (r *MongoSweetRepository) Search(ctx context.Context, f models.SweetFilter) ([]models.Sweet, error) {
	defer metrics.ObserveDBQuery("select", time.Now())

	filter := bson.M{}
	if f.Name != "" {
		filter["name"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.Name), Options: "i"}
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		price := bson.M{}
		if f.MinPrice != nil {
			price["$gte"] = *f.MinPrice
		}
		if f.MaxPrice != nil {
			price["$lte"] = *f.MaxPrice
		}
		filter["price"] = price
	}

	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("sweets: search: %w", translateMongo(err))
	}
	sweets := []models.Sweet{}
	if err := cur.All(ctx, &sweets); err != nil {
		return nil, fmt.Errorf("sweets: decode: %w", err)
	}
	return sweets, nil
}

func (r *MongoSweetRepository) Update(ctx context.Context, id string, c models.SweetChanges) (models.Sweet, error) {
	defer metrics.ObserveDBQuery("update", time.Now())

	set := bson.M{"updated_at": time.Now().UTC()}
	if c.Name != nil {
		set["name"] = *c.Name
	}
	if c.Category != nil {
		set["category"] = *c.Category
	}
	if c.Price != nil {
		set["price"] = *c.Price
	}
	if c.ImageURL != nil {
		set["image_url"] = *c.ImageURL
	}

	var sweet models.Sweet
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&sweet)
	if err != nil {
		return sweet, fmt.Errorf("sweets: update %s: %w", id, translateMongo(err))
	}
	return sweet, nil
}

func (r *MongoSweetRepository) Delete(ctx context.Context, id string) error {
	defer metrics.ObserveDBQuery("delete", time.Now())

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("sweets: delete %s: %w", id, translateMongo(err))
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("sweets: delete %s: %w", id, ErrNotFound)
	}
	return nil
}

// AdjustQuantity relies on FindOneAndUpdate matching only documents that
// still hold enough stock, so check and write are one server-side operation.
func (r *MongoSweetRepository) AdjustQuantity(ctx context.Context, id string, delta int) (models.Sweet, error) {
	defer metrics.ObserveDBQuery("update", time.Now())

	var sweet models.Sweet
	err := r.col.FindOneAndUpdate(ctx, adjustFilter(id, delta), adjustUpdate(delta, time.Now()),
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&sweet)
	if err == nil {
		return sweet, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return sweet, fmt.Errorf("sweets: adjust %s: %w", id, translateMongo(err))
	}

	current, err := r.FindByID(ctx, id)
	if err != nil {
		return current, err
	}
	return current, fmt.Errorf("sweets: adjust %s by %d (have %d): %w", id, delta, current.Quantity, ErrInsufficientStock)
}

// adjustFilter matches the sweet only while it holds at least -delta units.
// Increments match on id alone.
func adjustFilter(id string, delta int) bson.M {
	filter := bson.M{"_id": id}
	if delta < 0 {
		filter["quantity"] = bson.M{"$gte": -delta}
	}
	return filter
}

func adjustUpdate(delta int, now time.Time) bson.M {
	return bson.M{
		"$inc": bson.M{"quantity": delta},
		"$set": bson.M{"updated_at": now.UTC()},
	}
}
