package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Roshansuthar1105/Zunzo/internal/domain"
)

// ConnectMongoDB opens a verified connection to the catalog database.
func ConnectMongoDB(ctx context.Context, uri, database string) (*mongo.Database, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(100).
		SetMinPoolSize(10)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Ping to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client.Database(database), nil
}

type mongoCatalog struct {
	collection *mongo.Collection
}

func NewMongoCatalog(db *mongo.Database) ProductCatalog {
	return &mongoCatalog{
		collection: db.Collection("products"),
	}
}

func (m *mongoCatalog) FindProduct(ctx context.Context, productID string) (*domain.Product, error) {
	var product domain.Product

	filter := bson.M{"_id": productID}
	err := m.collection.FindOne(ctx, filter).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}

	return &product, nil
}

// Reserve performs the read-check-write as a single conditional update: the
// filter admits the document only while stock covers the quantity, so
// concurrent reservations against the same product can never oversell.
func (m *mongoCatalog) Reserve(ctx context.Context, productID string, quantity int) (int, error) {
	if quantity <= 0 {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidQuantity, quantity)
	}

	filter := bson.M{
		"_id":   productID,
		"stock": bson.M{"$gte": quantity},
	}
	update := mongo.Pipeline{
		bson.D{{Key: "$set", Value: bson.M{
			"stock":      bson.M{"$subtract": bson.A{"$stock", quantity}},
			"purchases":  bson.M{"$add": bson.A{"$purchases", quantity}},
			"updated_at": "$$NOW",
		}}},
		bson.D{{Key: "$set", Value: bson.M{
			"status": bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{"$stock", 0}},
				domain.ProductStatusOutOfStock,
				"$status",
			}},
		}}},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	for {
		var updated domain.Product
		err := m.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
		if err == nil {
			return updated.Stock, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return 0, fmt.Errorf("failed to reserve stock: %w", err)
		}

		// The conditional update matched nothing: either the product is
		// missing or its stock ran out. A second read distinguishes the two
		// and supplies the name and available quantity for the error message.
		product, findErr := m.FindProduct(ctx, productID)
		if findErr != nil {
			return 0, findErr
		}
		if product.Stock >= quantity {
			// A restock landed between the failed update and the re-read.
			// Retry rather than report stock the shopper can see is there.
			// Context cancellation bounds the loop.
			continue
		}
		return 0, &InsufficientStockError{
			ProductID:   productID,
			ProductName: product.Name,
			Requested:   quantity,
			Available:   product.Stock,
		}
	}
}

// Release restores stock and reactivates a sold-out product. The purchases
// counter clamps at zero rather than going negative.
func (m *mongoCatalog) Release(ctx context.Context, productID string, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidQuantity, quantity)
	}

	filter := bson.M{"_id": productID}
	update := mongo.Pipeline{
		bson.D{{Key: "$set", Value: bson.M{
			"stock":      bson.M{"$add": bson.A{"$stock", quantity}},
			"purchases":  bson.M{"$max": bson.A{0, bson.M{"$subtract": bson.A{"$purchases", quantity}}}},
			"updated_at": "$$NOW",
		}}},
		bson.D{{Key: "$set", Value: bson.M{
			"status": bson.M{"$cond": bson.A{
				bson.M{"$gt": bson.A{"$stock", 0}},
				domain.ProductStatusActive,
				"$status",
			}},
		}}},
	}

	result, err := m.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to release stock: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrProductNotFound
	}

	return nil
}
