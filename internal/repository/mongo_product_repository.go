package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"storefront/internal/domain"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	ProductsCollection = "products"
	OrdersCollection   = "orders"
)

// productDocument is the stored shape of a product. The ObjectID is only used
// to keep insertion order; lookups go through the numeric id.
type productDocument struct {
	ObjectID    primitive.ObjectID   `bson:"_id,omitempty"`
	ID          int64                `bson:"id"`
	Name        string               `bson:"name"`
	Description string               `bson:"description"`
	Price       primitive.Decimal128 `bson:"price"`
	Stock       int                  `bson:"stock"`
	ImageURL    string               `bson:"imageUrl"`
}

func newProductDocument(p *domain.Product) (productDocument, error) {
	price, err := toDecimal128(p.Price)
	if err != nil {
		return productDocument{}, err
	}
	return productDocument{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       price,
		Stock:       p.Stock,
		ImageURL:    p.ImageURL,
	}, nil
}

func (d productDocument) toDomain() (*domain.Product, error) {
	price, err := fromDecimal128(d.Price)
	if err != nil {
		return nil, err
	}
	return &domain.Product{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Price:       price,
		Stock:       d.Stock,
		ImageURL:    d.ImageURL,
	}, nil
}

type mongoProductRepository struct {
	coll *mongo.Collection
}

// NewMongoProductRepository creates a ProductRepository over the products
// collection of db
func NewMongoProductRepository(db *mongo.Database) ProductRepository {
	return &mongoProductRepository{coll: db.Collection(ProductsCollection)}
}

func (r *mongoProductRepository) List(ctx context.Context) ([]*domain.Product, error) {
	return r.find(ctx, bson.M{})
}

func (r *mongoProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	var doc productDocument
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", unavailable(err))
	}
	return doc.toDomain()
}

func (r *mongoProductRepository) SearchByName(ctx context.Context, term string) ([]*domain.Product, error) {
	filter := bson.M{"name": primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}}
	return r.find(ctx, filter)
}

func (r *mongoProductRepository) Create(ctx context.Context, product *domain.Product) error {
	doc, err := newProductDocument(product)
	if err != nil {
		return fmt.Errorf("failed to encode product: %w", err)
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrProductAlreadyExists
		}
		return fmt.Errorf("failed to create product: %w", unavailable(err))
	}
	return nil
}

func (r *mongoProductRepository) Update(ctx context.Context, product *domain.Product) error {
	price, err := toDecimal128(product.Price)
	if err != nil {
		return fmt.Errorf("failed to encode product: %w", err)
	}

	update := bson.M{"$set": bson.M{
		"name":        product.Name,
		"description": product.Description,
		"price":       price,
		"stock":       product.Stock,
		"imageUrl":    product.ImageURL,
	}}

	result, err := r.coll.UpdateOne(ctx, bson.M{"id": product.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", unavailable(err))
	}
	if result.MatchedCount == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *mongoProductRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", unavailable(err))
	}
	if result.DeletedCount == 0 {
		return ErrProductNotFound
	}
	return nil
}

// AdjustStock relies on $inc inside FindOneAndUpdate, which is atomic per
// document. The floor is part of the filter, so a rejected update writes
// nothing.
func (r *mongoProductRepository) AdjustStock(ctx context.Context, id int64, delta int, enforceFloor bool) (*domain.Product, error) {
	filter := bson.M{"id": id}
	if enforceFloor && delta < 0 {
		filter["stock"] = bson.M{"$gte": -delta}
	}
	update := bson.M{"$inc": bson.M{"stock": delta}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc productDocument
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err == nil {
		return doc.toDomain()
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to adjust stock: %w", unavailable(err))
	}

	count, err := r.coll.CountDocuments(ctx, bson.M{"id": id})
	if err != nil {
		return nil, fmt.Errorf("failed to check product existence: %w", unavailable(err))
	}
	if count == 0 {
		return nil, ErrProductNotFound
	}
	return nil, ErrInsufficientStock
}

func (r *mongoProductRepository) find(ctx context.Context, filter bson.M) ([]*domain.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", unavailable(err))
	}
	defer cursor.Close(ctx)

	var docs []productDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", unavailable(err))
	}

	products := make([]*domain.Product, 0, len(docs))
	for _, doc := range docs {
		product, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, nil
}

// EnsureMongoIndexes creates the unique indexes both collections rely on for
// duplicate detection.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string]string{
		ProductsCollection: "id",
		OrdersCollection:   "orderId",
	}
	for collection, key := range indexes {
		model := mongo.IndexModel{
			Keys:    bson.D{{Key: key, Value: 1}},
			Options: options.Index().SetUnique(true),
		}
		if _, err := db.Collection(collection).Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("failed to create index on %s.%s: %w", collection, key, unavailable(err))
		}
	}
	return nil
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	return primitive.ParseDecimal128(d.String())
}

func fromDecimal128(d primitive.Decimal128) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(d.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to decode decimal %s: %w", d.String(), err)
	}
	return value, nil
}
