package repository

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type orderDocument struct {
	ObjectID  primitive.ObjectID   `bson:"_id,omitempty"`
	OrderID   string               `bson:"orderId"`
	Address   string               `bson:"address"`
	Status    string               `bson:"status"`
	ProductID int64                `bson:"productId"`
	Quantity  int                  `bson:"quantity"`
	UnitCost  primitive.Decimal128 `bson:"unitCost"`
	TotalCost primitive.Decimal128 `bson:"totalCost"`
}

func newOrderDocument(o *domain.Order) (orderDocument, error) {
	unitCost, err := toDecimal128(o.UnitCost)
	if err != nil {
		return orderDocument{}, err
	}
	totalCost, err := toDecimal128(o.TotalCost)
	if err != nil {
		return orderDocument{}, err
	}
	return orderDocument{
		OrderID:   o.OrderID,
		Address:   o.Address,
		Status:    string(o.Status),
		ProductID: o.ProductID,
		Quantity:  o.Quantity,
		UnitCost:  unitCost,
		TotalCost: totalCost,
	}, nil
}

func (d orderDocument) toDomain() (*domain.Order, error) {
	unitCost, err := fromDecimal128(d.UnitCost)
	if err != nil {
		return nil, err
	}
	totalCost, err := fromDecimal128(d.TotalCost)
	if err != nil {
		return nil, err
	}
	return &domain.Order{
		OrderID:   d.OrderID,
		Address:   d.Address,
		Status:    domain.OrderStatus(d.Status),
		ProductID: d.ProductID,
		Quantity:  d.Quantity,
		UnitCost:  unitCost,
		TotalCost: totalCost,
	}, nil
}

type mongoOrderRepository struct {
	coll *mongo.Collection
}

// NewMongoOrderRepository creates an OrderRepository over the orders
// collection of db
func NewMongoOrderRepository(db *mongo.Database) OrderRepository {
	return &mongoOrderRepository{coll: db.Collection(OrdersCollection)}
}

func (r *mongoOrderRepository) List(ctx context.Context) ([]*domain.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", unavailable(err))
	}
	defer cursor.Close(ctx)

	var docs []orderDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", unavailable(err))
	}

	orders := make([]*domain.Order, 0, len(docs))
	for _, doc := range docs {
		order, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func (r *mongoOrderRepository) FindByID(ctx context.Context, orderID string) (*domain.Order, error) {
	var doc orderDocument
	err := r.coll.FindOne(ctx, bson.M{"orderId": orderID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order by ID: %w", unavailable(err))
	}
	return doc.toDomain()
}

func (r *mongoOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	doc, err := newOrderDocument(order)
	if err != nil {
		return fmt.Errorf("failed to encode order: %w", err)
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrOrderAlreadyExists
		}
		return fmt.Errorf("failed to create order: %w", unavailable(err))
	}
	return nil
}

func (r *mongoOrderRepository) Update(ctx context.Context, order *domain.Order) error {
	update := bson.M{"$set": bson.M{
		"address": order.Address,
		"status":  string(order.Status),
	}}

	result, err := r.coll.UpdateOne(ctx, bson.M{"orderId": order.OrderID}, update)
	if err != nil {
		return fmt.Errorf("failed to update order: %w", unavailable(err))
	}
	if result.MatchedCount == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *mongoOrderRepository) Delete(ctx context.Context, orderID string) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"orderId": orderID})
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", unavailable(err))
	}
	if result.DeletedCount == 0 {
		return ErrOrderNotFound
	}
	return nil
}
