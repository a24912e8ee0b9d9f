package service

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/repository"
	"storefront/internal/saga"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CheckoutResult is the outcome of a successful checkout.
type CheckoutResult struct {
	Product *domain.Product
	Order   *domain.Order
}

// OrderService defines the order lifecycle operations
type OrderService interface {
	Checkout(ctx context.Context, productID int64, quantity int) (*CheckoutResult, error)
	UpdateOrder(ctx context.Context, orderID string, patch domain.OrderPatch) (*domain.Order, error)
	DeleteOrder(ctx context.Context, orderID string) error
	FindOrderByID(ctx context.Context, orderID string) (*domain.Order, error)
	OrderStatus(ctx context.Context, orderID string) (domain.OrderStatus, error)
	ListOrders(ctx context.Context) ([]*domain.Order, error)
}

type orderService struct {
	products   repository.ProductRepository
	orders     repository.OrderRepository
	ledger     StockLedger
	orderLocks keyedMutex
	newID      func() string
	logger     *zap.Logger
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(
	products repository.ProductRepository,
	orders repository.OrderRepository,
	ledger StockLedger,
	logger *zap.Logger,
) OrderService {
	return &orderService{
		products: products,
		orders:   orders,
		ledger:   ledger,
		newID:    uuid.NewString,
		logger:   logger,
	}
}

// Checkout reserves quantity units of the product and records a pending order
// priced at the product's current price. A failed order write releases the
// reservation again.
func (s *orderService) Checkout(ctx context.Context, productID int64, quantity int) (*CheckoutResult, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive, got %d", ErrInvalidArgument, quantity)
	}
	if quantity > domain.MaxQuantity {
		return nil, fmt.Errorf("%w: quantity must not exceed %d, got %d", ErrInvalidArgument, domain.MaxQuantity, quantity)
	}

	unlock := s.ledger.Lock(productID)
	defer unlock()

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to load product %d: %w", productID, err)
	}

	order := domain.NewOrder(s.newID(), product, quantity)
	if !domain.ValidAmount(order.TotalCost) {
		return nil, fmt.Errorf("%w: order total %s is out of range", ErrInvalidArgument, order.TotalCost)
	}
	var updated *domain.Product

	reserve := saga.FuncStep{
		StepName: "reserve_stock",
		ExecuteFn: func(ctx context.Context) error {
			p, err := s.ledger.AdjustStock(ctx, productID, -quantity)
			if err != nil {
				return err
			}
			updated = p
			return nil
		},
		CompensateFn: func(ctx context.Context) error {
			_, err := s.ledger.ForceAdjustStock(ctx, productID, quantity)
			return err
		},
	}
	persist := saga.FuncStep{
		StepName: "create_order",
		ExecuteFn: func(ctx context.Context) error {
			return s.orders.Create(ctx, order)
		},
	}

	if err := saga.NewOrchestrator(s.logger, reserve, persist).Start(ctx); err != nil {
		s.logger.Warn("Checkout failed",
			zap.Int64("product_id", productID),
			zap.Int("quantity", quantity),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to checkout product %d: %w", productID, err)
	}

	s.logger.Info("Order created",
		zap.String("order_id", order.OrderID),
		zap.Int64("product_id", productID),
		zap.Int("quantity", quantity),
		zap.String("total_cost", order.TotalCost.String()),
	)

	return &CheckoutResult{Product: updated, Order: order}, nil
}

// UpdateOrder applies the supplied fields and leaves the others untouched
func (s *orderService) UpdateOrder(ctx context.Context, orderID string, patch domain.OrderPatch) (*domain.Order, error) {
	if err := validateOrderID(orderID); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return nil, fmt.Errorf("%w: nothing to update", ErrInvalidArgument)
	}
	if patch.Status != nil {
		status, err := domain.ParseOrderStatus(string(*patch.Status))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
		}
		patch.Status = &status
	}

	unlock := s.orderLocks.Lock(orderID)
	defer unlock()

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order %s: %w", orderID, err)
	}

	patch.Apply(order)
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to update order %s: %w", orderID, err)
	}

	s.logger.Info("Order updated",
		zap.String("order_id", orderID),
		zap.String("status", order.Status.String()),
	)
	return order, nil
}

// DeleteOrder returns the order's quantity to stock and then removes the
// order. If the stock cannot be restored the order is kept.
func (s *orderService) DeleteOrder(ctx context.Context, orderID string) error {
	if err := validateOrderID(orderID); err != nil {
		return err
	}

	unlock := s.orderLocks.Lock(orderID)
	defer unlock()

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("failed to load order %s: %w", orderID, err)
	}

	unlockProduct := s.ledger.Lock(order.ProductID)
	defer unlockProduct()

	restore := saga.FuncStep{
		StepName: "restore_stock",
		ExecuteFn: func(ctx context.Context) error {
			_, err := s.ledger.AdjustStock(ctx, order.ProductID, order.Quantity)
			return err
		},
		CompensateFn: func(ctx context.Context) error {
			_, err := s.ledger.ForceAdjustStock(ctx, order.ProductID, -order.Quantity)
			return err
		},
	}
	remove := saga.FuncStep{
		StepName: "delete_order",
		ExecuteFn: func(ctx context.Context) error {
			return s.orders.Delete(ctx, orderID)
		},
	}

	if err := saga.NewOrchestrator(s.logger, restore, remove).Start(ctx); err != nil {
		s.logger.Warn("Order deletion failed",
			zap.String("order_id", orderID),
			zap.Error(err),
		)
		return fmt.Errorf("failed to delete order %s: %w", orderID, err)
	}

	s.logger.Info("Order deleted",
		zap.String("order_id", orderID),
		zap.Int64("product_id", order.ProductID),
		zap.Int("restored", order.Quantity),
	)
	return nil
}

func (s *orderService) FindOrderByID(ctx context.Context, orderID string) (*domain.Order, error) {
	if err := validateOrderID(orderID); err != nil {
		return nil, err
	}
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order %s: %w", orderID, err)
	}
	return order, nil
}

func (s *orderService) OrderStatus(ctx context.Context, orderID string) (domain.OrderStatus, error) {
	order, err := s.FindOrderByID(ctx, orderID)
	if err != nil {
		return "", err
	}
	return order.Status, nil
}

func (s *orderService) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	orders, err := s.orders.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

func validateOrderID(orderID string) error {
	if strings.TrimSpace(orderID) == "" {
		return fmt.Errorf("%w: order id is required", ErrInvalidArgument)
	}
	return nil
}
