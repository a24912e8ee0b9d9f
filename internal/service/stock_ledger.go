package service

import (
	"context"
	"fmt"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"go.uber.org/zap"
)

// StockLedger applies stock deltas to products.
//
// Callers serialize work on a product by holding Lock(productID) for the
// whole read-modify-write sequence; the adjustment itself is a single
// conditional update in the repository.
type StockLedger interface {
	Lock(productID int64) (unlock func())
	// AdjustStock adds delta to the product's stock. A decrement that would
	// take stock below zero fails with repository.ErrInsufficientStock unless
	// negative stock is allowed.
	AdjustStock(ctx context.Context, productID int64, delta int) (*domain.Product, error)
	// ForceAdjustStock ignores the floor. It exists to undo an earlier
	// adjustment.
	ForceAdjustStock(ctx context.Context, productID int64, delta int) (*domain.Product, error)
	AllowsNegativeStock() bool
}

type stockLedger struct {
	products      repository.ProductRepository
	locks         keyedMutex
	allowNegative bool
	logger        *zap.Logger
}

// NewStockLedger creates a StockLedger over products
func NewStockLedger(products repository.ProductRepository, allowNegative bool, logger *zap.Logger) StockLedger {
	return &stockLedger{
		products:      products,
		allowNegative: allowNegative,
		logger:        logger,
	}
}

func (l *stockLedger) Lock(productID int64) func() {
	return l.locks.Lock(productID)
}

func (l *stockLedger) AdjustStock(ctx context.Context, productID int64, delta int) (*domain.Product, error) {
	return l.adjust(ctx, productID, delta, delta < 0 && !l.allowNegative)
}

func (l *stockLedger) ForceAdjustStock(ctx context.Context, productID int64, delta int) (*domain.Product, error) {
	return l.adjust(ctx, productID, delta, false)
}

func (l *stockLedger) AllowsNegativeStock() bool {
	return l.allowNegative
}

func (l *stockLedger) adjust(ctx context.Context, productID int64, delta int, enforceFloor bool) (*domain.Product, error) {
	product, err := l.products.AdjustStock(ctx, productID, delta, enforceFloor)
	if err != nil {
		return nil, fmt.Errorf("failed to adjust stock of product %d by %d: %w", productID, delta, err)
	}

	l.logger.Debug("Stock adjusted",
		zap.Int64("product_id", productID),
		zap.Int("delta", delta),
		zap.Int("stock", product.Stock),
	)
	if product.Stock < 0 {
		l.logger.Warn("Product stock is negative",
			zap.Int64("product_id", productID),
			zap.Int("stock", product.Stock),
		)
	}
	return product, nil
}
