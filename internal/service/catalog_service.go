package service

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"go.uber.org/zap"
)

// CatalogService defines product search and catalog administration
type CatalogService interface {
	Search(ctx context.Context, term string) ([]*domain.Product, error)
	CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	ListProducts(ctx context.Context) ([]*domain.Product, error)
	UpdateProduct(ctx context.Context, id int64, patch domain.ProductPatch) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

type catalogService struct {
	products repository.ProductRepository
	ledger   StockLedger
	logger   *zap.Logger
}

// NewCatalogService creates a new instance of CatalogService. Product writes
// take the ledger's product lock so they never interleave with a checkout.
func NewCatalogService(products repository.ProductRepository, ledger StockLedger, logger *zap.Logger) CatalogService {
	return &catalogService{
		products: products,
		ledger:   ledger,
		logger:   logger,
	}
}

// Search returns every product whose name contains term, ignoring case
func (s *catalogService) Search(ctx context.Context, term string) ([]*domain.Product, error) {
	if term == "" {
		return nil, fmt.Errorf("%w: search term is required", ErrInvalidArgument)
	}

	products, err := s.products.SearchByName(ctx, term)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}

	s.logger.Debug("Product search",
		zap.String("term", term),
		zap.Int("matches", len(products)),
	)
	return products, nil
}

func (s *catalogService) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if err := s.validateProduct(product); err != nil {
		return nil, err
	}

	unlock := s.ledger.Lock(product.ID)
	defer unlock()

	if err := s.products.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product %d: %w", product.ID, err)
	}

	s.logger.Info("Product created", zap.Int64("product_id", product.ID), zap.String("name", product.Name))
	return product, nil
}

func (s *catalogService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product %d: %w", id, err)
	}
	return product, nil
}

func (s *catalogService) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// UpdateProduct applies a partial update. The id itself cannot change.
func (s *catalogService) UpdateProduct(ctx context.Context, id int64, patch domain.ProductPatch) (*domain.Product, error) {
	if patch.IsEmpty() {
		return nil, fmt.Errorf("%w: nothing to update", ErrInvalidArgument)
	}

	unlock := s.ledger.Lock(id)
	defer unlock()

	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load product %d: %w", id, err)
	}

	patch.Apply(product)
	if err := s.validateProduct(product); err != nil {
		return nil, err
	}

	if err := s.products.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product %d: %w", id, err)
	}

	s.logger.Info("Product updated", zap.Int64("product_id", id))
	return product, nil
}

func (s *catalogService) DeleteProduct(ctx context.Context, id int64) error {
	unlock := s.ledger.Lock(id)
	defer unlock()

	if err := s.products.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product %d: %w", id, err)
	}

	s.logger.Info("Product deleted", zap.Int64("product_id", id))
	return nil
}

func (s *catalogService) validateProduct(p *domain.Product) error {
	switch {
	case p.ID <= 0:
		return fmt.Errorf("%w: product id must be positive", ErrInvalidArgument)
	case strings.TrimSpace(p.Name) == "":
		return fmt.Errorf("%w: product name is required", ErrInvalidArgument)
	case p.Price.IsNegative():
		return fmt.Errorf("%w: price must not be negative", ErrInvalidArgument)
	case !domain.ValidAmount(p.Price):
		return fmt.Errorf("%w: price must be below %s with at most %d decimal places", ErrInvalidArgument, domain.MaxAmount, domain.MoneyScale)
	case int64(p.Stock) > domain.MaxStock || int64(p.Stock) < domain.MinStock:
		return fmt.Errorf("%w: stock is out of range", ErrInvalidArgument)
	case p.Stock < 0 && !s.ledger.AllowsNegativeStock():
		return fmt.Errorf("%w: stock must not be negative", ErrInvalidArgument)
	}
	return nil
}
