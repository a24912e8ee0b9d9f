package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"storefront/internal/domain"

	"github.com/spf13/afero"
)

const (
	ProductsFile = "products.json"
	OrdersFile   = "orders.json"
)

// jsonCollection is one JSON array document on disk. Every read loads the
// whole document and every write replaces it.
type jsonCollection[T any] struct {
	fs   afero.Fs
	path string
	mu   sync.Mutex
}

func (c *jsonCollection[T]) load() ([]T, error) {
	data, err := afero.ReadFile(c.fs, c.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", c.path, unavailable(err))
	}

	records := []T{}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", c.path, unavailable(err))
	}
	return records, nil
}

// save writes to a sibling temp file and renames it over the document so a
// reader never observes a half-written collection.
func (c *jsonCollection[T]) save(records []T) error {
	if records == nil {
		records = []T{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", c.path, err)
	}

	tmp := c.path + ".tmp"
	if err := afero.WriteFile(c.fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, unavailable(err))
	}
	if err := c.fs.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", c.path, unavailable(err))
	}
	return nil
}

// ensure creates an empty collection document if none exists yet.
func (c *jsonCollection[T]) ensure() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.fs.Stat(c.path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to stat %s: %w", c.path, unavailable(err))
	}
	return c.save(nil)
}

// FileStore keeps the product and order collections as two pretty-printed
// JSON documents in one directory.
type FileStore struct {
	fs       afero.Fs
	dir      string
	products *jsonCollection[domain.Product]
	orders   *jsonCollection[domain.Order]
}

// NewFileStore creates a FileStore rooted at dir on fs
func NewFileStore(fs afero.Fs, dir string) *FileStore {
	return &FileStore{
		fs:       fs,
		dir:      dir,
		products: &jsonCollection[domain.Product]{fs: fs, path: filepath.Join(dir, ProductsFile)},
		orders:   &jsonCollection[domain.Order]{fs: fs, path: filepath.Join(dir, OrdersFile)},
	}
}

// EnsureCollections creates the directory and any missing collection file.
// Existing documents are left as they are.
func (s *FileStore) EnsureCollections() error {
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", unavailable(err))
	}
	if err := s.products.ensure(); err != nil {
		return err
	}
	return s.orders.ensure()
}

// Ping checks that both collections can be read.
func (s *FileStore) Ping(ctx context.Context) error {
	for _, path := range []string{s.products.path, s.orders.path} {
		if _, err := s.fs.Stat(path); err != nil {
			return unavailable(err)
		}
	}
	return nil
}

// Products returns the product collection as a ProductRepository
func (s *FileStore) Products() ProductRepository {
	return &fileProductRepository{c: s.products}
}

// Orders returns the order collection as an OrderRepository
func (s *FileStore) Orders() OrderRepository {
	return &fileOrderRepository{c: s.orders}
}

type fileProductRepository struct {
	c *jsonCollection[domain.Product]
}

func (r *fileProductRepository) List(ctx context.Context) ([]*domain.Product, error) {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()

	products, err := r.c.load()
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Product, len(products))
	for i := range products {
		out[i] = &products[i]
	}
	return out, nil
}

func (r *fileProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()

	products, err := r.c.load()
	if err != nil {
		return nil, err
	}
	i := indexOfProduct(products, id)
	if i < 0 {
		return nil, ErrProductNotFound
	}
	return &products[i], nil
}

func (r *fileProductRepository) SearchByName(ctx context.Context, term string) ([]*domain.Product, error) {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()

	products, err := r.c.load()
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(term)
	matches := []*domain.Product{}
	for i := range products {
		if strings.Contains(strings.ToLower(products[i].Name), needle) {
			matches = append(matches, &products[i])
		}
	}
	return matches, nil
}

func (r *fileProductRepository) Create(ctx context.Context, product *domain.Product) error {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()

	products, err := r.c.load()
	if err != nil {
		return err
	}
	if indexOfProduct(products, product.ID) >= 0 {
		return ErrProductAlreadyExists
	}
	return r.c.save(append(products, *product))
}

func (r *fileProductRepository) Update(ctx context.Context, product *domain.Product) error {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()

	products, err := r.c.load()
	if err != nil {
		return err
	}
	i := indexOfProduct(products, product.ID)
	if i < 0 {
		return ErrProductNotFound
	}
	products[i] = *product
	return r.c.save(products)
}

func (r *fileProductRepository) Delete(ctx context.Context, id int64) error {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()

	products, err := r.c.load()
	if err != nil {
		return err
	}
	i := indexOfProduct(products, id)
	if i < 0 {
		return ErrProductNotFound
	}
	return r.c.save(append(products[:i], products[i+1:]...))
}

func (r *fileProductRepository) AdjustStock(ctx context.Context, id int64, delta int, enforceFloor bool) (*domain.Product, error) {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()

	products, err := r.c.load()
	if err != nil {
		return nil, err
	}
	i := indexOfProduct(products, id)
	if i < 0 {
		return nil, ErrProductNotFound
	}
	if enforceFloor && products[i].Stock+delta < 0 {
		return nil, ErrInsufficientStock
	}
	products[i].Stock += delta
	if err := r.c.save(products); err != nil {
		return nil, err
	}
	updated := products[i]
	return &updated, nil
}

func indexOfProduct(products []domain.Product, id int64) int {
	for i := range products {
		if products[i].ID == id {
			return i
		}
	}
	return -1
}

type fileOrderRepository struct {
	c *jsonCollection[domain.Order]
}

func (r *fileOrderRepository) List(ctx context.Context) ([]*domain.Order, error) {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()

	orders, err := r.c.load()
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Order, len(orders))
	for i := range orders {
		out[i] = &orders[i]
	}
	return out, nil
}

func (r *fileOrderRepository) FindByID(ctx context.Context, orderID string) (*domain.Order, error) {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()

	orders, err := r.c.load()
	if err != nil {
		return nil, err
	}
	i := indexOfOrder(orders, orderID)
	if i < 0 {
		return nil, ErrOrderNotFound
	}
	return &orders[i], nil
}

func (r *fileOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()

	orders, err := r.c.load()
	if err != nil {
		return err
	}
	if indexOfOrder(orders, order.OrderID) >= 0 {
		return ErrOrderAlreadyExists
	}
	return r.c.save(append(orders, *order))
}

func (r *fileOrderRepository) Update(ctx context.Context, order *domain.Order) error {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()

	orders, err := r.c.load()
	if err != nil {
		return err
	}
	i := indexOfOrder(orders, order.OrderID)
	if i < 0 {
		return ErrOrderNotFound
	}
	orders[i].Address = order.Address
	orders[i].Status = order.Status
	return r.c.save(orders)
}

func (r *fileOrderRepository) Delete(ctx context.Context, orderID string) error {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()

	orders, err := r.c.load()
	if err != nil {
		return err
	}
	i := indexOfOrder(orders, orderID)
	if i < 0 {
		return ErrOrderNotFound
	}
	return r.c.save(append(orders[:i], orders[i+1:]...))
}

func indexOfOrder(orders []domain.Order, orderID string) int {
	for i := range orders {
		if orders[i].OrderID == orderID {
			return i
		}
	}
	return -1
}
