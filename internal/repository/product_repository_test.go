package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"storefront/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var productRowColumns = []string{"id", "name", "description", "price", "stock", "image_url"}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return db, mock
}

func TestProductRepository_AdjustStockReturnsUpdatedRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE products SET stock = stock + $2")).
		WithArgs(int64(1), -3, true).
		WillReturnRows(sqlmock.NewRows(productRowColumns).
			AddRow(int64(1), "Red Shirt", "cotton", "20.00", 7, "red.png"))

	product, err := repo.AdjustStock(context.Background(), 1, -3, true)
	require.NoError(t, err)
	assert.Equal(t, 7, product.Stock)
	assert.Equal(t, "20", product.Price.String())
}

func TestProductRepository_AdjustStockDistinguishesMissingFromInsufficient(t *testing.T) {
	tests := []struct {
		name    string
		exists  bool
		wantErr error
	}{
		{name: "floor rejected", exists: true, wantErr: ErrInsufficientStock},
		{name: "no such product", exists: false, wantErr: ErrProductNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewProductRepository(db)

			mock.ExpectQuery(regexp.QuoteMeta("UPDATE products SET stock = stock + $2")).
				WithArgs(int64(5), -10, true).
				WillReturnRows(sqlmock.NewRows(productRowColumns))
			mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)")).
				WithArgs(int64(5)).
				WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(tt.exists))

			_, err := repo.AdjustStock(context.Background(), 5, -10, true)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestProductRepository_ConnectionFailureIsUnavailable(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM products ORDER BY seq")).
		WillReturnError(errors.New("connection refused"))

	_, err := repo.List(context.Background())
	assert.ErrorIs(t, err, ErrStorageUnavailable)
	assert.ErrorContains(t, err, "connection refused")
}

func TestProductRepository_CreateMapsUniqueViolation(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO products")).
		WithArgs(int64(1), "Red Shirt", "Red Shirt description", sqlmock.AnyArg(), 10, sqlmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})

	err := repo.Create(context.Background(), sampleProduct(1, "Red Shirt", 10))
	assert.ErrorIs(t, err, ErrProductAlreadyExists)
}

func TestProductRepository_SearchEscapesWildcards(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE name ILIKE $1 ESCAPE")).
		WithArgs(`%50\%\_off%`).
		WillReturnRows(sqlmock.NewRows(productRowColumns).
			AddRow(int64(9), "50%_off sale", "", "1.50", 1, ""))

	products, err := repo.SearchByName(context.Background(), "50%_off")
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, int64(9), products[0].ID)
}

func TestProductRepository_UpdateMissingRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE products SET name = $2")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), sampleProduct(3, "Hat", 1))
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestOrderRepository_UpdateOnlyWritesMutableColumns(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepository(db)

	order := domain.NewOrder("0d3f5a9e-4b8c-4c4e-9f0a-1b2c3d4e5f60", sampleProduct(1, "Red Shirt", 5), 2)
	order.Address = "1 Main St"
	order.Status = domain.OrderStatusConfirmed

	mock.ExpectExec(regexp.QuoteMeta("UPDATE orders SET address = $2, status = $3 WHERE order_id = $1")).
		WithArgs(order.OrderID, "1 Main St", "confirmed").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Update(context.Background(), order))
}

func TestOrderRepository_FindMissingOrder(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM orders WHERE order_id = $1")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"order_id"}))

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
