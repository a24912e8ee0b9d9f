package repository

import (
	"context"
	"testing"

	"storefront/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// repositoryFactory returns empty repositories for one contract run.
type repositoryFactory func(t *testing.T) (ProductRepository, OrderRepository)

func sampleProduct(id int64, name string, stock int) *domain.Product {
	return &domain.Product{
		ID:          id,
		Name:        name,
		Description: name + " description",
		Price:       decimal.RequireFromString("20.00"),
		Stock:       stock,
		ImageURL:    "https://cdn.example.com/" + name + ".png",
	}
}

// runRepositoryContract checks the behaviour every storage backend must share.
func runRepositoryContract(t *testing.T, newRepos repositoryFactory) {
	ctx := context.Background()

	t.Run("product create and find", func(t *testing.T) {
		products, _ := newRepos(t)
		want := sampleProduct(1, "Red Shirt", 10)
		require.NoError(t, products.Create(ctx, want))

		got, err := products.FindByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, want.Name, got.Name)
		assert.Equal(t, want.Description, got.Description)
		assert.True(t, want.Price.Equal(got.Price), "price %s != %s", want.Price, got.Price)
		assert.Equal(t, want.Stock, got.Stock)
		assert.Equal(t, want.ImageURL, got.ImageURL)
	})

	t.Run("duplicate product id is rejected", func(t *testing.T) {
		products, _ := newRepos(t)
		require.NoError(t, products.Create(ctx, sampleProduct(1, "Red Shirt", 10)))
		err := products.Create(ctx, sampleProduct(1, "Blue Shirt", 3))
		assert.ErrorIs(t, err, ErrProductAlreadyExists)
	})

	t.Run("missing product", func(t *testing.T) {
		products, _ := newRepos(t)
		_, err := products.FindByID(ctx, 42)
		assert.ErrorIs(t, err, ErrProductNotFound)
		assert.ErrorIs(t, products.Update(ctx, sampleProduct(42, "Ghost", 1)), ErrProductNotFound)
		assert.ErrorIs(t, products.Delete(ctx, 42), ErrProductNotFound)
		_, err = products.AdjustStock(ctx, 42, 1, false)
		assert.ErrorIs(t, err, ErrProductNotFound)
	})

	t.Run("list keeps insertion order", func(t *testing.T) {
		products, _ := newRepos(t)
		for _, p := range []*domain.Product{
			sampleProduct(3, "Hat", 1),
			sampleProduct(1, "Red Shirt", 1),
			sampleProduct(2, "Socks", 1),
		} {
			require.NoError(t, products.Create(ctx, p))
		}

		list, err := products.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, []int64{3, 1, 2}, []int64{list[0].ID, list[1].ID, list[2].ID})
	})

	t.Run("search by name ignores case and matches literally", func(t *testing.T) {
		products, _ := newRepos(t)
		for _, p := range []*domain.Product{
			sampleProduct(1, "Red Shirt", 1),
			sampleProduct(2, "Socks", 1),
			sampleProduct(3, "T-SHIRT deluxe", 1),
			sampleProduct(4, "100% Cotton", 1),
		} {
			require.NoError(t, products.Create(ctx, p))
		}

		matches, err := products.SearchByName(ctx, "shirt")
		require.NoError(t, err)
		require.Len(t, matches, 2)
		assert.Equal(t, int64(1), matches[0].ID)
		assert.Equal(t, int64(3), matches[1].ID)

		matches, err = products.SearchByName(ctx, "0%")
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, int64(4), matches[0].ID)

		matches, err = products.SearchByName(ctx, ".*")
		require.NoError(t, err)
		assert.Empty(t, matches)
	})

	t.Run("update and delete product", func(t *testing.T) {
		products, _ := newRepos(t)
		p := sampleProduct(1, "Red Shirt", 10)
		require.NoError(t, products.Create(ctx, p))

		p.Name = "Crimson Shirt"
		p.Price = decimal.RequireFromString("25.50")
		require.NoError(t, products.Update(ctx, p))

		got, err := products.FindByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "Crimson Shirt", got.Name)
		assert.True(t, decimal.RequireFromString("25.5").Equal(got.Price))

		require.NoError(t, products.Delete(ctx, 1))
		_, err = products.FindByID(ctx, 1)
		assert.ErrorIs(t, err, ErrProductNotFound)
	})

	t.Run("adjust stock honours the floor", func(t *testing.T) {
		products, _ := newRepos(t)
		require.NoError(t, products.Create(ctx, sampleProduct(1, "Red Shirt", 5)))

		updated, err := products.AdjustStock(ctx, 1, -3, true)
		require.NoError(t, err)
		assert.Equal(t, 2, updated.Stock)

		_, err = products.AdjustStock(ctx, 1, -3, true)
		assert.ErrorIs(t, err, ErrInsufficientStock)

		got, err := products.FindByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 2, got.Stock, "rejected adjustment must not write")

		updated, err = products.AdjustStock(ctx, 1, -3, false)
		require.NoError(t, err)
		assert.Equal(t, -1, updated.Stock)

		updated, err = products.AdjustStock(ctx, 1, 4, true)
		require.NoError(t, err)
		assert.Equal(t, 3, updated.Stock)
	})

	t.Run("order lifecycle", func(t *testing.T) {
		_, orders := newRepos(t)
		order := domain.NewOrder("8b7c3d0e-8f61-4b7a-9a55-2f7d4c1e9b10", sampleProduct(1, "Red Shirt", 10), 3)
		require.NoError(t, orders.Create(ctx, order))
		assert.ErrorIs(t, orders.Create(ctx, order), ErrOrderAlreadyExists)

		got, err := orders.FindByID(ctx, order.OrderID)
		require.NoError(t, err)
		assert.Equal(t, domain.OrderStatusPending, got.Status)
		assert.Equal(t, int64(1), got.ProductID)
		assert.Equal(t, 3, got.Quantity)
		assert.True(t, decimal.RequireFromString("60").Equal(got.TotalCost))

		got.Address = "221B Baker Street"
		got.Status = domain.OrderStatusShipped
		require.NoError(t, orders.Update(ctx, got))

		got, err = orders.FindByID(ctx, order.OrderID)
		require.NoError(t, err)
		assert.Equal(t, "221B Baker Street", got.Address)
		assert.Equal(t, domain.OrderStatusShipped, got.Status)

		list, err := orders.List(ctx)
		require.NoError(t, err)
		assert.Len(t, list, 1)

		require.NoError(t, orders.Delete(ctx, order.OrderID))
		_, err = orders.FindByID(ctx, order.OrderID)
		assert.ErrorIs(t, err, ErrOrderNotFound)
		assert.ErrorIs(t, orders.Delete(ctx, order.OrderID), ErrOrderNotFound)
		assert.ErrorIs(t, orders.Update(ctx, order), ErrOrderNotFound)
	})
}
