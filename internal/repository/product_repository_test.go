package repository

import (
	"context"
	"testing"

	"github.com/nimasrn/retail-ledger/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 { return &v }

func TestProductRepository_Create(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	t.Run("create tracked product", func(t *testing.T) {
		p := &model.Product{
			Name:        "Rice 5kg",
			PriceBuy:    5,
			PriceSell:   8,
			Stock:       int64Ptr(10),
			StockDanger: 2,
		}

		created, err := repo.Create(ctx, p)
		require.NoError(t, err)
		assert.NotZero(t, created.ID)
		assert.Equal(t, p.Name, created.Name)
		require.NotNil(t, created.Stock)
		assert.Equal(t, int64(10), *created.Stock)
		assert.NotZero(t, created.CreatedAt)
	})

	t.Run("create untracked product", func(t *testing.T) {
		p := &model.Product{
			Name:      "Service fee",
			PriceBuy:  0,
			PriceSell: 3,
		}

		created, err := repo.Create(ctx, p)
		require.NoError(t, err)
		assert.Nil(t, created.Stock)
		assert.False(t, created.Tracked())
	})
}

func TestProductRepository_Get(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, &model.Product{Name: "Soap", PriceBuy: 1, PriceSell: 2})
	require.NoError(t, err)

	t.Run("get existing product", func(t *testing.T) {
		got, err := repo.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, "Soap", got.Name)
	})

	t.Run("get missing product", func(t *testing.T) {
		_, err := repo.Get(ctx, 99999)
		assert.ErrorIs(t, err, ErrProductNotFound)
	})
}

func TestProductRepository_Update(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, &model.Product{
		Name:      "Sugar",
		PriceBuy:  2,
		PriceSell: 3,
		Stock:     int64Ptr(20),
	})
	require.NoError(t, err)

	t.Run("update fields", func(t *testing.T) {
		created.Name = "Sugar 1kg"
		created.PriceSell = 4
		created.Stock = int64Ptr(15)

		require.NoError(t, repo.Update(ctx, created))

		got, err := repo.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Sugar 1kg", got.Name)
		assert.Equal(t, float64(4), got.PriceSell)
		require.NotNil(t, got.Stock)
		assert.Equal(t, int64(15), *got.Stock)
	})

	t.Run("switch to untracked clears stock", func(t *testing.T) {
		created.Stock = nil
		require.NoError(t, repo.Update(ctx, created))

		got, err := repo.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Nil(t, got.Stock)
	})

	t.Run("update missing product", func(t *testing.T) {
		missing := &model.Product{ID: 99999, Name: "x"}
		assert.ErrorIs(t, repo.Update(ctx, missing), ErrProductNotFound)
	})
}

func TestProductRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, &model.Product{Name: "Tea", PriceBuy: 1, PriceSell: 2})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, created.ID))

	_, err = repo.Get(ctx, created.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, created.ID), ErrProductNotFound)
}

func TestProductRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	names := []string{"Apple juice", "Banana", "Apple pie", "Coffee", "Black tea"}
	for i, name := range names {
		_, err := repo.Create(ctx, &model.Product{
			Name:      name,
			PriceBuy:  float64(i + 1),
			PriceSell: float64((i + 1) * 2),
			Stock:     int64Ptr(int64(i * 10)),
		})
		require.NoError(t, err)
	}

	t.Run("list all", func(t *testing.T) {
		products, total, err := repo.List(ctx, model.ProductFilter{Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)
		assert.Len(t, products, 5)
	})

	t.Run("search by name", func(t *testing.T) {
		search := "Apple"
		products, total, err := repo.List(ctx, model.ProductFilter{Search: &search, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, products, 2)
	})

	t.Run("sort by name ascending", func(t *testing.T) {
		products, _, err := repo.List(ctx, model.ProductFilter{
			SortBy:    model.ProductSortName,
			Ascending: true,
			Limit:     10,
		})
		require.NoError(t, err)
		require.Len(t, products, 5)
		assert.Equal(t, "Apple juice", products[0].Name)
		assert.Equal(t, "Coffee", products[4].Name)
	})

	t.Run("sort by price descending", func(t *testing.T) {
		products, _, err := repo.List(ctx, model.ProductFilter{
			SortBy: model.ProductSortPrice,
			Limit:  10,
		})
		require.NoError(t, err)
		require.Len(t, products, 5)
		assert.Equal(t, "Black tea", products[0].Name)
	})

	t.Run("pagination", func(t *testing.T) {
		products, total, err := repo.List(ctx, model.ProductFilter{
			SortBy:    model.ProductSortName,
			Ascending: true,
			Limit:     2,
			Offset:    4,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)
		assert.Len(t, products, 1)
	})
}

func TestProductRepository_LowStock(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, &model.Product{Name: "Healthy", PriceSell: 1, Stock: int64Ptr(50), StockDanger: 5})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &model.Product{Name: "Low", PriceSell: 1, Stock: int64Ptr(3), StockDanger: 5})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &model.Product{Name: "Empty", PriceSell: 1, Stock: int64Ptr(0), StockDanger: 5})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &model.Product{Name: "Untracked", PriceSell: 1, StockDanger: 5})
	require.NoError(t, err)

	low, err := repo.LowStock(ctx, 10)
	require.NoError(t, err)
	require.Len(t, low, 2)
	assert.Equal(t, "Empty", low[0].Name)
	assert.Equal(t, "Low", low[1].Name)
}

func TestProductRepository_Stock(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	tracked, err := repo.Create(ctx, &model.Product{Name: "Tracked", PriceSell: 1, Stock: int64Ptr(10)})
	require.NoError(t, err)
	untracked, err := repo.Create(ctx, &model.Product{Name: "Untracked", PriceSell: 1})
	require.NoError(t, err)

	t.Run("decrement tracked stock", func(t *testing.T) {
		require.NoError(t, repo.DecrementStock(ctx, tracked.ID, 4))

		got, err := repo.Get(ctx, tracked.ID)
		require.NoError(t, err)
		require.NotNil(t, got.Stock)
		assert.Equal(t, int64(6), *got.Stock)
	})

	t.Run("decrement untracked stock is a no-op", func(t *testing.T) {
		require.NoError(t, repo.DecrementStock(ctx, untracked.ID, 4))

		got, err := repo.Get(ctx, untracked.ID)
		require.NoError(t, err)
		assert.Nil(t, got.Stock)
	})

	t.Run("restore tracked stock", func(t *testing.T) {
		restored, err := repo.RestoreStock(ctx, tracked.ID, 4)
		require.NoError(t, err)
		assert.True(t, restored)

		got, err := repo.Get(ctx, tracked.ID)
		require.NoError(t, err)
		require.NotNil(t, got.Stock)
		assert.Equal(t, int64(10), *got.Stock)
	})

	t.Run("restore on deleted product reports false", func(t *testing.T) {
		restored, err := repo.RestoreStock(ctx, 99999, 4)
		require.NoError(t, err)
		assert.False(t, restored)
	})
}
