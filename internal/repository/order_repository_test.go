package repository

import (
	"context"
	"testing"
	"time"

	"github.com/nimasrn/retail-ledger/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedOrder inserts an order with one snapshot line per (buy, sell, qty)
// triple and returns the order id.
func seedOrder(t *testing.T, repo *OrderRepository, lines ...[3]int64) int64 {
	t.Helper()
	ctx := context.Background()

	order, err := repo.Create(ctx)
	require.NoError(t, err)

	for _, l := range lines {
		_, err := repo.InsertSnapshot(ctx, &model.ProductSnapshot{
			OrderID:   order.ID,
			ProductID: 1,
			Name:      "item",
			PriceBuy:  float64(l[0]),
			PriceSell: float64(l[1]),
			Quantity:  l[2],
		})
		require.NoError(t, err)
	}
	return order.ID
}

func TestOrderRepository_CreateAndSnapshots(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	order, err := repo.Create(ctx)
	require.NoError(t, err)
	assert.NotZero(t, order.ID)
	assert.NotZero(t, order.CreatedAt)

	_, err = repo.InsertSnapshot(ctx, &model.ProductSnapshot{
		OrderID:   order.ID,
		ProductID: 7,
		Name:      "Rice 5kg",
		PriceBuy:  5,
		PriceSell: 8,
		Quantity:  4,
	})
	require.NoError(t, err)

	snapshots, err := repo.SnapshotsForOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, snapshots, 1)
	assert.Equal(t, "Rice 5kg", snapshots[0].Name)
	assert.Equal(t, int64(4), snapshots[0].Quantity)
	assert.Equal(t, float64(5), snapshots[0].PriceBuy)
}

func TestOrderRepository_ProductsInOrder(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	orderID := seedOrder(t, repo, [3]int64{5, 8, 4}, [3]int64{1, 2, 3})

	lines, err := repo.ProductsInOrder(ctx, orderID, 10, 0)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, float64(32), lines[0].SubtotalSell)
	assert.Equal(t, float64(6), lines[1].SubtotalSell)
}

func TestOrderRepository_ListWithTotals(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOrderRepository(db)
	borrowers := NewBorrowerRepository(db)
	ctx := context.Background()

	// three orders: totals 32, 6, 0 (order without snapshots)
	big := seedOrder(t, repo, [3]int64{5, 8, 4})
	small := seedOrder(t, repo, [3]int64{1, 2, 3})
	empty := seedOrder(t, repo)

	_, err := borrowers.InsertOrderSnapshot(ctx, &model.OrderSnapshot{
		OriginalOrderID: small,
		BorrowerID:      1,
		Date:            time.Now(),
		TotalPrice:      6,
	})
	require.NoError(t, err)

	t.Run("totals and borrower flag", func(t *testing.T) {
		orders, total, err := repo.ListWithTotals(ctx, model.OrderFilter{
			SortBy:    model.OrderSortTotal,
			Ascending: false,
			Limit:     10,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, orders, 3)

		assert.Equal(t, big, orders[0].OrderID)
		assert.Equal(t, float64(32), orders[0].TotalSell)
		assert.Equal(t, float64(12), orders[0].Profit)
		assert.False(t, orders[0].HasBorrower)

		assert.Equal(t, small, orders[1].OrderID)
		assert.True(t, orders[1].HasBorrower)

		assert.Equal(t, empty, orders[2].OrderID)
		assert.Equal(t, float64(0), orders[2].TotalSell)
	})

	t.Run("sort by profit ascending", func(t *testing.T) {
		orders, _, err := repo.ListWithTotals(ctx, model.OrderFilter{
			SortBy:    model.OrderSortProfit,
			Ascending: true,
			Limit:     10,
		})
		require.NoError(t, err)
		require.Len(t, orders, 3)
		assert.Equal(t, empty, orders[0].OrderID)
		assert.Equal(t, big, orders[2].OrderID)
	})

	t.Run("pagination", func(t *testing.T) {
		orders, total, err := repo.ListWithTotals(ctx, model.OrderFilter{
			SortBy: model.OrderSortTotal,
			Limit:  2,
			Offset: 2,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, orders, 1)
	})
}

func TestOrderRepository_ListWithTotalsTieBreak(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	// identical totals, so only the tie breaker decides
	first := seedOrder(t, repo, [3]int64{5, 8, 4})
	second := seedOrder(t, repo, [3]int64{5, 8, 4})

	t.Run("descending", func(t *testing.T) {
		orders, _, err := repo.ListWithTotals(ctx, model.OrderFilter{
			SortBy:    model.OrderSortTotal,
			Ascending: false,
			Limit:     10,
		})
		require.NoError(t, err)
		require.Len(t, orders, 2)
		assert.Equal(t, first, orders[0].OrderID)
		assert.Equal(t, second, orders[1].OrderID)
	})

	t.Run("ascending", func(t *testing.T) {
		orders, _, err := repo.ListWithTotals(ctx, model.OrderFilter{
			SortBy:    model.OrderSortTotal,
			Ascending: true,
			Limit:     10,
		})
		require.NoError(t, err)
		require.Len(t, orders, 2)
		assert.Equal(t, first, orders[0].OrderID)
		assert.Equal(t, second, orders[1].OrderID)
	})
}

func TestOrderRepository_Statistics(t *testing.T) {
	t.Run("empty history", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewOrderRepository(db)

		stats, err := repo.Statistics(context.Background())
		require.NoError(t, err)
		assert.Zero(t, stats.TotalOrders)
		assert.Zero(t, stats.TotalProfit)
		assert.Zero(t, stats.AverageProfit)
		assert.Zero(t, stats.LargestOrderTotal)
		assert.Zero(t, stats.LargestOrderProfit)
	})

	t.Run("populated history", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewOrderRepository(db)
		borrowers := NewBorrowerRepository(db)
		ctx := context.Background()

		// order A: total 32, profit 12; order B: total 40, profit 4
		seedOrder(t, repo, [3]int64{5, 8, 4})
		linked := seedOrder(t, repo, [3]int64{9, 10, 4})

		_, err := borrowers.InsertOrderSnapshot(ctx, &model.OrderSnapshot{
			OriginalOrderID: linked,
			BorrowerID:      1,
			Date:            time.Now(),
			TotalPrice:      40,
		})
		require.NoError(t, err)

		stats, err := repo.Statistics(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), stats.TotalOrders)
		assert.Equal(t, float64(16), stats.TotalProfit)
		assert.Equal(t, float64(8), stats.AverageProfit)
		assert.Equal(t, int64(1), stats.WithBorrower)

		// the largest order by total is B, so its profit rides along even
		// though A's profit is higher
		assert.Equal(t, float64(40), stats.LargestOrderTotal)
		assert.Equal(t, float64(4), stats.LargestOrderProfit)
	})
}

func TestOrderRepository_DeleteOrder(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	orderID := seedOrder(t, repo, [3]int64{1, 2, 3})

	require.NoError(t, repo.DeleteSnapshots(ctx, orderID))
	require.NoError(t, repo.DeleteJunctionRows(ctx, orderID))
	require.NoError(t, repo.DeleteOrder(ctx, orderID))

	_, err := repo.Get(ctx, orderID)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	snapshots, err := repo.SnapshotsForOrder(ctx, orderID)
	require.NoError(t, err)
	assert.Empty(t, snapshots)

	assert.ErrorIs(t, repo.DeleteOrder(ctx, orderID), ErrOrderNotFound)
}
