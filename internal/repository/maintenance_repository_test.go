package repository

import (
	"context"
	"testing"
	"time"

	"github.com/nimasrn/retail-ledger/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaintenanceRepository_PruneOldestHalf(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMaintenanceRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		err := db.Write(ctx).Create(&OrderEntity{CreatedAt: base.AddDate(0, 0, i)}).Error
		require.NoError(t, err)
	}

	deleted, err := repo.PruneOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	var remaining []*OrderEntity
	require.NoError(t, db.Read(ctx).Order("id ASC").Find(&remaining).Error)
	require.Len(t, remaining, 3)

	// the two oldest rows are gone
	assert.Equal(t, int64(3), remaining[0].ID)
	assert.Equal(t, int64(5), remaining[2].ID)
}

func TestMaintenanceRepository_PruneEmptyAndSingle(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMaintenanceRepository(db)
	ctx := context.Background()

	deleted, err := repo.PruneOrders(ctx)
	require.NoError(t, err)
	assert.Zero(t, deleted)

	require.NoError(t, db.Write(ctx).Create(&OrderEntity{CreatedAt: time.Now()}).Error)

	// floor(1/2) == 0, a lone row is never pruned
	deleted, err = repo.PruneOrders(ctx)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestMaintenanceRepository_OrphanCleanup(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMaintenanceRepository(db)
	borrowers := NewBorrowerRepository(db)
	orders := NewOrderRepository(db)
	ctx := context.Background()

	keptOrder := seedOrder(t, orders, [3]int64{1, 2, 1})

	snapshot, err := borrowers.InsertOrderSnapshot(ctx, &model.OrderSnapshot{
		OriginalOrderID: keptOrder,
		BorrowerID:      1,
		Date:            time.Now(),
		TotalPrice:      2,
	})
	require.NoError(t, err)
	require.NoError(t, borrowers.InsertOrderSnapshotProduct(ctx, &model.OrderSnapshotProduct{
		OrderSnapshotID: snapshot.ID,
		Name:            "kept",
		PriceSell:       2,
		Quantity:        1,
	}))

	// orphans: a snapshot line without a parent and a junction row for a
	// missing order
	require.NoError(t, borrowers.InsertOrderSnapshotProduct(ctx, &model.OrderSnapshotProduct{
		OrderSnapshotID: 99999,
		Name:            "orphan",
		PriceSell:       1,
		Quantity:        1,
	}))
	require.NoError(t, db.Write(ctx).Create(&ProductOrderEntity{
		OrderID:    99999,
		ProductID:  1,
		SnapshotID: 1,
		Quantity:   1,
	}).Error)

	deletedLines, err := repo.DeleteOrphanSnapshotProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deletedLines)

	deletedJunctions, err := repo.DeleteOrphanJunctionRows(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deletedJunctions)

	var lines []*OrderSnapshotProductEntity
	require.NoError(t, db.Read(ctx).Find(&lines).Error)
	require.Len(t, lines, 1)
	assert.Equal(t, "kept", lines[0].Name)
}

func TestMaintenanceRepository_ClearAll(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMaintenanceRepository(db)
	orders := NewOrderRepository(db)
	products := NewProductRepository(db)
	borrowers := NewBorrowerRepository(db)
	ctx := context.Background()

	_, err := products.Create(ctx, &model.Product{Name: "Rice", PriceSell: 8})
	require.NoError(t, err)
	seedOrder(t, orders, [3]int64{5, 8, 4})
	_, err = borrowers.Create(ctx, &model.Borrower{Name: "Amina", Date: time.Now()})
	require.NoError(t, err)

	require.NoError(t, repo.ClearAll(ctx))

	orderCount, err := orders.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, orderCount)

	productCount, err := products.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, productCount)

	borrowerCount, err := borrowers.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, borrowerCount)
}
