package repository

import (
	"context"

	"github.com/nimasrn/retail-ledger/pkg/store"
)

// MaintenanceRepository holds the retention and housekeeping statements.
// Callers are expected to wrap the prune sequence in one transaction.
type MaintenanceRepository struct {
	*store.DB
}

func NewMaintenanceRepository(db *store.DB) *MaintenanceRepository {
	return &MaintenanceRepository{
		db,
	}
}

func (r *MaintenanceRepository) PruneOrderSnapshots(ctx context.Context) (int64, error) {
	return r.pruneOldestHalf(ctx, "orders_snapshots", "date")
}

func (r *MaintenanceRepository) PruneProductSnapshots(ctx context.Context) (int64, error) {
	return r.pruneOldestHalf(ctx, "products_snapshots", "created_at")
}

func (r *MaintenanceRepository) PruneOrders(ctx context.Context) (int64, error) {
	return r.pruneOldestHalf(ctx, "orders", "created_at")
}

// pruneOldestHalf deletes the oldest floor(n/2) rows of a table, oldest
// decided by the given date column with the row id as tie breaker.
func (r *MaintenanceRepository) pruneOldestHalf(ctx context.Context, table, dateColumn string) (int64, error) {
	var count int64
	if err := r.Write(ctx).WithContext(ctx).Table(table).Count(&count).Error; err != nil {
		return 0, err
	}
	remove := count / 2
	if remove == 0 {
		return 0, nil
	}

	res := r.Write(ctx).WithContext(ctx).Exec(
		"DELETE FROM "+table+" WHERE id IN (SELECT id FROM "+table+
			" ORDER BY "+dateColumn+" ASC, id ASC LIMIT ?)", remove)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// DeleteOrphanSnapshotProducts removes borrower snapshot lines whose
// parent snapshot was pruned away.
func (r *MaintenanceRepository) DeleteOrphanSnapshotProducts(ctx context.Context) (int64, error) {
	res := r.Write(ctx).WithContext(ctx).Exec(
		"DELETE FROM orders_snapshots_products WHERE order_snapshot_id NOT IN (SELECT id FROM orders_snapshots)")
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// DeleteOrphanJunctionRows clears legacy junction rows pointing at pruned
// orders.
func (r *MaintenanceRepository) DeleteOrphanJunctionRows(ctx context.Context) (int64, error) {
	res := r.Write(ctx).WithContext(ctx).Exec(
		"DELETE FROM products_orders WHERE order_id NOT IN (SELECT id FROM orders)")
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// ClearAll empties every ledger table. Used by the seeder before it
// generates a fresh dataset.
func (r *MaintenanceRepository) ClearAll(ctx context.Context) error {
	tables := []string{
		"orders_snapshots_products",
		"orders_snapshots",
		"products_orders",
		"products_snapshots",
		"orders",
		"borrowers",
		"products",
	}
	for _, table := range tables {
		if err := r.Write(ctx).WithContext(ctx).Exec("DELETE FROM " + table).Error; err != nil {
			return err
		}
	}
	return nil
}
