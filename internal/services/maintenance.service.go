package services

import (
	"context"

	"github.com/nimasrn/retail-ledger/internal/model"
	"github.com/nimasrn/retail-ledger/pkg/logger"
	"github.com/nimasrn/retail-ledger/pkg/prom"
)

type MaintenanceRepository interface {
	PruneOrderSnapshots(ctx context.Context) (int64, error)
	PruneProductSnapshots(ctx context.Context) (int64, error)
	PruneOrders(ctx context.Context) (int64, error)
	DeleteOrphanSnapshotProducts(ctx context.Context) (int64, error)
	DeleteOrphanJunctionRows(ctx context.Context) (int64, error)
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type MaintenanceService struct {
	commitHooks
	maintenanceRepo MaintenanceRepository
}

func NewMaintenanceService(maintenanceRepo MaintenanceRepository, flusher Persister, cache StatsInvalidator) *MaintenanceService {
	return &MaintenanceService{
		commitHooks:     commitHooks{flusher: flusher, cache: cache},
		maintenanceRepo: maintenanceRepo,
	}
}

// PruneHistory drops the oldest half of each history table and cleans up
// the rows orphaned by that, all in one transaction. Half-pruned state is
// never visible.
func (s *MaintenanceService) PruneHistory(ctx context.Context) (*model.PruneResult, error) {
	result := &model.PruneResult{}

	err := s.maintenanceRepo.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		if result.OrderSnapshots, err = s.maintenanceRepo.PruneOrderSnapshots(ctx); err != nil {
			return err
		}
		if result.ProductSnapshots, err = s.maintenanceRepo.PruneProductSnapshots(ctx); err != nil {
			return err
		}
		if result.Orders, err = s.maintenanceRepo.PruneOrders(ctx); err != nil {
			return err
		}
		if result.OrphanSnapshotLines, err = s.maintenanceRepo.DeleteOrphanSnapshotProducts(ctx); err != nil {
			return err
		}
		if result.OrphanJunctionRows, err = s.maintenanceRepo.DeleteOrphanJunctionRows(ctx); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("pruned history",
		"order_snapshots", result.OrderSnapshots,
		"product_snapshots", result.ProductSnapshots,
		"orders", result.Orders,
		"orphan_snapshot_lines", result.OrphanSnapshotLines,
		"orphan_junction_rows", result.OrphanJunctionRows)

	prom.IncCounter(prom.SystemLedger, prom.MetricPruneRuns)
	s.afterCommit()
	return result, nil
}
