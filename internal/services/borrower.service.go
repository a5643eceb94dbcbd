package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/nimasrn/retail-ledger/internal/model"
	"github.com/nimasrn/retail-ledger/internal/repository"
	"github.com/nimasrn/retail-ledger/pkg/prom"
)

const reasonAlreadyLinked = "order is already linked to a borrower"

type BorrowerRepository interface {
	Create(ctx context.Context, b *model.Borrower) (*model.Borrower, error)
	Get(ctx context.Context, id int64) (*model.Borrower, error)
	List(ctx context.Context, f model.BorrowerFilter) ([]*model.Borrower, int64, error)
	Count(ctx context.Context) (int64, error)
	UpdateAmount(ctx context.Context, id int64, amount float64) error
	Delete(ctx context.Context, id int64) error
	HasOrderSnapshot(ctx context.Context, orderID int64) (bool, error)
	InsertOrderSnapshot(ctx context.Context, s *model.OrderSnapshot) (*model.OrderSnapshot, error)
	InsertOrderSnapshotProduct(ctx context.Context, p *model.OrderSnapshotProduct) error
	SnapshotOrders(ctx context.Context, borrowerID int64) ([]*model.SnapshotOrder, error)
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type BorrowerService struct {
	commitHooks
	borrowerRepo BorrowerRepository
	orderRepo    OrderRepository
}

func NewBorrowerService(borrowerRepo BorrowerRepository, orderRepo OrderRepository, flusher Persister, cache StatsInvalidator) *BorrowerService {
	return &BorrowerService{
		commitHooks:  commitHooks{flusher: flusher, cache: cache},
		borrowerRepo: borrowerRepo,
		orderRepo:    orderRepo,
	}
}

func (s *BorrowerService) Create(ctx context.Context, req model.BorrowerCreateRequest) (*model.Borrower, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	created, err := s.borrowerRepo.Create(ctx, &model.Borrower{
		Name:   req.Name,
		Date:   req.Date,
		Amount: req.Amount,
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit()
	return created, nil
}

func (s *BorrowerService) Get(ctx context.Context, id int64) (*model.Borrower, error) {
	borrower, err := s.borrowerRepo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrBorrowerNotFound) {
			return nil, ErrBorrowerNotFound
		}
		return nil, err
	}
	return borrower, nil
}

func (s *BorrowerService) List(ctx context.Context, f model.BorrowerFilter) ([]*model.Borrower, int64, error) {
	return s.borrowerRepo.List(ctx, f)
}

func (s *BorrowerService) Count(ctx context.Context) (int64, error) {
	return s.borrowerRepo.Count(ctx)
}

func (s *BorrowerService) UpdateAmount(ctx context.Context, id int64, amount float64) error {
	if err := s.borrowerRepo.UpdateAmount(ctx, id, amount); err != nil {
		if errors.Is(err, repository.ErrBorrowerNotFound) {
			return ErrBorrowerNotFound
		}
		return err
	}

	s.afterCommit()
	return nil
}

func (s *BorrowerService) Delete(ctx context.Context, id int64) error {
	if err := s.borrowerRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrBorrowerNotFound) {
			return ErrBorrowerNotFound
		}
		return err
	}

	s.afterCommit()
	return nil
}

// LinkOrder charges a live order to a borrower by freezing it into the
// borrower's history. An order can be linked at most once, ever: a second
// attempt is a soft failure, not an error, and writes nothing.
func (s *BorrowerService) LinkOrder(ctx context.Context, orderID, borrowerID int64) (*model.LinkResult, error) {
	result := &model.LinkResult{Success: true}

	err := s.borrowerRepo.WithinTransaction(ctx, func(ctx context.Context) error {
		linked, err := s.borrowerRepo.HasOrderSnapshot(ctx, orderID)
		if err != nil {
			return err
		}
		if linked {
			result = &model.LinkResult{Success: false, Reason: reasonAlreadyLinked}
			return nil
		}

		order, err := s.orderRepo.Get(ctx, orderID)
		if err != nil {
			if errors.Is(err, repository.ErrOrderNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		if _, err := s.borrowerRepo.Get(ctx, borrowerID); err != nil {
			if errors.Is(err, repository.ErrBorrowerNotFound) {
				return ErrBorrowerNotFound
			}
			return err
		}

		snapshots, err := s.orderRepo.SnapshotsForOrder(ctx, orderID)
		if err != nil {
			return err
		}

		var total float64
		for _, snap := range snapshots {
			total += snap.PriceSell * float64(snap.Quantity)
		}

		created, err := s.borrowerRepo.InsertOrderSnapshot(ctx, &model.OrderSnapshot{
			OriginalOrderID: orderID,
			BorrowerID:      borrowerID,
			Date:            order.CreatedAt,
			TotalPrice:      total,
		})
		if err != nil {
			return fmt.Errorf("insert order snapshot: %w", err)
		}

		for _, snap := range snapshots {
			err := s.borrowerRepo.InsertOrderSnapshotProduct(ctx, &model.OrderSnapshotProduct{
				OrderSnapshotID: created.ID,
				Name:            snap.Name,
				PriceSell:       snap.PriceSell,
				Quantity:        snap.Quantity,
			})
			if err != nil {
				return fmt.Errorf("insert order snapshot product: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Success {
		prom.IncCounter(prom.SystemLedger, prom.MetricBorrowerLinks)
		s.afterCommit()
	}
	return result, nil
}

// SnapshotOrders lists a borrower's frozen order history.
func (s *BorrowerService) SnapshotOrders(ctx context.Context, borrowerID int64) ([]*model.SnapshotOrder, error) {
	if _, err := s.borrowerRepo.Get(ctx, borrowerID); err != nil {
		if errors.Is(err, repository.ErrBorrowerNotFound) {
			return nil, ErrBorrowerNotFound
		}
		return nil, err
	}
	return s.borrowerRepo.SnapshotOrders(ctx, borrowerID)
}
