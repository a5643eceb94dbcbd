package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/nimasrn/retail-ledger/internal/model"
	"github.com/nimasrn/retail-ledger/internal/repository"
	"github.com/nimasrn/retail-ledger/pkg/prom"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrBorrowerNotFound = errors.New("borrower not found")
)

// InsufficientStockError aborts an order when a tracked product cannot
// cover a requested line. The whole order rolls back, partial fulfillment
// is never committed.
type InsufficientStockError struct {
	Product   string
	Available int64
	Requested int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: %d available, %d requested",
		e.Product, e.Available, e.Requested)
}

type OrderRepository interface {
	Create(ctx context.Context) (*model.Order, error)
	Get(ctx context.Context, id int64) (*model.Order, error)
	InsertSnapshot(ctx context.Context, s *model.ProductSnapshot) (*model.ProductSnapshot, error)
	SnapshotsForOrder(ctx context.Context, orderID int64) ([]*model.ProductSnapshot, error)
	ProductsInOrder(ctx context.Context, orderID int64, limit, offset int) ([]*model.OrderLine, error)
	DeleteSnapshots(ctx context.Context, orderID int64) error
	DeleteJunctionRows(ctx context.Context, orderID int64) error
	DeleteOrder(ctx context.Context, orderID int64) error
	ListWithTotals(ctx context.Context, f model.OrderFilter) ([]*model.OrderWithTotal, int64, error)
	Count(ctx context.Context) (int64, error)
	Statistics(ctx context.Context) (*model.OrderStatistics, error)
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) (*model.Product, error)
	Update(ctx context.Context, p *model.Product) error
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*model.Product, error)
	List(ctx context.Context, f model.ProductFilter) ([]*model.Product, int64, error)
	Count(ctx context.Context) (int64, error)
	LowStock(ctx context.Context, limit int) ([]*model.Product, error)
	DecrementStock(ctx context.Context, id int64, qty int64) error
	RestoreStock(ctx context.Context, id int64, qty int64) (bool, error)
}

type OrderService struct {
	commitHooks
	orderRepo   OrderRepository
	productRepo ProductRepository
}

func NewOrderService(orderRepo OrderRepository, productRepo ProductRepository, flusher Persister, cache StatsInvalidator) *OrderService {
	return &OrderService{
		commitHooks: commitHooks{flusher: flusher, cache: cache},
		orderRepo:   orderRepo,
		productRepo: productRepo,
	}
}

// Create records a sale: one order row plus one immutable product snapshot
// per line, decrementing tracked stock. Everything happens in a single
// transaction; a missing product or short stock aborts the whole order.
func (s *OrderService) Create(ctx context.Context, req model.OrderCreateRequest) (*model.Order, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var created *model.Order
	err := s.orderRepo.WithinTransaction(ctx, func(ctx context.Context) error {
		order, err := s.orderRepo.Create(ctx)
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		for _, item := range req.Items {
			product, err := s.productRepo.Get(ctx, item.ProductID)
			if err != nil {
				if errors.Is(err, repository.ErrProductNotFound) {
					return ErrProductNotFound
				}
				return fmt.Errorf("load product %d: %w", item.ProductID, err)
			}

			if product.Tracked() && *product.Stock < item.Quantity {
				return &InsufficientStockError{
					Product:   product.Name,
					Available: *product.Stock,
					Requested: item.Quantity,
				}
			}

			_, err = s.orderRepo.InsertSnapshot(ctx, &model.ProductSnapshot{
				OrderID:   order.ID,
				ProductID: product.ID,
				Name:      product.Name,
				PriceBuy:  product.PriceBuy,
				PriceSell: product.PriceSell,
				Quantity:  item.Quantity,
			})
			if err != nil {
				return fmt.Errorf("snapshot product %d: %w", product.ID, err)
			}

			if product.Tracked() {
				if err := s.productRepo.DecrementStock(ctx, product.ID, item.Quantity); err != nil {
					return fmt.Errorf("decrement stock for product %d: %w", product.ID, err)
				}
			}
		}

		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	prom.IncCounter(prom.SystemLedger, prom.MetricOrdersCreated)
	s.afterCommit()
	return created, nil
}

// Delete cancels a live order and puts tracked stock back. Products deleted
// since the sale are skipped. Borrower history (orders_snapshots) is never
// touched here.
func (s *OrderService) Delete(ctx context.Context, orderID int64) error {
	err := s.orderRepo.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.orderRepo.Get(ctx, orderID); err != nil {
			if errors.Is(err, repository.ErrOrderNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		snapshots, err := s.orderRepo.SnapshotsForOrder(ctx, orderID)
		if err != nil {
			return err
		}
		for _, snap := range snapshots {
			if _, err := s.productRepo.RestoreStock(ctx, snap.ProductID, snap.Quantity); err != nil {
				return fmt.Errorf("restore stock for product %d: %w", snap.ProductID, err)
			}
		}

		if err := s.orderRepo.DeleteJunctionRows(ctx, orderID); err != nil {
			return err
		}
		if err := s.orderRepo.DeleteSnapshots(ctx, orderID); err != nil {
			return err
		}
		if err := s.orderRepo.DeleteOrder(ctx, orderID); err != nil {
			if errors.Is(err, repository.ErrOrderNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	prom.IncCounter(prom.SystemLedger, prom.MetricOrdersDeleted)
	s.afterCommit()
	return nil
}

func (s *OrderService) ListWithTotals(ctx context.Context, f model.OrderFilter) ([]*model.OrderWithTotal, int64, error) {
	return s.orderRepo.ListWithTotals(ctx, f)
}

func (s *OrderService) ProductsInOrder(ctx context.Context, orderID int64, limit, offset int) ([]*model.OrderLine, error) {
	if _, err := s.orderRepo.Get(ctx, orderID); err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return s.orderRepo.ProductsInOrder(ctx, orderID, limit, offset)
}

func (s *OrderService) Count(ctx context.Context) (int64, error) {
	return s.orderRepo.Count(ctx)
}

func (s *OrderService) Statistics(ctx context.Context) (*model.OrderStatistics, error) {
	return s.orderRepo.Statistics(ctx)
}
