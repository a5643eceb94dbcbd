package services

import (
	"context"

	"github.com/nimasrn/retail-ledger/internal/model"
	"github.com/stretchr/testify/mock"
)

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context) (*model.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) Get(ctx context.Context, id int64) (*model.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) InsertSnapshot(ctx context.Context, s *model.ProductSnapshot) (*model.ProductSnapshot, error) {
	args := m.Called(ctx, s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProductSnapshot), args.Error(1)
}

func (m *MockOrderRepository) SnapshotsForOrder(ctx context.Context, orderID int64) ([]*model.ProductSnapshot, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.ProductSnapshot), args.Error(1)
}

func (m *MockOrderRepository) ProductsInOrder(ctx context.Context, orderID int64, limit, offset int) ([]*model.OrderLine, error) {
	args := m.Called(ctx, orderID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.OrderLine), args.Error(1)
}

func (m *MockOrderRepository) DeleteSnapshots(ctx context.Context, orderID int64) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func (m *MockOrderRepository) DeleteJunctionRows(ctx context.Context, orderID int64) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func (m *MockOrderRepository) DeleteOrder(ctx context.Context, orderID int64) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func (m *MockOrderRepository) ListWithTotals(ctx context.Context, f model.OrderFilter) ([]*model.OrderWithTotal, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*model.OrderWithTotal), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) Statistics(ctx context.Context) (*model.OrderStatistics, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderStatistics), args.Error(1)
}

func (m *MockOrderRepository) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, p *model.Product) (*model.Product, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductRepository) Update(ctx context.Context, p *model.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) Get(ctx context.Context, id int64) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductRepository) List(ctx context.Context, f model.ProductFilter) ([]*model.Product, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*model.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) LowStock(ctx context.Context, limit int) ([]*model.Product, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Product), args.Error(1)
}

func (m *MockProductRepository) DecrementStock(ctx context.Context, id int64, qty int64) error {
	args := m.Called(ctx, id, qty)
	return args.Error(0)
}

func (m *MockProductRepository) RestoreStock(ctx context.Context, id int64, qty int64) (bool, error) {
	args := m.Called(ctx, id, qty)
	return args.Bool(0), args.Error(1)
}

type MockStatisticsRepository struct {
	mock.Mock
}

func (m *MockStatisticsRepository) DashboardKPIs(ctx context.Context) (*model.DashboardKPIs, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DashboardKPIs), args.Error(1)
}

func (m *MockStatisticsRepository) SalesSeries(ctx context.Context, f model.SeriesFilter) (*model.SalesSeries, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SalesSeries), args.Error(1)
}

func (m *MockStatisticsRepository) ProfitMargin(ctx context.Context) (*model.ProfitMargin, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProfitMargin), args.Error(1)
}

func (m *MockStatisticsRepository) TopProducts(ctx context.Context, n int) ([]*model.TopProduct, error) {
	args := m.Called(ctx, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.TopProduct), args.Error(1)
}

// captureFlusher and captureCache record the post-commit hooks.
type captureFlusher struct {
	enqueued int
}

func (f *captureFlusher) Enqueue() { f.enqueued++ }

type captureCache struct {
	invalidated int
}

func (c *captureCache) Invalidate() { c.invalidated++ }
