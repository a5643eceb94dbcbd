package repository

import (
	"context"
	"errors"
	"time"

	"github.com/nimasrn/retail-ledger/internal/model"
	"github.com/nimasrn/retail-ledger/pkg/store"
	"gorm.io/gorm"
)

var (
	// ErrOrderNotFound is returned when an order does not exist.
	ErrOrderNotFound = errors.New("order not found")
)

var orderSortColumns = map[model.OrderSort]string{
	model.OrderSortDate:   "created_at",
	model.OrderSortTotal:  "total_sell",
	model.OrderSortProfit: "profit",
}

type OrderRepository struct {
	*store.DB
}

func NewOrderRepository(db *store.DB) *OrderRepository {
	return &OrderRepository{
		db,
	}
}

func (r *OrderRepository) Create(ctx context.Context) (*model.Order, error) {
	entity := &OrderEntity{}

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toOrderModel(entity), nil
}

// CreateAt inserts an order with an explicit date. Used by the sample
// data generator to spread history over the past.
func (r *OrderRepository) CreateAt(ctx context.Context, createdAt time.Time) (*model.Order, error) {
	entity := &OrderEntity{CreatedAt: createdAt}

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toOrderModel(entity), nil
}

func (r *OrderRepository) Get(ctx context.Context, id int64) (*model.Order, error) {
	var entity OrderEntity
	err := r.Read(ctx).WithContext(ctx).First(&entity, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return toOrderModel(&entity), nil
}

func (r *OrderRepository) InsertSnapshot(ctx context.Context, s *model.ProductSnapshot) (*model.ProductSnapshot, error) {
	entity := toProductSnapshotEntity(s)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toProductSnapshotModel(entity), nil
}

func (r *OrderRepository) SnapshotsForOrder(ctx context.Context, orderID int64) ([]*model.ProductSnapshot, error) {
	var entities []*ProductSnapshotEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id ASC").
		Find(&entities).Error
	if err != nil {
		return nil, err
	}
	return toProductSnapshotModels(entities), nil
}

// ProductsInOrder lists an order's snapshot lines as they are displayed:
// name, unit price and the line subtotal.
func (r *OrderRepository) ProductsInOrder(ctx context.Context, orderID int64, limit, offset int) ([]*model.OrderLine, error) {
	if limit <= 0 || limit > 1000 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var lines []*model.OrderLine
	err := r.Read(ctx).WithContext(ctx).
		Model(&ProductSnapshotEntity{}).
		Select("name, quantity, price_sell, price_sell * quantity AS subtotal_sell").
		Where("order_id = ?", orderID).
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Scan(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *OrderRepository) DeleteSnapshots(ctx context.Context, orderID int64) error {
	return r.Write(ctx).WithContext(ctx).
		Where("order_id = ?", orderID).
		Delete(&ProductSnapshotEntity{}).Error
}

func (r *OrderRepository) DeleteJunctionRows(ctx context.Context, orderID int64) error {
	return r.Write(ctx).WithContext(ctx).
		Where("order_id = ?", orderID).
		Delete(&ProductOrderEntity{}).Error
}

func (r *OrderRepository) DeleteOrder(ctx context.Context, orderID int64) error {
	res := r.Write(ctx).WithContext(ctx).Where("id = ?", orderID).Delete(&OrderEntity{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *OrderRepository) ListWithTotals(ctx context.Context, f model.OrderFilter) ([]*model.OrderWithTotal, int64, error) {
	// Count before pagination; every order is exactly one grouped row.
	var total int64
	if err := r.Read(ctx).WithContext(ctx).Model(&OrderEntity{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Build order clause, unknown sort keys fall back to date. Ties always
	// break on the order id ascending, so equal rows surface in insertion
	// order whatever the sort direction.
	column, ok := orderSortColumns[f.SortBy]
	if !ok {
		column = "created_at"
	}
	dir := "DESC"
	if f.Ascending {
		dir = "ASC"
	}
	order := column + " " + dir + ", order_id ASC"

	// Apply pagination
	limit := f.Limit
	if limit <= 0 || limit > 1000 {
		limit = 50
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	var entities []*OrderTotalsEntity
	err := r.buildOrderTotalsQuery(ctx).
		Order(order).
		Limit(limit).
		Offset(offset).
		Find(&entities).Error
	if err != nil {
		return nil, 0, err
	}

	return toOrderWithTotalModels(entities), total, nil
}

func (r *OrderRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.Read(ctx).WithContext(ctx).Model(&OrderEntity{}).Count(&total).Error
	return total, err
}

// Statistics aggregates the whole order history in one pass over the
// grouped totals. The largest order's total and profit come from the same
// row, the profit is not an independent maximum.
func (r *OrderRepository) Statistics(ctx context.Context) (*model.OrderStatistics, error) {
	stats := &model.OrderStatistics{}

	var agg struct {
		TotalOrders  int64   `gorm:"column:total_orders"`
		TotalProfit  float64 `gorm:"column:total_profit"`
		WithBorrower int64   `gorm:"column:with_borrower"`
	}
	err := r.Read(ctx).WithContext(ctx).Raw(`
        SELECT
            COUNT(*)                                          AS total_orders,
            COALESCE(SUM(t.profit), 0)                        AS total_profit,
            COALESCE(SUM(CASE WHEN t.has_borrower THEN 1 ELSE 0 END), 0) AS with_borrower
        FROM (` + orderTotalsSQL + `) AS t
    `).Scan(&agg).Error
	if err != nil {
		return nil, err
	}

	stats.TotalOrders = agg.TotalOrders
	stats.TotalProfit = agg.TotalProfit
	stats.WithBorrower = agg.WithBorrower
	if agg.TotalOrders > 0 {
		stats.AverageProfit = agg.TotalProfit / float64(agg.TotalOrders)
	}

	var largest OrderTotalsEntity
	res := r.Read(ctx).WithContext(ctx).Raw(`
        SELECT t.* FROM (` + orderTotalsSQL + `) AS t
        ORDER BY t.total_sell DESC, t.order_id ASC
        LIMIT 1
    `).Scan(&largest)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected > 0 {
		stats.LargestOrderTotal = largest.TotalSell
		stats.LargestOrderProfit = largest.Profit
	}

	return stats, nil
}

const orderTotalsSQL = `
        SELECT
            o.id                                                           AS order_id,
            o.created_at                                                   AS created_at,
            COALESCE(SUM(ps.price_sell * ps.quantity), 0)                  AS total_sell,
            COALESCE(SUM((ps.price_sell - ps.price_buy) * ps.quantity), 0) AS profit,
            EXISTS(
                SELECT 1 FROM orders_snapshots os
                WHERE os.original_order_id = o.id
            )                                                              AS has_borrower
        FROM orders AS o
        LEFT JOIN products_snapshots AS ps ON ps.order_id = o.id
        GROUP BY o.id, o.created_at`

func (r *OrderRepository) buildOrderTotalsQuery(ctx context.Context) *gorm.DB {
	return r.Read(ctx).WithContext(ctx).
		Table("orders AS o").
		Select(`
            o.id                                                           AS order_id,
            o.created_at                                                   AS created_at,
            COALESCE(SUM(ps.price_sell * ps.quantity), 0)                  AS total_sell,
            COALESCE(SUM((ps.price_sell - ps.price_buy) * ps.quantity), 0) AS profit,
            EXISTS(
                SELECT 1 FROM orders_snapshots os
                WHERE os.original_order_id = o.id
            )                                                              AS has_borrower
        `).
		Joins("LEFT JOIN products_snapshots AS ps ON ps.order_id = o.id").
		Group("o.id, o.created_at")
}
