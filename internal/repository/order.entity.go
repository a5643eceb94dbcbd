package repository

import (
	"time"

	"github.com/nimasrn/retail-ledger/internal/model"
)

type OrderEntity struct {
	ID        int64     `db:"id"         gorm:"primaryKey;autoIncrement;column:id"`
	CreatedAt time.Time `db:"created_at" gorm:"column:created_at;autoCreateTime"`
}

func (OrderEntity) TableName() string {
	return "orders"
}

func toOrderModel(e *OrderEntity) *model.Order {
	if e == nil {
		return nil
	}
	return &model.Order{
		ID:        e.ID,
		CreatedAt: e.CreatedAt,
	}
}

type ProductSnapshotEntity struct {
	ID        int64     `db:"id"         gorm:"primaryKey;autoIncrement;column:id"`
	OrderID   int64     `db:"order_id"   gorm:"column:order_id;not null;index"`
	ProductID int64     `db:"product_id" gorm:"column:product_id;not null"`
	Name      string    `db:"name"       gorm:"column:name;not null"`
	PriceBuy  float64   `db:"price_buy"  gorm:"column:price_buy;not null"`
	PriceSell float64   `db:"price_sell" gorm:"column:price_sell;not null"`
	Quantity  int64     `db:"quantity"   gorm:"column:quantity;not null"`
	CreatedAt time.Time `db:"created_at" gorm:"column:created_at;autoCreateTime"`
}

func (ProductSnapshotEntity) TableName() string {
	return "products_snapshots"
}

func toProductSnapshotEntity(s *model.ProductSnapshot) *ProductSnapshotEntity {
	if s == nil {
		return nil
	}
	return &ProductSnapshotEntity{
		ID:        s.ID,
		OrderID:   s.OrderID,
		ProductID: s.ProductID,
		Name:      s.Name,
		PriceBuy:  s.PriceBuy,
		PriceSell: s.PriceSell,
		Quantity:  s.Quantity,
		CreatedAt: s.CreatedAt,
	}
}

func toProductSnapshotModel(e *ProductSnapshotEntity) *model.ProductSnapshot {
	if e == nil {
		return nil
	}
	return &model.ProductSnapshot{
		ID:        e.ID,
		OrderID:   e.OrderID,
		ProductID: e.ProductID,
		Name:      e.Name,
		PriceBuy:  e.PriceBuy,
		PriceSell: e.PriceSell,
		Quantity:  e.Quantity,
		CreatedAt: e.CreatedAt,
	}
}

func toProductSnapshotModels(entities []*ProductSnapshotEntity) []*model.ProductSnapshot {
	if entities == nil {
		return nil
	}
	models := make([]*model.ProductSnapshot, len(entities))
	for i, e := range entities {
		models[i] = toProductSnapshotModel(e)
	}
	return models
}

// ProductOrderEntity is the legacy order/product junction. It carries no
// invariant of its own and is cleared opportunistically during pruning.
type ProductOrderEntity struct {
	ID         int64 `db:"id"          gorm:"primaryKey;autoIncrement;column:id"`
	OrderID    int64 `db:"order_id"    gorm:"column:order_id;not null;index"`
	ProductID  int64 `db:"product_id"  gorm:"column:product_id;not null"`
	SnapshotID int64 `db:"snapshot_id" gorm:"column:snapshot_id;not null"`
	Quantity   int64 `db:"quantity"    gorm:"column:quantity;not null"`
}

func (ProductOrderEntity) TableName() string {
	return "products_orders"
}

// OrderTotalsEntity is the scan target of the grouped orders query.
type OrderTotalsEntity struct {
	OrderID     int64     `gorm:"column:order_id"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	TotalSell   float64   `gorm:"column:total_sell"`
	Profit      float64   `gorm:"column:profit"`
	HasBorrower bool      `gorm:"column:has_borrower"`
}

func toOrderWithTotalModels(entities []*OrderTotalsEntity) []*model.OrderWithTotal {
	if entities == nil {
		return nil
	}
	models := make([]*model.OrderWithTotal, len(entities))
	for i, e := range entities {
		models[i] = &model.OrderWithTotal{
			OrderID:     e.OrderID,
			CreatedAt:   e.CreatedAt,
			TotalSell:   e.TotalSell,
			Profit:      e.Profit,
			HasBorrower: e.HasBorrower,
		}
	}
	return models
}
