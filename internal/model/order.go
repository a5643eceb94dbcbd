package model

import (
	"errors"
	"time"
)

// Order is a live, cancellable sale event. All economics live in the
// ProductSnapshot rows frozen at creation time.
type Order struct {
	ID        int64     `json:"id"         db:"id"         gorm:"primaryKey;autoIncrement;column:id"`
	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"column:created_at"`
}

func (Order) TableName() string { return "orders" }

// ProductSnapshot is an immutable copy of a product's economics at sale
// time. Later edits or deletion of the product never reach it.
type ProductSnapshot struct {
	ID        int64     `json:"id"         db:"id"         gorm:"primaryKey;autoIncrement;column:id"`
	OrderID   int64     `json:"order_id"   db:"order_id"   gorm:"column:order_id;not null;index"`
	ProductID int64     `json:"product_id" db:"product_id" gorm:"column:product_id;not null"`
	Name      string    `json:"name"       db:"name"       gorm:"column:name;not null"`
	PriceBuy  float64   `json:"price_buy"  db:"price_buy"  gorm:"column:price_buy;not null"`
	PriceSell float64   `json:"price_sell" db:"price_sell" gorm:"column:price_sell;not null"`
	Quantity  int64     `json:"quantity"   db:"quantity"   gorm:"column:quantity;not null"`
	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"column:created_at"`
}

func (ProductSnapshot) TableName() string { return "products_snapshots" }

type LineItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

var ErrEmptyOrder = errors.New("cannot create an empty order")

type OrderCreateRequest struct {
	Items []LineItem
}

func (r OrderCreateRequest) Validate() error {
	if len(r.Items) == 0 {
		return ErrEmptyOrder
	}
	for _, item := range r.Items {
		if item.ProductID <= 0 {
			return errors.New("product_id is required")
		}
		if item.Quantity <= 0 {
			return errors.New("quantity must be positive")
		}
	}
	return nil
}

type OrderSort string

const (
	OrderSortDate   OrderSort = "date"
	OrderSortTotal  OrderSort = "total"
	OrderSortProfit OrderSort = "profit"
)

// OrderFilter controls ListWithTotals queries.
type OrderFilter struct {
	SortBy    OrderSort
	Ascending bool
	Limit     int // default 50
	Offset    int
}

// OrderWithTotal is one order aggregated over its snapshots.
type OrderWithTotal struct {
	OrderID     int64     `json:"order_id"`
	CreatedAt   time.Time `json:"created_at"`
	TotalSell   float64   `json:"total_sell"`
	Profit      float64   `json:"profit"`
	HasBorrower bool      `json:"has_borrower"`
}

// OrderLine is one snapshot line as shown inside an order.
type OrderLine struct {
	Name         string  `json:"name"`
	Quantity     int64   `json:"quantity"`
	PriceSell    float64 `json:"price_sell"`
	SubtotalSell float64 `json:"subtotal_sell"`
}

// OrderStatistics aggregates the whole order history. LargestOrderProfit
// belongs to the same order as LargestOrderTotal, it is not an independent
// maximum.
type OrderStatistics struct {
	TotalOrders        int64   `json:"total_orders"`
	TotalProfit        float64 `json:"total_profit"`
	AverageProfit      float64 `json:"average_profit"`
	WithBorrower       int64   `json:"with_borrower"`
	LargestOrderTotal  float64 `json:"largest_order_total"`
	LargestOrderProfit float64 `json:"largest_order_profit"`
}
