package model

import (
	"errors"
	"time"
)

// Borrower is a credit customer. Amount is a legacy running field kept for
// display; debt reporting derives from OrderSnapshot totals so deleting a
// live order never double-accounts.
type Borrower struct {
	ID     int64     `json:"id"     db:"id"     gorm:"primaryKey;autoIncrement;column:id"`
	Name   string    `json:"name"   db:"name"   gorm:"column:name;not null"`
	Date   time.Time `json:"date"   db:"date"   gorm:"column:date"`
	Amount float64   `json:"amount" db:"amount" gorm:"column:amount;not null;default:0"`
}

func (Borrower) TableName() string { return "borrowers" }

// OrderSnapshot records "this historical order was charged to this
// borrower". Created at most once per order and intentionally decoupled
// from the live order's lifecycle: deleting the order leaves it in place.
type OrderSnapshot struct {
	ID              int64     `json:"id"                db:"id"                gorm:"primaryKey;autoIncrement;column:id"`
	OriginalOrderID int64     `json:"original_order_id" db:"original_order_id" gorm:"column:original_order_id;not null;index"`
	BorrowerID      int64     `json:"borrower_id"       db:"borrower_id"       gorm:"column:borrower_id;not null;index"`
	Date            time.Time `json:"date"              db:"date"              gorm:"column:date"`
	TotalPrice      float64   `json:"total_price"       db:"total_price"       gorm:"column:total_price;not null"`
}

func (OrderSnapshot) TableName() string { return "orders_snapshots" }

// OrderSnapshotProduct is the borrower-side freeze of one line item,
// independent of the live ProductSnapshot rows.
type OrderSnapshotProduct struct {
	ID              int64   `json:"id"                db:"id"                gorm:"primaryKey;autoIncrement;column:id"`
	OrderSnapshotID int64   `json:"order_snapshot_id" db:"order_snapshot_id" gorm:"column:order_snapshot_id;not null;index"`
	Name            string  `json:"name"              db:"name"              gorm:"column:name;not null"`
	PriceSell       float64 `json:"price_sell"        db:"price_sell"        gorm:"column:price_sell;not null"`
	Quantity        int64   `json:"quantity"          db:"quantity"          gorm:"column:quantity;not null"`
}

func (OrderSnapshotProduct) TableName() string { return "orders_snapshots_products" }

type BorrowerCreateRequest struct {
	Name   string
	Date   time.Time
	Amount float64
}

func (b BorrowerCreateRequest) Validate() error {
	if b.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

type BorrowerSort string

const (
	BorrowerSortName   BorrowerSort = "name"
	BorrowerSortDate   BorrowerSort = "date"
	BorrowerSortAmount BorrowerSort = "amount"
)

// BorrowerFilter controls List queries.
type BorrowerFilter struct {
	Search    *string // name substring match
	SortBy    BorrowerSort
	Ascending bool
	Limit     int // default 50
	Offset    int
}

// LinkResult is the soft outcome of linking an order to a borrower. An
// already-linked order yields Success=false without an error: nothing was
// written and nothing needs rolling back.
type LinkResult struct {
	Success bool   `json:"success"`
	Reason  string `json:"reason,omitempty"`
}

// SnapshotOrder is one historical order as seen from a borrower's ledger,
// complete even when the live order is long gone.
type SnapshotOrder struct {
	OrderID    int64             `json:"order_id"`
	Date       time.Time         `json:"order_date"`
	TotalPrice float64           `json:"total_price"`
	Products   []SnapshotProduct `json:"products"`
}

type SnapshotProduct struct {
	Name      string  `json:"name"`
	PriceSell float64 `json:"price_sell"`
	Quantity  int64   `json:"quantity"`
}
