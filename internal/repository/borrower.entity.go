package repository

import (
	"time"

	"github.com/nimasrn/retail-ledger/internal/model"
)

type BorrowerEntity struct {
	ID     int64     `db:"id"     gorm:"primaryKey;autoIncrement;column:id"`
	Name   string    `db:"name"   gorm:"column:name;not null"`
	Date   time.Time `db:"date"   gorm:"column:date"`
	Amount float64   `db:"amount" gorm:"column:amount;not null;default:0"`
}

func (BorrowerEntity) TableName() string {
	return "borrowers"
}

func toBorrowerEntity(b *model.Borrower) *BorrowerEntity {
	if b == nil {
		return nil
	}
	return &BorrowerEntity{
		ID:     b.ID,
		Name:   b.Name,
		Date:   b.Date,
		Amount: b.Amount,
	}
}

func toBorrowerModel(e *BorrowerEntity) *model.Borrower {
	if e == nil {
		return nil
	}
	return &model.Borrower{
		ID:     e.ID,
		Name:   e.Name,
		Date:   e.Date,
		Amount: e.Amount,
	}
}

func toBorrowerModels(entities []*BorrowerEntity) []*model.Borrower {
	if entities == nil {
		return nil
	}
	models := make([]*model.Borrower, len(entities))
	for i, e := range entities {
		models[i] = toBorrowerModel(e)
	}
	return models
}

type OrderSnapshotEntity struct {
	ID              int64     `db:"id"                gorm:"primaryKey;autoIncrement;column:id"`
	OriginalOrderID int64     `db:"original_order_id" gorm:"column:original_order_id;not null;index"`
	BorrowerID      int64     `db:"borrower_id"       gorm:"column:borrower_id;not null;index"`
	Date            time.Time `db:"date"              gorm:"column:date"`
	TotalPrice      float64   `db:"total_price"       gorm:"column:total_price;not null"`
}

func (OrderSnapshotEntity) TableName() string {
	return "orders_snapshots"
}

func toOrderSnapshotEntity(s *model.OrderSnapshot) *OrderSnapshotEntity {
	if s == nil {
		return nil
	}
	return &OrderSnapshotEntity{
		ID:              s.ID,
		OriginalOrderID: s.OriginalOrderID,
		BorrowerID:      s.BorrowerID,
		Date:            s.Date,
		TotalPrice:      s.TotalPrice,
	}
}

func toOrderSnapshotModel(e *OrderSnapshotEntity) *model.OrderSnapshot {
	if e == nil {
		return nil
	}
	return &model.OrderSnapshot{
		ID:              e.ID,
		OriginalOrderID: e.OriginalOrderID,
		BorrowerID:      e.BorrowerID,
		Date:            e.Date,
		TotalPrice:      e.TotalPrice,
	}
}

type OrderSnapshotProductEntity struct {
	ID              int64   `db:"id"                gorm:"primaryKey;autoIncrement;column:id"`
	OrderSnapshotID int64   `db:"order_snapshot_id" gorm:"column:order_snapshot_id;not null;index"`
	Name            string  `db:"name"              gorm:"column:name;not null"`
	PriceSell       float64 `db:"price_sell"        gorm:"column:price_sell;not null"`
	Quantity        int64   `db:"quantity"          gorm:"column:quantity;not null"`
}

func (OrderSnapshotProductEntity) TableName() string {
	return "orders_snapshots_products"
}

func toOrderSnapshotProductEntity(p *model.OrderSnapshotProduct) *OrderSnapshotProductEntity {
	if p == nil {
		return nil
	}
	return &OrderSnapshotProductEntity{
		ID:              p.ID,
		OrderSnapshotID: p.OrderSnapshotID,
		Name:            p.Name,
		PriceSell:       p.PriceSell,
		Quantity:        p.Quantity,
	}
}
