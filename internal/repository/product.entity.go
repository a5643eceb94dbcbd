package repository

import (
	"time"

	"github.com/nimasrn/retail-ledger/internal/model"
)

type ProductEntity struct {
	ID          int64     `db:"id"           gorm:"primaryKey;autoIncrement;column:id"`
	Name        string    `db:"name"         gorm:"column:name;not null"`
	PriceBuy    float64   `db:"price_buy"    gorm:"column:price_buy;not null"`
	PriceSell   float64   `db:"price_sell"   gorm:"column:price_sell;not null"`
	Stock       *int64    `db:"stock"        gorm:"column:stock"`
	StockDanger int64     `db:"stock_danger" gorm:"column:stock_danger;not null;default:0"`
	CreatedAt   time.Time `db:"created_at"   gorm:"column:created_at;autoCreateTime"`
}

func (ProductEntity) TableName() string {
	return "products"
}

func toProductEntity(p *model.Product) *ProductEntity {
	if p == nil {
		return nil
	}
	return &ProductEntity{
		ID:          p.ID,
		Name:        p.Name,
		PriceBuy:    p.PriceBuy,
		PriceSell:   p.PriceSell,
		Stock:       p.Stock,
		StockDanger: p.StockDanger,
		CreatedAt:   p.CreatedAt,
	}
}

func toProductModel(e *ProductEntity) *model.Product {
	if e == nil {
		return nil
	}
	return &model.Product{
		ID:          e.ID,
		Name:        e.Name,
		PriceBuy:    e.PriceBuy,
		PriceSell:   e.PriceSell,
		Stock:       e.Stock,
		StockDanger: e.StockDanger,
		CreatedAt:   e.CreatedAt,
	}
}

func toProductModels(entities []*ProductEntity) []*model.Product {
	if entities == nil {
		return nil
	}
	models := make([]*model.Product, len(entities))
	for i, e := range entities {
		models[i] = toProductModel(e)
	}
	return models
}
