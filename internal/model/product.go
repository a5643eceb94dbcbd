package model

import (
	"errors"
	"time"
)

// Product is a sellable item. Stock is nullable: nil means the stock level
// is not tracked and the product never participates in stock checks.
type Product struct {
	ID          int64     `json:"id"           db:"id"           gorm:"primaryKey;autoIncrement;column:id"`
	Name        string    `json:"name"         db:"name"         gorm:"column:name;not null"`
	PriceBuy    float64   `json:"price_buy"    db:"price_buy"    gorm:"column:price_buy;not null"`
	PriceSell   float64   `json:"price_sell"   db:"price_sell"   gorm:"column:price_sell;not null"`
	Stock       *int64    `json:"stock"        db:"stock"        gorm:"column:stock"`
	StockDanger int64     `json:"stock_danger" db:"stock_danger" gorm:"column:stock_danger;not null;default:0"`
	CreatedAt   time.Time `json:"created_at"   db:"created_at"   gorm:"column:created_at;autoCreateTime"`
}

func (Product) TableName() string { return "products" }

// Tracked reports whether stock bookkeeping applies to this product.
func (p *Product) Tracked() bool { return p.Stock != nil }

// LowStock reports whether a tracked product fell to its danger threshold.
func (p *Product) LowStock() bool { return p.Stock != nil && *p.Stock <= p.StockDanger }

type ProductCreateRequest struct {
	Name        string
	PriceBuy    float64
	PriceSell   float64
	Stock       *int64
	StockDanger int64
}

func (p ProductCreateRequest) Validate() error {
	if p.Name == "" {
		return errors.New("name is required")
	}
	if p.PriceBuy < 0 || p.PriceSell < 0 {
		return errors.New("prices cannot be negative")
	}
	if p.Stock != nil && *p.Stock < 0 {
		return errors.New("stock cannot be negative")
	}
	if p.StockDanger < 0 {
		return errors.New("stock_danger cannot be negative")
	}
	return nil
}

type ProductUpdateRequest struct {
	ID          int64
	Name        string
	PriceBuy    float64
	PriceSell   float64
	Stock       *int64
	StockDanger int64
}

func (p ProductUpdateRequest) Validate() error {
	if p.ID <= 0 {
		return errors.New("id is required")
	}
	return ProductCreateRequest{
		Name:        p.Name,
		PriceBuy:    p.PriceBuy,
		PriceSell:   p.PriceSell,
		Stock:       p.Stock,
		StockDanger: p.StockDanger,
	}.Validate()
}

type ProductSort string

const (
	ProductSortName  ProductSort = "name"
	ProductSortPrice ProductSort = "price"
	ProductSortStock ProductSort = "stock"
	ProductSortDate  ProductSort = "date"
)

// ProductFilter controls List queries.
type ProductFilter struct {
	Search    *string // name substring match
	SortBy    ProductSort
	Ascending bool
	Limit     int // default 50
	Offset    int
}
