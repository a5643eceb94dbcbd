package repository

import (
	"context"
	"errors"

	"github.com/nimasrn/retail-ledger/internal/model"
	"github.com/nimasrn/retail-ledger/pkg/store"
	"gorm.io/gorm"
)

var (
	// ErrProductNotFound is returned when a product does not exist.
	ErrProductNotFound = errors.New("product not found")
)

var productSortColumns = map[model.ProductSort]string{
	model.ProductSortName:  "name",
	model.ProductSortPrice: "price_sell",
	model.ProductSortStock: "stock",
	model.ProductSortDate:  "created_at",
}

type ProductRepository struct {
	*store.DB
}

func NewProductRepository(db *store.DB) *ProductRepository {
	return &ProductRepository{
		db,
	}
}

func (r *ProductRepository) Create(ctx context.Context, p *model.Product) (*model.Product, error) {
	entity := toProductEntity(p)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toProductModel(entity), nil
}

// Update overwrites every editable field, including a NULL stock when the
// caller switched the product to untracked.
func (r *ProductRepository) Update(ctx context.Context, p *model.Product) error {
	res := r.Write(ctx).WithContext(ctx).
		Model(&ProductEntity{}).
		Where("id = ?", p.ID).
		Select("name", "price_buy", "price_sell", "stock", "stock_danger").
		Updates(toProductEntity(p))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	res := r.Write(ctx).WithContext(ctx).Where("id = ?", id).Delete(&ProductEntity{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *ProductRepository) Get(ctx context.Context, id int64) (*model.Product, error) {
	var entity ProductEntity
	err := r.Read(ctx).WithContext(ctx).First(&entity, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return toProductModel(&entity), nil
}

func (r *ProductRepository) List(ctx context.Context, f model.ProductFilter) ([]*model.Product, int64, error) {
	q := r.Read(ctx).WithContext(ctx).Model(&ProductEntity{})

	if f.Search != nil && *f.Search != "" {
		q = q.Where("name LIKE ?", "%"+*f.Search+"%")
	}

	// Count before pagination
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Build order clause, unknown sort keys fall back to name
	column, ok := productSortColumns[f.SortBy]
	if !ok {
		column = "name"
	}
	order := column
	if f.Ascending {
		order += " ASC"
	} else {
		order += " DESC"
	}

	// Apply pagination
	limit := f.Limit
	if limit <= 0 || limit > 1000 {
		limit = 50
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	var entities []*ProductEntity
	if err := q.Order(order).Limit(limit).Offset(offset).Find(&entities).Error; err != nil {
		return nil, 0, err
	}

	return toProductModels(entities), total, nil
}

func (r *ProductRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.Read(ctx).WithContext(ctx).Model(&ProductEntity{}).Count(&total).Error
	return total, err
}

// LowStock lists tracked products at or below their danger threshold.
func (r *ProductRepository) LowStock(ctx context.Context, limit int) ([]*model.Product, error) {
	if limit <= 0 || limit > 1000 {
		limit = 50
	}

	var entities []*ProductEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("stock IS NOT NULL AND stock <= stock_danger").
		Order("stock ASC").
		Limit(limit).
		Find(&entities).Error
	if err != nil {
		return nil, err
	}
	return toProductModels(entities), nil
}

// DecrementStock subtracts qty from a tracked product's stock. Untracked
// products are left alone and report success.
func (r *ProductRepository) DecrementStock(ctx context.Context, id int64, qty int64) error {
	return r.Write(ctx).WithContext(ctx).
		Model(&ProductEntity{}).
		Where("id = ? AND stock IS NOT NULL", id).
		Update("stock", gorm.Expr("stock - ?", qty)).Error
}

// RestoreStock adds qty back to a tracked product's stock. Returns false
// when the product no longer exists, which order deletion treats as fine.
func (r *ProductRepository) RestoreStock(ctx context.Context, id int64, qty int64) (bool, error) {
	res := r.Write(ctx).WithContext(ctx).
		Model(&ProductEntity{}).
		Where("id = ? AND stock IS NOT NULL", id).
		Update("stock", gorm.Expr("stock + ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
