package repository

import (
	"context"
	"errors"

	"github.com/nimasrn/retail-ledger/internal/model"
	"github.com/nimasrn/retail-ledger/pkg/store"
	"gorm.io/gorm"
)

var (
	// ErrBorrowerNotFound is returned when a borrower does not exist.
	ErrBorrowerNotFound = errors.New("borrower not found")
)

var borrowerSortColumns = map[model.BorrowerSort]string{
	model.BorrowerSortName:   "name",
	model.BorrowerSortDate:   "date",
	model.BorrowerSortAmount: "amount",
}

type BorrowerRepository struct {
	*store.DB
}

func NewBorrowerRepository(db *store.DB) *BorrowerRepository {
	return &BorrowerRepository{
		db,
	}
}

func (r *BorrowerRepository) Create(ctx context.Context, b *model.Borrower) (*model.Borrower, error) {
	entity := toBorrowerEntity(b)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toBorrowerModel(entity), nil
}

func (r *BorrowerRepository) Get(ctx context.Context, id int64) (*model.Borrower, error) {
	var entity BorrowerEntity
	err := r.Read(ctx).WithContext(ctx).First(&entity, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBorrowerNotFound
	}
	if err != nil {
		return nil, err
	}
	return toBorrowerModel(&entity), nil
}

func (r *BorrowerRepository) List(ctx context.Context, f model.BorrowerFilter) ([]*model.Borrower, int64, error) {
	q := r.Read(ctx).WithContext(ctx).Model(&BorrowerEntity{})

	if f.Search != nil && *f.Search != "" {
		q = q.Where("name LIKE ?", "%"+*f.Search+"%")
	}

	// Count before pagination
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Build order clause, unknown sort keys fall back to name
	column, ok := borrowerSortColumns[f.SortBy]
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

	var entities []*BorrowerEntity
	if err := q.Order(order).Limit(limit).Offset(offset).Find(&entities).Error; err != nil {
		return nil, 0, err
	}

	return toBorrowerModels(entities), total, nil
}

func (r *BorrowerRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.Read(ctx).WithContext(ctx).Model(&BorrowerEntity{}).Count(&total).Error
	return total, err
}

func (r *BorrowerRepository) UpdateAmount(ctx context.Context, id int64, amount float64) error {
	res := r.Write(ctx).WithContext(ctx).
		Model(&BorrowerEntity{}).
		Where("id = ?", id).
		Update("amount", amount)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrBorrowerNotFound
	}
	return nil
}

func (r *BorrowerRepository) Delete(ctx context.Context, id int64) error {
	res := r.Write(ctx).WithContext(ctx).Where("id = ?", id).Delete(&BorrowerEntity{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrBorrowerNotFound
	}
	return nil
}

// HasOrderSnapshot reports whether an order was ever charged to any
// borrower. At most one such snapshot can exist per order.
func (r *BorrowerRepository) HasOrderSnapshot(ctx context.Context, orderID int64) (bool, error) {
	var count int64
	err := r.Read(ctx).WithContext(ctx).
		Model(&OrderSnapshotEntity{}).
		Where("original_order_id = ?", orderID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *BorrowerRepository) InsertOrderSnapshot(ctx context.Context, s *model.OrderSnapshot) (*model.OrderSnapshot, error) {
	entity := toOrderSnapshotEntity(s)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toOrderSnapshotModel(entity), nil
}

func (r *BorrowerRepository) InsertOrderSnapshotProduct(ctx context.Context, p *model.OrderSnapshotProduct) error {
	return r.Write(ctx).WithContext(ctx).Create(toOrderSnapshotProductEntity(p)).Error
}

// SnapshotOrders returns a borrower's historical orders with their frozen
// product lines. The result does not depend on the live orders table.
func (r *BorrowerRepository) SnapshotOrders(ctx context.Context, borrowerID int64) ([]*model.SnapshotOrder, error) {
	var snapshots []*OrderSnapshotEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("borrower_id = ?", borrowerID).
		Order("date DESC, id DESC").
		Find(&snapshots).Error
	if err != nil {
		return nil, err
	}
	if len(snapshots) == 0 {
		return []*model.SnapshotOrder{}, nil
	}

	ids := make([]int64, len(snapshots))
	for i, s := range snapshots {
		ids[i] = s.ID
	}

	var products []*OrderSnapshotProductEntity
	err = r.Read(ctx).WithContext(ctx).
		Where("order_snapshot_id IN ?", ids).
		Order("id ASC").
		Find(&products).Error
	if err != nil {
		return nil, err
	}

	bySnapshot := make(map[int64][]model.SnapshotProduct, len(snapshots))
	for _, p := range products {
		bySnapshot[p.OrderSnapshotID] = append(bySnapshot[p.OrderSnapshotID], model.SnapshotProduct{
			Name:      p.Name,
			PriceSell: p.PriceSell,
			Quantity:  p.Quantity,
		})
	}

	orders := make([]*model.SnapshotOrder, len(snapshots))
	for i, s := range snapshots {
		orders[i] = &model.SnapshotOrder{
			OrderID:    s.OriginalOrderID,
			Date:       s.Date,
			TotalPrice: s.TotalPrice,
			Products:   bySnapshot[s.ID],
		}
	}
	return orders, nil
}
