package repository

import (
	"context"

	"github.com/nimasrn/retail-ledger/internal/model"
	"github.com/nimasrn/retail-ledger/pkg/store"
)

// sqlite strftime formats per bucket size. Weeks use the %W week-of-year
// counter, so a year boundary starts a new bucket.
var seriesBucketFormats = map[model.Granularity]string{
	model.GranularityDay:   "%Y-%m-%d",
	model.GranularityWeek:  "%Y-%W",
	model.GranularityMonth: "%Y-%m",
}

// StatisticsRepository is read-only. Every aggregate comes from snapshot
// rows, so it keeps working after products or live orders are deleted.
type StatisticsRepository struct {
	*store.DB
}

func NewStatisticsRepository(db *store.DB) *StatisticsRepository {
	return &StatisticsRepository{
		db,
	}
}

func (r *StatisticsRepository) DashboardKPIs(ctx context.Context) (*model.DashboardKPIs, error) {
	kpis := &model.DashboardKPIs{}

	var sales struct {
		TotalSales  float64 `gorm:"column:total_sales"`
		TotalProfit float64 `gorm:"column:total_profit"`
	}
	err := r.Read(ctx).WithContext(ctx).
		Model(&ProductSnapshotEntity{}).
		Select(`
            COALESCE(SUM(price_sell * quantity), 0)               AS total_sales,
            COALESCE(SUM((price_sell - price_buy) * quantity), 0) AS total_profit
        `).
		Scan(&sales).Error
	if err != nil {
		return nil, err
	}
	kpis.TotalSales = sales.TotalSales
	kpis.TotalProfit = sales.TotalProfit

	if err := r.Read(ctx).WithContext(ctx).Model(&OrderEntity{}).Count(&kpis.TotalOrders).Error; err != nil {
		return nil, err
	}

	// Debt derives from borrower order snapshots, not Borrower.Amount.
	var debt struct {
		TotalDebt float64 `gorm:"column:total_debt"`
	}
	err = r.Read(ctx).WithContext(ctx).
		Model(&OrderSnapshotEntity{}).
		Select("COALESCE(SUM(total_price), 0) AS total_debt").
		Scan(&debt).Error
	if err != nil {
		return nil, err
	}
	kpis.TotalDebt = debt.TotalDebt

	return kpis, nil
}

func (r *StatisticsRepository) SalesSeries(ctx context.Context, f model.SeriesFilter) (*model.SalesSeries, error) {
	format, ok := seriesBucketFormats[f.Granularity]
	if !ok {
		format = seriesBucketFormats[model.GranularityDay]
	}

	q := r.Read(ctx).WithContext(ctx).
		Model(&ProductSnapshotEntity{}).
		Select(`
            strftime(?, created_at)                               AS bucket,
            COALESCE(SUM(price_sell * quantity), 0)               AS sales,
            COALESCE(SUM((price_sell - price_buy) * quantity), 0) AS profit
        `, format)

	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at < ?", *f.To)
	}

	var points []model.SeriesPoint
	if err := q.Group("bucket").Order("bucket ASC").Scan(&points).Error; err != nil {
		return nil, err
	}

	series := &model.SalesSeries{Points: points}
	for _, p := range points {
		series.TotalSales += p.Sales
		series.TotalProfit += p.Profit
	}
	return series, nil
}

func (r *StatisticsRepository) ProfitMargin(ctx context.Context) (*model.ProfitMargin, error) {
	var margin model.ProfitMargin
	err := r.Read(ctx).WithContext(ctx).
		Model(&ProductSnapshotEntity{}).
		Select(`
            COALESCE(SUM((price_sell - price_buy) * quantity), 0) AS total_profit,
            COALESCE(SUM(price_buy * quantity), 0)                AS total_cost
        `).
		Scan(&margin).Error
	if err != nil {
		return nil, err
	}
	return &margin, nil
}

func (r *StatisticsRepository) TopProducts(ctx context.Context, n int) ([]*model.TopProduct, error) {
	if n <= 0 || n > 100 {
		n = 10
	}

	var products []*model.TopProduct
	err := r.Read(ctx).WithContext(ctx).
		Model(&ProductSnapshotEntity{}).
		Select("name, SUM(quantity) AS quantity_sold").
		Group("name").
		Order("quantity_sold DESC, name ASC").
		Limit(n).
		Scan(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}
