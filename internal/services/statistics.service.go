package services

import (
	"context"

	"github.com/nimasrn/retail-ledger/internal/model"
)

type StatisticsRepository interface {
	DashboardKPIs(ctx context.Context) (*model.DashboardKPIs, error)
	SalesSeries(ctx context.Context, f model.SeriesFilter) (*model.SalesSeries, error)
	ProfitMargin(ctx context.Context) (*model.ProfitMargin, error)
	TopProducts(ctx context.Context, n int) ([]*model.TopProduct, error)
}

// KPICache is a read-through cache for the dashboard KPIs. A miss or a
// cache failure falls through to the repository.
type KPICache interface {
	GetKPIs(ctx context.Context) (*model.DashboardKPIs, bool)
	SetKPIs(ctx context.Context, kpis *model.DashboardKPIs)
	Invalidate()
}

type StatisticsService struct {
	statsRepo StatisticsRepository
	cache     KPICache
}

func NewStatisticsService(statsRepo StatisticsRepository, cache KPICache) *StatisticsService {
	return &StatisticsService{
		statsRepo: statsRepo,
		cache:     cache,
	}
}

func (s *StatisticsService) DashboardKPIs(ctx context.Context) (*model.DashboardKPIs, error) {
	if s.cache != nil {
		if kpis, ok := s.cache.GetKPIs(ctx); ok {
			return kpis, nil
		}
	}

	kpis, err := s.statsRepo.DashboardKPIs(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.SetKPIs(ctx, kpis)
	}
	return kpis, nil
}

func (s *StatisticsService) SalesSeries(ctx context.Context, f model.SeriesFilter) (*model.SalesSeries, error) {
	if err := f.Granularity.Validate(); err != nil {
		return nil, err
	}
	return s.statsRepo.SalesSeries(ctx, f)
}

func (s *StatisticsService) ProfitMargin(ctx context.Context) (*model.ProfitMargin, error) {
	return s.statsRepo.ProfitMargin(ctx)
}

func (s *StatisticsService) TopProducts(ctx context.Context, n int) ([]*model.TopProduct, error) {
	return s.statsRepo.TopProducts(ctx, n)
}
