package handlers

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/nimasrn/retail-ledger/internal/model"
	xhttp "github.com/nimasrn/retail-ledger/pkg/http"
)

type StatisticsService interface {
	DashboardKPIs(ctx context.Context) (*model.DashboardKPIs, error)
	SalesSeries(ctx context.Context, f model.SeriesFilter) (*model.SalesSeries, error)
	ProfitMargin(ctx context.Context) (*model.ProfitMargin, error)
	TopProducts(ctx context.Context, n int) ([]*model.TopProduct, error)
}

type StatisticsHandler struct {
	svc StatisticsService
}

func RegisterStatisticsRoutes(e *router.Group, h *StatisticsHandler) {
	e.GET("/statistics/kpis", h.GetKPIs)
	e.GET("/statistics/sales", h.GetSalesSeries)
	e.GET("/statistics/profit-margin", h.GetProfitMargin)
	e.GET("/statistics/top-products", h.GetTopProducts)
}

func NewStatisticsHandler(statisticsService StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{
		svc: statisticsService,
	}
}

func (h *StatisticsHandler) GetKPIs(ctx *xhttp.RequestCtx) {
	kpis, err := h.svc.DashboardKPIs(ctx)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 200, kpis)
}

func (h *StatisticsHandler) GetSalesSeries(ctx *xhttp.RequestCtx) {
	f := model.SeriesFilter{Granularity: model.GranularityDay}

	if v := query(ctx, "granularity"); v != "" {
		f.Granularity = model.Granularity(v)
	}
	if v := query(ctx, "from"); v != "" {
		if t, err := parseTime(v); err == nil {
			f.From = &t
		}
	}
	if v := query(ctx, "to"); v != "" {
		if t, err := parseTime(v); err == nil {
			f.To = &t
		}
	}

	series, err := h.svc.SalesSeries(ctx, f)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 200, series)
}

func (h *StatisticsHandler) GetProfitMargin(ctx *xhttp.RequestCtx) {
	margin, err := h.svc.ProfitMargin(ctx)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 200, margin)
}

func (h *StatisticsHandler) GetTopProducts(ctx *xhttp.RequestCtx) {
	n, _ := queryInt(ctx, "n")

	top, err := h.svc.TopProducts(ctx, n)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 200, top)
}
