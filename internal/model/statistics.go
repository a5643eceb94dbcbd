package model

import (
	"errors"
	"time"
)

// DashboardKPIs are the headline aggregates. TotalDebt is the sum of
// borrower order-snapshot totals, not of Borrower.Amount.
type DashboardKPIs struct {
	TotalSales  float64 `json:"total_sales"`
	TotalOrders int64   `json:"total_orders"`
	TotalProfit float64 `json:"total_profit"`
	TotalDebt   float64 `json:"total_debt"`
}

type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

func (g Granularity) Validate() error {
	switch g {
	case GranularityDay, GranularityWeek, GranularityMonth:
		return nil
	}
	return errors.New("granularity must be day, week or month")
}

// SeriesFilter selects the bucketing and optional date range of a sales
// series.
type SeriesFilter struct {
	Granularity Granularity
	From        *time.Time
	To          *time.Time
}

type SeriesPoint struct {
	Bucket string  `json:"bucket"`
	Sales  float64 `json:"sales"`
	Profit float64 `json:"profit"`
}

type SalesSeries struct {
	Points      []SeriesPoint `json:"points"`
	TotalSales  float64       `json:"total_sales"`
	TotalProfit float64       `json:"total_profit"`
}

type ProfitMargin struct {
	TotalProfit float64 `json:"total_profit"`
	TotalCost   float64 `json:"total_cost"`
}

type TopProduct struct {
	Name         string `json:"name"`
	QuantitySold int64  `json:"quantity_sold"`
}
