package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/shoe-workshop/internal/model"
)

// Analytics periods.
const (
	PeriodToday = "today"
	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodYear  = "year"
)

// PeriodStart returns the start of the reporting window for period,
// measured in UTC.  week is a rolling seven days; anything unrecognised
// is treated as month.
func PeriodStart(period string, now time.Time) time.Time {
	now = now.UTC()
	y, m, d := now.Date()
	switch period {
	case PeriodToday:
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	case PeriodWeek:
		return now.Add(-7 * 24 * time.Hour)
	case PeriodYear:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	}
}

// summarize builds the payload; the average is 0 without orders.
func summarize(period string, totalSales decimal.Decimal, totalOrders int) model.SalesSummary {
	avg := decimal.Zero
	if totalOrders > 0 {
		avg = totalSales.Div(decimal.NewFromInt(int64(totalOrders))).Round(2)
	}
	return model.SalesSummary{
		TotalSales:        totalSales,
		TotalOrders:       totalOrders,
		AverageOrderValue: avg,
		Period:            period,
	}
}

// Summary reports completed payment totals and the number of orders not
// cancelled since the start of period.  An empty period means month.
func (s *OrderService) Summary(ctx context.Context, period string) (model.SalesSummary, error) {
	if period == "" {
		period = PeriodMonth
	}
	since := PeriodStart(period, s.now())
	orders, err := s.orders.CountActiveSince(ctx, since)
	if err != nil {
		return model.SalesSummary{}, err
	}
	sales, err := s.payments.SumCompletedSince(ctx, since)
	if err != nil {
		return model.SalesSummary{}, err
	}
	return summarize(period, sales, orders), nil
}
