package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/sweetshop/app/models"
	"github.com/shashiranjanraj/sweetshop/app/repositories"
)

// Summary is the sales overview shown on the admin dashboard.
type Summary struct {
	CurrentMonth   models.Aggregate `json:"current_month"`
	PreviousMonth  models.Aggregate `json:"previous_month"`
	AllTime        models.Aggregate `json:"all_time"`
	GrowthRate     float64          `json:"growth_rate"`
	TotalCustomers int64            `json:"total_customers"`
}

// StatsService reads the ledger; it never writes.
type StatsService struct {
	ledger repositories.PurchaseLedger
}

func NewStatsService(ledger repositories.PurchaseLedger) *StatsService {
	return &StatsService{ledger: ledger}
}

// Summarize aggregates the calendar month containing now, the month before
// it and all time. Months are taken in UTC.
func (s *StatsService) Summarize(ctx context.Context, now time.Time) (Summary, error) {
	now = now.UTC()
	thisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	nextMonth := thisMonth.AddDate(0, 1, 0)
	lastMonth := thisMonth.AddDate(0, -1, 0)

	var (
		sum Summary
		err error
	)
	if sum.CurrentMonth, err = s.ledger.AggregateByDateRange(ctx, &thisMonth, &nextMonth); err != nil {
		return Summary{}, storeError("stats: current month", err)
	}
	if sum.PreviousMonth, err = s.ledger.AggregateByDateRange(ctx, &lastMonth, &thisMonth); err != nil {
		return Summary{}, storeError("stats: previous month", err)
	}
	if sum.AllTime, err = s.ledger.AggregateByDateRange(ctx, nil, nil); err != nil {
		return Summary{}, storeError("stats: all time", err)
	}
	if sum.TotalCustomers, err = s.ledger.DistinctCustomers(ctx); err != nil {
		return Summary{}, storeError("stats: customers", err)
	}

	sum.GrowthRate = GrowthRate(sum.CurrentMonth.Sales, sum.PreviousMonth.Sales)
	return sum, nil
}

// GrowthRate is the percentage change from previous to current, rounded to
// two places. It is 0 when previous is 0.
func GrowthRate(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	prev := decimal.NewFromFloat(previous)
	return decimal.NewFromFloat(current).
		Sub(prev).
		Div(prev).
		Mul(decimal.NewFromInt(100)).
		Round(2).
		InexactFloat64()
}
