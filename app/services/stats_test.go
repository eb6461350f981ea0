package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/sweetshop/app/models"
	"github.com/shashiranjanraj/sweetshop/app/repositories"
)

func appendAt(t *testing.T, st repositories.Stores, user string, price float64, qty int, at time.Time) {
	t.Helper()
	p := models.NewPurchase(models.Sweet{ID: "s-1", Name: "Ladoo", Price: price}, user, qty, at)
	require.NoError(t, st.Purchases.Append(context.Background(), &p))
}

func TestSummarizeCurrentMonthOnly(t *testing.T) {
	st := newStores(t)
	now := time.Date(2026, 3, 20, 9, 0, 0, 0, time.UTC)
	appendAt(t, st, "alice", 10, 2, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	appendAt(t, st, "bob", 5, 1, time.Date(2026, 3, 19, 0, 0, 0, 0, time.UTC))

	sum, err := NewStatsService(st.Purchases).Summarize(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, models.Aggregate{Sales: 25, Orders: 2, Items: 3}, sum.CurrentMonth)
	assert.Equal(t, models.Aggregate{}, sum.PreviousMonth)
	assert.Equal(t, 0.0, sum.GrowthRate)
	assert.Equal(t, sum.CurrentMonth, sum.AllTime)
	assert.Equal(t, int64(2), sum.TotalCustomers)
}

func TestSummarizeAcrossYearBoundary(t *testing.T) {
	st := newStores(t)
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	appendAt(t, st, "alice", 10, 3, time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC)) // December
	appendAt(t, st, "alice", 10, 4, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))      // January
	appendAt(t, st, "bob", 10, 1, time.Date(2025, 11, 30, 0, 0, 0, 0, time.UTC))      // outside both
	appendAt(t, st, "carol", 10, 9, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))      // next month

	sum, err := NewStatsService(st.Purchases).Summarize(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, models.Aggregate{Sales: 40, Orders: 1, Items: 4}, sum.CurrentMonth)
	assert.Equal(t, models.Aggregate{Sales: 30, Orders: 1, Items: 3}, sum.PreviousMonth)
	assert.Equal(t, models.Aggregate{Sales: 170, Orders: 4, Items: 17}, sum.AllTime)
	assert.Equal(t, 33.33, sum.GrowthRate)
	assert.Equal(t, int64(3), sum.TotalCustomers)
}

func TestSummarizeUsesUTCMonths(t *testing.T) {
	st := newStores(t)
	// 1 April 02:00 in UTC+5:30 is still 31 March in UTC.
	now := time.Date(2026, 4, 1, 2, 0, 0, 0, time.FixedZone("IST", 5*3600+1800))
	appendAt(t, st, "alice", 8, 1, time.Date(2026, 3, 31, 20, 0, 0, 0, time.UTC))

	sum, err := NewStatsService(st.Purchases).Summarize(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), sum.CurrentMonth.Orders)
}

func TestSummarizeReportsStoreFailure(t *testing.T) {
	_, err := NewStatsService(brokenLedger{}).Summarize(context.Background(), time.Now())
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.ErrorIs(t, err, errLedgerDown)
}

func TestGrowthRate(t *testing.T) {
	cases := []struct {
		name              string
		current, previous float64
		want              float64
	}{
		{"no previous sales", 120, 0, 0},
		{"doubled", 200, 100, 100},
		{"halved", 50, 100, -50},
		{"flat", 75.5, 75.5, 0},
		{"rounds to cents", 1, 3, -66.67},
		{"nothing this month", 0, 80, -100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, GrowthRate(tc.current, tc.previous))
		})
	}
}
