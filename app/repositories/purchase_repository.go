package repositories

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/sweetshop/app/models"
	"github.com/shashiranjanraj/sweetshop/pkg/metrics"
)

// PurchaseRepository is the gorm PurchaseLedger. It never updates or
// deletes rows.
type PurchaseRepository struct {
	db *gorm.DB
}

func NewPurchaseRepository(db *gorm.DB) *PurchaseRepository {
	return &PurchaseRepository{db: db}
}

func (r *PurchaseRepository) Append(ctx context.Context, p *models.Purchase) error {
	defer metrics.ObserveDBQuery("insert", time.Now())

	if err := conn(ctx, r.db).Create(p).Error; err != nil {
		return fmt.Errorf("purchases: append: %w", translate(err))
	}
	return nil
}

func (r *PurchaseRepository) QueryByUser(ctx context.Context, userID string) ([]models.Purchase, error) {
	defer metrics.ObserveDBQuery("select", time.Now())

	out := []models.Purchase{}
	err := conn(ctx, r.db).
		Where("user_id = ?", userID).
		Order("purchased_at desc").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("purchases: query user %s: %w", userID, translate(err))
	}
	return out, nil
}

func (r *PurchaseRepository) QueryAll(ctx context.Context) ([]models.Purchase, error) {
	defer metrics.ObserveDBQuery("select", time.Now())

	out := []models.Purchase{}
	if err := conn(ctx, r.db).Order("purchased_at desc").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("purchases: query all: %w", translate(err))
	}
	return out, nil
}

func (r *PurchaseRepository) AggregateByDateRange(ctx context.Context, start, end *time.Time) (models.Aggregate, error) {
	defer metrics.ObserveDBQuery("select", time.Now())

	q := conn(ctx, r.db).Model(&models.Purchase{}).
		Select("COALESCE(SUM(total), 0) AS sales, COUNT(*) AS orders, COALESCE(SUM(quantity), 0) AS items")
	q = withinRange(q, start, end)

	var agg models.Aggregate
	if err := q.Scan(&agg).Error; err != nil {
		return models.Aggregate{}, fmt.Errorf("purchases: aggregate: %w", translate(err))
	}
	return agg, nil
}

func (r *PurchaseRepository) DistinctCustomers(ctx context.Context) (int64, error) {
	defer metrics.ObserveDBQuery("select", time.Now())

	var n int64
	if err := conn(ctx, r.db).Model(&models.Purchase{}).Distinct("user_id").Count(&n).Error; err != nil {
		return 0, fmt.Errorf("purchases: distinct customers: %w", translate(err))
	}
	return n, nil
}

func withinRange(q *gorm.DB, start, end *time.Time) *gorm.DB {
	if start != nil {
		q = q.Where("purchased_at >= ?", start.UTC())
	}
	if end != nil {
		q = q.Where("purchased_at < ?", end.UTC())
	}
	return q
}
