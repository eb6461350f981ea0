package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/sweetshop/app/models"
	"github.com/shashiranjanraj/sweetshop/pkg/metrics"
)

// SweetRepository is the gorm SweetStore.
type SweetRepository struct {
	db *gorm.DB
}

func NewSweetRepository(db *gorm.DB) *SweetRepository {
	return &SweetRepository{db: db}
}

func (r *SweetRepository) Create(ctx context.Context, sweet *models.Sweet) error {
	defer metrics.ObserveDBQuery("insert", time.Now())

	if err := conn(ctx, r.db).Create(sweet).Error; err != nil {
		return fmt.Errorf("sweets: create: %w", translate(err))
	}
	return nil
}

func (r *SweetRepository) FindByID(ctx context.Context, id string) (models.Sweet, error) {
	defer metrics.ObserveDBQuery("select", time.Now())

	var sweet models.Sweet
	if err := conn(ctx, r.db).Where("id = ?", id).Take(&sweet).Error; err != nil {
		return sweet, fmt.Errorf("sweets: find %s: %w", id, translate(err))
	}
	return sweet, nil
}

func (r *SweetRepository) List(ctx context.Context) ([]models.Sweet, error) {
	return r.Search(ctx, models.SweetFilter{})
}

func (r *SweetRepository) Search(ctx context.Context, f models.SweetFilter) ([]models.Sweet, error) {
	defer metrics.ObserveDBQuery("select", time.Now())

	q := conn(ctx, r.db).Model(&models.Sweet{})
	if f.Name != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(f.Name)+"%")
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", *f.MaxPrice)
	}

	sweets := []models.Sweet{}
	if err := q.Order("name asc").Find(&sweets).Error; err != nil {
		return nil, fmt.Errorf("sweets: search: %w", translate(err))
	}
	return sweets, nil
}

func (r *SweetRepository) Update(ctx context.Context, id string, c models.SweetChanges) (models.Sweet, error) {
	defer metrics.ObserveDBQuery("update", time.Now())

	fields := map[string]interface{}{}
	if c.Name != nil {
		fields["name"] = *c.Name
	}
	if c.Category != nil {
		fields["category"] = *c.Category
	}
	if c.Price != nil {
		fields["price"] = *c.Price
	}
	if c.ImageURL != nil {
		fields["image_url"] = *c.ImageURL
	}

	db := conn(ctx, r.db)
	if len(fields) > 0 {
		res := db.Model(&models.Sweet{}).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			return models.Sweet{}, fmt.Errorf("sweets: update %s: %w", id, translate(res.Error))
		}
		if res.RowsAffected == 0 {
			return models.Sweet{}, fmt.Errorf("sweets: update %s: %w", id, ErrNotFound)
		}
	}
	return r.FindByID(ctx, id)
}

func (r *SweetRepository) Delete(ctx context.Context, id string) error {
	defer metrics.ObserveDBQuery("delete", time.Now())

	res := conn(ctx, r.db).Where("id = ?", id).Delete(&models.Sweet{})
	if res.Error != nil {
		return fmt.Errorf("sweets: delete %s: %w", id, translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("sweets: delete %s: %w", id, ErrNotFound)
	}
	return nil
}

// AdjustQuantity issues
//
//	UPDATE sweets SET quantity = quantity + ? WHERE id = ? AND quantity + ? >= 0
//
// so the stock check and the write happen in one statement. When no row
// matches, a follow-up read tells a missing sweet from a short one.
func (r *SweetRepository) AdjustQuantity(ctx context.Context, id string, delta int) (models.Sweet, error) {
	defer metrics.ObserveDBQuery("update", time.Now())

	db := conn(ctx, r.db)
	res := db.Model(&models.Sweet{}).
		Where("id = ? AND quantity + ? >= 0", id, delta).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", delta))
	if res.Error != nil {
		return models.Sweet{}, fmt.Errorf("sweets: adjust %s: %w", id, translate(res.Error))
	}

	var sweet models.Sweet
	err := db.Where("id = ?", id).Take(&sweet).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Sweet{}, fmt.Errorf("sweets: adjust %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return models.Sweet{}, fmt.Errorf("sweets: reload %s: %w", id, translate(err))
	}
	if res.RowsAffected == 0 {
		return sweet, fmt.Errorf("sweets: adjust %s by %d (have %d): %w", id, delta, sweet.Quantity, ErrInsufficientStock)
	}
	return sweet, nil
}
