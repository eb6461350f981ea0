package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/shashiranjanraj/sweetshop/app/models"
	"github.com/shashiranjanraj/sweetshop/app/repositories"
	"github.com/shashiranjanraj/sweetshop/pkg/cache"
	"github.com/shashiranjanraj/sweetshop/pkg/logger"
	"github.com/shashiranjanraj/sweetshop/pkg/storage"
)

// CatalogCacheKey holds the full sweet listing.
const CatalogCacheKey = "sweets:all"

var imageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// CatalogService manages sweets. Stock levels are read here but only
// changed through InventoryService.
type CatalogService struct {
	sweets repositories.SweetStore
	cache  cache.Store
	ttl    time.Duration
	disk   storage.Disk
}

// NewCatalogService builds the service. c and disk may be nil; without a disk
// image uploads fail with ErrStoreUnavailable.
func NewCatalogService(sweets repositories.SweetStore, c cache.Store, ttl time.Duration, disk storage.Disk) *CatalogService {
	return &CatalogService{sweets: sweets, cache: c, ttl: ttl, disk: disk}
}

// List returns every sweet ordered by name, served from cache when possible.
func (s *CatalogService) List(ctx context.Context) ([]models.Sweet, error) {
	var sweets []models.Sweet
	if s.cache != nil && s.cache.Get(ctx, CatalogCacheKey, &sweets) {
		return sweets, nil
	}

	sweets, err := s.sweets.List(ctx)
	if err != nil {
		return nil, storeError("catalog: list", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, CatalogCacheKey, sweets, s.ttl); err != nil {
			logger.WithCtx(ctx).Warn("catalog cache fill failed", "error", err)
		}
	}
	return sweets, nil
}

func (s *CatalogService) Search(ctx context.Context, f models.SweetFilter) ([]models.Sweet, error) {
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return nil, invalid("min_price %.2f is above max_price %.2f", *f.MinPrice, *f.MaxPrice)
	}
	f.Name = strings.TrimSpace(f.Name)
	f.Category = strings.TrimSpace(f.Category)

	sweets, err := s.sweets.Search(ctx, f)
	if err != nil {
		return nil, storeError("catalog: search", err)
	}
	return sweets, nil
}

func (s *CatalogService) Get(ctx context.Context, id string) (models.Sweet, error) {
	sweet, err := s.sweets.FindByID(ctx, id)
	if err != nil {
		return models.Sweet{}, storeError("catalog: get "+id, err)
	}
	return sweet, nil
}

// Create adds a sweet. Name, category, price and opening stock come from in.
func (s *CatalogService) Create(ctx context.Context, in models.Sweet) (models.Sweet, error) {
	sweet := models.Sweet{
		Name:     strings.TrimSpace(in.Name),
		Category: strings.TrimSpace(in.Category),
		Price:    in.Price,
		Quantity: in.Quantity,
		ImageURL: in.ImageURL,
	}
	switch {
	case sweet.Name == "":
		return models.Sweet{}, invalid("name is required")
	case sweet.Category == "":
		return models.Sweet{}, invalid("category is required")
	case sweet.Price < 0:
		return models.Sweet{}, invalid("price must not be negative")
	case sweet.Quantity < 0:
		return models.Sweet{}, invalid("quantity must not be negative")
	}

	if err := s.sweets.Create(ctx, &sweet); err != nil {
		return models.Sweet{}, storeError("catalog: create "+sweet.Name, err)
	}

	s.invalidate(ctx)
	logger.WithCtx(ctx).Info("sweet created", "sweet_id", sweet.ID, "name", sweet.Name)
	return sweet, nil
}

// Update applies a partial change. Stock is not part of it.
func (s *CatalogService) Update(ctx context.Context, id string, c models.SweetChanges) (models.Sweet, error) {
	if c.Empty() {
		return models.Sweet{}, invalid("no fields to update")
	}
	if c.Name != nil {
		name := strings.TrimSpace(*c.Name)
		if name == "" {
			return models.Sweet{}, invalid("name must not be empty")
		}
		c.Name = &name
	}
	if c.Category != nil && strings.TrimSpace(*c.Category) == "" {
		return models.Sweet{}, invalid("category must not be empty")
	}
	if c.Price != nil && *c.Price < 0 {
		return models.Sweet{}, invalid("price must not be negative")
	}

	sweet, err := s.sweets.Update(ctx, id, c)
	if err != nil {
		return models.Sweet{}, storeError("catalog: update "+id, err)
	}

	s.invalidate(ctx)
	return sweet, nil
}

// Delete removes a sweet. Purchase history keeps its snapshot.
func (s *CatalogService) Delete(ctx context.Context, id string) error {
	if err := s.sweets.Delete(ctx, id); err != nil {
		return storeError("catalog: delete "+id, err)
	}

	s.invalidate(ctx)
	logger.WithCtx(ctx).Info("sweet deleted", "sweet_id", id)
	return nil
}

// UploadImage stores r on the configured disk and points the sweet at it.
func (s *CatalogService) UploadImage(ctx context.Context, id, contentType string, r io.Reader) (models.Sweet, error) {
	ext, ok := imageTypes[contentType]
	if !ok {
		return models.Sweet{}, invalid("unsupported image type %q", contentType)
	}
	if s.disk == nil {
		return models.Sweet{}, fmt.Errorf("catalog: upload image: %w: no disk configured", ErrStoreUnavailable)
	}

	if _, err := s.Get(ctx, id); err != nil {
		return models.Sweet{}, err
	}

	key := path.Join("sweets", id, models.NewID()+ext)
	if err := s.disk.PutStream(ctx, key, r, contentType); err != nil {
		return models.Sweet{}, fmt.Errorf("catalog: upload image: %w: %w", ErrStoreUnavailable, err)
	}

	url := s.disk.URL(key)
	sweet, err := s.Update(ctx, id, models.SweetChanges{ImageURL: &url})
	if err != nil {
		_ = s.disk.Delete(ctx, key)
		return models.Sweet{}, err
	}
	return sweet, nil
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, CatalogCacheKey); err != nil {
		logger.WithCtx(ctx).Warn("catalog cache invalidation failed", "error", err)
	}
}
