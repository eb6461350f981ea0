package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shashiranjanraj/sweetshop/app/models"
	"github.com/shashiranjanraj/sweetshop/app/repositories"
	"github.com/shashiranjanraj/sweetshop/pkg/cache"
	"github.com/shashiranjanraj/sweetshop/pkg/event"
	"github.com/shashiranjanraj/sweetshop/pkg/logger"
	"github.com/shashiranjanraj/sweetshop/pkg/metrics"
)

// Notifier tells a customer about a completed purchase. It is best-effort:
// its error is reported next to the purchase, never instead of it.
type Notifier interface {
	PurchaseConfirmed(ctx context.Context, user models.User, purchase models.Purchase) error
}

// PurchaseResult is a committed purchase. NotificationErr wraps
// ErrNotificationFailed when the confirmation could not be delivered.
type PurchaseResult struct {
	Purchase        models.Purchase
	Remaining       int
	NotificationErr error
}

// InventoryService owns every change to stock levels.
type InventoryService struct {
	sweets   repositories.SweetStore
	ledger   repositories.PurchaseLedger
	users    repositories.UserStore
	tx       repositories.UnitOfWork
	notifier Notifier
	cache    cache.Store
	events   *event.Bus
	now      func() time.Time
}

type InventoryOption func(*InventoryService)

// WithClock replaces time.Now as the purchase timestamp source.
func WithClock(now func() time.Time) InventoryOption {
	return func(s *InventoryService) { s.now = now }
}

// WithCatalogCache drops the cached catalogue whenever stock changes.
func WithCatalogCache(c cache.Store) InventoryOption {
	return func(s *InventoryService) { s.cache = c }
}

// NewInventoryService builds the service. notifier may be nil.
func NewInventoryService(stores repositories.Stores, notifier Notifier, opts ...InventoryOption) *InventoryService {
	s := &InventoryService{
		sweets:   stores.Sweets,
		ledger:   stores.Purchases,
		users:    stores.Users,
		tx:       stores.Tx,
		notifier: notifier,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Purchase takes quantity units of sweetID out of stock for userID and
// records the sale. The stock check and the decrement are one guarded store
// write, so concurrent buyers can never take more than is on the shelf.
func (s *InventoryService) Purchase(ctx context.Context, sweetID, userID string, quantity int) (PurchaseResult, error) {
	log := logger.WithCtx(ctx)

	if quantity <= 0 {
		metrics.RecordPurchase("invalid", 0)
		return PurchaseResult{}, invalid("quantity must be positive, got %d", quantity)
	}
	if sweetID == "" || userID == "" {
		metrics.RecordPurchase("invalid", 0)
		return PurchaseResult{}, invalid("sweet and user are required")
	}

	var (
		purchase  models.Purchase
		remaining int
		appendErr error
	)
	err := s.tx.Do(ctx, func(ctx context.Context) error {
		sweet, err := s.sweets.AdjustQuantity(ctx, sweetID, -quantity)
		if err != nil {
			return storeError("purchase", err)
		}
		remaining = sweet.Quantity

		purchase = models.NewPurchase(sweet, userID, quantity, s.now())
		if err := s.ledger.Append(ctx, &purchase); err != nil {
			appendErr = err
			return storeError("purchase: record", err)
		}
		return nil
	})
	if err != nil {
		if appendErr != nil && !s.tx.Atomic() {
			metrics.LedgerInconsistencies.Inc()
			log.Error("ledger append failed after stock debit",
				"sweet_id", sweetID,
				"user_id", userID,
				"quantity", quantity,
				"purchase_id", purchase.ID,
				"error", appendErr,
			)
		}
		metrics.RecordPurchase(purchaseResult(err), quantity)
		return PurchaseResult{}, err
	}

	metrics.RecordPurchase("ok", quantity)
	s.dropCatalog(ctx)
	s.publish(sweetID, purchase.SweetName, remaining, -quantity, "purchase")
	log.Info("purchase recorded",
		"purchase_id", purchase.ID,
		"sweet_id", sweetID,
		"quantity", quantity,
		"total", purchase.Total,
		"remaining", remaining,
	)

	return PurchaseResult{
		Purchase:        purchase,
		Remaining:       remaining,
		NotificationErr: s.notify(ctx, purchase),
	}, nil
}

// Restock adds quantity units to sweetID. Restocks leave no ledger entry.
func (s *InventoryService) Restock(ctx context.Context, sweetID string, quantity int) (models.Sweet, error) {
	if quantity <= 0 {
		return models.Sweet{}, invalid("quantity must be positive, got %d", quantity)
	}
	if sweetID == "" {
		return models.Sweet{}, invalid("sweet is required")
	}

	sweet, err := s.sweets.AdjustQuantity(ctx, sweetID, quantity)
	if err != nil {
		return models.Sweet{}, storeError("restock", err)
	}

	metrics.RestocksTotal.Inc()
	s.dropCatalog(ctx)
	s.publish(sweetID, sweet.Name, sweet.Quantity, quantity, "restock")
	logger.WithCtx(ctx).Info("sweet restocked", "sweet_id", sweetID, "added", quantity, "quantity", sweet.Quantity)
	return sweet, nil
}

func (s *InventoryService) notify(ctx context.Context, purchase models.Purchase) error {
	if s.notifier == nil {
		return nil
	}

	var err error
	user, lookupErr := s.users.FindByID(ctx, purchase.UserID)
	if lookupErr != nil {
		err = fmt.Errorf("%w: resolve user %s: %w", ErrNotificationFailed, purchase.UserID, lookupErr)
	} else if sendErr := s.notifier.PurchaseConfirmed(ctx, user, purchase); sendErr != nil {
		err = fmt.Errorf("%w: %w", ErrNotificationFailed, sendErr)
	}

	metrics.RecordNotification(err)
	if err != nil {
		logger.WithCtx(ctx).Warn("purchase confirmation not delivered", "purchase_id", purchase.ID, "error", err)
	}
	return err
}

func (s *InventoryService) dropCatalog(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, CatalogCacheKey); err != nil {
		logger.WithCtx(ctx).Warn("catalog cache invalidation failed", "error", err)
	}
}

func purchaseResult(err error) string {
	switch {
	case errors.Is(err, ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidArgument):
		return "invalid"
	}
	return "error"
}
