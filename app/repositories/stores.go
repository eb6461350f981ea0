// Package repositories holds the store contracts the services depend on and
// their gorm and MongoDB implementations.
package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/shashiranjanraj/sweetshop/app/models"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrDuplicate         = errors.New("duplicate record")
)

// UserStore is the credential store.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	// FindByIDs returns the users that exist, keyed by ID. Missing IDs are skipped.
	FindByIDs(ctx context.Context, ids []string) (map[string]models.User, error)
}

// SweetStore is the catalogue.
type SweetStore interface {
	Create(ctx context.Context, sweet *models.Sweet) error
	FindByID(ctx context.Context, id string) (models.Sweet, error)
	List(ctx context.Context) ([]models.Sweet, error)
	Search(ctx context.Context, filter models.SweetFilter) ([]models.Sweet, error)
	Update(ctx context.Context, id string, changes models.SweetChanges) (models.Sweet, error)
	Delete(ctx context.Context, id string) error

	// AdjustQuantity adds delta to the stock level in a single guarded write
	// and returns the sweet as it is after the write. A write that would
	// leave the quantity negative is refused with ErrInsufficientStock.
	AdjustQuantity(ctx context.Context, id string, delta int) (models.Sweet, error)
}

// PurchaseLedger is the append-only purchase history.
type PurchaseLedger interface {
	Append(ctx context.Context, purchase *models.Purchase) error
	QueryByUser(ctx context.Context, userID string) ([]models.Purchase, error)
	QueryAll(ctx context.Context) ([]models.Purchase, error)
	// AggregateByDateRange sums entries with start <= timestamp < end.
	// A nil bound leaves that side open.
	AggregateByDateRange(ctx context.Context, start, end *time.Time) (models.Aggregate, error)
	DistinctCustomers(ctx context.Context) (int64, error)
}

// UnitOfWork groups store calls. Atomic reports whether a failure inside Do
// undoes the writes that already happened in it.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	Atomic() bool
}

// Stores bundles one backend's implementations.
type Stores struct {
	Users     UserStore
	Sweets    SweetStore
	Purchases PurchaseLedger
	Tx        UnitOfWork
}
