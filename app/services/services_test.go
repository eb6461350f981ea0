package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/sweetshop/app/models"
	"github.com/shashiranjanraj/sweetshop/app/repositories"
	"github.com/shashiranjanraj/sweetshop/pkg/database"
	"github.com/shashiranjanraj/sweetshop/pkg/logger"
)

func init() {
	logger.Discard()
}

// newStores returns gorm stores over a private in-memory sqlite database.
func newStores(t *testing.T) repositories.Stores {
	t.Helper()

	db, err := database.Open("sqlite", "file::memory:")
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Sweet{}, &models.Purchase{}))
	t.Cleanup(func() { _ = database.Close(db) })

	return repositories.NewGormStores(db)
}

func seedSweet(t *testing.T, st repositories.Stores, name string, price float64, qty int) models.Sweet {
	t.Helper()
	sweet := models.Sweet{Name: name, Category: "Indian", Price: price, Quantity: qty}
	require.NoError(t, st.Sweets.Create(context.Background(), &sweet))
	return sweet
}

func seedUser(t *testing.T, st repositories.Stores, username string, role models.Role) models.User {
	t.Helper()
	user := models.User{Username: username, Email: username + "@example.com", Password: "x", Role: role}
	require.NoError(t, st.Users.Create(context.Background(), &user))
	return user
}

// mockNotifier records purchase confirmations.
type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) PurchaseConfirmed(ctx context.Context, user models.User, purchase models.Purchase) error {
	return m.Called(ctx, user, purchase).Error(0)
}

// failingLedger refuses every append and delegates the rest.
type failingLedger struct {
	repositories.PurchaseLedger
	err error
}

func (f failingLedger) Append(context.Context, *models.Purchase) error { return f.err }

// brokenLedger fails every read.
type brokenLedger struct {
	repositories.PurchaseLedger
}

var errLedgerDown = errors.New("connection refused")

func (brokenLedger) AggregateByDateRange(context.Context, *time.Time, *time.Time) (models.Aggregate, error) {
	return models.Aggregate{}, errLedgerDown
}

func (brokenLedger) QueryAll(context.Context) ([]models.Purchase, error) {
	return nil, errLedgerDown
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
