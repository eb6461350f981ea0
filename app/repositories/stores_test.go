package repositories_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/shashiranjanraj/sweetshop/app/models"
	"github.com/shashiranjanraj/sweetshop/app/repositories"
	"github.com/shashiranjanraj/sweetshop/pkg/database"
	"github.com/shashiranjanraj/sweetshop/pkg/mongodb"
)

// storeSuite runs the same contract against every backend.
type storeSuite struct {
	suite.Suite
	open   func() repositories.Stores
	close  func()
	stores repositories.Stores
	ctx    context.Context
}

func (s *storeSuite) SetupTest() {
	s.ctx = context.Background()
	s.stores = s.open()
}

func (s *storeSuite) TearDownTest() {
	if s.close != nil {
		s.close()
	}
}

func TestGormStores(t *testing.T) {
	st := &storeSuite{}
	st.open = func() repositories.Stores {
		db, err := database.Open("sqlite", "file::memory:")
		require.NoError(t, err)
		require.NoError(t, db.AutoMigrate(&models.User{}, &models.Sweet{}, &models.Purchase{}))
		st.close = func() { _ = database.Close(db) }
		return repositories.NewGormStores(db)
	}
	suite.Run(t, st)
}

func TestMongoStores(t *testing.T) {
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}

	st := &storeSuite{}
	st.open = func() repositories.Stores {
		ctx := context.Background()
		db, err := mongodb.Open(ctx, uri, fmt.Sprintf("sweetshop_test_%d", time.Now().UnixNano()))
		require.NoError(t, err)
		require.NoError(t, repositories.EnsureMongoIndexes(ctx, db))
		st.close = func() {
			_ = db.Drop(ctx)
			_ = mongodb.Disconnect(ctx, db)
		}
		return repositories.NewMongoStores(db)
	}
	suite.Run(t, st)
}

func (s *storeSuite) seedSweet(name string, price float64, qty int) models.Sweet {
	sweet := models.Sweet{Name: name, Category: "Indian", Price: price, Quantity: qty}
	s.Require().NoError(s.stores.Sweets.Create(s.ctx, &sweet))
	s.Require().NotEmpty(sweet.ID)
	return sweet
}

// ── Catalogue ────────────────────────────────────────────────────────────────

func (s *storeSuite) TestAdjustQuantityGuardsStock() {
	sweet := s.seedSweet("Kaju Katli", 25, 5)

	after, err := s.stores.Sweets.AdjustQuantity(s.ctx, sweet.ID, -2)
	s.Require().NoError(err)
	s.Equal(3, after.Quantity)
	s.Equal("Kaju Katli", after.Name)

	_, err = s.stores.Sweets.AdjustQuantity(s.ctx, sweet.ID, -10)
	s.ErrorIs(err, repositories.ErrInsufficientStock)

	current, err := s.stores.Sweets.FindByID(s.ctx, sweet.ID)
	s.Require().NoError(err)
	s.Equal(3, current.Quantity, "refused decrement must not touch stock")

	after, err = s.stores.Sweets.AdjustQuantity(s.ctx, sweet.ID, 3)
	s.Require().NoError(err)
	s.Equal(6, after.Quantity)

	_, err = s.stores.Sweets.AdjustQuantity(s.ctx, "missing", -1)
	s.ErrorIs(err, repositories.ErrNotFound)
}

func (s *storeSuite) TestAdjustQuantityAllowsDrainingToZero() {
	sweet := s.seedSweet("Peda", 8, 4)

	after, err := s.stores.Sweets.AdjustQuantity(s.ctx, sweet.ID, -4)
	s.Require().NoError(err)
	s.Equal(0, after.Quantity)

	_, err = s.stores.Sweets.AdjustQuantity(s.ctx, sweet.ID, -1)
	s.ErrorIs(err, repositories.ErrInsufficientStock)
}

func (s *storeSuite) TestConcurrentDecrementsNeverOversell() {
	sweet := s.seedSweet("Jalebi", 4, 10)

	var wg sync.WaitGroup
	var sold atomic.Int64
	var refused atomic.Int64
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.stores.Sweets.AdjustQuantity(s.ctx, sweet.ID, -1)
			switch {
			case err == nil:
				sold.Add(1)
			case errors.Is(err, repositories.ErrInsufficientStock):
				refused.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int64(10), sold.Load())
	s.Equal(int64(15), refused.Load())

	current, err := s.stores.Sweets.FindByID(s.ctx, sweet.ID)
	s.Require().NoError(err)
	s.Equal(0, current.Quantity)
}

func (s *storeSuite) TestCreateRejectsDuplicateName() {
	s.seedSweet("Rasgulla", 10, 1)

	dup := models.Sweet{Name: "Rasgulla", Category: "Bengali", Price: 12}
	err := s.stores.Sweets.Create(s.ctx, &dup)
	s.ErrorIs(err, repositories.ErrDuplicate)
}

func (s *storeSuite) TestSearchFilters() {
	s.seedSweet("Dark Chocolate", 5, 10)
	milk := models.Sweet{Name: "Milk Chocolate", Category: "Chocolate", Price: 3, Quantity: 10}
	s.Require().NoError(s.stores.Sweets.Create(s.ctx, &milk))
	s.seedSweet("Soan Papdi", 2, 10)

	byName, err := s.stores.Sweets.Search(s.ctx, models.SweetFilter{Name: "chocolate"})
	s.Require().NoError(err)
	s.Len(byName, 2)
	s.Equal("Dark Chocolate", byName[0].Name, "results are sorted by name")

	byCategory, err := s.stores.Sweets.Search(s.ctx, models.SweetFilter{Category: "Chocolate"})
	s.Require().NoError(err)
	s.Require().Len(byCategory, 1)
	s.Equal("Milk Chocolate", byCategory[0].Name)

	lo, hi := 2.5, 5.0
	byPrice, err := s.stores.Sweets.Search(s.ctx, models.SweetFilter{MinPrice: &lo, MaxPrice: &hi})
	s.Require().NoError(err)
	s.Len(byPrice, 2)

	all, err := s.stores.Sweets.List(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 3)
}

func (s *storeSuite) TestUpdateIsPartial() {
	sweet := s.seedSweet("Barfi", 10, 7)

	price := 11.5
	updated, err := s.stores.Sweets.Update(s.ctx, sweet.ID, models.SweetChanges{Price: &price})
	s.Require().NoError(err)
	s.Equal(11.5, updated.Price)
	s.Equal("Barfi", updated.Name)
	s.Equal(7, updated.Quantity)

	_, err = s.stores.Sweets.Update(s.ctx, "missing", models.SweetChanges{Price: &price})
	s.ErrorIs(err, repositories.ErrNotFound)
}

func (s *storeSuite) TestDelete() {
	sweet := s.seedSweet("Halwa", 6, 1)

	s.Require().NoError(s.stores.Sweets.Delete(s.ctx, sweet.ID))
	_, err := s.stores.Sweets.FindByID(s.ctx, sweet.ID)
	s.ErrorIs(err, repositories.ErrNotFound)
	s.ErrorIs(s.stores.Sweets.Delete(s.ctx, sweet.ID), repositories.ErrNotFound)
}

// ── Ledger ───────────────────────────────────────────────────────────────────

func (s *storeSuite) appendAt(userID string, sweet models.Sweet, qty int, at time.Time) models.Purchase {
	p := models.NewPurchase(sweet, userID, qty, at)
	s.Require().NoError(s.stores.Purchases.Append(s.ctx, &p))
	return p
}

func (s *storeSuite) TestLedgerQueriesAreNewestFirst() {
	sweet := models.Sweet{ID: "s-1", Name: "Ladoo", Price: 10}
	base := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

	first := s.appendAt("alice", sweet, 1, base)
	second := s.appendAt("bob", sweet, 2, base.Add(time.Hour))
	third := s.appendAt("alice", sweet, 3, base.Add(2*time.Hour))

	mine, err := s.stores.Purchases.QueryByUser(s.ctx, "alice")
	s.Require().NoError(err)
	s.Require().Len(mine, 2)
	s.Equal(third.ID, mine[0].ID)
	s.Equal(first.ID, mine[1].ID)

	all, err := s.stores.Purchases.QueryAll(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal([]string{third.ID, second.ID, first.ID}, []string{all[0].ID, all[1].ID, all[2].ID})
	s.Equal(30.0, all[0].Total)

	none, err := s.stores.Purchases.QueryByUser(s.ctx, "nobody")
	s.Require().NoError(err)
	s.Empty(none)
}

func (s *storeSuite) TestAggregateByDateRangeIsHalfOpen() {
	sweet := models.Sweet{ID: "s-1", Name: "Ladoo", Price: 10}
	march := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	april := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	s.appendAt("alice", sweet, 1, march)                   // start is inclusive
	s.appendAt("bob", sweet, 2, april.Add(-time.Second))   // in range
	s.appendAt("alice", sweet, 4, april)                   // end is exclusive
	s.appendAt("carol", sweet, 5, march.Add(-time.Second)) // before range

	agg, err := s.stores.Purchases.AggregateByDateRange(s.ctx, &march, &april)
	s.Require().NoError(err)
	s.Equal(models.Aggregate{Sales: 30, Orders: 2, Items: 3}, agg)

	all, err := s.stores.Purchases.AggregateByDateRange(s.ctx, nil, nil)
	s.Require().NoError(err)
	s.Equal(models.Aggregate{Sales: 120, Orders: 4, Items: 12}, all)

	future := april.AddDate(1, 0, 0)
	empty, err := s.stores.Purchases.AggregateByDateRange(s.ctx, &future, nil)
	s.Require().NoError(err)
	s.Equal(models.Aggregate{}, empty)

	customers, err := s.stores.Purchases.DistinctCustomers(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(3), customers)
}

// ── Users ────────────────────────────────────────────────────────────────────

func (s *storeSuite) TestUsers() {
	alice := models.User{Username: "alice", Email: "alice@example.com", Password: "hash"}
	s.Require().NoError(s.stores.Users.Create(s.ctx, &alice))
	s.NotEmpty(alice.ID)
	s.Equal(models.RoleUser, alice.Role)

	dup := models.User{Username: "alice", Email: "other@example.com", Password: "hash"}
	s.ErrorIs(s.stores.Users.Create(s.ctx, &dup), repositories.ErrDuplicate)

	found, err := s.stores.Users.FindByUsername(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(alice.ID, found.ID)

	_, err = s.stores.Users.FindByID(s.ctx, "missing")
	s.ErrorIs(err, repositories.ErrNotFound)

	many, err := s.stores.Users.FindByIDs(s.ctx, []string{alice.ID, "ghost"})
	s.Require().NoError(err)
	s.Len(many, 1)
	s.Equal("alice@example.com", many[alice.ID].Email)
}

// ── Unit of work ─────────────────────────────────────────────────────────────

func (s *storeSuite) TestUnitOfWorkFailure() {
	sweet := s.seedSweet("Mysore Pak", 9, 5)
	boom := errors.New("ledger down")

	err := s.stores.Tx.Do(s.ctx, func(ctx context.Context) error {
		if _, err := s.stores.Sweets.AdjustQuantity(ctx, sweet.ID, -2); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)

	current, err := s.stores.Sweets.FindByID(s.ctx, sweet.ID)
	s.Require().NoError(err)
	if s.stores.Tx.Atomic() {
		s.Equal(5, current.Quantity, "atomic unit of work rolls the decrement back")
	} else {
		s.Equal(3, current.Quantity, "non-atomic unit of work keeps the decrement")
	}
}
