package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/sweetshop/app/models"
)

func TestHistoryScopesByRole(t *testing.T) {
	ctx := context.Background()
	st := newStores(t)
	alice := seedUser(t, st, "alice", models.RoleUser)
	bob := seedUser(t, st, "bob", models.RoleUser)

	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	appendAt(t, st, alice.ID, 5, 1, base)
	appendAt(t, st, bob.ID, 5, 2, base.Add(time.Hour))
	appendAt(t, st, alice.ID, 5, 3, base.Add(2*time.Hour))
	appendAt(t, st, "removed-user", 5, 4, base.Add(3*time.Hour))

	svc := NewPurchaseService(st.Purchases, st.Users)

	own, err := svc.History(ctx, alice.ID, models.RoleUser)
	require.NoError(t, err)
	require.Len(t, own, 2)
	assert.Equal(t, 3, own[0].Quantity, "newest first")
	assert.Equal(t, 1, own[1].Quantity)
	for _, e := range own {
		assert.Equal(t, alice.ID, e.UserID)
	}

	all, err := svc.History(ctx, "admin-id", models.RoleAdmin)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, DeletedUserName, all[0].UserName)
	assert.Empty(t, all[0].UserEmail)
	assert.Equal(t, "alice", all[1].UserName)
	assert.Equal(t, "bob@example.com", all[2].UserEmail)
}

func TestHistoryReportsStoreFailure(t *testing.T) {
	st := newStores(t)
	_, err := NewPurchaseService(brokenLedger{}, st.Users).History(context.Background(), "a", models.RoleAdmin)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}
