package services

import (
	"context"

	"github.com/shashiranjanraj/sweetshop/app/models"
	"github.com/shashiranjanraj/sweetshop/app/repositories"
)

// DeletedUserName stands in for buyers whose account no longer resolves.
const DeletedUserName = "Deleted User"

// HistoryEntry is a ledger record with the buyer's current name and email.
type HistoryEntry struct {
	models.Purchase
	UserName  string
	UserEmail string
}

// PurchaseService answers purchase history questions.
type PurchaseService struct {
	ledger repositories.PurchaseLedger
	users  repositories.UserStore
}

func NewPurchaseService(ledger repositories.PurchaseLedger, users repositories.UserStore) *PurchaseService {
	return &PurchaseService{ledger: ledger, users: users}
}

// History returns the caller's purchases newest first. Admins see every
// purchase, each tagged with its buyer.
func (s *PurchaseService) History(ctx context.Context, userID string, role models.Role) ([]HistoryEntry, error) {
	if role != models.RoleAdmin {
		if userID == "" {
			return nil, invalid("user is required")
		}
		own, err := s.ledger.QueryByUser(ctx, userID)
		if err != nil {
			return nil, storeError("history: user "+userID, err)
		}
		entries := make([]HistoryEntry, len(own))
		for i, p := range own {
			entries[i] = HistoryEntry{Purchase: p}
		}
		return entries, nil
	}

	all, err := s.ledger.QueryAll(ctx)
	if err != nil {
		return nil, storeError("history: all", err)
	}

	seen := map[string]struct{}{}
	ids := make([]string, 0, len(all))
	for _, p := range all {
		if _, ok := seen[p.UserID]; !ok {
			seen[p.UserID] = struct{}{}
			ids = append(ids, p.UserID)
		}
	}
	buyers, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, storeError("history: buyers", err)
	}

	entries := make([]HistoryEntry, len(all))
	for i, p := range all {
		e := HistoryEntry{Purchase: p, UserName: DeletedUserName}
		if u, ok := buyers[p.UserID]; ok {
			e.UserName, e.UserEmail = u.Username, u.Email
		}
		entries[i] = e
	}
	return entries, nil
}
