// Package resources holds the API's JSON shapes for sweets, users and purchases.
package resources

import (
	"time"

	"github.com/shashiranjanraj/sweetshop/app/models"
	"github.com/shashiranjanraj/sweetshop/app/services"
	"github.com/shashiranjanraj/sweetshop/pkg/resource"
)

var Sweet resource.Transformer[models.Sweet] = func(s models.Sweet) resource.Map {
	out := resource.Map{
		"id":       s.ID,
		"name":     s.Name,
		"category": s.Category,
		"price":    s.Price,
		"quantity": s.Quantity,
	}
	if s.ImageURL != "" {
		out["image_url"] = s.ImageURL
	}
	return out
}

var User resource.Transformer[models.User] = func(u models.User) resource.Map {
	return resource.Map{
		"id":         u.ID,
		"username":   u.Username,
		"email":      u.Email,
		"role":       u.Role,
		"created_at": u.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func purchase(p models.Purchase) resource.Map {
	return resource.Map{
		"id":         p.ID,
		"user_id":    p.UserID,
		"sweet_id":   p.SweetID,
		"sweet_name": p.SweetName,
		"quantity":   p.Quantity,
		"price":      p.Price,
		"total":      p.Total,
		"timestamp":  p.Timestamp.UTC().Format(time.RFC3339),
	}
}

// OwnHistory is a purchase as shown to its buyer.
var OwnHistory resource.Transformer[services.HistoryEntry] = func(e services.HistoryEntry) resource.Map {
	return purchase(e.Purchase)
}

// AdminHistory adds the buyer's name and email. A buyer whose account is gone
// is shown by ID.
var AdminHistory resource.Transformer[services.HistoryEntry] = func(e services.HistoryEntry) resource.Map {
	out := purchase(e.Purchase)
	out["user_name"] = e.UserName
	out["user_email"] = e.UserEmail
	if e.UserName == services.DeletedUserName && e.UserEmail == "" {
		out["user_email"] = "User ID: " + e.UserID
	}
	return out
}

// PurchaseReceipt is the body of a successful purchase.
var PurchaseReceipt resource.Transformer[services.PurchaseResult] = func(r services.PurchaseResult) resource.Map {
	return resource.Map{
		"purchase_id":     r.Purchase.ID,
		"sweet_id":        r.Purchase.SweetID,
		"sweet_name":      r.Purchase.SweetName,
		"quantity":        r.Purchase.Quantity,
		"total":           r.Purchase.Total,
		"remaining_stock": r.Remaining,
	}
}
