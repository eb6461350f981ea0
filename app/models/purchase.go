package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Purchase is an immutable ledger entry. Name and price are copied from the
// sweet at purchase time so later catalogue edits never rewrite history.
type Purchase struct {
	ID        string    `gorm:"primaryKey;size:36"        bson:"_id"        json:"id"`
	UserID    string    `gorm:"size:36;not null;index"    bson:"user_id"    json:"user_id"`
	SweetID   string    `gorm:"size:36;not null;index"    bson:"sweet_id"   json:"sweet_id"`
	SweetName string    `gorm:"size:255;not null"         bson:"sweet_name" json:"sweet_name"`
	Quantity  int       `gorm:"not null"                  bson:"quantity"   json:"quantity"`
	Price     float64   `gorm:"not null"                  bson:"price"      json:"price"`
	Total     float64   `gorm:"not null"                  bson:"total"      json:"total"`
	Timestamp time.Time `gorm:"column:purchased_at;not null;index" bson:"timestamp" json:"timestamp"`
}

func (p *Purchase) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = NewID()
	}
	return nil
}

// NewPurchase snapshots sweet for a purchase of quantity units made by userID at.
func NewPurchase(sweet Sweet, userID string, quantity int, at time.Time) Purchase {
	return Purchase{
		ID:        NewID(),
		UserID:    userID,
		SweetID:   sweet.ID,
		SweetName: sweet.Name,
		Quantity:  quantity,
		Price:     sweet.Price,
		Total:     LineTotal(sweet.Price, quantity),
		Timestamp: at.UTC(),
	}
}

// LineTotal multiplies in decimal so 0.1 × 3 is 0.3, not 0.30000000000000004.
func LineTotal(price float64, quantity int) float64 {
	return decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(quantity))).InexactFloat64()
}

// Aggregate summarises ledger entries over a time window.
type Aggregate struct {
	Sales  float64 `json:"sales"  bson:"sales"`
	Orders int64   `json:"orders" bson:"orders"`
	Items  int64   `json:"items"  bson:"items"`
}
