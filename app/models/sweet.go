package models

import (
	"time"

	"gorm.io/gorm"
)

// Sweet is a catalogue item. Quantity only changes through the inventory
// service's guarded adjustments.
type Sweet struct {
	ID        string    `gorm:"primaryKey;size:36"                              bson:"_id"                 json:"id"`
	Name      string    `gorm:"size:255;not null;uniqueIndex"                   bson:"name"                json:"name"`
	Category  string    `gorm:"size:100;not null;index"                         bson:"category"            json:"category"`
	Price     float64   `gorm:"not null;default:0"                              bson:"price"               json:"price"`
	Quantity  int       `gorm:"not null;default:0;check:chk_sweets_quantity,quantity >= 0" bson:"quantity" json:"quantity"`
	ImageURL  string    `gorm:"size:1024"                                       bson:"image_url,omitempty" json:"image_url,omitempty"`
	CreatedAt time.Time `                                                       bson:"created_at"          json:"created_at"`
	UpdatedAt time.Time `                                                       bson:"updated_at"          json:"updated_at"`
}

func (s *Sweet) BeforeCreate(*gorm.DB) error {
	if s.ID == "" {
		s.ID = NewID()
	}
	return nil
}

// InStock reports whether at least n units are available.
func (s Sweet) InStock(n int) bool { return s.Quantity >= n }

// SweetFilter narrows a catalogue search. Zero values are ignored.
type SweetFilter struct {
	Name     string   // case-insensitive substring
	Category string   // exact match
	MinPrice *float64 // inclusive
	MaxPrice *float64 // inclusive
}

// SweetChanges is a partial catalogue update. Nil fields are left untouched.
type SweetChanges struct {
	Name     *string
	Category *string
	Price    *float64
	ImageURL *string
}

// Empty reports whether the update touches nothing.
func (c SweetChanges) Empty() bool {
	return c.Name == nil && c.Category == nil && c.Price == nil && c.ImageURL == nil
}
