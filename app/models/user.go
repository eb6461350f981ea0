package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is the single authorisation attribute carried by a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User is an account in the credential store.
type User struct {
	ID        string    `gorm:"primaryKey;size:36"              bson:"_id"        json:"id"`
	Username  string    `gorm:"size:100;not null;uniqueIndex"   bson:"username"   json:"username"`
	Email     string    `gorm:"size:255;not null;uniqueIndex"   bson:"email"      json:"email"`
	Password  string    `gorm:"size:255;not null"               bson:"password"   json:"-"` // bcrypt hash
	Role      Role      `gorm:"size:20;not null;default:user"   bson:"role"       json:"role"`
	CreatedAt time.Time `                                       bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `                                       bson:"updated_at" json:"updated_at"`
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = NewID()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}

// NewID returns a fresh primary key shared by every backend.
func NewID() string {
	return uuid.NewString()
}
