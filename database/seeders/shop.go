package seeders

import (
	"context"
	"errors"

	"github.com/shashiranjanraj/sweetshop/app/models"
	"github.com/shashiranjanraj/sweetshop/app/repositories"
	"github.com/shashiranjanraj/sweetshop/config"
	"github.com/shashiranjanraj/sweetshop/pkg/auth"
	"github.com/shashiranjanraj/sweetshop/pkg/logger"
)

func init() {
	Register("admin", SeedAdmin)
	Register("sweets", SeedSweets)
}

// SeedAdmin creates the admin account from SEED_ADMIN_USERNAME,
// SEED_ADMIN_EMAIL and SEED_ADMIN_PASSWORD. Without a password it does nothing.
func SeedAdmin(ctx context.Context, st repositories.Stores) error {
	password := config.Get("SEED_ADMIN_PASSWORD", "")
	if password == "" {
		logger.Warn("seeder: SEED_ADMIN_PASSWORD not set, skipping admin")
		return nil
	}
	username := config.Get("SEED_ADMIN_USERNAME", "admin")

	_, err := st.Users.FindByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	admin := models.User{
		Username: username,
		Email:    config.Get("SEED_ADMIN_EMAIL", "admin@sweetshop.local"),
		Password: hash,
		Role:     models.RoleAdmin,
	}
	return st.Users.Create(ctx, &admin)
}

var starterSweets = []models.Sweet{
	{Name: "Kaju Katli", Category: "Indian", Price: 25, Quantity: 40},
	{Name: "Gulab Jamun", Category: "Indian", Price: 15, Quantity: 60},
	{Name: "Rasgulla", Category: "Indian", Price: 12, Quantity: 50},
	{Name: "Chocolate Truffle", Category: "Chocolate", Price: 40, Quantity: 25},
	{Name: "Macaron", Category: "French", Price: 55, Quantity: 20},
	{Name: "Baklava", Category: "Middle Eastern", Price: 35, Quantity: 30},
}

// SeedSweets adds the starter catalogue, skipping names already present.
func SeedSweets(ctx context.Context, st repositories.Stores) error {
	for _, s := range starterSweets {
		sweet := s
		err := st.Sweets.Create(ctx, &sweet)
		if err != nil && !errors.Is(err, repositories.ErrDuplicate) {
			return err
		}
	}
	return nil
}
