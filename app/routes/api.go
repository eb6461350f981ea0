// Package routes registers the HTTP API.
package routes

import (
	"github.com/shashiranjanraj/sweetshop/app/controllers"
	"github.com/shashiranjanraj/sweetshop/app/models"
	"github.com/shashiranjanraj/sweetshop/pkg/ctx"
	"github.com/shashiranjanraj/sweetshop/pkg/middleware"
	"github.com/shashiranjanraj/sweetshop/pkg/rbac"
	"github.com/shashiranjanraj/sweetshop/pkg/router"
)

// Controllers is everything RegisterAPI mounts.
type Controllers struct {
	Auth      *controllers.AuthController
	Sweets    *controllers.SweetController
	Inventory *controllers.InventoryController
	Purchases *controllers.PurchaseController
	Live      *controllers.LiveController
}

func RegisterAPI(r *router.Router, c Controllers) {
	api := r.Group("/api")
	admin := rbac.HasRole(string(models.RoleAdmin))

	authRoutes := api.Group("/auth")
	authRoutes.Post("/register", "auth.register", ctx.Wrap(c.Auth.Register))
	authRoutes.Post("/login", "auth.login", ctx.Wrap(c.Auth.Login))
	authRoutes.Get("/me", "auth.me", ctx.Wrap(c.Auth.Me), middleware.Auth)

	sweets := api.Group("/sweets")
	sweets.Get("/", "sweets.index", ctx.Wrap(c.Sweets.Index))
	sweets.Get("/search", "sweets.search", ctx.Wrap(c.Sweets.Search))
	if c.Live != nil {
		sweets.Get("/stream", "sweets.stream", ctx.Wrap(c.Live.Stream))
		sweets.Get("/live", "sweets.live", ctx.Wrap(c.Live.Socket))
	}
	sweets.Get("/{id}", "sweets.show", ctx.Wrap(c.Sweets.Show))

	member := sweets.Group("/", middleware.Auth)
	member.Post("/{id}/purchase", "sweets.purchase", ctx.Wrap(c.Inventory.Purchase))

	manage := sweets.Group("/", middleware.Auth, admin)
	manage.Post("/", "sweets.store", ctx.Wrap(c.Sweets.Store))
	manage.Put("/{id}", "sweets.update", ctx.Wrap(c.Sweets.Update))
	manage.Delete("/{id}", "sweets.destroy", ctx.Wrap(c.Sweets.Destroy))
	manage.Post("/{id}/image", "sweets.image", ctx.Wrap(c.Sweets.Image))
	manage.Post("/{id}/restock", "sweets.restock", ctx.Wrap(c.Inventory.Restock))

	purchases := api.Group("/purchases", middleware.Auth)
	purchases.Post("/buy", "purchases.buy", ctx.Wrap(c.Inventory.Buy))
	purchases.Get("/history", "purchases.history", ctx.Wrap(c.Purchases.History))
	purchases.Get("/stats", "purchases.stats", ctx.Wrap(c.Purchases.Stats), admin)
}
