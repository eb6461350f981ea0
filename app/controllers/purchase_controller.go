package controllers

import (
	"time"

	"github.com/shashiranjanraj/sweetshop/app/models"
	"github.com/shashiranjanraj/sweetshop/app/resources"
	"github.com/shashiranjanraj/sweetshop/app/services"
	"github.com/shashiranjanraj/sweetshop/pkg/ctx"
	"github.com/shashiranjanraj/sweetshop/pkg/resource"
)

type PurchaseController struct {
	purchases *services.PurchaseService
	stats     *services.StatsService
	now       func() time.Time
}

func NewPurchaseController(purchases *services.PurchaseService, stats *services.StatsService) *PurchaseController {
	return &PurchaseController{purchases: purchases, stats: stats, now: time.Now}
}

// History handles GET /api/purchases/history.
func (c *PurchaseController) History(cx *ctx.Context) {
	role := models.Role(cx.Role())
	entries, err := c.purchases.History(cx.Context(), cx.UserID(), role)
	if err != nil {
		respondError(cx, err)
		return
	}

	shape := resources.OwnHistory
	if role == models.RoleAdmin {
		shape = resources.AdminHistory
	}
	cx.Success(resource.Many(shape, entries))
}

// Stats handles GET /api/purchases/stats. Admin only.
func (c *PurchaseController) Stats(cx *ctx.Context) {
	summary, err := c.stats.Summarize(cx.Context(), c.now())
	if err != nil {
		respondError(cx, err)
		return
	}
	cx.Success(summary)
}
