package controllers

import (
	"fmt"
	"net/http"

	"github.com/shashiranjanraj/sweetshop/app/resources"
	"github.com/shashiranjanraj/sweetshop/app/services"
	"github.com/shashiranjanraj/sweetshop/pkg/ctx"
	"github.com/shashiranjanraj/sweetshop/pkg/resource"
)

type InventoryController struct {
	inventory *services.InventoryService
}

func NewInventoryController(inventory *services.InventoryService) *InventoryController {
	return &InventoryController{inventory: inventory}
}

type quantityInput struct {
	Quantity int `json:"quantity"`
}

type buyInput struct {
	SweetID  string `json:"sweet_id" validate:"required"`
	Quantity int    `json:"quantity"`
}

// Purchase handles POST /api/sweets/{id}/purchase. Quantity defaults to 1.
func (c *InventoryController) Purchase(cx *ctx.Context) {
	in := quantityInput{Quantity: 1}
	if !cx.BindJSON(&in) {
		return
	}
	c.purchase(cx, cx.Param("id"), in.Quantity)
}

// Buy handles POST /api/purchases/buy.
func (c *InventoryController) Buy(cx *ctx.Context) {
	in := buyInput{Quantity: 1}
	if !cx.BindJSON(&in) {
		return
	}
	c.purchase(cx, in.SweetID, in.Quantity)
}

func (c *InventoryController) purchase(cx *ctx.Context, sweetID string, quantity int) {
	result, err := c.inventory.Purchase(cx.Context(), sweetID, cx.UserID(), quantity)
	if err != nil {
		respondError(cx, err)
		return
	}

	receipt := resource.One(resources.PurchaseReceipt, result)
	if result.NotificationErr != nil {
		cx.Message(http.StatusOK, "Purchase successful, but email failed", receipt)
		return
	}
	msg := fmt.Sprintf("Purchased %d %s(s) and recorded in history!", result.Purchase.Quantity, result.Purchase.SweetName)
	cx.Message(http.StatusCreated, msg, receipt)
}

// Restock handles POST /api/sweets/{id}/restock.
func (c *InventoryController) Restock(cx *ctx.Context) {
	var in quantityInput
	if !cx.BindJSON(&in) {
		return
	}

	sweet, err := c.inventory.Restock(cx.Context(), cx.Param("id"), in.Quantity)
	if err != nil {
		respondError(cx, err)
		return
	}
	msg := fmt.Sprintf("Restocked %d %s(s)", in.Quantity, sweet.Name)
	cx.Message(http.StatusOK, msg, resource.One(resources.Sweet, sweet))
}
