package controllers

import (
	"net/http"
	"strconv"

	"github.com/shashiranjanraj/sweetshop/app/models"
	"github.com/shashiranjanraj/sweetshop/app/resources"
	"github.com/shashiranjanraj/sweetshop/app/services"
	"github.com/shashiranjanraj/sweetshop/pkg/ctx"
	"github.com/shashiranjanraj/sweetshop/pkg/resource"
)

type SweetController struct {
	catalog        *services.CatalogService
	maxUploadBytes int64
}

func NewSweetController(catalog *services.CatalogService, maxUploadBytes int64) *SweetController {
	return &SweetController{catalog: catalog, maxUploadBytes: maxUploadBytes}
}

// Index handles GET /api/sweets.
func (c *SweetController) Index(cx *ctx.Context) {
	sweets, err := c.catalog.List(cx.Context())
	if err != nil {
		respondError(cx, err)
		return
	}
	cx.Success(resource.Many(resources.Sweet, sweets))
}

// Search handles GET /api/sweets/search?name=&category=&min_price=&max_price=.
func (c *SweetController) Search(cx *ctx.Context) {
	f := models.SweetFilter{Name: cx.Query("name"), Category: cx.Query("category")}

	for key, dst := range map[string]**float64{"min_price": &f.MinPrice, "max_price": &f.MaxPrice} {
		raw := cx.Query(key)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			cx.Error(http.StatusBadRequest, key+" must be a number")
			return
		}
		*dst = &v
	}

	sweets, err := c.catalog.Search(cx.Context(), f)
	if err != nil {
		respondError(cx, err)
		return
	}
	cx.Success(resource.Many(resources.Sweet, sweets))
}

// Show handles GET /api/sweets/{id}.
func (c *SweetController) Show(cx *ctx.Context) {
	sweet, err := c.catalog.Get(cx.Context(), cx.Param("id"))
	if err != nil {
		respondError(cx, err)
		return
	}
	cx.Success(resource.One(resources.Sweet, sweet))
}

type sweetInput struct {
	Name     string   `json:"name"      validate:"required,max=255"`
	Category string   `json:"category"  validate:"required,max=100"`
	Price    *float64 `json:"price"     validate:"required,gte=0"`
	Quantity int      `json:"quantity"  validate:"gte=0"`
	ImageURL string   `json:"image_url" validate:"nullable,url"`
}

// Store handles POST /api/sweets.
func (c *SweetController) Store(cx *ctx.Context) {
	var in sweetInput
	if !cx.BindJSON(&in) {
		return
	}

	sweet, err := c.catalog.Create(cx.Context(), models.Sweet{
		Name:     in.Name,
		Category: in.Category,
		Price:    *in.Price,
		Quantity: in.Quantity,
		ImageURL: in.ImageURL,
	})
	if err != nil {
		respondError(cx, err)
		return
	}
	cx.Created(resource.Map{"id": sweet.ID})
}

type sweetChangesInput struct {
	Name     *string  `json:"name"      validate:"nullable,max=255"`
	Category *string  `json:"category"  validate:"nullable,max=100"`
	Price    *float64 `json:"price"     validate:"nullable,gte=0"`
	ImageURL *string  `json:"image_url" validate:"nullable,url"`
}

// Update handles PUT /api/sweets/{id}. Stock changes go through restock.
func (c *SweetController) Update(cx *ctx.Context) {
	var in sweetChangesInput
	if !cx.BindJSON(&in) {
		return
	}

	sweet, err := c.catalog.Update(cx.Context(), cx.Param("id"), models.SweetChanges{
		Name:     in.Name,
		Category: in.Category,
		Price:    in.Price,
		ImageURL: in.ImageURL,
	})
	if err != nil {
		respondError(cx, err)
		return
	}
	cx.Message(http.StatusOK, "Sweet updated", resource.One(resources.Sweet, sweet))
}

// Destroy handles DELETE /api/sweets/{id}.
func (c *SweetController) Destroy(cx *ctx.Context) {
	if err := c.catalog.Delete(cx.Context(), cx.Param("id")); err != nil {
		respondError(cx, err)
		return
	}
	cx.Message(http.StatusOK, "Sweet deleted", nil)
}

// Image handles POST /api/sweets/{id}/image with a multipart "image" field.
func (c *SweetController) Image(cx *ctx.Context) {
	cx.R.Body = http.MaxBytesReader(cx.W, cx.R.Body, c.maxUploadBytes)
	if err := cx.R.ParseMultipartForm(c.maxUploadBytes); err != nil {
		cx.Error(http.StatusBadRequest, "image must be a multipart upload under "+strconv.FormatInt(c.maxUploadBytes, 10)+" bytes")
		return
	}
	defer cx.R.MultipartForm.RemoveAll() //nolint:errcheck

	file, header, err := cx.R.FormFile("image")
	if err != nil {
		cx.Error(http.StatusBadRequest, "image field is required")
		return
	}
	defer file.Close()

	sweet, err := c.catalog.UploadImage(cx.Context(), cx.Param("id"), header.Header.Get("Content-Type"), file)
	if err != nil {
		respondError(cx, err)
		return
	}
	cx.Success(resource.One(resources.Sweet, sweet))
}
