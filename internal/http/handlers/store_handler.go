package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cast"

	"grivyzom/internal/services"
	"grivyzom/internal/validate"
)

// StoreHandler serves the public catalog: products, categories and offers.
type StoreHandler struct {
	Catalog *services.CatalogService
	Status  *services.StatusService
}

func (h *StoreHandler) Products(c *fiber.Ctx) error {
	f := services.ProductFilter{
		CategoryID:  c.Query("category"),
		ProductType: c.Query("type"),
		Query:       c.Query("q"),
		Limit:       cast.ToInt(c.Query("limit")),
		Offset:      cast.ToInt(c.Query("offset")),
	}
	return ok(c, h.Catalog.List(f))
}

func (h *StoreHandler) Product(c *fiber.Ctx) error {
	id, okID := validate.ID(c.Params("id"))
	if !okID {
		return fail(c, fiber.StatusBadRequest, "invalid product id")
	}
	d, err := h.Catalog.Detail(id)
	if err != nil {
		return fail(c, fiber.StatusNotFound, "product not found")
	}
	return ok(c, d)
}

func (h *StoreHandler) Categories(c *fiber.Ctx) error {
	return ok(c, h.Catalog.ListCategories())
}

func (h *StoreHandler) Offers(c *fiber.Ctx) error {
	return ok(c, h.Catalog.ActiveOffers())
}

// ServerStatus backs the site header; it always answers 200.
func (h *StoreHandler) ServerStatus(c *fiber.Ctx) error {
	return ok(c, h.Status.Current())
}
