package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cast"

	"grivyzom/internal/services"
	"grivyzom/internal/validate"
)

// GalleryHandler serves the public community gallery.
type GalleryHandler struct {
	Gallery *services.GalleryService
}

func (h *GalleryHandler) Categories(c *fiber.Ctx) error {
	return ok(c, fiber.Map{"categories": h.Gallery.Categories()})
}

func (h *GalleryHandler) Images(c *fiber.Ctx) error {
	images := h.Gallery.Images(
		c.Query("category"),
		cast.ToBool(c.Query("featured")),
		cast.ToInt(c.Query("limit")),
	)
	return ok(c, fiber.Map{"images": images})
}

func (h *GalleryHandler) Image(c *fiber.Ctx) error {
	id, okID := validate.ID(c.Params("id"))
	if !okID {
		return fail(c, fiber.StatusBadRequest, "invalid image id")
	}
	img, err := h.Gallery.Image(id)
	if err != nil {
		return fail(c, fiber.StatusNotFound, "image not found")
	}
	return ok(c, img)
}
