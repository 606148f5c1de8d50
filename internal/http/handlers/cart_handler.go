package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cast"

	applog "grivyzom/internal/log"
	"grivyzom/internal/repos"
	"grivyzom/internal/services"
	"grivyzom/internal/validate"
)

// CartHandler drives the per-session cart. Anonymous visitors can fill a
// cart; paying requires a login only on the grovs path.
type CartHandler struct {
	Cart *services.CartService
}

func (h *CartHandler) View(c *fiber.Ctx) error {
	return ok(c, h.Cart.Get(ensureSID(c)))
}

func (h *CartHandler) Add(c *fiber.Ctx) error {
	var body struct {
		ProductID string `json:"product_id"`
		Quantity  any    `json:"quantity"`
	}
	if err := c.BodyParser(&body); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid body")
	}
	pid, okID := validate.ID(body.ProductID)
	if !okID {
		return fail(c, fiber.StatusBadRequest, "invalid product id")
	}
	view, err := h.Cart.Add(ensureSID(c), pid, cast.ToInt(body.Quantity))
	if err != nil {
		if errors.Is(err, services.ErrProductInactive) {
			return fail(c, fiber.StatusNotFound, "product not available")
		}
		applog.Error(c, "cart.add.fail", err, map[string]any{"product_id": body.ProductID})
		return fail(c, fiber.StatusInternalServerError, "could not add to cart")
	}
	applog.Info(c, "cart.add", map[string]any{"product_id": body.ProductID})
	return ok(c, view)
}

func (h *CartHandler) UpdateQuantity(c *fiber.Ctx) error {
	var body struct {
		Quantity any `json:"quantity"`
	}
	if err := c.BodyParser(&body); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid body")
	}
	id, okID := validate.ID(c.Params("productId"))
	if !okID {
		return fail(c, fiber.StatusBadRequest, "invalid product id")
	}
	return ok(c, h.Cart.UpdateQuantity(ensureSID(c), id, cast.ToInt(body.Quantity)))
}

func (h *CartHandler) Remove(c *fiber.Ctx) error {
	id, okID := validate.ID(c.Params("productId"))
	if !okID {
		return fail(c, fiber.StatusBadRequest, "invalid product id")
	}
	return ok(c, h.Cart.Remove(ensureSID(c), id))
}

func (h *CartHandler) Clear(c *fiber.Ctx) error {
	h.Cart.Clear(ensureSID(c))
	return ok(c, h.Cart.Get(ensureSID(c)))
}

// Checkout opens a pending money order and returns the payment redirect.
// The cart survives until the payment confirms.
func (h *CartHandler) Checkout(c *fiber.Ctx) error {
	sid := ensureSID(c)
	userID := ""
	if u := currentUser(c); u != nil {
		userID = u.ID
	}
	res, err := h.Cart.Checkout(sid, userID)
	if err != nil {
		if errors.Is(err, services.ErrEmptyCart) {
			return fail(c, fiber.StatusBadRequest, "cart is empty")
		}
		applog.Error(c, "cart.checkout.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "could not start checkout")
	}
	applog.Audit(c, "cart.checkout", map[string]any{"order_id": res.OrderID, "total": res.Total})
	return ok(c, res)
}

// Confirm marks a money order as paid, pays out cashback and releases the
// cart. In production the payment provider's callback hits this.
func (h *CartHandler) Confirm(c *fiber.Ctx) error {
	var body struct {
		OrderID string `json:"order_id"`
	}
	if err := c.BodyParser(&body); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid body")
	}
	orderID, okID := validate.ID(body.OrderID)
	if !okID {
		return fail(c, fiber.StatusBadRequest, "invalid order id")
	}
	userID := ""
	if u := currentUser(c); u != nil {
		userID = u.ID
	}
	if err := h.Cart.ConfirmPayment(ensureSID(c), orderID, userID); err != nil {
		applog.Error(c, "cart.confirm.fail", err, map[string]any{"order_id": orderID})
		return fail(c, fiber.StatusInternalServerError, "could not confirm payment")
	}
	applog.Audit(c, "cart.confirm", map[string]any{"order_id": orderID})
	return okMsg(c, nil, "payment confirmed")
}

// CheckoutWithGrovs pays the whole cart from the grovs balance. Requires a
// logged-in user; the guard middleware enforces that.
func (h *CartHandler) CheckoutWithGrovs(c *fiber.Ctx) error {
	u := currentUser(c)
	res, err := h.Cart.CheckoutWithGrovs(ensureSID(c), u.ID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyCart):
			return fail(c, fiber.StatusBadRequest, "cart is empty")
		case errors.Is(err, services.ErrNotPayableInGrovs):
			return fail(c, fiber.StatusBadRequest, "some products cannot be bought with grovs")
		case errors.Is(err, repos.ErrInsufficientGrovs):
			return fail(c, fiber.StatusBadRequest, "not enough grovs")
		}
		applog.Error(c, "cart.checkout.grovs.fail", err, map[string]any{"user_id": u.ID})
		return fail(c, fiber.StatusInternalServerError, "could not complete purchase")
	}
	applog.Audit(c, "cart.checkout.grovs", map[string]any{
		"user_id": u.ID, "order_id": res.OrderID, "grovs": res.GrovsSpent,
	})
	return okMsg(c, res, "purchase completed")
}
