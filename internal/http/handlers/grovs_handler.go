package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cast"

	applog "grivyzom/internal/log"
	"grivyzom/internal/services"
	"grivyzom/internal/validate"
)

// GrovsHandler exposes the reward-point endpoints. Every route here sits
// behind RequireUser.
type GrovsHandler struct {
	Grovs *services.GrovsService
}

func (h *GrovsHandler) Balance(c *fiber.Ctx) error {
	u := currentUser(c)
	view, err := h.Grovs.Balance(u.ID)
	if err != nil {
		applog.Error(c, "grovs.balance.fail", err, map[string]any{"user_id": u.ID})
		return fail(c, fiber.StatusInternalServerError, "could not load balance")
	}
	return ok(c, view)
}

func (h *GrovsHandler) ClaimDaily(c *fiber.Ctx) error {
	u := currentUser(c)
	res, err := h.Grovs.ClaimDailyReward(u.ID)
	if err != nil {
		if errors.Is(err, services.ErrAlreadyClaimed) {
			return fail(c, fiber.StatusConflict, "daily reward already claimed today")
		}
		applog.Error(c, "grovs.claim.fail", err, map[string]any{"user_id": u.ID})
		return fail(c, fiber.StatusInternalServerError, "could not claim reward")
	}
	applog.Audit(c, "grovs.claim", map[string]any{
		"user_id": u.ID, "streak": res.Reward.CurrentStreak, "grovs": res.Reward.TotalGrovs,
	})
	return okMsg(c, res, "reward claimed")
}

func (h *GrovsHandler) CompleteEvent(c *fiber.Ctx) error {
	u := currentUser(c)
	eventID, okID := validate.ID(c.Params("id"))
	if !okID {
		return fail(c, fiber.StatusBadRequest, "invalid event id")
	}
	res, err := h.Grovs.CompleteEvent(u.ID, eventID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAlreadyCompleted):
			return fail(c, fiber.StatusConflict, "event already completed")
		case errors.Is(err, services.ErrEventNotRewarding):
			return fail(c, fiber.StatusBadRequest, "event grants no grovs")
		}
		applog.Error(c, "grovs.event.fail", err, map[string]any{"user_id": u.ID, "event_id": eventID})
		return fail(c, fiber.StatusNotFound, "event not found")
	}
	applog.Audit(c, "grovs.event.reward", map[string]any{
		"user_id": u.ID, "event_id": eventID, "grovs": res.GrovsEarned,
	})
	return okMsg(c, res, "event reward granted")
}

func (h *GrovsHandler) Transactions(c *fiber.Ctx) error {
	u := currentUser(c)
	page, err := h.Grovs.Transactions(u.ID, cast.ToInt(c.Query("page")), cast.ToInt(c.Query("per_page")))
	if err != nil {
		applog.Error(c, "grovs.transactions.fail", err, map[string]any{"user_id": u.ID})
		return fail(c, fiber.StatusInternalServerError, "could not load transactions")
	}
	return ok(c, page)
}

func (h *GrovsHandler) CanAfford(c *fiber.Ctx) error {
	u := currentUser(c)
	amount := cast.ToInt64(c.Query("amount"))
	if amount < 0 {
		return fail(c, fiber.StatusBadRequest, "invalid amount")
	}
	return ok(c, fiber.Map{"can_afford": h.Grovs.CanAfford(u.ID, amount)})
}
