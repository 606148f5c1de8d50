package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cast"

	"grivyzom/internal/domain"
	"grivyzom/internal/services"
	"grivyzom/internal/validate"
)

// EventHandler serves the public calendar.
type EventHandler struct {
	Events *services.EventService
}

// parseFilter reads ?categories=pvp,torneo&completed=1. An absent or empty
// categories parameter means no category filtering at all.
func parseFilter(c *fiber.Ctx) (services.CalendarFilter, error) {
	f := services.CalendarFilter{ShowCompleted: cast.ToBool(c.Query("completed"))}
	raw := strings.TrimSpace(c.Query("categories"))
	if raw == "" {
		return f, nil
	}
	for _, cat := range strings.Split(raw, ",") {
		cat = strings.TrimSpace(cat)
		if !domain.ValidEventCategory(cat) {
			return f, fiber.NewError(fiber.StatusBadRequest, "unknown category: "+cat)
		}
		f.Categories = append(f.Categories, cat)
	}
	return f, nil
}

// Month returns the six-week grid for ?year=&month=; missing parameters
// default to the current month.
func (h *EventHandler) Month(c *fiber.Ctx) error {
	now := time.Now()
	year := cast.ToInt(c.Query("year"))
	month := cast.ToInt(c.Query("month"))
	if year == 0 {
		year = now.Year()
	}
	if month < 1 || month > 12 {
		month = int(now.Month())
	}
	f, err := parseFilter(c)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}
	data, err := h.Events.Month(year, time.Month(month), f)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "could not build calendar")
	}
	return ok(c, data)
}

func (h *EventHandler) Upcoming(c *fiber.Ctx) error {
	f, err := parseFilter(c)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}
	return ok(c, h.Events.Upcoming(f))
}

func (h *EventHandler) ForDate(c *fiber.Ctx) error {
	day, okDay := validate.Day(c.Params("date"))
	if !okDay {
		return fail(c, fiber.StatusBadRequest, "date must be YYYY-MM-DD")
	}
	f, err := parseFilter(c)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}
	events, err := h.Events.ForDate(day, f)
	if err != nil {
		if errors.Is(err, services.ErrBadDate) {
			return fail(c, fiber.StatusBadRequest, "date must be a real calendar day")
		}
		return fail(c, fiber.StatusInternalServerError, "could not load events")
	}
	return ok(c, events)
}

func (h *EventHandler) Detail(c *fiber.Ctx) error {
	id, okID := validate.ID(c.Params("id"))
	if !okID {
		return fail(c, fiber.StatusBadRequest, "invalid event id")
	}
	userID := ""
	if u := currentUser(c); u != nil {
		userID = u.ID
	}
	d, err := h.Events.Detail(id, userID)
	if err != nil {
		return fail(c, fiber.StatusNotFound, "event not found")
	}
	return ok(c, d)
}

func (h *EventHandler) Categories(c *fiber.Ctx) error {
	return ok(c, h.Events.Categories())
}
