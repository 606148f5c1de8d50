package handlers

import (
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"

	applog "grivyzom/internal/log"
	"grivyzom/internal/services"
)

func isAPI(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Path(), "/api/")
}

// loginRedirect sends the browser to the login page carrying the path it
// tried to reach, so a successful login can return there.
func loginRedirect(c *fiber.Ctx) error {
	return c.Redirect("/login?returnUrl=" + url.QueryEscape(c.OriginalURL()))
}

// RequireUser enforces a logged-in session. API paths get a JSON 401,
// page paths redirect to login with a returnUrl.
func RequireUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := c.Cookies("sid")
		if sid == "" {
			if isAPI(c) {
				return fail(c, fiber.StatusUnauthorized, "login required")
			}
			return loginRedirect(c)
		}
		u, err := auth.CurrentUser(sid)
		if err != nil || u == nil {
			if isAPI(c) {
				return fail(c, fiber.StatusUnauthorized, "login required")
			}
			return loginRedirect(c)
		}
		c.Locals("user", u)
		return c.Next()
	}
}

// RequireStaff additionally demands a staff role. A logged-in non-staff
// user gets 403, never a login redirect.
func RequireStaff(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := c.Cookies("sid")
		if sid == "" {
			if isAPI(c) {
				return fail(c, fiber.StatusUnauthorized, "login required")
			}
			return loginRedirect(c)
		}
		u, err := auth.CurrentUser(sid)
		if err != nil || u == nil {
			if isAPI(c) {
				return fail(c, fiber.StatusUnauthorized, "login required")
			}
			return loginRedirect(c)
		}
		if !u.IsStaff() {
			applog.Security(c, "access.denied.staff", map[string]any{"user_id": u.ID, "role": u.Role})
			return fail(c, fiber.StatusForbidden, "staff access required")
		}
		c.Locals("user", u)
		return c.Next()
	}
}
