package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	applog "grivyzom/internal/log"
	"grivyzom/internal/services"
	"grivyzom/internal/validate"
)

type AuthHandler struct {
	Auth *services.AuthService
}

func ensureSID(c *fiber.Ctx) string {
	sid := c.Cookies("sid")
	if sid == "" {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     "sid",
			Value:    sid,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Secure:   false,
		})
	}
	return sid
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	sid := ensureSID(c)
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&body); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid body")
	}
	// The identifier may be an email address or a username.
	ident, okI := validate.Email(body.Email)
	if !okI {
		ident, okI = validate.Username(body.Email)
	}
	if !okI || body.Password == "" {
		applog.Security(c, "auth.login.fail", map[string]any{"identifier": body.Email, "reason": "bad_format"})
		return fail(c, fiber.StatusUnauthorized, "invalid email or password")
	}

	u, err := h.Auth.Login(sid, ident, body.Password)
	if err != nil {
		applog.Security(c, "auth.login.fail", map[string]any{"identifier": ident})
		return fail(c, fiber.StatusUnauthorized, "invalid email or password")
	}

	applog.Audit(c, "auth.login.success", map[string]any{"user_id": u.ID})
	return ok(c, u)
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var body struct {
		Email         string `json:"email"`
		Username      string `json:"username"`
		MinecraftName string `json:"minecraft_name"`
		Password      string `json:"password"`
	}
	if err := c.BodyParser(&body); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid body")
	}
	email, okE := validate.Email(body.Email)
	if !okE {
		return fail(c, fiber.StatusBadRequest, "invalid email")
	}
	username, okU := validate.Username(body.Username)
	if !okU {
		return fail(c, fiber.StatusBadRequest, "username must be 3-16 letters, digits or underscores")
	}
	if body.MinecraftName != "" {
		if _, okM := validate.MinecraftName(body.MinecraftName); !okM {
			return fail(c, fiber.StatusBadRequest, "invalid minecraft name")
		}
	}
	if !validate.Password(body.Password) {
		return fail(c, fiber.StatusBadRequest, "password must be 8-64 chars with upper, lower and digit")
	}

	u, err := h.Auth.Register(username, body.MinecraftName, email, body.Password)
	if err != nil {
		if errors.Is(err, services.ErrUserExists) {
			return fail(c, fiber.StatusConflict, "email or username already taken")
		}
		applog.Error(c, "auth.register.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "could not register")
	}
	applog.Audit(c, "auth.register", map[string]any{"user_id": u.ID})
	return okMsg(c, u, "account created")
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sid := ensureSID(c)
	_ = h.Auth.Logout(sid)
	c.Cookie(&fiber.Cookie{
		Name:     "sid",
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   false,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
	applog.Audit(c, "auth.logout", nil)
	return okMsg(c, nil, "logged out")
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	return ok(c, currentUser(c))
}

// RequestReset always answers the same message so the endpoint cannot be
// used to probe which emails exist.
func (h *AuthHandler) RequestReset(c *fiber.Ctx) error {
	var body struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&body); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid body")
	}
	email, okE := validate.Email(body.Email)
	if okE {
		if token, err := h.Auth.IssueResetToken(email); err == nil {
			// Delivery goes out by mail; the token never enters the response.
			applog.Audit(c, "auth.reset.issued", map[string]any{"token_len": len(token)})
		}
	}
	return okMsg(c, nil, "if the account exists, a reset link has been sent")
}

func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var body struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&body); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid body")
	}
	if !validate.Password(body.Password) {
		return fail(c, fiber.StatusBadRequest, "password must be 8-64 chars with upper, lower and digit")
	}
	if err := h.Auth.ResetPassword(body.Token, body.Password); err != nil {
		applog.Security(c, "auth.reset.fail", nil)
		return fail(c, fiber.StatusBadRequest, "invalid or expired token")
	}
	applog.Audit(c, "auth.reset.success", nil)
	return okMsg(c, nil, "password updated")
}
