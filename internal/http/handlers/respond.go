package handlers

import (
	"github.com/gofiber/fiber/v2"

	"grivyzom/internal/domain"
)

// Every endpoint answers with the same envelope: {success, data} on the
// happy path, {success: false, error} otherwise.

func ok(c *fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{"success": true, "data": data})
}

func okMsg(c *fiber.Ctx, data any, msg string) error {
	return c.JSON(fiber.Map{"success": true, "data": data, "message": msg})
}

func fail(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"success": false, "error": msg})
}

// currentUser reads the user the guard middleware stored, nil when anonymous.
func currentUser(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals("user").(*domain.User)
	return u
}
