package handlers

import "github.com/gofiber/fiber/v2"

// HandleInstallation acknowledges installation lifecycle events. They never reach the engine.
func HandleInstallation(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"ok": true})
}
