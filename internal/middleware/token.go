package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
)

// RequireToken rejects requests whose ?token= does not match. An empty expected token disables the check.
func RequireToken(expected string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if expected == "" {
			return c.Next()
		}
		if subtle.ConstantTimeCompare([]byte(c.Query("token")), []byte(expected)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"ok":     false,
				"detail": "Invalid token",
			})
		}
		return c.Next()
	}
}
