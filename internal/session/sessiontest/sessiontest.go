// Package sessiontest provides handler-test helpers for session-aware routes.
package sessiontest

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	"github.com/wichananm65/pet-shop-storefront/internal/session"
)

// HeaderClaims turns X-User-ID and X-User-Role headers into claims on an unsigned token,
// standing in for session.JWT in handler tests.
func HeaderClaims() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if v := c.Get("X-User-ID"); v != "" {
			id, err := strconv.Atoi(v)
			if err == nil {
				claims := jwt.MapClaims{"user_id": id}
				if role := c.Get("X-User-Role"); role != "" {
					claims["role"] = role
				}
				c.Locals(session.TokenKey, &jwt.Token{Claims: claims})
			}
		}
		return c.Next()
	}
}
