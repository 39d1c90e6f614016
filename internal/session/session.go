// Package session works out who a request belongs to: a signed-in user from the JWT
// issued by the auth backend, or an anonymous shopper tracked by a cookie.
package session

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const (
	// CookieName holds the anonymous cart session id.
	CookieName = "cart_session"

	// TokenKey is the locals key holding the verified *jwt.Token.
	TokenKey = "user"
	ownerKey = "cartOwner"

	cookieTTL = 30 * 24 * time.Hour
)

// JWT validates bearer tokens when one is sent. Requests without an Authorization
// header pass through untouched so anonymous shoppers keep working.
func JWT(secret string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: []byte(secret),
		ContextKey: TokenKey,
		Filter: func(c *fiber.Ctx) bool {
			return strings.TrimSpace(c.Get(fiber.HeaderAuthorization)) == ""
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "invalid or expired token"})
		},
	})
}

// Owner stores the cart owner key in locals: user:<id> for signed-in users,
// anon:<uuid> otherwise. A missing or malformed cookie gets a fresh id.
func Owner() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if id, err := UserIDFromCtx(c); err == nil && id > 0 {
			c.Locals(ownerKey, "user:"+strconv.Itoa(id))
			return c.Next()
		}
		sid := c.Cookies(CookieName)
		if _, err := uuid.Parse(sid); err != nil {
			sid = uuid.NewString()
			c.Cookie(&fiber.Cookie{
				Name:     CookieName,
				Value:    sid,
				Path:     "/",
				HTTPOnly: true,
				SameSite: fiber.CookieSameSiteLaxMode,
				Expires:  time.Now().Add(cookieTTL),
			})
		}
		c.Locals(ownerKey, "anon:"+sid)
		return c.Next()
	}
}

// OwnerFromCtx returns the key set by Owner.
func OwnerFromCtx(c *fiber.Ctx) (string, bool) {
	v, ok := c.Locals(ownerKey).(string)
	return v, ok && v != ""
}

// RequireUser rejects requests without a signed-in user.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := UserIDFromCtx(c); err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
		}
		return c.Next()
	}
}

// RequireAdmin rejects requests whose token does not carry role=admin.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := claimsFromCtx(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
		}
		if role, _ := claims["role"].(string); role != "admin" {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "admin role required"})
		}
		return c.Next()
	}
}

// UserIDFromCtx extracts the user_id claim from the JWT token stored
// in `c.Locals("user")`.
func UserIDFromCtx(c *fiber.Ctx) (int, error) {
	claims, ok := claimsFromCtx(c)
	if !ok {
		return 0, fiber.ErrUnauthorized
	}
	raw, ok := claims["user_id"]
	if !ok {
		return 0, fiber.ErrUnauthorized
	}
	switch v := raw.(type) {
	case float64:
		return int(v), nil
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case string:
		id, err := strconv.Atoi(v)
		if err != nil {
			return 0, fiber.ErrUnauthorized
		}
		return id, nil
	default:
		return 0, fiber.ErrUnauthorized
	}
}

func claimsFromCtx(c *fiber.Ctx) (jwt.MapClaims, bool) {
	tok, ok := c.Locals(TokenKey).(*jwt.Token)
	if !ok || tok == nil {
		return nil, false
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	return claims, ok
}
