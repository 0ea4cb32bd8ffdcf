package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	applog "storefront/internal/log"
	"storefront/internal/services"
)

// SessionCookie carries the signed session token for browser clients.
const SessionCookie = "session"

// BearerToken returns the token from an "Authorization: Bearer" header.
func BearerToken(c *fiber.Ctx) string {
	h := c.Get(fiber.HeaderAuthorization)
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func sessionToken(c *fiber.Ctx) string {
	if tok := BearerToken(c); tok != "" {
		return tok
	}
	return c.Cookies(SessionCookie)
}

// RequireAdmin admits requests whose signed token maps to a live session of
// an ADMIN user. Caller-supplied identity headers are never consulted.
func RequireAdmin(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if claimed := c.Get("X-User-Id"); claimed != "" {
			applog.Security(c, "authz.header.ignored", map[string]any{"claimed": claimed})
		}
		tok := sessionToken(c)
		if tok == "" {
			applog.Security(c, "access.denied.admin", map[string]any{"reason": "no_token"})
			return deny(c, fiber.StatusUnauthorized, "authentication required")
		}
		u, err := auth.Authenticate(c.UserContext(), tok)
		if err != nil {
			applog.Security(c, "access.denied.admin", map[string]any{"reason": "bad_session"})
			return deny(c, fiber.StatusUnauthorized, "authentication required")
		}
		c.Locals("user", u)
		c.Locals("userID", u.ID)
		if !u.IsAdmin() {
			applog.Security(c, "access.denied.admin", map[string]any{"reason": "role"})
			return deny(c, fiber.StatusForbidden, "access denied")
		}
		return c.Next()
	}
}

func deny(c *fiber.Ctx, status int, msg string) error {
	if strings.HasPrefix(c.Path(), "/api/") {
		return c.Status(status).JSON(fiber.Map{"error": msg})
	}
	return RenderError(c, status, "Access denied")
}
