package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"
)

type AuthHandler struct {
	Auth   *services.AuthService
	Secure bool
}

type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

func (h *AuthHandler) setSession(c *fiber.Ctx, value string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    value,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   h.Secure,
		Expires:  expires,
	})
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "body", "invalid request body")
	}
	email, ok := validate.Email(req.Email)
	if !ok || !validate.Password(req.Password) {
		log.Security(c, "auth.login.fail", map[string]any{"email": req.Email, "reason": "bad_format"})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid email or password"})
	}

	tok, u, err := h.Auth.Login(c.UserContext(), email, req.Password)
	if errors.Is(err, services.ErrBadCreds) {
		log.Security(c, "auth.login.fail", map[string]any{"email": email})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid email or password"})
	}
	if err != nil {
		return respondError(c, "auth.login", "could not sign in", err)
	}

	h.setSession(c, tok, h.Auth.Now().Add(h.Auth.TTL))
	c.Locals("userID", u.ID)
	log.Audit(c, "auth.login.success", map[string]any{"email": email})
	return c.JSON(fiber.Map{"token": tok, "user": u})
}

// POST /api/auth/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if tok := sessionToken(c); tok != "" {
		if err := h.Auth.Logout(c.UserContext(), tok); err != nil {
			log.Error(c, "auth.logout.fail", err, nil)
		}
	}
	h.setSession(c, "", time.Now().Add(-1*time.Hour))
	log.Audit(c, "auth.logout", nil)
	return c.SendStatus(fiber.StatusNoContent)
}
