package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/services"
	"storefront/internal/validate"
)

type InventoryHandler struct {
	Inv *services.InventoryService
}

// GET /api/v1/availability?productId=
func (h *InventoryHandler) Check(c *fiber.Ctx) error {
	raw := strings.TrimSpace(c.Query("productId"))
	if raw == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "missing productId",
		})
	}
	productID, ok := validate.ID(raw)
	if !ok {
		return badRequest(c, "productId", "invalid productId")
	}

	avail, err := h.Inv.CheckAvailability(c.UserContext(), productID)
	if err != nil {
		return respondError(c, "availability", "could not check availability", err)
	}
	return c.JSON(avail)
}
