package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"
)

type SearchHandler struct {
	Catalog *services.CatalogService
}

// GET /api/v1/products?q=
func (h *SearchHandler) Search(c *fiber.Ctx) error {
	rawQ := c.Query("q")
	q := ""
	if strings.TrimSpace(rawQ) != "" {
		var ok bool
		q, ok = validate.Q(rawQ)
		if !ok {
			log.Security(c, "validation.fail", map[string]any{"field": "q", "value": rawQ})
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "enter a valid keyword (letters/numbers only)"})
		}
	}
	page := validate.Page(c.Query("page"))
	products, err := h.Catalog.Search(c.UserContext(), q, page, c.QueryInt("pageSize", 20))
	if err != nil {
		return respondError(c, "search", "could not load results, please retry", err)
	}
	return c.JSON(fiber.Map{"q": q, "products": products, "page": page, "count": len(products)})
}
