package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"
)

type ProductHandler struct {
	Catalog *services.CatalogService
}

// GET /api/v1/products/:slug
func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	slug, ok := validate.Slug(c.Params("slug"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "product"})
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "this item is no longer available"})
	}
	p, err := h.Catalog.ProductDetail(c.UserContext(), slug)
	if err != nil {
		return respondError(c, "products.detail", "could not load product", err)
	}
	return c.JSON(p)
}

// GET /api/v1/products/hero
func (h *ProductHandler) Hero(c *fiber.Ctx) error {
	products, err := h.Catalog.Hero(c.UserContext(), c.QueryInt("limit", 8))
	if err != nil {
		return respondError(c, "products.hero", "could not load products", err)
	}
	return c.JSON(fiber.Map{"products": products})
}
