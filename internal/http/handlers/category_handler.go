package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"
)

type CategoryHandler struct {
	Catalog *services.CatalogService
}

// GET /api/v1/categories
func (h *CategoryHandler) Tree(c *fiber.Ctx) error {
	tree, err := h.Catalog.CategoryTree(c.UserContext())
	if err != nil {
		return respondError(c, "categories.list", "could not load categories", err)
	}
	return c.JSON(fiber.Map{"categories": tree})
}

// GET /api/v1/categories/:slug/products
func (h *CategoryHandler) Products(c *fiber.Ctx) error {
	slug, ok := validate.Slug(c.Params("slug"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "category"})
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	}
	page := validate.Page(c.Query("page"))
	products, err := h.Catalog.ListProductsByCategory(c.UserContext(), slug, page, c.QueryInt("pageSize", 12))
	if err != nil {
		return respondError(c, "categories.products", "could not load products", err)
	}
	return c.JSON(fiber.Map{"products": products, "page": page, "count": len(products)})
}
