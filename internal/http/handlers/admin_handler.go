package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/catalog"
	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"
)

type AdminHandler struct {
	Products *services.ProductService
	Catalog  *services.CatalogService
	Inv      *services.InventoryService
	Cache    *catalog.Cache
	Timeout  time.Duration
}

func (h *AdminHandler) writeCtx(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	if h.Timeout <= 0 {
		return context.WithCancel(c.UserContext())
	}
	return context.WithTimeout(c.UserContext(), h.Timeout)
}

func pathID(c *fiber.Ctx) (string, bool) {
	return validate.ID(c.Params("id"))
}

// GET /admin/products/new
func (h *AdminHandler) NewProductForm(c *fiber.Ctx) error {
	snap, err := h.Cache.Snapshot(c.UserContext())
	if err != nil {
		applog.Error(c, "admin.products.form.fail", err, nil)
		return RenderError(c, fiber.StatusServiceUnavailable, "Could not load categories")
	}
	return render(c, "admin_product_form", fiber.Map{
		"Categories":    snap.Categories,
		"Subcategories": snap.Subcategories,
	})
}

// POST /api/admin/create-product
func (h *AdminHandler) CreateProduct(c *fiber.Ctx) error {
	var req services.CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "body", "invalid request body")
	}
	ctx, cancel := h.writeCtx(c)
	defer cancel()

	p, err := h.Products.CreateProduct(ctx, req)
	if err != nil {
		return respondError(c, "admin.products.create", "failed to create product", err)
	}
	applog.Audit(c, "admin.products.create", map[string]any{"product_id": p.ID, "slug": p.Slug, "category_id": p.CategoryID})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "product": p})
}

// PATCH /api/admin/products/:id
func (h *AdminHandler) UpdateProduct(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "id", "invalid product id")
	}
	var patch catalog.ProductPatch
	if err := c.BodyParser(&patch); err != nil {
		return badRequest(c, "body", "invalid request body")
	}
	ctx, cancel := h.writeCtx(c)
	defer cancel()

	p, err := h.Products.UpdateProduct(ctx, id, patch)
	if err != nil {
		return respondError(c, "admin.products.update", "failed to update product", err)
	}
	applog.Audit(c, "admin.products.update", map[string]any{"product_id": id, "images_replaced": patch.Images != nil})
	return c.JSON(fiber.Map{"success": true, "product": p})
}

// DELETE /api/admin/products/:id
func (h *AdminHandler) DeleteProduct(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "id", "invalid product id")
	}
	ctx, cancel := h.writeCtx(c)
	defer cancel()

	if err := h.Products.DeleteProduct(ctx, id); err != nil {
		return respondError(c, "admin.products.delete", "failed to delete product", err)
	}
	applog.Audit(c, "admin.products.delete", map[string]any{"product_id": id})
	return c.SendStatus(fiber.StatusNoContent)
}

type stockRequest struct {
	StockQuantity *int `json:"stock_quantity"`
}

// PUT /api/admin/products/:id/stock
func (h *AdminHandler) SetStock(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "id", "invalid product id")
	}
	var req stockRequest
	if err := c.BodyParser(&req); err != nil || req.StockQuantity == nil {
		return badRequest(c, "stock_quantity", "stock_quantity is required")
	}
	ctx, cancel := h.writeCtx(c)
	defer cancel()

	if err := h.Inv.SetStock(ctx, id, *req.StockQuantity); err != nil {
		return respondError(c, "admin.stock.save", "could not save stock", err)
	}
	applog.Audit(c, "admin.stock.save", map[string]any{"product_id": id, "qty": *req.StockQuantity})
	return c.JSON(fiber.Map{"success": true, "stock_quantity": *req.StockQuantity})
}

// POST /api/admin/categories
func (h *AdminHandler) CreateCategory(c *fiber.Ctx) error {
	var in services.CategoryInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "body", "invalid request body")
	}
	ctx, cancel := h.writeCtx(c)
	defer cancel()

	cat, err := h.Catalog.CreateCategory(ctx, in)
	if err != nil {
		return respondError(c, "admin.categories.create", "failed to create category", err)
	}
	applog.Audit(c, "admin.categories.create", map[string]any{"category_id": cat.ID, "slug": cat.Slug})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "category": cat})
}

type categoryPatch struct {
	IsActive *bool `json:"is_active"`
}

// PATCH /api/admin/categories/:id
func (h *AdminHandler) UpdateCategory(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "id", "invalid category id")
	}
	var req categoryPatch
	if err := c.BodyParser(&req); err != nil || req.IsActive == nil {
		return badRequest(c, "is_active", "is_active is required")
	}
	ctx, cancel := h.writeCtx(c)
	defer cancel()

	if err := h.Catalog.SetCategoryActive(ctx, id, *req.IsActive); err != nil {
		return respondError(c, "admin.categories.update", "failed to update category", err)
	}
	applog.Audit(c, "admin.categories.update", map[string]any{"category_id": id, "is_active": *req.IsActive})
	return c.JSON(fiber.Map{"success": true})
}

// DELETE /api/admin/categories/:id
func (h *AdminHandler) DeleteCategory(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "id", "invalid category id")
	}
	ctx, cancel := h.writeCtx(c)
	defer cancel()

	if err := h.Catalog.DeleteCategory(ctx, id); err != nil {
		return respondError(c, "admin.categories.delete", "failed to delete category", err)
	}
	applog.Audit(c, "admin.categories.delete", map[string]any{"category_id": id})
	return c.SendStatus(fiber.StatusNoContent)
}
