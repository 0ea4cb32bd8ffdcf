package handlers

import (
	"context"
	"errors"
	"sort"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/domain"
	applog "storefront/internal/log"
)

// respondError maps service errors to a status and a client-safe body.
// failMsg is returned for store write failures; the raw error only goes to
// the log.
func respondError(c *fiber.Ctx, action, failMsg string, err error) error {
	var (
		verr *domain.ValidationError
		swe  *domain.StoreWriteError
	)
	switch {
	case errors.As(err, &verr):
		fields := make([]string, 0, len(verr.Fields))
		for k := range verr.Fields {
			fields = append(fields, k)
		}
		sort.Strings(fields)
		applog.Info(c, action+".invalid", map[string]any{"fields": fields})
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "validation failed", "fields": verr.Fields})
	case errors.Is(err, domain.ErrCategoryNotFound):
		applog.Info(c, action+".unresolved", map[string]any{"reason": "category"})
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "selected category was not found"})
	case errors.Is(err, domain.ErrSubcategoryNotFound):
		applog.Info(c, action+".unresolved", map[string]any{"reason": "subcategory"})
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "selected subcategory does not belong to the selected category"})
	case errors.As(err, &swe):
		applog.Error(c, action+".fail", err, map[string]any{"step": swe.Step})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": failMsg})
	case errors.Is(err, domain.ErrStoreUnavailable), errors.Is(err, context.DeadlineExceeded):
		applog.Error(c, action+".unavailable", err, nil)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "catalog temporarily unavailable, retry soon"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	case errors.Is(err, domain.ErrConflict):
		applog.Info(c, action+".conflict", nil)
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "authentication required"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "access denied"})
	}
	applog.Error(c, action+".fail", err, nil)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": failMsg})
}

func badRequest(c *fiber.Ctx, field, msg string) error {
	applog.Security(c, "validation.fail", map[string]any{"field": field})
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}
