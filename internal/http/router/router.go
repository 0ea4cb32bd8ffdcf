// Package router assembles the fiber app: middleware, templates and routes.
package router

import (
	"errors"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"
	"github.com/jmoiron/sqlx"

	"storefront/internal/config"
	"storefront/internal/http/handlers"
	applog "storefront/internal/log"
	"storefront/web"
)

const friendlyError = "Something went wrong. Please try again."

func isAPI(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Path(), "/api/")
}

// ErrorHandler logs the error and answers without internal details.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := friendlyError
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		code = fe.Code
		msg = fe.Message
	}
	if code >= fiber.StatusInternalServerError {
		applog.Error(c, "server.error", err, nil)
	}
	if isAPI(c) {
		return c.Status(code).JSON(fiber.Map{"error": msg})
	}
	return handlers.RenderError(c, code, msg)
}

// New builds the application over db.
func New(cfg config.Config, db *sqlx.DB) (*fiber.App, *handlers.Deps, error) {
	views, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return nil, nil, err
	}
	engine := html.NewFileSystem(http.FS(views), ".html")

	app := fiber.New(fiber.Config{
		Views:        engine,
		BodyLimit:    cfg.BodyLimit,
		ErrorHandler: ErrorHandler,
	})

	deps := handlers.NewDeps(db, cfg)

	// ---------- Middlewares ----------
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(limiter.New(limiter.Config{
		Max:        60,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.global.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	}))
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "header:X-Csrf-Token",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   cfg.SecureCookies,
		ContextKey:     "csrf",
		// Bearer callers do not ride on ambient cookies.
		Next: func(c *fiber.Ctx) bool {
			return handlers.BearerToken(c) != ""
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", map[string]any{"reason": err.Error()})
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "security check failed, refresh and try again"})
		},
	}))
	app.Use(func(c *fiber.Ctx) error {
		if tok, ok := c.Locals("csrf").(string); ok {
			c.Locals("CSRFToken", tok)
		}
		return c.Next()
	})

	// ---------- Public API ----------
	api := app.Group("/api/v1")
	api.Get("/categories", deps.CategoryHandler.Tree)
	api.Get("/categories/:slug/products", deps.CategoryHandler.Products)
	api.Get("/products", limiter.New(limiter.Config{Max: 20, Expiration: time.Minute}), deps.SearchHandler.Search)
	api.Get("/products/hero", deps.ProductHandler.Hero)
	api.Get("/products/:slug", deps.ProductHandler.Detail)
	availLimiter := limiter.New(limiter.Config{
		Max:        15,
		Expiration: 30 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|avail"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.availability.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	})
	api.Get("/availability", availLimiter, deps.InventoryHandler.Check)

	// ---------- Auth (login throttled) ----------
	authAPI := app.Group("/api/auth")
	authAPI.Post("/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "too many attempts, please try again later"})
		},
	}), deps.AuthHandler.Login)
	authAPI.Post("/logout", deps.AuthHandler.Logout)

	// ---------- Admin ----------
	requireAdmin := handlers.RequireAdmin(deps.Auth)
	adminAPI := app.Group("/api/admin", requireAdmin)
	adminAPI.Post("/create-product", deps.AdminHandler.CreateProduct)
	adminAPI.Patch("/products/:id", deps.AdminHandler.UpdateProduct)
	adminAPI.Delete("/products/:id", deps.AdminHandler.DeleteProduct)
	adminAPI.Put("/products/:id/stock", deps.AdminHandler.SetStock)
	adminAPI.Post("/categories", deps.AdminHandler.CreateCategory)
	adminAPI.Patch("/categories/:id", deps.AdminHandler.UpdateCategory)
	adminAPI.Delete("/categories/:id", deps.AdminHandler.DeleteCategory)

	admin := app.Group("/admin", requireAdmin)
	admin.Get("/products/new", deps.AdminHandler.NewProductForm)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		if isAPI(c) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
		}
		return handlers.RenderError(c, fiber.StatusNotFound, "Page not found")
	})

	return app, deps, nil
}
