package handlers

import "github.com/gofiber/fiber/v2"

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if u := c.Locals("user"); u != nil {
		data["User"] = u
	}
	// Token the CSRF middleware put into Locals, else the cookie it set earlier.
	tok, _ := c.Locals("CSRFToken").(string)
	if tok == "" {
		tok = c.Cookies("csrf_")
	}
	if tok != "" {
		data["CSRFToken"] = tok
	}
	return c.Render(tmpl, data)
}

// RenderError shows the friendly error page without internal details.
func RenderError(c *fiber.Ctx, status int, msg string) error {
	if err := c.Status(status).Render("error", fiber.Map{"Message": msg}); err != nil {
		return c.Status(status).SendString(msg)
	}
	return nil
}
