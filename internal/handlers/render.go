package handlers

import (
	"github.com/a-h/templ"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/jjenkins/revera/internal/templates"
)

func render(c *fiber.Ctx, page templ.Component) error {
	handler := adaptor.HTTPHandler(templ.Handler(page))
	return handler(c)
}

func renderStatus(c *fiber.Ctx, status int, page templ.Component) error {
	handler := adaptor.HTTPHandler(templ.Handler(page, templ.WithStatus(status)))
	return handler(c)
}

func isPartial(c *fiber.Ctx) bool {
	return c.Get("HX-Request") == "true"
}

// NotFoundHandler renders the 404 page for unmatched routes
func NotFoundHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return renderStatus(c, fiber.StatusNotFound, templates.NotFound(c.Path()))
	}
}
