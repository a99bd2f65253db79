package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jjenkins/revera/internal/catalog"
	"github.com/jjenkins/revera/internal/model"
)

// Register mounts every page route on app
func Register(app *fiber.App, engine *catalog.Engine, authHandlers *AuthHandlers, limiter *AuthLimiter) {
	app.Get("/", HomeHandler(engine))

	// Catalog routes
	app.Get("/buy", ListingsHandler(engine, model.KindBuy))
	app.Get("/rent", ListingsHandler(engine, model.KindRent))
	app.Get("/cars/:id", CarDetailHandler(engine))
	app.Post("/cars/:id/request", RequestHandler(engine))

	app.Get("/about", AboutHandler(engine))
	app.Get("/contact", ContactHandler())
	app.Post("/contact", ContactSubmitHandler())

	// Auth routes
	authGroup := app.Group("/auth")
	if limiter != nil {
		authGroup.Use(limiter.Middleware())
	}
	authHandlers.Register(authGroup)

	app.Get("/healthz", HealthHandler())

	app.Use(NotFoundHandler())
}
