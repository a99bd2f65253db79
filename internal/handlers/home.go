package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jjenkins/revera/internal/catalog"
	"github.com/jjenkins/revera/internal/obs"
	"github.com/jjenkins/revera/internal/service"
	"github.com/jjenkins/revera/internal/templates"
)

const featuredCount = 3

func HomeHandler(engine *catalog.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		data := templates.HomeData{}

		featured, err := engine.Featured(ctx, featuredCount)
		if err != nil {
			obs.Logger.Error("home_featured_failed", "error", err)
		} else {
			data.Featured = featured
		}

		all, err := engine.Listings(ctx)
		if err != nil {
			obs.Logger.Error("home_metrics_failed", "error", err)
		} else {
			m := service.Summarize(all)
			data.ForSale = m.ForSale
			data.ForRent = m.ForRent
			data.Brands = m.Brands
			data.Locations = m.Locations
		}

		return render(c, templates.Home(data))
	}
}
