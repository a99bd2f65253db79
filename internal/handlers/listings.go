package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jjenkins/revera/internal/catalog"
	"github.com/jjenkins/revera/internal/model"
	"github.com/jjenkins/revera/internal/obs"
	"github.com/jjenkins/revera/internal/templates"
)

// ListingsHandler serves the buy or rent page. HTMX requests get only the grid.
func ListingsHandler(engine *catalog.Engine, mode model.ListingKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		get := func(key string) string { return c.Query(key) }
		q := catalog.ParseQuery(mode, get)

		view, err := engine.View(c.UserContext(), mode, q)
		if err != nil {
			obs.Logger.Error("catalog_view_failed", "mode", mode, "error", err)
			return c.Status(fiber.StatusInternalServerError).SendString("Error loading listings")
		}

		if isPartial(c) {
			return render(c, templates.ListingGrid(view))
		}
		var window catalog.RentalWindow
		var notice *templates.Notice
		if mode == model.KindRent {
			window = catalog.ParseRentalWindow(get)
			notice = bookingNotice(window, q)
		}
		return render(c, templates.Listings(view, window, notice))
	}
}

// bookingNotice answers the rent page's Search button. Dates never narrow
// the results; they are checked and carried back to the form.
func bookingNotice(w catalog.RentalWindow, q model.CatalogQuery) *templates.Notice {
	if !w.Searched {
		return nil
	}
	switch err := w.Check(); {
	case errors.Is(err, catalog.ErrMissingDates):
		return &templates.Notice{Title: "Missing Information", Message: "Please select pickup and return dates."}
	case errors.Is(err, catalog.ErrReturnTooEarly):
		return &templates.Notice{Title: "Check your dates", Message: "The return date must not be before the pick-up date."}
	}

	where := "all locations"
	if loc := q.Facet(model.FacetLocation); loc != model.FacetAll {
		where = loc
	}
	return &templates.Notice{Success: true, Title: "Searching Cars", Message: "Found available cars in " + where + "."}
}

func CarDetailHandler(engine *catalog.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		l, err := engine.Get(c.UserContext(), c.Params("id"))
		if errors.Is(err, catalog.ErrNotFound) {
			return renderStatus(c, fiber.StatusNotFound, templates.NotFound(c.Path()))
		}
		if err != nil {
			obs.Logger.Error("catalog_get_failed", "id", c.Params("id"), "error", err)
			return c.Status(fiber.StatusInternalServerError).SendString("Error loading car")
		}

		return render(c, templates.CarDetail(*l, detailMode(c, *l), nil))
	}
}

// RequestHandler records a buy or rent request for a listing
func RequestHandler(engine *catalog.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		mode := model.KindBuy
		if c.Query("mode") == string(model.KindRent) {
			mode = model.KindRent
		}

		l, err := engine.RequestAction(c.UserContext(), c.Params("id"), mode)
		switch {
		case errors.Is(err, catalog.ErrNotFound):
			return renderStatus(c, fiber.StatusNotFound, templates.NotFound(c.Path()))
		case errors.Is(err, catalog.ErrUnavailable), errors.Is(err, catalog.ErrNotOffered):
			notice := &templates.Notice{Title: "Not available", Message: requestProblem(err, *l)}
			return renderStatus(c, fiber.StatusConflict, templates.CarDetail(*l, detailMode(c, *l), notice))
		case err != nil:
			obs.Logger.Error("catalog_request_failed", "id", c.Params("id"), "error", err)
			return c.Status(fiber.StatusInternalServerError).SendString("Error processing request")
		}

		obs.Logger.Info("catalog_request_received", "id", l.ID, "mode", mode)
		notice := &templates.Notice{
			Success: true,
			Title:   "Request received",
			Message: "Our team will contact you about the " + l.Title() + " shortly.",
		}
		return render(c, templates.CarDetail(*l, mode, notice))
	}
}

func requestProblem(err error, l model.Listing) string {
	if errors.Is(err, catalog.ErrNotOffered) {
		return "The " + l.Title() + " is not offered this way."
	}
	return "The " + l.Title() + " is currently " + string(l.Status) + "."
}

// detailMode picks how a listing is priced on its detail page
func detailMode(c *fiber.Ctx, l model.Listing) model.ListingKind {
	requested := model.ListingKind(c.Query("mode"))
	if requested == model.KindRent && l.Rentable() {
		return model.KindRent
	}
	if requested == model.KindBuy && l.Buyable() {
		return model.KindBuy
	}
	if l.Buyable() {
		return model.KindBuy
	}
	return model.KindRent
}
