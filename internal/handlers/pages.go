package handlers

import (
	"net/mail"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jjenkins/revera/internal/catalog"
	"github.com/jjenkins/revera/internal/obs"
	"github.com/jjenkins/revera/internal/service"
	"github.com/jjenkins/revera/internal/templates"
)

func AboutHandler(engine *catalog.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		data := templates.AboutData{}

		all, err := engine.Listings(c.UserContext())
		if err != nil {
			obs.Logger.Error("about_metrics_failed", "error", err)
		} else {
			m := service.Summarize(all)
			data.Listings = m.TotalListings
			data.Brands = m.Brands
			data.AveragePrice = m.AveragePrice
			data.TopBrand = m.TopBrand
		}

		return render(c, templates.About(data))
	}
}

func ContactHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		form := templates.ContactForm{Interest: templates.ContactInterests[0]}
		return render(c, templates.Contact(form, nil, nil))
	}
}

// ContactSubmitHandler validates the contact form and acknowledges it
func ContactSubmitHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		form := templates.ContactForm{
			FirstName: strings.TrimSpace(c.FormValue("firstName")),
			LastName:  strings.TrimSpace(c.FormValue("lastName")),
			Email:     strings.TrimSpace(c.FormValue("email")),
			Phone:     strings.TrimSpace(c.FormValue("phone")),
			Interest:  c.FormValue("interest"),
			Message:   strings.TrimSpace(c.FormValue("message")),
		}

		if errs := validateContact(form); len(errs) > 0 {
			notice := &templates.Notice{Title: "Check the form", Message: "Some fields need your attention."}
			return renderStatus(c, fiber.StatusUnprocessableEntity, templates.Contact(form, errs, notice))
		}

		obs.Logger.Info("contact_received", "interest", form.Interest)
		notice := &templates.Notice{
			Success: true,
			Title:   "Message sent",
			Message: "Thanks " + form.FirstName + ", we will get back to you within one business day.",
		}
		return render(c, templates.Contact(templates.ContactForm{Interest: templates.ContactInterests[0]}, nil, notice))
	}
}

func validateContact(f templates.ContactForm) map[string]string {
	errs := make(map[string]string)
	if f.FirstName == "" {
		errs["firstName"] = "First name is required."
	}
	if f.LastName == "" {
		errs["lastName"] = "Last name is required."
	}
	if f.Email == "" {
		errs["email"] = "Email is required."
	} else if addr, err := mail.ParseAddress(f.Email); err != nil || addr.Address != f.Email {
		errs["email"] = "Enter a valid email address."
	}
	if f.Message == "" {
		errs["message"] = "Tell us how we can help."
	}

	known := false
	for _, i := range templates.ContactInterests {
		if i == f.Interest {
			known = true
			break
		}
	}
	if !known {
		errs["interest"] = "Choose one of the options."
	}
	return errs
}

// HealthHandler reports liveness
func HealthHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	}
}
