// Package templates holds the HTML components of the showroom. Components
// are written in .templ files; run `templ generate` after editing them.
package templates

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/jjenkins/revera/internal/auth"
	"github.com/jjenkins/revera/internal/model"
)

// Notice is a toast-style message shown above page content
type Notice struct {
	Success bool
	Title   string
	Message string
}

func noticeVariant(n *Notice) string {
	if n.Success {
		return "notice-success"
	}
	return "notice-error"
}

type navLink struct {
	Href  string
	Label string
}

var navLinks = []navLink{
	{"/", "Home"},
	{"/buy", "Buy"},
	{"/rent", "Rent"},
	{"/about", "About"},
	{"/contact", "Contact"},
}

// HomeData is what the landing page shows
type HomeData struct {
	Featured  []model.Listing
	ForSale   int
	ForRent   int
	Brands    int
	Locations int
}

// AboutData carries the live catalog figures shown on the about page
type AboutData struct {
	Listings     int
	Brands       int
	AveragePrice float64
	TopBrand     string
}

type companyValue struct {
	Title string
	Body  string
}

var companyValues = []companyValue{
	{"Trust & Security", "Every vehicle is inspected and insured before it reaches you."},
	{"Luxury Experience", "Only the finest cars, with white-glove service from enquiry to handover."},
	{"Passion for Cars", "Our team are enthusiasts who understand the thrill of a great drive."},
	{"Customer First", "We build lasting relationships, not just transactions."},
}

// ContactInterests are the choices of the "I'm interested in" field
var ContactInterests = []string{
	"Buying a luxury car",
	"Renting a luxury car",
	"General inquiries",
	"Partnership opportunities",
	"Other",
}

// ContactForm holds the values typed into the contact form
type ContactForm struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Interest  string
	Message   string
}

// AuthData is what the sign-in / sign-up modal renders
type AuthData struct {
	Flow      auth.Snapshot
	Domains   []string
	Providers []string
	Notice    *Notice
}

// AuthNotice converts a flow outcome into a page notice
func AuthNotice(o auth.Outcome) *Notice {
	if o.Kind == auth.OutcomeNone {
		return nil
	}
	return &Notice{Success: o.Kind == auth.OutcomeSuccess, Title: o.Title, Message: o.Message}
}

// modalNotice prefers a handler notice over the flow's own outcome
func modalNotice(data AuthData) *Notice {
	if data.Notice != nil {
		return data.Notice
	}
	return AuthNotice(data.Flow.Outcome)
}

// FormatMoney renders a whole-dollar amount with thousands separators
func FormatMoney(v float64) string {
	digits := strconv.FormatInt(int64(v+0.5), 10)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return "$" + b.String()
}

// PriceLabel is the price shown on a card for mode
func PriceLabel(l model.Listing, mode model.ListingKind) string {
	if mode == model.KindRent {
		return FormatMoney(l.PriceFor(mode)) + "/day"
	}
	return FormatMoney(l.Price)
}

func statusLabel(s model.ListingStatus) string {
	switch s {
	case model.StatusAvailable:
		return "Available"
	case model.StatusRented:
		return "Rented"
	case model.StatusSold:
		return "Sold"
	}
	return string(s)
}

func modePath(mode model.ListingKind) string {
	if mode == model.KindRent {
		return "/rent"
	}
	return "/buy"
}

func listingsTitle(mode model.ListingKind) string {
	if mode == model.KindRent {
		return "Rent"
	}
	return "Buy"
}

func listingsHeading(mode model.ListingKind) string {
	if mode == model.KindRent {
		return "Cars to rent"
	}
	return "Cars for sale"
}

// featuredMode prices a featured car for sale when it can be bought
func featuredMode(l model.Listing) model.ListingKind {
	if l.Buyable() {
		return model.KindBuy
	}
	return model.KindRent
}

func actionLabel(mode model.ListingKind) string {
	if mode == model.KindRent {
		return "Rent now"
	}
	return "Buy now"
}

func detailURL(l model.Listing, mode model.ListingKind) templ.SafeURL {
	return templ.URL("/cars/" + url.PathEscape(l.ID) + "?mode=" + string(mode))
}

func requestURL(l model.Listing, mode model.ListingKind) templ.SafeURL {
	return templ.URL("/cars/" + url.PathEscape(l.ID) + "/request?mode=" + string(mode))
}

func authTitle(mode auth.Mode) string {
	if mode == auth.ModeSignUp {
		return "Create account"
	}
	return "Sign in"
}

func submitLabel(s auth.Snapshot) string {
	if s.State == auth.StateSubmitting {
		return "Please wait..."
	}
	return authTitle(s.Mode)
}

func passwordType(show bool) string {
	if show {
		return "text"
	}
	return "password"
}

func passwordToggle(show bool) string {
	if show {
		return "Hide"
	}
	return "Show"
}

func passwordPlaceholder(mode auth.Mode) string {
	if mode == auth.ModeSignUp {
		return "Create a password"
	}
	return "Enter password"
}

func emailPlaceholder(domains []string) string {
	if len(domains) == 0 {
		return "you@company.com"
	}
	return "you@" + domains[0]
}

func previewSrc(handle string) string {
	return "/auth/preview/" + url.PathEscape(handle)
}

func providerURL(p string, role auth.Role) templ.SafeURL {
	return templ.URL("/auth/provider/" + url.PathEscape(p) + "?role=" + url.QueryEscape(string(role)))
}

func providerLabel(p string) string {
	switch p {
	case "google":
		return "Google"
	case "facebook":
		return "Facebook"
	}
	return p
}
