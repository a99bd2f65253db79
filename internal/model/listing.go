package model

import (
	"errors"
	"fmt"
	"strings"
)

// ListingKind says whether a car can be bought, rented or both
type ListingKind string

const (
	KindBuy  ListingKind = "buy"
	KindRent ListingKind = "rent"
	KindBoth ListingKind = "both"
)

// ListingStatus is the availability of a car
type ListingStatus string

const (
	StatusAvailable ListingStatus = "available"
	StatusRented    ListingStatus = "rented"
	StatusSold      ListingStatus = "sold"
)

// Listing represents one vehicle available for purchase and/or rental
type Listing struct {
	ID           string        `json:"id" bson:"_id"`
	Brand        string        `json:"brand" bson:"brand"`
	Name         string        `json:"name" bson:"name"`
	Year         int           `json:"year" bson:"year"`
	Fuel         string        `json:"fuel" bson:"fuel"`
	Seats        int           `json:"seats" bson:"seats"`
	Acceleration string        `json:"acceleration" bson:"acceleration"`
	Price        float64       `json:"price" bson:"price"`
	RentPrice    *float64      `json:"rentPrice,omitempty" bson:"rentPrice,omitempty"`
	Kind         ListingKind   `json:"type" bson:"type"`
	Status       ListingStatus `json:"status" bson:"status"`
	Featured     bool          `json:"featured,omitempty" bson:"featured"`
	Image        string        `json:"image" bson:"image"`
	Location     string        `json:"location,omitempty" bson:"location,omitempty"`
}

// Buyable reports whether the listing is offered for purchase
func (l Listing) Buyable() bool {
	return l.Kind == KindBuy || l.Kind == KindBoth
}

// Rentable reports whether the listing is offered for rental
func (l Listing) Rentable() bool {
	return l.Kind == KindRent || l.Kind == KindBoth
}

// Title is the display name used on cards and in search
func (l Listing) Title() string {
	return l.Brand + " " + l.Name
}

// PriceFor returns the price shown for the given mode. Rent mode uses the
// daily rent price, or zero when the car cannot be rented.
func (l Listing) PriceFor(mode ListingKind) float64 {
	if mode == KindRent {
		if l.RentPrice == nil {
			return 0
		}
		return *l.RentPrice
	}
	return l.Price
}

var ErrInvalidListing = errors.New("invalid listing")

// Validate checks the record invariants.
func (l Listing) Validate() error {
	var problems []string

	if strings.TrimSpace(l.ID) == "" {
		problems = append(problems, "id is required")
	}
	if l.Year <= 0 {
		problems = append(problems, "year must be positive")
	}
	if l.Seats <= 0 {
		problems = append(problems, "seats must be positive")
	}
	if l.Price < 0 {
		problems = append(problems, "price must be >= 0")
	}

	switch l.Kind {
	case KindBuy, KindRent, KindBoth:
	default:
		problems = append(problems, fmt.Sprintf("unknown type %q", l.Kind))
	}

	if l.Rentable() && l.RentPrice == nil {
		problems = append(problems, "rentPrice is required for rentable cars")
	}
	if !l.Rentable() && l.RentPrice != nil {
		problems = append(problems, "rentPrice is only allowed for rentable cars")
	}
	if l.RentPrice != nil && *l.RentPrice < 0 {
		problems = append(problems, "rentPrice must be >= 0")
	}

	switch l.Status {
	case StatusAvailable:
	case StatusSold:
		if !l.Buyable() {
			problems = append(problems, "sold only applies to cars for sale")
		}
	case StatusRented:
		if !l.Rentable() {
			problems = append(problems, "rented only applies to rental cars")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown status %q", l.Status))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w %s: %s", ErrInvalidListing, l.ID, strings.Join(problems, "; "))
	}
	return nil
}
