package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func price(p float64) *float64 { return &p }

func validBuy() Listing {
	return Listing{ID: "x", Brand: "BMW", Name: "M8", Year: 2023, Seats: 4, Price: 185000, Kind: KindBuy, Status: StatusAvailable}
}

func TestListingValidate(t *testing.T) {
	assert.NoError(t, validBuy().Validate())

	tests := []struct {
		name   string
		mutate func(*Listing)
	}{
		{"missing id", func(l *Listing) { l.ID = " " }},
		{"zero year", func(l *Listing) { l.Year = 0 }},
		{"zero seats", func(l *Listing) { l.Seats = 0 }},
		{"negative price", func(l *Listing) { l.Price = -1 }},
		{"unknown kind", func(l *Listing) { l.Kind = "lease" }},
		{"rent price on buy-only", func(l *Listing) { l.RentPrice = price(100) }},
		{"rented buy-only", func(l *Listing) { l.Status = StatusRented }},
		{"unknown status", func(l *Listing) { l.Status = "reserved" }},
		{"rent without rent price", func(l *Listing) { l.Kind = KindRent }},
		{"sold rent-only", func(l *Listing) { l.Kind = KindRent; l.RentPrice = price(1); l.Status = StatusSold }},
		{"negative rent price", func(l *Listing) { l.Kind = KindBoth; l.RentPrice = price(-5) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := validBuy()
			tt.mutate(&l)
			assert.ErrorIs(t, l.Validate(), ErrInvalidListing)
		})
	}

	both := validBuy()
	both.Kind = KindBoth
	both.RentPrice = price(900)
	both.Status = StatusRented
	assert.NoError(t, both.Validate())
	both.Status = StatusSold
	assert.NoError(t, both.Validate())
}

func TestListingPriceFor(t *testing.T) {
	l := validBuy()
	assert.Equal(t, 185000.0, l.PriceFor(KindBuy))
	assert.Equal(t, 0.0, l.PriceFor(KindRent))

	l.Kind = KindBoth
	l.RentPrice = price(700)
	assert.Equal(t, 700.0, l.PriceFor(KindRent))
	assert.True(t, l.Buyable())
	assert.True(t, l.Rentable())
	assert.Equal(t, "BMW M8", l.Title())
}

func TestCatalogQueryKey(t *testing.T) {
	a := CatalogQuery{Search: " Ferrari", Sort: SortYear, Mode: KindBuy, Facets: map[string]string{FacetPriceRange: "400000+", FacetBrand: "Ferrari", FacetFuel: FacetAll}}
	b := CatalogQuery{Search: "ferrari ", Sort: SortYear, Mode: KindBuy, Facets: map[string]string{FacetBrand: "Ferrari", FacetPriceRange: "400000+"}}
	assert.Equal(t, a.Key(), b.Key())
	assert.Equal(t, "f.brand=Ferrari&f.priceRange=400000%2B&mode=buy&q=ferrari&sort=year", a.Key())

	b.Sort = SortBrand
	assert.NotEqual(t, a.Key(), b.Key())
	assert.Equal(t, []string{FacetBrand, FacetPriceRange}, a.Active())
	assert.Equal(t, FacetAll, a.Facet(FacetLocation))
}

func TestCatalogQueryKeyEscapesValues(t *testing.T) {
	forged := CatalogQuery{Mode: KindBuy, Sort: SortPriceLow, Facets: map[string]string{FacetBrand: "Ferrari&f.priceRange=400000+"}}
	real := CatalogQuery{Mode: KindBuy, Sort: SortPriceLow, Facets: map[string]string{FacetBrand: "Ferrari", FacetPriceRange: "400000+"}}
	assert.NotEqual(t, forged.Key(), real.Key())

	searched := CatalogQuery{Mode: KindBuy, Search: "x&f.brand=ferrari"}
	faceted := CatalogQuery{Mode: KindBuy, Search: "x", Facets: map[string]string{FacetBrand: "ferrari"}}
	assert.NotEqual(t, searched.Key(), faceted.Key())
}
