package model

import (
	"net/url"
	"sort"
	"strings"
)

// FacetAll is the sentinel that disables a facet
const FacetAll = "all"

// Facet names understood by the catalog
const (
	FacetBrand      = "brand"
	FacetPriceRange = "priceRange"
	FacetFuel       = "fuel"
	FacetStatus     = "status"
	FacetLocation   = "location"
	FacetKind       = "type"
	FacetSeats      = "seats"
	FacetYear       = "year"
)

// SortKey selects the comparator applied to a catalog view
type SortKey string

const (
	SortPriceLow  SortKey = "price-low"
	SortPriceHigh SortKey = "price-high"
	SortYear      SortKey = "year"
	SortBrand     SortKey = "brand"
)

// CatalogQuery is the user-driven input to a catalog view
type CatalogQuery struct {
	Search string
	Facets map[string]string
	Sort   SortKey
	Mode   ListingKind
}

// Facet returns the selected value for a facet, FacetAll if unset
func (q CatalogQuery) Facet(name string) string {
	v, ok := q.Facets[name]
	if !ok || v == "" {
		return FacetAll
	}
	return v
}

// Active returns the facets that actually filter, in name order
func (q CatalogQuery) Active() []string {
	var names []string
	for name, v := range q.Facets {
		if v != "" && v != FacetAll {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Key is a canonical representation of the query used for memoization.
// Values are query-escaped so no facet value can mimic another field.
func (q CatalogQuery) Key() string {
	v := url.Values{}
	v.Set("mode", string(q.Mode))
	v.Set("sort", string(q.Sort))
	v.Set("q", strings.ToLower(strings.TrimSpace(q.Search)))
	for _, name := range q.Active() {
		v.Set("f."+name, q.Facets[name])
	}
	return v.Encode()
}
