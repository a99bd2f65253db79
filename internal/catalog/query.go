package catalog

import (
	"strings"

	"github.com/jjenkins/revera/internal/model"
)

// facetParams are the query string parameters read as facets
var facetParams = []string{
	model.FacetBrand,
	model.FacetPriceRange,
	model.FacetFuel,
	model.FacetStatus,
	model.FacetLocation,
	model.FacetKind,
	model.FacetSeats,
	model.FacetYear,
}

var validSorts = map[model.SortKey]bool{
	model.SortPriceLow:  true,
	model.SortPriceHigh: true,
	model.SortYear:      true,
	model.SortBrand:     true,
}

// ParseQuery builds a CatalogQuery from request parameters. get returns ""
// for absent parameters, so both url.Values.Get and fiber's Ctx.Query fit.
func ParseQuery(mode model.ListingKind, get func(key string) string) model.CatalogQuery {
	q := model.CatalogQuery{
		Search: strings.TrimSpace(get("q")),
		Facets: make(map[string]string),
		Sort:   model.SortKey(get("sort")),
		Mode:   mode,
	}
	if !validSorts[q.Sort] {
		q.Sort = model.SortPriceLow
	}

	for _, name := range facetParams {
		v := strings.TrimSpace(get(name))
		if v == "" || v == model.FacetAll {
			continue
		}
		q.Facets[name] = v
	}
	return q
}
