// Package catalog derives the filtered and sorted car listings shown on the
// buy and rent pages.
package catalog

import (
	"sort"
	"strconv"
	"strings"

	"github.com/jjenkins/revera/internal/model"
)

// DeriveView returns the records matching q, ordered by q.Sort. The input
// slice is never modified and the result is always a fresh slice.
func DeriveView(records []model.Listing, q model.CatalogQuery) []model.Listing {
	mode := q.Mode
	if mode != model.KindRent {
		mode = model.KindBuy
	}

	term := strings.ToLower(strings.TrimSpace(q.Search))
	active := q.Active()

	out := make([]model.Listing, 0, len(records))
	for _, r := range records {
		if term != "" && !strings.Contains(strings.ToLower(r.Title()), term) {
			continue
		}
		if !matchesFacets(r, q, active, mode) {
			continue
		}
		out = append(out, r)
	}

	sort.SliceStable(out, comparator(out, q.Sort, mode))
	return out
}

func matchesFacets(r model.Listing, q model.CatalogQuery, active []string, mode model.ListingKind) bool {
	for _, name := range active {
		if !matchFacet(r, name, q.Facets[name], mode) {
			return false
		}
	}
	return true
}

func matchFacet(r model.Listing, name, value string, mode model.ListingKind) bool {
	switch name {
	case model.FacetPriceRange:
		pr, ok := ParsePriceRange(value)
		if !ok {
			return false
		}
		if mode == model.KindRent && r.RentPrice == nil {
			return false
		}
		return pr.Contains(r.PriceFor(mode))
	case model.FacetBrand:
		return strings.EqualFold(r.Brand, value)
	case model.FacetFuel:
		return strings.EqualFold(r.Fuel, value)
	case model.FacetStatus:
		return strings.EqualFold(string(r.Status), value)
	case model.FacetKind:
		return strings.EqualFold(string(r.Kind), value)
	case model.FacetLocation:
		return strings.EqualFold(r.Location, value)
	case model.FacetSeats:
		n, err := strconv.Atoi(value)
		return err == nil && r.Seats == n
	case model.FacetYear:
		n, err := strconv.Atoi(value)
		return err == nil && r.Year == n
	default:
		// unknown facet: nothing carries that attribute
		return false
	}
}

func comparator(ls []model.Listing, key model.SortKey, mode model.ListingKind) func(i, j int) bool {
	byID := func(i, j int) bool { return ls[i].ID < ls[j].ID }

	switch key {
	case model.SortPriceHigh:
		return func(i, j int) bool {
			pi, pj := ls[i].PriceFor(mode), ls[j].PriceFor(mode)
			if pi != pj {
				return pi > pj
			}
			return byID(i, j)
		}
	case model.SortYear:
		return func(i, j int) bool {
			if ls[i].Year != ls[j].Year {
				return ls[i].Year > ls[j].Year
			}
			return byID(i, j)
		}
	case model.SortBrand:
		return func(i, j int) bool {
			bi, bj := strings.ToLower(ls[i].Brand), strings.ToLower(ls[j].Brand)
			if bi != bj {
				return bi < bj
			}
			return byID(i, j)
		}
	default:
		return func(i, j int) bool {
			pi, pj := ls[i].PriceFor(mode), ls[j].PriceFor(mode)
			if pi != pj {
				return pi < pj
			}
			return byID(i, j)
		}
	}
}
