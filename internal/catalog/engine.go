package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jjenkins/revera/internal/model"
	"github.com/jjenkins/revera/internal/obs"
)

var (
	ErrNotFound    = errors.New("listing not found")
	ErrUnavailable = errors.New("listing unavailable")
	ErrNotOffered  = errors.New("listing not offered in this mode")
)

// Option is one entry of a dropdown
type Option struct {
	Value string
	Label string
}

// View is a derived catalog page
type View struct {
	Mode        model.ListingKind
	Query       model.CatalogQuery
	Listings    []model.Listing
	Total       int
	Brands      []Option
	Locations   []Option
	PriceRanges []Option
	Sorts       []Option
}

// ViewCache memoizes derived views as ordered listing IDs
type ViewCache interface {
	Get(ctx context.Context, key string) ([]string, bool, error)
	Set(ctx context.Context, key string, ids []string) error
}

// Engine serves catalog views over a Source
type Engine struct {
	source Source
	cache  ViewCache
}

// NewEngine creates an Engine. cache may be nil.
func NewEngine(source Source, cache ViewCache) *Engine {
	return &Engine{source: source, cache: cache}
}

// View returns the listings for a buy or rent page matching q
func (e *Engine) View(ctx context.Context, mode model.ListingKind, q model.CatalogQuery) (*View, error) {
	if mode != model.KindRent {
		mode = model.KindBuy
	}
	q.Mode = mode

	all, err := e.source.Listings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load listings: %w", err)
	}
	page := offeredIn(all, mode)

	listings := e.cachedView(ctx, mode, page, q)

	return &View{
		Mode:        mode,
		Query:       q,
		Listings:    listings,
		Total:       len(page),
		Brands:      distinctOptions(page, func(l model.Listing) string { return l.Brand }, "All Brands"),
		Locations:   distinctOptions(page, func(l model.Listing) string { return l.Location }, "All Locations"),
		PriceRanges: PriceBrackets(mode),
		Sorts:       SortOptions(),
	}, nil
}

func (e *Engine) cachedView(ctx context.Context, mode model.ListingKind, page []model.Listing, q model.CatalogQuery) []model.Listing {
	if e.cache == nil {
		return DeriveView(page, q)
	}

	key := e.cacheKey(ctx, mode, q)
	if ids, ok, err := e.cache.Get(ctx, key); err != nil {
		obs.Logger.Warn("view_cache_get_failed", "key", key, "error", err)
	} else if ok {
		if hit, complete := pick(page, ids); complete {
			return hit
		}
		obs.Logger.Info("view_cache_stale", "key", key)
	}

	listings := DeriveView(page, q)
	ids := make([]string, len(listings))
	for i, l := range listings {
		ids[i] = l.ID
	}
	if err := e.cache.Set(ctx, key, ids); err != nil {
		obs.Logger.Warn("view_cache_set_failed", "key", key, "error", err)
	}
	return listings
}

func (e *Engine) cacheKey(ctx context.Context, mode model.ListingKind, q model.CatalogQuery) string {
	version := "unversioned"
	if v, ok := e.source.(Versioned); ok {
		if s, err := v.Version(ctx); err == nil {
			version = s
		} else {
			obs.Logger.Warn("source_version_failed", "error", err)
		}
	}
	return version + "|" + string(mode) + "|" + q.Key()
}

// Listings returns every record of the source
func (e *Engine) Listings(ctx context.Context) ([]model.Listing, error) {
	all, err := e.source.Listings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load listings: %w", err)
	}
	return all, nil
}

// Featured returns up to n featured listings, newest first
func (e *Engine) Featured(ctx context.Context, n int) ([]model.Listing, error) {
	all, err := e.source.Listings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load listings: %w", err)
	}

	var featured []model.Listing
	for _, l := range all {
		if l.Featured {
			featured = append(featured, l)
		}
	}
	featured = DeriveView(featured, model.CatalogQuery{Sort: model.SortYear})
	if n > 0 && len(featured) > n {
		featured = featured[:n]
	}
	return featured, nil
}

// Get returns a single listing by ID. Sources that implement Getter are
// asked directly instead of being scanned.
func (e *Engine) Get(ctx context.Context, id string) (*model.Listing, error) {
	if g, ok := e.source.(Getter); ok {
		l, err := g.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load listing %s: %w", id, err)
		}
		if l == nil {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return l, nil
	}

	all, err := e.source.Listings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load listings: %w", err)
	}
	for _, l := range all {
		if l.ID == id {
			found := l
			return &found, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// RequestAction guards a buy or rent request. It rejects listings that are
// not offered in mode or whose status is not available.
func (e *Engine) RequestAction(ctx context.Context, id string, mode model.ListingKind) (*model.Listing, error) {
	l, err := e.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	offered := l.Buyable()
	if mode == model.KindRent {
		offered = l.Rentable()
	}
	if !offered {
		return l, fmt.Errorf("%w: %s %s cannot be %s", ErrNotOffered, l.Brand, l.Name, actionVerb(mode))
	}
	if l.Status != model.StatusAvailable {
		return l, fmt.Errorf("%w: this %s %s is currently %s", ErrUnavailable, l.Brand, l.Name, l.Status)
	}
	return l, nil
}

func actionVerb(mode model.ListingKind) string {
	if mode == model.KindRent {
		return "rented"
	}
	return "bought"
}

func offeredIn(all []model.Listing, mode model.ListingKind) []model.Listing {
	out := make([]model.Listing, 0, len(all))
	for _, l := range all {
		if (mode == model.KindRent && l.Rentable()) || (mode == model.KindBuy && l.Buyable()) {
			out = append(out, l)
		}
	}
	return out
}

// pick returns the listings for ids in order; complete is false if any id is gone
func pick(page []model.Listing, ids []string) ([]model.Listing, bool) {
	byID := make(map[string]model.Listing, len(page))
	for _, l := range page {
		byID[l.ID] = l
	}
	out := make([]model.Listing, 0, len(ids))
	for _, id := range ids {
		l, ok := byID[id]
		if !ok {
			return nil, false
		}
		out = append(out, l)
	}
	return out, true
}

func distinctOptions(ls []model.Listing, attr func(model.Listing) string, allLabel string) []Option {
	seen := make(map[string]bool)
	var values []string
	for _, l := range ls {
		v := attr(l)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}
	sort.Strings(values)

	opts := []Option{{Value: model.FacetAll, Label: allLabel}}
	for _, v := range values {
		opts = append(opts, Option{Value: v, Label: v})
	}
	return opts
}
