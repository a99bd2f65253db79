package service

import (
	"sort"

	"github.com/jjenkins/revera/internal/model"
)

// CatalogMetrics summarizes a listing set
type CatalogMetrics struct {
	TotalListings int
	ForSale       int
	ForRent       int
	Available     int
	Brands        int
	Locations     int
	AveragePrice  float64
	TopBrand      string
	TopBrandCount int
}

// Summarize calculates catalog-wide metrics
func Summarize(listings []model.Listing) *CatalogMetrics {
	m := &CatalogMetrics{TotalListings: len(listings)}

	brandCounts := make(map[string]int)
	locations := make(map[string]bool)
	var priced int
	var priceSum float64

	for _, l := range listings {
		if l.Buyable() {
			m.ForSale++
			if l.Price > 0 {
				priced++
				priceSum += l.Price
			}
		}
		if l.Rentable() {
			m.ForRent++
		}
		if l.Status == model.StatusAvailable {
			m.Available++
		}
		if l.Brand != "" {
			brandCounts[l.Brand]++
		}
		if l.Location != "" {
			locations[l.Location] = true
		}
	}

	m.Brands = len(brandCounts)
	m.Locations = len(locations)
	if priced > 0 {
		m.AveragePrice = priceSum / float64(priced)
	}

	brands := make([]string, 0, len(brandCounts))
	for b := range brandCounts {
		brands = append(brands, b)
	}
	sort.Strings(brands)
	for _, b := range brands {
		if brandCounts[b] > m.TopBrandCount {
			m.TopBrand = b
			m.TopBrandCount = brandCounts[b]
		}
	}

	return m
}
