package catalog

import (
	"strconv"
	"strings"
)

// PriceRange is a half-open price interval. Max < 0 means unbounded.
type PriceRange struct {
	Min float64
	Max float64
}

// ParsePriceRange understands "a-b" ([a,b)) and "a+" (>= a).
func ParsePriceRange(s string) (PriceRange, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return PriceRange{}, false
	}

	if strings.HasSuffix(s, "+") {
		min, err := strconv.ParseFloat(strings.TrimSuffix(s, "+"), 64)
		if err != nil || min < 0 {
			return PriceRange{}, false
		}
		return PriceRange{Min: min, Max: -1}, true
	}

	lo, hi, found := strings.Cut(s, "-")
	if !found {
		return PriceRange{}, false
	}
	min, err := strconv.ParseFloat(lo, 64)
	if err != nil || min < 0 {
		return PriceRange{}, false
	}
	max, err := strconv.ParseFloat(hi, 64)
	if err != nil || max < min {
		return PriceRange{}, false
	}
	return PriceRange{Min: min, Max: max}, true
}

// Contains reports whether price falls inside the range
func (r PriceRange) Contains(price float64) bool {
	if price < r.Min {
		return false
	}
	return r.Max < 0 || price < r.Max
}
