package catalog

import (
	"errors"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

var (
	ErrMissingDates   = errors.New("pickup and return dates are required")
	ErrReturnTooEarly = errors.New("return date is before the pickup date")
)

// RentalDurations are the booking lengths offered on the rent page
var RentalDurations = []Option{
	{Value: "daily", Label: "Daily Rental"},
	{Value: "weekly", Label: "Weekly Rental"},
	{Value: "monthly", Label: "Monthly Rental"},
	{Value: "weekend", Label: "Weekend Special"},
}

// RentalWindow is the booking request typed on the rent page. It is carried
// between requests but never filters the catalog.
type RentalWindow struct {
	Pickup   string
	Return   string
	Duration string
	// Searched is set when the visitor pressed Search rather than changing a filter
	Searched bool
}

// ParseRentalWindow reads the booking fields. Malformed dates are dropped
// and an unknown duration falls back to daily.
func ParseRentalWindow(get func(key string) string) RentalWindow {
	w := RentalWindow{
		Pickup:   parseDate(get("pickup")),
		Return:   parseDate(get("return")),
		Duration: RentalDurations[0].Value,
		Searched: get("book") != "",
	}
	d := strings.TrimSpace(get("duration"))
	for _, o := range RentalDurations {
		if o.Value == d {
			w.Duration = d
		}
	}
	return w
}

// Check reports whether the window is complete enough to search with
func (w RentalWindow) Check() error {
	if w.Pickup == "" || w.Return == "" {
		return ErrMissingDates
	}
	// both dates use dateLayout, so they order lexically
	if w.Return < w.Pickup {
		return ErrReturnTooEarly
	}
	return nil
}

func parseDate(s string) string {
	s = strings.TrimSpace(s)
	if _, err := time.Parse(dateLayout, s); err != nil {
		return ""
	}
	return s
}
