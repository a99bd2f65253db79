package catalog

import (
	"context"
	"fmt"

	"github.com/jjenkins/revera/internal/model"
)

// Source supplies the full set of listing records
type Source interface {
	Listings(ctx context.Context) ([]model.Listing, error)
}

// Versioned is implemented by sources that can tell when their data changed,
// so memoized views can be keyed on it.
type Versioned interface {
	Version(ctx context.Context) (string, error)
}

// Getter is implemented by sources that can load one record by ID.
// A nil listing with a nil error means the ID is unknown.
type Getter interface {
	GetByID(ctx context.Context, id string) (*model.Listing, error)
}

// StaticSource serves a fixed, validated set of records
type StaticSource struct {
	records []model.Listing
}

// NewStaticSource validates records and returns a source over a private copy
func NewStaticSource(records []model.Listing) (*StaticSource, error) {
	seen := make(map[string]bool, len(records))
	cp := make([]model.Listing, len(records))
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		if seen[r.ID] {
			return nil, fmt.Errorf("duplicate listing id %q", r.ID)
		}
		seen[r.ID] = true
		cp[i] = r
	}
	return &StaticSource{records: cp}, nil
}

// Listings returns a copy of the records
func (s *StaticSource) Listings(ctx context.Context) ([]model.Listing, error) {
	out := make([]model.Listing, len(s.records))
	copy(out, s.records)
	return out, nil
}

// Version is constant for the lifetime of the source
func (s *StaticSource) Version(ctx context.Context) (string, error) {
	return fmt.Sprintf("static-%d", len(s.records)), nil
}
