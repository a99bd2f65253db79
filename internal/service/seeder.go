package service

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jjenkins/revera/internal/model"
	"github.com/jjenkins/revera/internal/store"
)

// ListingWriter persists listings
type ListingWriter interface {
	SaveListings(ctx context.Context, listings []model.Listing) (*store.SaveStats, error)
}

// ListingCounter is implemented by targets that can report their size
type ListingCounter interface {
	CountListings(ctx context.Context) (int, error)
}

// SeedStats tracks seed statistics
type SeedStats struct {
	Total     int
	Inserted  int
	Changed   int
	Unchanged int
	Skipped   int
	// Stored is the target's record count after the seed, -1 if unknown
	Stored   int
	Checksum string
}

// Seeder loads listing datasets into a store
type Seeder struct {
	feed      *FeedClient
	parser    *Parser
	target    ListingWriter
	logger    *log.Logger
	errLogger *log.Logger
}

// NewSeeder creates a new Seeder
func NewSeeder(feed *FeedClient, parser *Parser, target ListingWriter) *Seeder {
	return &Seeder{
		feed:      feed,
		parser:    parser,
		target:    target,
		logger:    log.New(os.Stdout, "", log.LstdFlags),
		errLogger: log.New(os.Stderr, "ERROR: ", log.LstdFlags),
	}
}

// SeedFile loads listings from a JSON file
func (s *Seeder) SeedFile(ctx context.Context, path string) (*SeedStats, error) {
	s.logger.Printf("Reading listings from %s...", path)
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	result, err := s.parser.Parse(content)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, result)
}

// SeedURL loads listings from a remote JSON feed
func (s *Seeder) SeedURL(ctx context.Context, url string) (*SeedStats, error) {
	s.logger.Printf("Fetching listings from %s...", url)
	result, err := s.feed.FetchListings(ctx, url)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, result)
}

// SeedListings loads an in-memory dataset
func (s *Seeder) SeedListings(ctx context.Context, listings []model.Listing) (*SeedStats, error) {
	s.logger.Printf("Seeding %d built-in listings...", len(listings))
	result := &ParseResult{}
	seen := make(map[string]bool, len(listings))
	for idx, l := range listings {
		if err := l.Validate(); err != nil {
			result.Rejected = append(result.Rejected, fmt.Errorf("record %d: %w", idx, err))
			continue
		}
		if seen[l.ID] {
			result.Rejected = append(result.Rejected, fmt.Errorf("record %d: duplicate id %q", idx, l.ID))
			continue
		}
		seen[l.ID] = true
		result.Listings = append(result.Listings, l)
	}
	return s.save(ctx, result)
}

func (s *Seeder) save(ctx context.Context, result *ParseResult) (*SeedStats, error) {
	stats := &SeedStats{
		Total:    len(result.Listings) + len(result.Rejected),
		Skipped:  len(result.Rejected),
		Stored:   -1,
		Checksum: result.Checksum,
	}

	for _, err := range result.Rejected {
		s.errLogger.Printf("Skipping %v", err)
	}

	if len(result.Listings) == 0 {
		return stats, nil
	}

	select {
	case <-ctx.Done():
		return stats, ctx.Err()
	default:
	}

	saved, err := s.target.SaveListings(ctx, result.Listings)
	if err != nil {
		return stats, fmt.Errorf("failed to save listings: %w", err)
	}

	stats.Inserted = saved.Inserted
	stats.Changed = saved.Changed
	stats.Unchanged = saved.Unchanged

	if counter, ok := s.target.(ListingCounter); ok {
		n, err := counter.CountListings(ctx)
		if err != nil {
			s.errLogger.Printf("Could not count stored listings: %v", err)
		} else {
			stats.Stored = n
		}
	}
	return stats, nil
}

// PrintSummary prints the seed statistics
func (s *Seeder) PrintSummary(stats *SeedStats) {
	s.logger.Println("")
	s.logger.Println("=== Seed Summary ===")
	s.logger.Printf("Total records:   %d", stats.Total)
	s.logger.Printf("Inserted:        %d", stats.Inserted)
	s.logger.Printf("Changed:         %d", stats.Changed)
	s.logger.Printf("Unchanged:       %d", stats.Unchanged)
	s.logger.Printf("Skipped:         %d (invalid)", stats.Skipped)
	if stats.Stored >= 0 {
		s.logger.Printf("Now stored:      %d", stats.Stored)
	}
	if stats.Checksum != "" {
		s.logger.Printf("Checksum:        %s", stats.Checksum)
	}

	if stats.Total > 0 {
		accepted := float64(stats.Total-stats.Skipped) / float64(stats.Total) * 100
		s.logger.Printf("Accepted:        %.1f%%", accepted)
	}
}
