package store

import (
	"context"
	"crypto/md5"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/jjenkins/revera/internal/model"
)

const schema = `
	CREATE TABLE IF NOT EXISTS listings (
		id           TEXT PRIMARY KEY,
		brand        TEXT           NOT NULL,
		name         TEXT           NOT NULL,
		year         INTEGER        NOT NULL,
		fuel         TEXT           NOT NULL DEFAULT '',
		seats        INTEGER        NOT NULL,
		acceleration TEXT           NOT NULL DEFAULT '',
		price        NUMERIC(12,2)  NOT NULL DEFAULT 0,
		rent_price   NUMERIC(10,2),
		kind         TEXT           NOT NULL,
		status       TEXT           NOT NULL,
		featured     BOOLEAN        NOT NULL DEFAULT FALSE,
		image        TEXT           NOT NULL DEFAULT '',
		location     TEXT           NOT NULL DEFAULT '',
		checksum     TEXT           NOT NULL,
		updated_at   TIMESTAMPTZ    NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_listings_kind   ON listings(kind);
	CREATE INDEX IF NOT EXISTS idx_listings_status ON listings(status);
`

// SaveStats counts what SaveListings did
type SaveStats struct {
	Inserted  int
	Changed   int
	Unchanged int
}

// ListingStore handles database operations for listings
type ListingStore struct {
	db *sql.DB
}

// NewListingStore creates a new ListingStore
func NewListingStore(db *sql.DB) *ListingStore {
	return &ListingStore{db: db}
}

// Migrate creates the listings table if needed
func (s *ListingStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate listings: %w", err)
	}
	return nil
}

// Listings retrieves every listing ordered by id
func (s *ListingStore) Listings(ctx context.Context) ([]model.Listing, error) {
	query := `
		SELECT id, brand, name, year, fuel, seats, acceleration, price,
		       rent_price, kind, status, featured, image, location
		FROM listings
		ORDER BY id
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get listings: %w", err)
	}
	defer rows.Close()

	var listings []model.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}

	return listings, rows.Err()
}

// GetByID retrieves a listing by id, nil if it does not exist
func (s *ListingStore) GetByID(ctx context.Context, id string) (*model.Listing, error) {
	query := `
		SELECT id, brand, name, year, fuel, seats, acceleration, price,
		       rent_price, kind, status, featured, image, location
		FROM listings
		WHERE id = $1
	`

	l, err := scanListing(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Version changes whenever a listing is written
func (s *ListingStore) Version(ctx context.Context) (string, error) {
	var count int
	var latest sql.NullTime
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*), MAX(updated_at) FROM listings`).Scan(&count, &latest)
	if err != nil {
		return "", fmt.Errorf("failed to get listings version: %w", err)
	}
	if !latest.Valid {
		return fmt.Sprintf("pg-%d", count), nil
	}
	return fmt.Sprintf("pg-%d-%d", count, latest.Time.UnixNano()), nil
}

// SaveListings upserts listings in one transaction. Rows whose content is
// unchanged are left alone so Version stays stable across re-seeds.
func (s *ListingStore) SaveListings(ctx context.Context, listings []model.Listing) (*SaveStats, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stats := &SaveStats{}
	for _, l := range listings {
		checksum, err := listingChecksum(l)
		if err != nil {
			return nil, err
		}

		var existing sql.NullString
		err = tx.QueryRowContext(ctx, `SELECT checksum FROM listings WHERE id = $1`, l.ID).Scan(&existing)
		if err != nil && err != sql.ErrNoRows {
			return nil, fmt.Errorf("failed to read listing %s: %w", l.ID, err)
		}

		switch {
		case !existing.Valid:
			stats.Inserted++
		case existing.String == checksum:
			stats.Unchanged++
			continue
		default:
			stats.Changed++
		}

		upsertQuery := `
			INSERT INTO listings (id, brand, name, year, fuel, seats, acceleration, price,
			                      rent_price, kind, status, featured, image, location, checksum)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
			ON CONFLICT (id) DO UPDATE SET
				brand = EXCLUDED.brand,
				name = EXCLUDED.name,
				year = EXCLUDED.year,
				fuel = EXCLUDED.fuel,
				seats = EXCLUDED.seats,
				acceleration = EXCLUDED.acceleration,
				price = EXCLUDED.price,
				rent_price = EXCLUDED.rent_price,
				kind = EXCLUDED.kind,
				status = EXCLUDED.status,
				featured = EXCLUDED.featured,
				image = EXCLUDED.image,
				location = EXCLUDED.location,
				checksum = EXCLUDED.checksum,
				updated_at = NOW()
		`

		_, err = tx.ExecContext(ctx, upsertQuery,
			l.ID,
			l.Brand,
			l.Name,
			l.Year,
			l.Fuel,
			l.Seats,
			l.Acceleration,
			l.Price,
			nullFloat(l.RentPrice),
			string(l.Kind),
			string(l.Status),
			l.Featured,
			l.Image,
			l.Location,
			checksum,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to upsert listing %s: %w", l.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return stats, nil
}

// CountListings returns the number of stored listings
func (s *ListingStore) CountListings(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM listings`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count listings: %w", err)
	}
	return count, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanListing(row scanner) (model.Listing, error) {
	var l model.Listing
	var rentPrice sql.NullFloat64
	var kind, status string

	err := row.Scan(
		&l.ID,
		&l.Brand,
		&l.Name,
		&l.Year,
		&l.Fuel,
		&l.Seats,
		&l.Acceleration,
		&l.Price,
		&rentPrice,
		&kind,
		&status,
		&l.Featured,
		&l.Image,
		&l.Location,
	)
	if err == sql.ErrNoRows {
		return l, err
	}
	if err != nil {
		return l, fmt.Errorf("failed to scan listing: %w", err)
	}

	l.Kind = model.ListingKind(kind)
	l.Status = model.ListingStatus(status)
	if rentPrice.Valid {
		p := rentPrice.Float64
		l.RentPrice = &p
	}
	return l, nil
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

// listingChecksum fingerprints the listing content
func listingChecksum(l model.Listing) (string, error) {
	data, err := json.Marshal(l)
	if err != nil {
		return "", fmt.Errorf("failed to encode listing %s: %w", l.ID, err)
	}
	hash := md5.Sum(data)
	return hex.EncodeToString(hash[:]), nil
}
