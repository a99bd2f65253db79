package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jjenkins/revera/internal/model"
	"github.com/jjenkins/revera/internal/store"
)

const feedJSON = `[
	{"id":"b1","brand":"Porsche","name":"911 Turbo S","year":2024,"fuel":"Petrol","seats":4,"acceleration":"2.6s","price":230000,"type":"buy","status":"available","image":"/img/911.jpg"},
	{"id":"r1","brand":"Ferrari","name":"Roma","year":2023,"fuel":"Petrol","seats":4,"acceleration":"3.4s","price":0,"rentPrice":950,"type":"rent","status":"rented","image":"/img/roma.jpg","location":"Monaco"},
	{"id":"x1","brand":"Broken","name":"Car","year":0,"seats":2,"type":"buy","status":"available"},
	{"id":"b1","brand":"Porsche","name":"Duplicate","year":2024,"seats":4,"type":"buy","status":"available"}
]`

func newTestFeedClient() *FeedClient {
	c := NewFeedClient(NewParser())
	c.backoff = time.Millisecond
	return c
}

func TestParserArray(t *testing.T) {
	result, err := NewParser().Parse([]byte(feedJSON))
	require.NoError(t, err)

	require.Len(t, result.Listings, 2)
	assert.Equal(t, "b1", result.Listings[0].ID)
	assert.Equal(t, "r1", result.Listings[1].ID)
	require.NotNil(t, result.Listings[1].RentPrice)
	assert.Equal(t, 950.0, *result.Listings[1].RentPrice)
	assert.Len(t, result.Rejected, 2)
	assert.Len(t, result.Checksum, 32)
}

func TestParserWrappedObject(t *testing.T) {
	doc := `{"listings":[{"id":"b9","brand":"Bentley","name":"Continental GT","year":2023,"seats":4,"price":295000,"type":"buy","status":"available"}]}`
	result, err := NewParser().Parse([]byte(doc))
	require.NoError(t, err)
	require.Len(t, result.Listings, 1)
	assert.Equal(t, "Bentley", result.Listings[0].Brand)
	assert.Empty(t, result.Rejected)
}

func TestParserRejectsGarbage(t *testing.T) {
	_, err := NewParser().Parse([]byte("   "))
	assert.Error(t, err)

	_, err = NewParser().Parse([]byte("not json"))
	assert.Error(t, err)
}

func TestFeedClientRetriesThenSucceeds(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch atomic.AddInt32(&calls, 1) {
		case 1:
			w.WriteHeader(http.StatusTooManyRequests)
		case 2:
			w.WriteHeader(http.StatusBadGateway)
		default:
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(feedJSON))
		}
	}))
	defer srv.Close()

	result, err := newTestFeedClient().FetchListings(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Len(t, result.Listings, 2)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestFeedClientGivesUp(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestFeedClient().FetchListings(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed after 3 attempts")
	assert.Equal(t, int32(maxRetries), atomic.LoadInt32(&calls))
}

func TestFeedClientHonorsCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newTestFeedClient()
	c.backoff = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := c.FetchListings(ctx, srv.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

type fakeWriter struct {
	saved [][]model.Listing
}

func (w *fakeWriter) SaveListings(ctx context.Context, listings []model.Listing) (*store.SaveStats, error) {
	w.saved = append(w.saved, listings)
	return &store.SaveStats{Inserted: len(listings)}, nil
}

var (
	_ ListingCounter = (*store.ListingStore)(nil)
	_ ListingCounter = (*store.MongoListingStore)(nil)
)

type countingWriter struct {
	fakeWriter
	ids map[string]bool
	err error
}

func (w *countingWriter) SaveListings(ctx context.Context, listings []model.Listing) (*store.SaveStats, error) {
	if w.ids == nil {
		w.ids = make(map[string]bool)
	}
	for _, l := range listings {
		w.ids[l.ID] = true
	}
	return w.fakeWriter.SaveListings(ctx, listings)
}

func (w *countingWriter) CountListings(ctx context.Context) (int, error) {
	return len(w.ids), w.err
}

func TestSeederReportsStoredCount(t *testing.T) {
	w := &countingWriter{}
	s := NewSeeder(newTestFeedClient(), NewParser(), w)

	stats, err := s.SeedListings(context.Background(), []model.Listing{
		{ID: "b1", Brand: "Aston Martin", Name: "DB12", Year: 2024, Seats: 4, Price: 245000, Kind: model.KindBuy, Status: model.StatusAvailable},
		{ID: "b2", Brand: "Bentley", Name: "Continental GT", Year: 2024, Seats: 4, Price: 235000, Kind: model.KindBuy, Status: model.StatusAvailable},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Stored)

	w.err = assert.AnError
	stats, err = s.SeedListings(context.Background(), []model.Listing{
		{ID: "b3", Brand: "Ferrari", Name: "Roma", Year: 2023, Seats: 4, Price: 220000, Kind: model.KindBuy, Status: model.StatusAvailable},
	})
	require.NoError(t, err)
	assert.Equal(t, -1, stats.Stored)
	s.PrintSummary(stats)
}

func TestSeederSeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "listings.json")
	require.NoError(t, os.WriteFile(path, []byte(feedJSON), 0o600))

	w := &fakeWriter{}
	s := NewSeeder(newTestFeedClient(), NewParser(), w)

	stats, err := s.SeedFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 2, stats.Inserted)
	assert.Equal(t, 2, stats.Skipped)
	require.Len(t, w.saved, 1)
	assert.Len(t, w.saved[0], 2)
	assert.Equal(t, -1, stats.Stored)

	s.PrintSummary(stats)
}

func TestSeederSeedListingsSkipsInvalid(t *testing.T) {
	w := &fakeWriter{}
	s := NewSeeder(newTestFeedClient(), NewParser(), w)

	stats, err := s.SeedListings(context.Background(), []model.Listing{
		{ID: "b1", Brand: "Aston Martin", Name: "DB12", Year: 2024, Seats: 4, Price: 245000, Kind: model.KindBuy, Status: model.StatusAvailable},
		{ID: "", Brand: "Nameless", Year: 2024, Seats: 2, Kind: model.KindBuy, Status: model.StatusAvailable},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Inserted)
	assert.Equal(t, 1, stats.Skipped)
}

func TestSeederNothingValid(t *testing.T) {
	w := &fakeWriter{}
	s := NewSeeder(newTestFeedClient(), NewParser(), w)

	stats, err := s.SeedListings(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, stats.Total)
	assert.Empty(t, w.saved)
}

func TestSummarize(t *testing.T) {
	rent := 900.0
	m := Summarize([]model.Listing{
		{ID: "b1", Brand: "Porsche", Price: 200000, Kind: model.KindBuy, Status: model.StatusAvailable},
		{ID: "b2", Brand: "Porsche", Price: 300000, Kind: model.KindBuy, Status: model.StatusSold},
		{ID: "r1", Brand: "Ferrari", RentPrice: &rent, Kind: model.KindRent, Status: model.StatusAvailable, Location: "Monaco"},
	})

	assert.Equal(t, 3, m.TotalListings)
	assert.Equal(t, 2, m.ForSale)
	assert.Equal(t, 1, m.ForRent)
	assert.Equal(t, 2, m.Available)
	assert.Equal(t, 2, m.Brands)
	assert.Equal(t, 1, m.Locations)
	assert.Equal(t, 250000.0, m.AveragePrice)
	assert.Equal(t, "Porsche", m.TopBrand)
	assert.Equal(t, 2, m.TopBrandCount)
}
