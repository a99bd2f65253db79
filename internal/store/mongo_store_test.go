package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/jjenkins/revera/internal/catalog"
	"github.com/jjenkins/revera/internal/model"
)

var (
	_ catalog.Source    = (*ListingStore)(nil)
	_ catalog.Getter    = (*ListingStore)(nil)
	_ catalog.Versioned = (*ListingStore)(nil)
	_ catalog.Source    = (*MongoListingStore)(nil)
	_ catalog.Getter    = (*MongoListingStore)(nil)
	_ catalog.Versioned = (*MongoListingStore)(nil)
)

func TestListingDocBSON(t *testing.T) {
	rent := 1100.0
	doc := listingDoc{
		Listing: model.Listing{
			ID: "r4", Brand: "Lamborghini", Name: "Gallardo", Year: 2024, Fuel: "Gasoline", Seats: 2,
			Price: 415000, RentPrice: &rent, Kind: model.KindRent, Status: model.StatusAvailable, Location: "Miami",
		},
		Checksum:  "abc123",
		UpdatedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	data, err := bson.Marshal(doc)
	require.NoError(t, err)

	var raw bson.M
	require.NoError(t, bson.Unmarshal(data, &raw))
	assert.Equal(t, "r4", raw["_id"])
	assert.Equal(t, "rent", raw["type"])
	assert.Equal(t, 1100.0, raw["rentPrice"])
	assert.Equal(t, "abc123", raw["checksum"])
	assert.Contains(t, raw, "updatedAt")
	assert.NotContains(t, raw, "listing")
	assert.NotContains(t, raw, "id")

	var back listingDoc
	require.NoError(t, bson.Unmarshal(data, &back))
	assert.Equal(t, doc.Listing, back.Listing)
	assert.Equal(t, doc.Checksum, back.Checksum)
	assert.True(t, doc.UpdatedAt.Equal(back.UpdatedAt))
}

func TestListingDocBSONOmitsEmptyRent(t *testing.T) {
	data, err := bson.Marshal(listingDoc{Listing: model.Listing{ID: "b1", Kind: model.KindBuy}})
	require.NoError(t, err)

	var raw bson.M
	require.NoError(t, bson.Unmarshal(data, &raw))
	assert.NotContains(t, raw, "rentPrice")
	assert.NotContains(t, raw, "location")
}

func TestPlanWrites(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	same := model.Listing{ID: "b1", Brand: "Porsche", Name: "911 Turbo S", Price: 350000, Kind: model.KindBuy, Status: model.StatusAvailable}
	changed := model.Listing{ID: "b2", Brand: "Aston Martin", Name: "DB11", Price: 285000, Kind: model.KindBuy, Status: model.StatusAvailable}
	added := model.Listing{ID: "b3", Brand: "Ferrari", Name: "488 GTB", Price: 425000, Kind: model.KindBuy, Status: model.StatusAvailable}

	sameSum, err := listingChecksum(same)
	require.NoError(t, err)
	existing := map[string]string{"b1": sameSum, "b2": "stale"}

	writes, stats, err := planWrites([]model.Listing{same, changed, added}, existing, now)
	require.NoError(t, err)
	assert.Equal(t, &SaveStats{Inserted: 1, Changed: 1, Unchanged: 1}, stats)
	require.Len(t, writes, 2)

	first, ok := writes[0].(*mongo.ReplaceOneModel)
	require.True(t, ok)
	assert.Equal(t, bson.M{"_id": "b2"}, first.Filter)
	require.NotNil(t, first.Upsert)
	assert.True(t, *first.Upsert)

	doc, ok := first.Replacement.(listingDoc)
	require.True(t, ok)
	assert.Equal(t, changed, doc.Listing)
	assert.Equal(t, now, doc.UpdatedAt)
	changedSum, err := listingChecksum(changed)
	require.NoError(t, err)
	assert.Equal(t, changedSum, doc.Checksum)

	second := writes[1].(*mongo.ReplaceOneModel)
	assert.Equal(t, bson.M{"_id": "b3"}, second.Filter)
}

func TestPlanWritesUnchangedBatch(t *testing.T) {
	l := model.Listing{ID: "r1", Brand: "Porsche", Name: "911 Carrera", Kind: model.KindRent, Status: model.StatusAvailable}
	sum, err := listingChecksum(l)
	require.NoError(t, err)

	writes, stats, err := planWrites([]model.Listing{l}, map[string]string{"r1": sum}, time.Now())
	require.NoError(t, err)
	assert.Empty(t, writes)
	assert.Equal(t, 1, stats.Unchanged)
}

func TestPlanWritesDuplicateIDs(t *testing.T) {
	a := model.Listing{ID: "b1", Brand: "Porsche", Name: "old", Kind: model.KindBuy, Status: model.StatusAvailable}
	b := a
	b.Name = "new"

	writes, stats, err := planWrites([]model.Listing{a, b}, nil, time.Now())
	require.NoError(t, err)
	require.Len(t, writes, 1)
	assert.Equal(t, 1, stats.Inserted)
	assert.Equal(t, "new", writes[0].(*mongo.ReplaceOneModel).Replacement.(listingDoc).Name)
}
