package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jjenkins/revera/internal/model"
)

const listingsCollection = "listings"

// listingDoc is the stored form of a listing. Checksum covers the listing
// fields only, so UpdatedAt moves just when the content does.
type listingDoc struct {
	model.Listing `bson:",inline"`
	Checksum      string    `bson:"checksum"`
	UpdatedAt     time.Time `bson:"updatedAt"`
}

// ConnectMongo connects to MongoDB and verifies the connection with a ping
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	if uri == "" {
		return nil, errors.New("mongo uri is not set")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	return client, nil
}

// MongoListingStore keeps listings in a MongoDB collection
type MongoListingStore struct {
	coll *mongo.Collection
}

// NewMongoListingStore creates a store over database db
func NewMongoListingStore(client *mongo.Client, db string) *MongoListingStore {
	return &MongoListingStore{coll: client.Database(db).Collection(listingsCollection)}
}

// Listings retrieves every listing ordered by id
func (s *MongoListingStore) Listings(ctx context.Context) ([]model.Listing, error) {
	cursor, err := s.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find listings: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []listingDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode listings: %w", err)
	}

	listings := make([]model.Listing, 0, len(docs))
	for _, d := range docs {
		listings = append(listings, d.Listing)
	}
	return listings, nil
}

// GetByID retrieves a listing by id, nil if it does not exist
func (s *MongoListingStore) GetByID(ctx context.Context, id string) (*model.Listing, error) {
	var doc listingDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find listing %s: %w", id, err)
	}
	return &doc.Listing, nil
}

// CountListings returns the number of stored listings
func (s *MongoListingStore) CountListings(ctx context.Context) (int, error) {
	count, err := s.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count listings: %w", err)
	}
	return int(count), nil
}

// Version changes whenever a listing is written
func (s *MongoListingStore) Version(ctx context.Context) (string, error) {
	count, err := s.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return "", fmt.Errorf("failed to count listings: %w", err)
	}

	var latest listingDoc
	opts := options.FindOne().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	err = s.coll.FindOne(ctx, bson.M{}, opts).Decode(&latest)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Sprintf("mongo-%d", count), nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get listings version: %w", err)
	}
	return fmt.Sprintf("mongo-%d-%d", count, latest.UpdatedAt.UnixNano()), nil
}

// SaveListings upserts listings whose content changed, inserting new ones.
// Unchanged documents keep their updatedAt so Version stays stable across
// re-seeds.
func (s *MongoListingStore) SaveListings(ctx context.Context, listings []model.Listing) (*SaveStats, error) {
	if len(listings) == 0 {
		return &SaveStats{}, nil
	}

	existing, err := s.checksums(ctx, listings)
	if err != nil {
		return nil, err
	}

	writes, stats, err := planWrites(listings, existing, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if len(writes) == 0 {
		return stats, nil
	}

	if _, err := s.coll.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false)); err != nil {
		return nil, fmt.Errorf("failed to write listings: %w", err)
	}
	return stats, nil
}

// checksums returns the stored checksum of every listing that already exists
func (s *MongoListingStore) checksums(ctx context.Context, listings []model.Listing) (map[string]string, error) {
	ids := make([]string, len(listings))
	for i, l := range listings {
		ids[i] = l.ID
	}

	opts := options.Find().SetProjection(bson.M{"checksum": 1})
	cursor, err := s.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to read listing checksums: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID       string `bson:"_id"`
		Checksum string `bson:"checksum"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode listing checksums: %w", err)
	}

	existing := make(map[string]string, len(rows))
	for _, r := range rows {
		existing[r.ID] = r.Checksum
	}
	return existing, nil
}

// planWrites builds the upserts for listings whose checksum differs from
// existing. A listing repeated in the batch is written once, last one wins.
func planWrites(listings []model.Listing, existing map[string]string, now time.Time) ([]mongo.WriteModel, *SaveStats, error) {
	latest := make(map[string]model.Listing, len(listings))
	var order []string
	for _, l := range listings {
		if _, seen := latest[l.ID]; !seen {
			order = append(order, l.ID)
		}
		latest[l.ID] = l
	}

	stats := &SaveStats{}
	var writes []mongo.WriteModel
	for _, id := range order {
		l := latest[id]
		checksum, err := listingChecksum(l)
		if err != nil {
			return nil, nil, err
		}

		old, found := existing[id]
		switch {
		case !found:
			stats.Inserted++
		case old == checksum:
			stats.Unchanged++
			continue
		default:
			stats.Changed++
		}

		writes = append(writes, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": id}).
			SetReplacement(listingDoc{Listing: l, Checksum: checksum, UpdatedAt: now}).
			SetUpsert(true))
	}
	return writes, stats, nil
}
