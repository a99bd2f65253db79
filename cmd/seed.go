package cmd

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jjenkins/revera/internal/catalog"
	"github.com/jjenkins/revera/internal/config"
	"github.com/jjenkins/revera/internal/service"
	"github.com/jjenkins/revera/internal/store"
)

var seedFile string
var seedURL string
var seedTarget string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the car catalog into a database",
	Long: `Seed writes listing records into PostgreSQL or MongoDB.

Records come from the built-in showroom inventory, a JSON file or a JSON
feed URL. Each record is validated; invalid or duplicate records are
skipped and reported. Re-running the seed only touches changed records.

Examples:
  # Seed the built-in inventory into PostgreSQL (DATABASE_URL)
  ./showroom seed

  # Seed a JSON file into MongoDB (MONGO_URI, MONGO_DB)
  ./showroom seed --file listings.json --target mongo

  # Seed from a remote feed
  ./showroom seed --from-url https://example.com/listings.json`,
	Run: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "JSON file with listings")
	seedCmd.Flags().StringVarP(&seedURL, "from-url", "u", "", "URL of a JSON listings feed")
	seedCmd.Flags().StringVarP(&seedTarget, "target", "t", "", "Database to seed: postgres or mongo (default from CATALOG_BACKEND)")
	seedCmd.MarkFlagsMutuallyExclusive("file", "from-url")
}

func runSeed(cmd *cobra.Command, args []string) {
	// seed returns only after its deferred closes have run
	if code := seed(); code != 0 {
		os.Exit(code)
	}
}

// seed runs the load and returns the process exit code
func seed() int {
	target := seedTarget
	if target == "" {
		target = cfg.CatalogBackend
	}
	if target == config.BackendStatic || target == "" {
		target = config.BackendPostgres
	}

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			log.Println("\nReceived interrupt signal, shutting down...")
			cancel()
		case <-ctx.Done():
		}
	}()

	writer, closeWriter, err := openWriter(ctx, target)
	if err != nil {
		log.Printf("Failed to open %s: %v", target, err)
		return 1
	}
	defer closeWriter()

	parser := service.NewParser()
	seeder := service.NewSeeder(service.NewFeedClient(parser), parser, writer)

	var stats *service.SeedStats
	switch {
	case seedFile != "":
		stats, err = seeder.SeedFile(ctx, seedFile)
	case seedURL != "":
		stats, err = seeder.SeedURL(ctx, seedURL)
	default:
		stats, err = seeder.SeedListings(ctx, catalog.BuiltinListings())
	}
	if err != nil {
		if ctx.Err() != nil {
			log.Println("Seed cancelled")
		} else {
			log.Printf("Seed failed: %v", err)
		}
		return 1
	}
	seeder.PrintSummary(stats)

	// Drop views cached against the previous data
	if viewCache, redisClient, err := openViewCache(ctx, cfg); err != nil {
		log.Printf("Warning: could not connect to redis: %v", err)
	} else if viewCache != nil {
		defer redisClient.Close()
		if n, err := viewCache.Flush(ctx); err != nil {
			log.Printf("Warning: failed to flush view cache: %v", err)
		} else {
			log.Printf("Flushed %d cached views", n)
		}
	}

	if stats.Skipped > 0 {
		return 1
	}
	return 0
}

func openWriter(ctx context.Context, target string) (service.ListingWriter, func(), error) {
	switch target {
	case config.BackendMongo:
		log.Println("Connecting to MongoDB...")
		client, err := store.ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, err
		}
		return store.NewMongoListingStore(client, cfg.MongoDB), func() { client.Disconnect(context.Background()) }, nil

	default:
		if cfg.DatabaseURL == "" {
			return nil, nil, errors.New("DATABASE_URL environment variable is required")
		}
		log.Println("Connecting to database...")
		db, err := store.NewDB(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		listingStore := store.NewListingStore(db)
		if err := listingStore.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return listingStore, func() { db.Close() }, nil
	}
}
