package cmd

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/jjenkins/revera/internal/cache"
	"github.com/jjenkins/revera/internal/catalog"
	"github.com/jjenkins/revera/internal/config"
	"github.com/jjenkins/revera/internal/store"
)

// openSource connects the configured catalog backend. The returned close
// function releases its connections.
func openSource(ctx context.Context, cfg config.Config) (catalog.Source, func(), error) {
	switch cfg.CatalogBackend {
	case config.BackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, nil, fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
		db, err := store.NewDB(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return store.NewListingStore(db), func() { db.Close() }, nil

	case config.BackendMongo:
		client, err := store.ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, err
		}
		return store.NewMongoListingStore(client, cfg.MongoDB), func() { client.Disconnect(context.Background()) }, nil

	case config.BackendStatic, "":
		source, err := catalog.NewStaticSource(catalog.BuiltinListings())
		if err != nil {
			return nil, nil, err
		}
		return source, func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown catalog backend %q", cfg.CatalogBackend)
}

// openViewCache connects Redis when REDIS_ADDR is set. A nil client means
// views are derived on every request.
func openViewCache(ctx context.Context, cfg config.Config) (*cache.RedisViewCache, *redis.Client, error) {
	if cfg.RedisAddr == "" {
		return nil, nil, nil
	}
	client, err := cache.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, nil, err
	}
	return cache.NewRedisViewCache(client, cfg.ViewCacheTTL), client, nil
}
