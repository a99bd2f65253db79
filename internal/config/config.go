// Package config provides runtime configuration values for the showroom.
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Catalog backends
const (
	BackendStatic   = "static"
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Port     string
	LogLevel string

	CatalogBackend string
	DatabaseURL    string
	MongoURI       string
	MongoDB        string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	ViewCacheTTL  time.Duration

	AuthBackendURL     string
	AuthTimeout        time.Duration
	AllowedDomains     []string
	MaxImageBytes      int64
	AuthRatePerMinute  int
	SessionIdleTimeout time.Duration
	MaxSessions        int
}

// Load reads the .env file if present and returns a populated Config.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[config] could not read .env: %v", err)
	}

	databaseURL := getEnv("DATABASE_URL", "")
	mongoURI := getEnv("MONGO_URI", "")

	return Config{
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		CatalogBackend: getEnv("CATALOG_BACKEND", defaultBackend(databaseURL, mongoURI)),
		DatabaseURL:    databaseURL,
		MongoURI:       mongoURI,
		MongoDB:        getEnv("MONGO_DB", "revera"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		ViewCacheTTL:  getEnvDuration("VIEW_CACHE_TTL", 5*time.Minute),

		AuthBackendURL:     getEnv("AUTH_BACKEND_URL", "http://localhost:4000"),
		AuthTimeout:        getEnvDuration("AUTH_TIMEOUT", 15*time.Second),
		AllowedDomains:     getEnvList("ALLOWED_EMAIL_DOMAINS", []string{"yourcompany.com", "partner.org"}),
		MaxImageBytes:      int64(getEnvInt("MAX_IMAGE_BYTES", 5<<20)),
		AuthRatePerMinute:  getEnvInt("AUTH_RATE_PER_MIN", 10),
		SessionIdleTimeout: getEnvDuration("SESSION_IDLE_TIMEOUT", 30*time.Minute),
		MaxSessions:        getEnvInt("MAX_AUTH_SESSIONS", 10000),
	}
}

func defaultBackend(databaseURL, mongoURI string) string {
	switch {
	case databaseURL != "":
		return BackendPostgres
	case mongoURI != "":
		return BackendMongo
	default:
		return BackendStatic
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

// getEnvDuration accepts Go durations ("30s") or plain seconds ("30")
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	if n, err := strconv.Atoi(val); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var out []string
	for _, s := range strings.Split(val, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
