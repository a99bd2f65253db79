package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var keys = []string{
	"PORT", "LOG_LEVEL", "CATALOG_BACKEND", "DATABASE_URL", "MONGO_URI", "MONGO_DB",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "VIEW_CACHE_TTL", "AUTH_BACKEND_URL",
	"AUTH_TIMEOUT", "ALLOWED_EMAIL_DOMAINS", "MAX_IMAGE_BYTES", "AUTH_RATE_PER_MIN",
	"SESSION_IDLE_TIMEOUT", "MAX_AUTH_SESSIONS",
}

func clearEnv(t *testing.T) {
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	c := Load()

	assert.Equal(t, "8080", c.Port)
	assert.Equal(t, BackendStatic, c.CatalogBackend)
	assert.Equal(t, "revera", c.MongoDB)
	assert.Equal(t, 5*time.Minute, c.ViewCacheTTL)
	assert.Equal(t, 15*time.Second, c.AuthTimeout)
	assert.Equal(t, []string{"yourcompany.com", "partner.org"}, c.AllowedDomains)
	assert.EqualValues(t, 5<<20, c.MaxImageBytes)
	assert.Equal(t, 10, c.AuthRatePerMinute)
	assert.Equal(t, 30*time.Minute, c.SessionIdleTimeout)
	assert.Equal(t, 10000, c.MaxSessions)
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_URL", "postgres://localhost/revera")
	t.Setenv("VIEW_CACHE_TTL", "90")
	t.Setenv("AUTH_TIMEOUT", "2s")
	t.Setenv("ALLOWED_EMAIL_DOMAINS", " acme.com, ,example.org ")
	t.Setenv("MAX_IMAGE_BYTES", "1024")
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("MAX_AUTH_SESSIONS", "50")

	c := Load()
	assert.Equal(t, "9090", c.Port)
	assert.Equal(t, BackendPostgres, c.CatalogBackend)
	assert.Equal(t, 90*time.Second, c.ViewCacheTTL)
	assert.Equal(t, 2*time.Second, c.AuthTimeout)
	assert.Equal(t, []string{"acme.com", "example.org"}, c.AllowedDomains)
	assert.EqualValues(t, 1024, c.MaxImageBytes)
	assert.Equal(t, 0, c.RedisDB)
	assert.Equal(t, 50, c.MaxSessions)
}

func TestDefaultBackend(t *testing.T) {
	assert.Equal(t, BackendPostgres, defaultBackend("pg", "mongo"))
	assert.Equal(t, BackendMongo, defaultBackend("", "mongo"))
	assert.Equal(t, BackendStatic, defaultBackend("", ""))
}
