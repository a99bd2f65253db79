package handlers

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"

	"github.com/jjenkins/revera/internal/obs"
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// AuthLimiter throttles auth form posts per client IP
type AuthLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	limit   rate.Limit
	burst   int
	idle    time.Duration
	now     func() time.Time
}

// NewAuthLimiter allows perMinute requests per client with a burst of the same size
func NewAuthLimiter(perMinute int) *AuthLimiter {
	if perMinute <= 0 {
		perMinute = 10
	}
	return &AuthLimiter{
		clients: make(map[string]*clientLimiter),
		limit:   rate.Limit(float64(perMinute) / 60),
		burst:   perMinute,
		idle:    30 * time.Minute,
		now:     time.Now,
	}
}

// Allow reports whether client may make another request now
func (l *AuthLimiter) Allow(client string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cl, ok := l.clients[client]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[client] = cl
	}
	cl.lastSeen = now
	return cl.limiter.AllowN(now, 1)
}

// Cleanup forgets clients not seen for a while and returns how many
func (l *AuthLimiter) Cleanup() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	count := 0
	for id, cl := range l.clients {
		if l.now().Sub(cl.lastSeen) > l.idle {
			delete(l.clients, id)
			count++
		}
	}
	return count
}

// Middleware rejects requests over the limit with 429
func (l *AuthLimiter) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodPost {
			return c.Next()
		}
		if !l.Allow(c.IP()) {
			obs.Logger.Warn("auth_rate_limited", "ip", c.IP(), "path", c.Path())
			return c.Status(fiber.StatusTooManyRequests).SendString("Too many attempts. Please wait a minute and try again.")
		}
		return c.Next()
	}
}
