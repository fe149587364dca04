package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const limiterIdleTTL = 10 * time.Minute

// TriggerRateLimiter throttles populate triggers per client IP, on top of
// the run lock that rejects overlapping runs.
type TriggerRateLimiter struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	clients   map[string]*clientLimiter
	lastSweep time.Time
	now       func() time.Time
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewTriggerRateLimiter allows perMinute triggers per IP; perMinute <= 0
// disables limiting.
func NewTriggerRateLimiter(perMinute int) *TriggerRateLimiter {
	rl := &TriggerRateLimiter{
		limit:   rate.Inf,
		clients: make(map[string]*clientLimiter),
		now:     time.Now,
	}
	if perMinute > 0 {
		rl.limit = rate.Every(time.Minute / time.Duration(perMinute))
		rl.burst = perMinute
	}
	return rl
}

// Allow reports whether ip may trigger another run now.
func (r *TriggerRateLimiter) Allow(ip string) bool {
	if r.limit == rate.Inf {
		return true
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.sweep(now)

	cl, ok := r.clients[ip]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(r.limit, r.burst)}
		r.clients[ip] = cl
	}
	cl.lastSeen = now
	return cl.limiter.AllowN(now, 1)
}

// sweep drops idle clients. Caller holds r.mu.
func (r *TriggerRateLimiter) sweep(now time.Time) {
	if now.Sub(r.lastSweep) < limiterIdleTTL {
		return
	}
	for ip, cl := range r.clients {
		if now.Sub(cl.lastSeen) > limiterIdleTTL {
			delete(r.clients, ip)
		}
	}
	r.lastSweep = now
}

// Middleware rejects throttled requests with 429 and a plain-text body,
// matching the trigger's plain-text responses.
func (r *TriggerRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !r.Allow(ip) {
			log.Warn().Str("ip", ip).Str("path", c.Request.URL.Path).Msg("populate trigger throttled")
			c.Header("Retry-After", "60")
			c.String(http.StatusTooManyRequests, "RATE_LIMITED")
			c.Abort()
			return
		}
		c.Next()
	}
}
