package security

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/leslieo2/hotel-booking-mock/internal/apierror"
	"github.com/leslieo2/hotel-booking-mock/internal/config"
	"github.com/leslieo2/hotel-booking-mock/internal/constants"
)

// RateLimiter applies a token bucket per client IP to /api routes
type RateLimiter struct {
	limiters *cache.Cache
	config   config.RateLimitConfig
	clock    Clock
	onError  func(w http.ResponseWriter, r *http.Request, err error)

	stop     chan struct{}
	stopOnce sync.Once
}

type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}

// RateLimitStatus is the bucket state reported in X-RateLimit-* headers
type RateLimitStatus struct {
	Limit      int
	Remaining  int
	Reset      time.Time
	RetryAfter time.Duration
}

// NewRateLimiter creates a limiter. Rejections are rendered by onError.
// When enabled, a background sweep keeps the number of tracked clients
// under MaxCacheSize until Stop is called.
func NewRateLimiter(cfg config.RateLimitConfig, onError func(w http.ResponseWriter, r *http.Request, err error)) *RateLimiter {
	rl := newRateLimiter(cfg, onError, RealClock{})
	if cfg.Enabled {
		go rl.periodicCleanup()
	}
	return rl
}

func newRateLimiter(cfg config.RateLimitConfig, onError func(w http.ResponseWriter, r *http.Request, err error), clock Clock) *RateLimiter {
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = constants.RateLimitCleanupInterval
	}
	if cfg.MaxCacheSize <= 0 {
		cfg.MaxCacheSize = constants.RateLimitMaxCacheSize
	}
	if cfg.Global == nil {
		cfg.Global = config.DefaultRateLimitConfig().Global
	}
	return &RateLimiter{
		limiters: cache.New(cfg.CleanupInterval, cfg.CleanupInterval*2),
		config:   cfg,
		clock:    clock,
		onError:  onError,
		stop:     make(chan struct{}),
	}
}

// Stop ends the background sweep
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// periodicCleanup evicts arbitrary clients once the cache outgrows its cap
func (rl *RateLimiter) periodicCleanup() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.evictOverflow()
		}
	}
}

func (rl *RateLimiter) evictOverflow() {
	maxSize := rl.config.MaxCacheSize
	currentSize := rl.limiters.ItemCount()
	if currentSize <= maxSize {
		return
	}

	// Remove an extra 10% to avoid sweeping again on the next tick.
	// Map iteration order is random, which is all the eviction policy needs.
	toRemove := currentSize - maxSize + maxSize/10
	for key := range rl.limiters.Items() {
		if toRemove <= 0 {
			break
		}
		rl.limiters.Delete(key)
		toRemove--
	}
}

func (rl *RateLimiter) limiter(identifier string) *rate.Limiter {
	if item, found := rl.limiters.Get(identifier); found {
		return item.(*rate.Limiter)
	}
	limiter := rate.NewLimiter(rate.Limit(rl.config.Global.RequestsPerSecond), rl.config.Global.BurstSize)
	// Add fails if another request created the limiter first
	if err := rl.limiters.Add(identifier, limiter, cache.DefaultExpiration); err != nil {
		if item, found := rl.limiters.Get(identifier); found {
			return item.(*rate.Limiter)
		}
	}
	return limiter
}

// Allow takes a token for identifier and reports the bucket afterwards
func (rl *RateLimiter) Allow(identifier string) (bool, RateLimitStatus) {
	now := rl.clock.Now()
	limit := rl.config.Global

	if !rl.config.Enabled {
		return true, RateLimitStatus{Limit: limit.BurstSize, Remaining: limit.BurstSize, Reset: now}
	}

	limiter := rl.limiter(identifier)
	allowed := limiter.AllowN(now, 1)

	tokens := limiter.TokensAt(now)
	remaining := int(math.Max(0, math.Floor(tokens)))
	missing := float64(limit.BurstSize) - tokens
	refill := time.Duration(missing / float64(limit.RequestsPerSecond) * float64(time.Second))

	status := RateLimitStatus{
		Limit:     limit.BurstSize,
		Remaining: remaining,
		Reset:     now.Add(refill),
	}
	if !allowed {
		status.RetryAfter = time.Duration((1 - tokens) / float64(limit.RequestsPerSecond) * float64(time.Second))
	}
	return allowed, status
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.config.Enabled || rl.shouldSkipRateLimit(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		allowed, status := rl.Allow(rl.getIdentifier(r))

		h := w.Header()
		h.Set(constants.HeaderXRateLimitLimit, strconv.Itoa(status.Limit))
		h.Set(constants.HeaderXRateLimitRemaining, strconv.Itoa(status.Remaining))
		h.Set(constants.HeaderXRateLimitReset, strconv.FormatInt(status.Reset.Unix(), 10))

		if !allowed {
			retrySeconds := int(math.Ceil(status.RetryAfter.Seconds()))
			if retrySeconds < 1 {
				retrySeconds = 1
			}
			h.Set(constants.HeaderRetryAfter, strconv.Itoa(retrySeconds))
			rl.onError(w, r, apierror.New(http.StatusTooManyRequests, constants.ErrorCodeRateLimitExceeded,
				"Rate limit exceeded. Try again in "+strconv.Itoa(retrySeconds)+"s"))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) getIdentifier(r *http.Request) string {
	return "ip:" + ClientIP(r)
}

// ClientIP returns the first X-Forwarded-For hop, then X-Real-IP, then the
// peer address
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get(constants.HeaderXForwardedFor); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if xri := strings.TrimSpace(r.Header.Get(constants.HeaderXRealIP)); xri != "" {
		return xri
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// shouldSkipRateLimit exempts everything outside /api, including the
// health, readiness and metrics probes
func (rl *RateLimiter) shouldSkipRateLimit(path string) bool {
	return !strings.HasPrefix(path, constants.PrefixAPI)
}
