package httpx

import (
	"errors"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/breakroom/pkg/slogx"
	"golang.org/x/time/rate"
)

// RateLimitConfig defines a token bucket: RequestsPerWindow tokens refill
// evenly over Window, and up to Burst may be spent at once.
type RateLimitConfig struct {
	RequestsPerWindow int
	Window            time.Duration
	Burst             int
}

// Route profiles. Override with RATELIMIT_{UPGRADE,API,PROBE}_{REQUESTS,WINDOW_SEC,BURST}.
var (
	// UpgradeLimit guards websocket upgrades; each one admits a long-lived session.
	UpgradeLimit = RateLimitConfig{RequestsPerWindow: 30, Window: time.Minute, Burst: 10}

	// APILimit covers the read-only lobby and invite endpoints.
	APILimit = RateLimitConfig{RequestsPerWindow: 300, Window: time.Minute, Burst: 60}

	// ProbeLimit covers health probes, metrics scrapes and docs.
	ProbeLimit = RateLimitConfig{RequestsPerWindow: 1000, Window: time.Minute, Burst: 1000}
)

// RateLimits groups the per-route profiles the router applies.
type RateLimits struct {
	Upgrade RateLimitConfig
	API     RateLimitConfig
	Probe   RateLimitConfig
}

// RateLimitsFromEnv returns the package profiles with environment overrides applied.
func RateLimitsFromEnv() RateLimits {
	return RateLimits{
		Upgrade: ParseRateLimitFromEnv("UPGRADE", UpgradeLimit),
		API:     ParseRateLimitFromEnv("API", APILimit),
		Probe:   ParseRateLimitFromEnv("PROBE", ProbeLimit),
	}
}

// ParseRateLimitFromEnv reads RATELIMIT_{prefix}_REQUESTS, _WINDOW_SEC and _BURST.
// Missing, malformed and non-positive values keep the default.
func ParseRateLimitFromEnv(prefix string, def RateLimitConfig) RateLimitConfig {
	cfg := def
	if n, ok := positiveEnvInt("RATELIMIT_" + prefix + "_REQUESTS"); ok {
		cfg.RequestsPerWindow = n
	}
	if n, ok := positiveEnvInt("RATELIMIT_" + prefix + "_WINDOW_SEC"); ok {
		cfg.Window = time.Duration(n) * time.Second
	}
	if n, ok := positiveEnvInt("RATELIMIT_" + prefix + "_BURST"); ok {
		cfg.Burst = n
	}
	return cfg
}

func positiveEnvInt(key string) (int, bool) {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// Validate rejects buckets that would never admit anything.
func (c RateLimitConfig) Validate() error {
	if c.RequestsPerWindow <= 0 || c.Window <= 0 || c.Burst <= 0 {
		return errors.New("httpx: rate limit requests, window and burst must be positive")
	}
	return nil
}

// Limit converts the window-based rate to tokens per second.
func (c RateLimitConfig) Limit() rate.Limit {
	return rate.Limit(float64(c.RequestsPerWindow) / c.Window.Seconds())
}

// NewLimiter builds a standalone limiter for this profile.
func (c RateLimitConfig) NewLimiter() *rate.Limiter {
	return rate.NewLimiter(c.Limit(), c.Burst)
}

// KeyExtractor picks the bucket a request is charged to.
type KeyExtractor func(*http.Request) string

// IPKeyExtractor keys on the client IP, preferring the first X-Forwarded-For
// hop, then X-Real-IP, then RemoteAddr.
func IPKeyExtractor(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

const limiterIdleTTL = 5 * time.Minute

type keyedEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// keyedLimiters holds one bucket per key and forgets keys idle for limiterIdleTTL.
type keyedLimiters struct {
	cfg RateLimitConfig

	mu        sync.Mutex
	entries   map[string]*keyedEntry
	lastSweep time.Time
}

func newKeyedLimiters(cfg RateLimitConfig) *keyedLimiters {
	return &keyedLimiters{cfg: cfg, entries: make(map[string]*keyedEntry), lastSweep: time.Now()}
}

func (k *keyedLimiters) get(key string, now time.Time) *rate.Limiter {
	k.mu.Lock()
	defer k.mu.Unlock()

	if now.Sub(k.lastSweep) >= limiterIdleTTL {
		for stale, e := range k.entries {
			if now.Sub(e.lastSeen) >= limiterIdleTTL {
				delete(k.entries, stale)
			}
		}
		k.lastSweep = now
	}

	e, ok := k.entries[key]
	if !ok {
		e = &keyedEntry{limiter: k.cfg.NewLimiter()}
		k.entries[key] = e
	}
	e.lastSeen = now
	return e.limiter
}

// RateLimitMiddleware rejects requests with 429 once the caller's bucket is empty.
// Requests without a key pass through.
func RateLimitMiddleware(cfg RateLimitConfig, keyFn KeyExtractor) Middleware {
	buckets := newKeyedLimiters(cfg)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyFn(r)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			now := time.Now()
			limiter := buckets.get(key, now)
			if limiter.AllowN(now, 1) {
				next.ServeHTTP(w, r)
				return
			}

			r0 := limiter.ReserveN(now, 1)
			retryAfter := max(int(r0.DelayFrom(now).Seconds()), 1)
			r0.CancelAt(now)

			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.RequestsPerWindow))
			w.Header().Set("X-RateLimit-Window", cfg.Window.String())

			slogx.FromContext(r.Context()).Warn("rate limit exceeded",
				"key", key,
				"retry_after", retryAfter,
			)
			WriteError(w, http.StatusTooManyRequests, "rate_limit_exceeded", "Too many requests. Please try again later.")
		})
	}
}

// RateLimitByIP limits by client IP.
func RateLimitByIP(cfg RateLimitConfig) Middleware {
	return RateLimitMiddleware(cfg, IPKeyExtractor)
}
