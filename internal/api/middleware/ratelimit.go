package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
	"wellness-center/internal/config"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

const rateLimitKeyPrefix = "wellness:ratelimit:"

// rateCounter is the slice of the Redis client the shared limiter needs.
type rateCounter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// RateLimiterMiddleware limits requests per client IP. With Redis it keeps a
// fixed one-second window shared by every server instance; without Redis, or
// when Redis fails, it uses an in-process token bucket per IP.
type RateLimiterMiddleware struct {
	counter  rateCounter
	limiters sync.Map
	cfg      config.RateLimitConfig
	logger   *slog.Logger
	window   time.Duration
}

func NewRateLimiterMiddleware(cfg config.RateLimitConfig, redisClient *redis.Client, logger *slog.Logger) *RateLimiterMiddleware {
	var counter rateCounter
	if redisClient != nil {
		counter = redisClient
	}
	rl := newRateLimiterMiddleware(cfg, counter, logger)
	if cfg.Enabled {
		go rl.cleanupLimiters()
	}
	return rl
}

func newRateLimiterMiddleware(cfg config.RateLimitConfig, counter rateCounter, logger *slog.Logger) *RateLimiterMiddleware {
	logger = logger.With("component", "RateLimiter")
	switch {
	case !cfg.Enabled:
		logger.Info("Rate limiting is disabled via configuration.")
	case counter == nil:
		logger.Info("Rate limiter using in-memory buckets", "rps", cfg.RPS, "burst", cfg.Burst)
	default:
		logger.Info("Rate limiter using Redis window", "rps", cfg.RPS, "burst", cfg.Burst, "window", time.Second)
	}

	return &RateLimiterMiddleware{
		counter: counter,
		cfg:     cfg,
		logger:  logger,
		window:  time.Second,
	}
}

func (rl *RateLimiterMiddleware) IsEnabled() bool {
	return rl.cfg.Enabled
}

// windowLimit is the number of requests one IP may make per window.
func (rl *RateLimiterMiddleware) windowLimit() int64 {
	return int64(max(rl.cfg.Burst, int(math.Ceil(rl.cfg.RPS)), 1))
}

func (rl *RateLimiterMiddleware) getLimiter(ip string) *rate.Limiter {
	limiter, exists := rl.limiters.Load(ip)
	if !exists {
		newLimiter := rate.NewLimiter(rate.Limit(rl.cfg.RPS), rl.cfg.Burst)
		actual, _ := rl.limiters.LoadOrStore(ip, newLimiter)
		return actual.(*rate.Limiter)
	}
	return limiter.(*rate.Limiter)
}

func (rl *RateLimiterMiddleware) cleanupLimiters() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rl.limiters.Range(func(key, value interface{}) bool {
			limiter := value.(*rate.Limiter)
			if limiter.Tokens() >= float64(limiter.Burst()) {
				rl.limiters.Delete(key)
			}
			return true
		})
	}
}

func (rl *RateLimiterMiddleware) extractIP(r *http.Request) string {
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		ips := strings.Split(xff, ",")
		ip := strings.TrimSpace(ips[0])
		if net.ParseIP(ip) != nil {
			return ip
		}
	}

	xRealIP := strings.TrimSpace(r.Header.Get("X-Real-IP"))
	if xRealIP != "" && net.ParseIP(xRealIP) != nil {
		return xRealIP
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// allowShared counts the request in Redis. ok is false when Redis could not
// answer and the caller should fall back to the local bucket.
func (rl *RateLimiterMiddleware) allowShared(ctx context.Context, ip string) (allowed, ok bool) {
	key := rateLimitKeyPrefix + ip

	count, err := rl.counter.Incr(ctx, key).Result()
	if err != nil {
		rl.logger.WarnContext(ctx, "Redis rate limit check failed, using local limiter", "error", err, "ip", ip)
		return false, false
	}
	if count == 1 {
		if err := rl.counter.Expire(ctx, key, rl.window).Err(); err != nil {
			rl.logger.WarnContext(ctx, "Failed to set expiry on rate limit key", "error", err, "key", key)
		}
	}
	return count <= rl.windowLimit(), true
}

func (rl *RateLimiterMiddleware) allow(ctx context.Context, ip string) bool {
	if rl.counter != nil {
		if allowed, ok := rl.allowShared(ctx, ip); ok {
			return allowed
		}
	}
	return rl.getLimiter(ip).Allow()
}

func (rl *RateLimiterMiddleware) Middleware(next http.Handler) http.Handler {
	if !rl.IsEnabled() {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := rl.extractIP(r)

		if !rl.allow(r.Context(), ip) {
			rl.logger.WarnContext(r.Context(), "Rate limit exceeded", "ip", ip)
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", fmt.Sprintf("%.0f", rl.window.Seconds()))
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"error": map[string]string{
					"message": "Rate limit exceeded",
				},
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}
