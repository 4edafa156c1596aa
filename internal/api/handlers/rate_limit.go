package handlers

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/kinesiogame/encuesta/internal/domain/providers"
	"github.com/kinesiogame/encuesta/internal/infrastructure/observability"
)

const (
	submitRateWindow    = time.Hour
	submitRateKeyPrefix = "encuesta:submit:"

	// Expired local windows are swept once the map grows past this size.
	localRateSweepSize = 10000
)

// SubmissionRateLimiter caps survey posts per client IP within a fixed
// window. It counts in the shared cache when one is configured and falls
// back to process memory otherwise, or when the cache errors.
type SubmissionRateLimiter struct {
	limit  int
	window time.Duration
	cache  providers.CacheProvider
	local  *localRateLimiter
}

// NewSubmissionRateLimiter creates a limiter allowing limit posts per hour.
// A limit of zero or less disables limiting.
func NewSubmissionRateLimiter(limit int, cache providers.CacheProvider) *SubmissionRateLimiter {
	return &SubmissionRateLimiter{
		limit:  limit,
		window: submitRateWindow,
		cache:  cache,
		local:  newLocalRateLimiter(),
	}
}

// Allow records one attempt for ip and reports whether it is within the
// limit, plus how long the caller should wait when it is not.
func (l *SubmissionRateLimiter) Allow(ctx context.Context, ip string) (bool, time.Duration) {
	if l == nil || l.limit <= 0 {
		return true, 0
	}

	key := submitRateKeyPrefix + ip
	if l.cache != nil {
		count, ttl, err := l.cache.Increment(ctx, key, l.window)
		if err == nil {
			if count > int64(l.limit) {
				return false, ttl
			}
			return true, 0
		}
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("Rate limit cache unavailable, counting locally")
	}

	return l.local.allow(key, l.limit, l.window)
}

type localRateLimiter struct {
	mu     sync.Mutex
	states map[string]*localRateState
}

type localRateState struct {
	count   int
	resetAt time.Time
}

func newLocalRateLimiter() *localRateLimiter {
	return &localRateLimiter{
		states: make(map[string]*localRateState),
	}
}

func (l *localRateLimiter) allow(key string, limit int, window time.Duration) (bool, time.Duration) {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.states) >= localRateSweepSize {
		for k, s := range l.states {
			if now.After(s.resetAt) {
				delete(l.states, k)
			}
		}
	}

	state, ok := l.states[key]
	if !ok || now.After(state.resetAt) {
		state = &localRateState{count: 0, resetAt: now.Add(window)}
		l.states[key] = state
	}

	if state.count >= limit {
		retryAfter := state.resetAt.Sub(now)
		if retryAfter < 0 {
			retryAfter = window
		}
		return false, retryAfter
	}

	state.count++
	return true, 0
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return strings.TrimSpace(realIP)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}
