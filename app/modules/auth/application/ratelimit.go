package authservice

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// cleanupThreshold is the minimum map size before a cleanup pass runs.
	cleanupThreshold = 500
	// maxIdleAge is the duration after which an idle token entry is eligible for cleanup.
	maxIdleAge = 10 * time.Minute
)

type tokenEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// TokenRateLimiter is a per-token rate limiter that prunes stale
// entries inline.
type TokenRateLimiter struct {
	tokens map[string]*tokenEntry
	mu     sync.Mutex
	r      rate.Limit
	b      int
}

// NewTokenRateLimiter creates a new TokenRateLimiter.
func NewTokenRateLimiter(r rate.Limit, b int) *TokenRateLimiter {
	return &TokenRateLimiter{
		tokens: make(map[string]*tokenEntry),
		r:      r,
		b:      b,
	}
}

// Allow reports whether the given token may proceed, pruning stale
// entries when the map exceeds cleanupThreshold.
func (l *TokenRateLimiter) Allow(token string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.tokens) > cleanupThreshold {
		cutoff := time.Now().Add(-maxIdleAge)
		for k, e := range l.tokens {
			if e.lastSeen.Before(cutoff) {
				delete(l.tokens, k)
			}
		}
	}

	e, exists := l.tokens[token]
	if !exists {
		e = &tokenEntry{limiter: rate.NewLimiter(l.r, l.b)}
		l.tokens[token] = e
	}
	e.lastSeen = time.Now()

	return e.limiter.Allow()
}
