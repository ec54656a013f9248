// Package ratelimiter keeps one token bucket per identity and forgets
// identities that stay idle for longer than a ttl.
package ratelimiter

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// UserRateLimiter keeps one limiter per identity (user id, ip, ...).
type UserRateLimiter struct {
	mu      sync.Mutex
	entries map[string]*entry
	limit   rate.Limit
	burst   int
	ttl     time.Duration
	now     func() time.Time
	lastGC  time.Time
}

func New(limit rate.Limit, burst int, ttl time.Duration) *UserRateLimiter {
	return &UserRateLimiter{
		entries: make(map[string]*entry),
		limit:   limit,
		burst:   burst,
		ttl:     ttl,
		now:     time.Now,
	}
}

func Rps100() *UserRateLimiter { return New(rate.Limit(100), 100, time.Hour) }
func Rps10() *UserRateLimiter  { return New(rate.Limit(10), 10, time.Hour) }

func OnceInSecond() *UserRateLimiter { return New(rate.Every(time.Second), 1, time.Hour) }

// Allow takes one token from identity's bucket.
func (l *UserRateLimiter) Allow(identity string) bool {
	l.mu.Lock()
	now := l.now()
	if now.Sub(l.lastGC) > l.ttl {
		l.evictIdle(now)
		l.lastGC = now
	}

	e, ok := l.entries[identity]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[identity] = e
	}
	e.lastSeen = now
	l.mu.Unlock()

	return e.limiter.AllowN(now, 1)
}

// Len reports how many identities are tracked.
func (l *UserRateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// evictIdle drops identities unseen for longer than ttl. Callers hold l.mu.
func (l *UserRateLimiter) evictIdle(now time.Time) {
	for id, e := range l.entries {
		if now.Sub(e.lastSeen) > l.ttl {
			delete(l.entries, id)
		}
	}
}
