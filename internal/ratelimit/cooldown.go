// Package ratelimit throttles play actions per user.
package ratelimit

import (
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Defaults used when a zero value is configured.
const (
	DefaultCooldown   = 2 * time.Second
	DefaultMaxEntries = 1000
)

// Cooldown accepts at most one action per user per cooldown window. Each user
// gets a single-token bucket refilled once per window, so rejected attempts
// do not extend the wait. The whole table is dropped once it tracks more than
// maxEntries users.
type Cooldown struct {
	cooldown   time.Duration
	maxEntries int
	now        func() time.Time
	logger     *zap.Logger

	limiters map[string]*rate.Limiter
	mu       sync.Mutex
}

// Option configures a Cooldown.
type Option func(*Cooldown)

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Cooldown) {
		c.now = now
	}
}

// NewCooldown creates a cooldown limiter.
func NewCooldown(cooldown time.Duration, maxEntries int, logger *zap.Logger, opts ...Option) *Cooldown {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}

	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}

	c := &Cooldown{
		cooldown:   cooldown,
		maxEntries: maxEntries,
		now:        time.Now,
		logger:     logger.Named("cooldown"),
		limiters:   make(map[string]*rate.Limiter),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Allow records an action by userID. When the action is rejected it returns
// false together with the time left until the next action is accepted.
func (c *Cooldown) Allow(userID string) (bool, time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()

	limiter, ok := c.limiters[userID]
	if !ok {
		if len(c.limiters) >= c.maxEntries {
			c.logger.Debug("Clearing cooldown table", zap.Int("entries", len(c.limiters)))
			clear(c.limiters)
		}

		limiter = rate.NewLimiter(rate.Every(c.cooldown), 1)
		c.limiters[userID] = limiter
	}

	if limiter.AllowN(now, 1) {
		return true, 0
	}

	missing := 1 - limiter.TokensAt(now)
	remaining := time.Duration(missing * float64(c.cooldown))

	return false, max(remaining, 0)
}

// Len returns the number of tracked users.
func (c *Cooldown) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.limiters)
}
